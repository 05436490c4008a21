package collect

import (
	"slices"

	formskema "github.com/reoring/formskema"
)

// DefaultDebounceMs applies to debounced entries without debounceMs.
const DefaultDebounceMs = 500

// DerivationEntry computes a field value from the form value. Exactly one of
// Expression, Value and FunctionName is set.
type DerivationEntry struct {
	SourceFieldKey string              `json:"sourceFieldKey" yaml:"sourceFieldKey"`
	TargetFieldKey string              `json:"targetFieldKey" yaml:"targetFieldKey"`
	Expression     string              `json:"expression,omitempty" yaml:"expression,omitempty"`
	Value          any                 `json:"value,omitempty" yaml:"value,omitempty"`
	FunctionName   string              `json:"functionName,omitempty" yaml:"functionName,omitempty"`
	Condition      formskema.Condition `json:"condition" yaml:"condition"`
	Trigger        string              `json:"trigger" yaml:"trigger"`
	DebounceMs     int                 `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
	IsShorthand    bool                `json:"isShorthand" yaml:"isShorthand"`
	DependsOn      []string            `json:"dependsOn" yaml:"dependsOn"`
}

// DerivationCollection indexes derivation entries. ByTarget and BySource are
// derived from Entries and preserve its order within each key.
type DerivationCollection struct {
	Entries  []*DerivationEntry            `json:"entries" yaml:"entries"`
	ByTarget map[string][]*DerivationEntry `json:"-" yaml:"-"`
	BySource map[string][]*DerivationEntry `json:"-" yaml:"-"`
}

// Derivations walks fields, array items included, and collects shorthand
// derivation strings and logic entries of type derivation.
func Derivations(fields []*formskema.FieldDef) DerivationCollection {
	var entries []*DerivationEntry
	for v := range formskema.Walk(fields, "", formskema.WalkArrayTemplates) {
		f := v.Field
		if f.Key == "" {
			continue
		}
		if f.Derivation != "" {
			entries = append(entries, &DerivationEntry{
				SourceFieldKey: v.Path,
				TargetFieldKey: v.Path,
				Expression:     f.Derivation,
				Condition:      *formskema.Literal(true),
				Trigger:        formskema.TriggerOnChange,
				IsShorthand:    true,
				DependsOn:      dependencies(nil, f.Derivation, "", nil),
			})
		}
		for _, lc := range f.Logic {
			if lc.Type != formskema.LogicDerivation {
				continue
			}
			target := lc.TargetField
			if target == "" {
				target = v.Path
			}
			e := &DerivationEntry{
				SourceFieldKey: v.Path,
				TargetFieldKey: v.ResolveTarget(target),
				Condition:      conditionOrTrue(lc.Condition),
			}
			e.Expression, e.Value, e.FunctionName = pickComputation(lc)
			e.Trigger, e.DebounceMs = trigger(lc)
			e.DependsOn = dependencies(lc.DependsOn, e.Expression, e.FunctionName, lc.Condition)
			entries = append(entries, e)
		}
	}
	return NewDerivationCollection(entries)
}

// NewDerivationCollection builds the lookup maps over entries.
func NewDerivationCollection(entries []*DerivationEntry) DerivationCollection {
	if entries == nil {
		entries = []*DerivationEntry{}
	}
	c := DerivationCollection{
		Entries:  entries,
		ByTarget: map[string][]*DerivationEntry{},
		BySource: map[string][]*DerivationEntry{},
	}
	for _, e := range entries {
		c.ByTarget[e.TargetFieldKey] = append(c.ByTarget[e.TargetFieldKey], e)
		c.BySource[e.SourceFieldKey] = append(c.BySource[e.SourceFieldKey], e)
	}
	return c
}

// AffectedBy returns the entries that must be re-evaluated when the form
// value at path changes, in entry order.
func (c DerivationCollection) AffectedBy(path string) []*DerivationEntry {
	var out []*DerivationEntry
	for _, e := range c.Entries {
		if dependsOn(e.DependsOn, path) {
			out = append(out, e)
		}
	}
	return out
}

func dependsOn(deps []string, path string) bool {
	return slices.ContainsFunc(deps, func(d string) bool {
		return d == Wildcard || d == path || hasPathPrefix(path, d) || hasPathPrefix(d, path)
	})
}

// hasPathPrefix reports whether prefix is a whole-segment prefix of path.
func hasPathPrefix(path, prefix string) bool {
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '.'
}

func conditionOrTrue(c *formskema.Condition) formskema.Condition {
	if c == nil {
		return *formskema.Literal(true)
	}
	return *c
}

func pickComputation(lc formskema.LogicConfig) (expression string, value any, functionName string) {
	switch {
	case lc.Expression != "":
		return lc.Expression, nil, ""
	case lc.Value != nil:
		return "", lc.Value, ""
	default:
		return "", nil, lc.FunctionName
	}
}

func trigger(lc formskema.LogicConfig) (string, int) {
	t := lc.Trigger
	if t == "" {
		t = formskema.TriggerOnChange
	}
	if t != formskema.TriggerDebounced {
		return t, 0
	}
	if lc.DebounceMs != nil {
		return t, *lc.DebounceMs
	}
	return t, DefaultDebounceMs
}
