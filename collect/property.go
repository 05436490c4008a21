package collect

import (
	formskema "github.com/reoring/formskema"
)

// PropertyDerivationEntry computes a component input of a field.
type PropertyDerivationEntry struct {
	FieldKey       string              `json:"fieldKey" yaml:"fieldKey"`
	TargetProperty string              `json:"targetProperty" yaml:"targetProperty"`
	Expression     string              `json:"expression,omitempty" yaml:"expression,omitempty"`
	Value          any                 `json:"value,omitempty" yaml:"value,omitempty"`
	FunctionName   string              `json:"functionName,omitempty" yaml:"functionName,omitempty"`
	Condition      formskema.Condition `json:"condition" yaml:"condition"`
	Trigger        string              `json:"trigger" yaml:"trigger"`
	DebounceMs     int                 `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
	DependsOn      []string            `json:"dependsOn" yaml:"dependsOn"`
}

// PropertyDerivationCollection indexes property derivation entries by field.
type PropertyDerivationCollection struct {
	Entries []*PropertyDerivationEntry            `json:"entries" yaml:"entries"`
	ByField map[string][]*PropertyDerivationEntry `json:"-" yaml:"-"`
}

// PropertyDerivations collects logic entries of type propertyDerivation.
// Inside array items the field key is "<arrayKey>.$.<key>": overrides are
// applied per rendered instance.
func PropertyDerivations(fields []*formskema.FieldDef) PropertyDerivationCollection {
	var entries []*PropertyDerivationEntry
	for v := range formskema.Walk(fields, "", formskema.WalkArrayTemplates) {
		if v.Field.Key == "" {
			continue
		}
		for _, lc := range v.Field.Logic {
			if lc.Type != formskema.LogicPropertyDerivation {
				continue
			}
			e := &PropertyDerivationEntry{
				FieldKey:       v.InstancePath(),
				TargetProperty: lc.TargetProperty,
				Condition:      conditionOrTrue(lc.Condition),
			}
			e.Expression, e.Value, e.FunctionName = pickComputation(lc)
			e.Trigger, e.DebounceMs = trigger(lc)
			e.DependsOn = dependencies(lc.DependsOn, e.Expression, e.FunctionName, lc.Condition)
			entries = append(entries, e)
		}
	}
	return NewPropertyDerivationCollection(entries)
}

// NewPropertyDerivationCollection builds the lookup map over entries.
func NewPropertyDerivationCollection(entries []*PropertyDerivationEntry) PropertyDerivationCollection {
	if entries == nil {
		entries = []*PropertyDerivationEntry{}
	}
	c := PropertyDerivationCollection{
		Entries: entries,
		ByField: map[string][]*PropertyDerivationEntry{},
	}
	for _, e := range entries {
		c.ByField[e.FieldKey] = append(c.ByField[e.FieldKey], e)
	}
	return c
}

// AffectedBy returns the entries that must be re-evaluated when the form
// value at path changes, in entry order.
func (c PropertyDerivationCollection) AffectedBy(path string) []*PropertyDerivationEntry {
	var out []*PropertyDerivationEntry
	for _, e := range c.Entries {
		if dependsOn(e.DependsOn, path) {
			out = append(out, e)
		}
	}
	return out
}
