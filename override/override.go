// Package override applies dotted-path property overrides to the input record
// a renderer binds to a widget.
package override

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/logger"
)

// MaxDepth is the largest number of path segments an override key may have.
const MaxDepth = 2

// StandardProperties are the input names whose absence from the current
// inputs signals a mistyped override target.
var StandardProperties = map[string]struct{}{
	"label":       {},
	"placeholder": {},
	"hint":        {},
	"description": {},
	"disabled":    {},
	"hidden":      {},
	"readonly":    {},
	"required":    {},
	"options":     {},
	"min":         {},
	"max":         {},
	"step":        {},
	"minLength":   {},
	"maxLength":   {},
	"rows":        {},
	"multiple":    {},
	"className":   {},
	"tooltip":     {},
	"prefix":      {},
	"suffix":      {},
}

type options struct {
	log     logger.Logger
	devMode bool
	field   string
}

// Option configures Apply.
type Option func(*options)

// WithLogger sets the logger used for dev-mode diagnostics.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// WithDevMode enables the mismatch advisory.
func WithDevMode(on bool) Option { return func(o *options) { o.devMode = on } }

// WithField names the field in diagnostics.
func WithField(key string) Option { return func(o *options) { o.field = key } }

// Apply returns inputs with overrides applied.
//
// Empty overrides return inputs itself. Otherwise the result is a shallow
// copy; a "parent.child" key clones parent before assigning child so that
// neither inputs nor any map it holds is modified. Keys with more than one
// dot fail with a ConfigurationError. Slices replace their target wholesale.
func Apply(inputs, overrides map[string]any, opts ...Option) (map[string]any, error) {
	if len(overrides) == 0 {
		return inputs, nil
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.OrNop(o.log)

	out := make(map[string]any, len(inputs)+len(overrides))
	maps.Copy(out, inputs)
	cloned := map[string]bool{}

	for _, path := range sortedKeys(overrides) {
		val := overrides[path]
		segs := strings.Split(path, ".")
		if len(segs) > MaxDepth {
			msg := fmt.Sprintf("%s (depth %d, max %d)",
				i18n.T(formskema.CodeOverrideDepth, map[string]string{"path": path}), len(segs), MaxDepth)
			return nil, &formskema.ConfigurationError{
				Message: msg,
				Issues: formskema.Issues{formskema.At(path).Issue(formskema.CodeOverrideDepth, msg,
					"depth", len(segs), "max", MaxDepth)},
			}
		}
		if o.devMode {
			if _, known := StandardProperties[segs[0]]; known {
				if _, present := inputs[segs[0]]; !present {
					log.Warn(i18n.T(formskema.CodeOverrideMismatch, map[string]string{"path": path}),
						"field", o.field, "path", path)
				}
			}
		}
		if len(segs) == 1 {
			out[path] = val
			continue
		}
		parent, child := segs[0], segs[1]
		if !cloned[parent] {
			next := map[string]any{}
			if m, ok := out[parent].(map[string]any); ok {
				maps.Copy(next, m)
			}
			out[parent] = next
			cloned[parent] = true
		}
		out[parent].(map[string]any)[child] = val
	}
	return out, nil
}

// ResolveInputs builds the input record of a field: its key and label, its
// static props, then derived props, then overrides.
func ResolveInputs(f *formskema.FieldDef, derived, overrides map[string]any, opts ...Option) (map[string]any, error) {
	inputs := make(map[string]any, len(f.Props)+len(derived)+2)
	if f.Key != "" {
		inputs["key"] = f.Key
	}
	if f.Label != "" {
		inputs["label"] = f.Label
	}
	maps.Copy(inputs, f.Props)
	maps.Copy(inputs, derived)
	return Apply(inputs, overrides, append([]Option{WithField(f.Key)}, opts...)...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Whole parents are assigned before their children.
	slices.SortFunc(keys, func(a, b string) int {
		if d := strings.Count(a, ".") - strings.Count(b, "."); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return keys
}
