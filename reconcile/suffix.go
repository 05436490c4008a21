package reconcile

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	formskema "github.com/reoring/formskema"
)

// SuffixLen is the length of a key suffix.
const SuffixLen = 8

const suffixSep = "_"

// NewSuffix returns 8 characters taken from a fresh random UUID.
func NewSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:SuffixLen]
}

// AddSuffix appends the suffix to key.
func AddSuffix(key, suffix string) string {
	if key == "" || suffix == "" {
		return key
	}
	return key + suffixSep + suffix
}

// StripSuffix removes one suffix added by AddSuffix.
func StripSuffix(key, suffix string) string {
	if suffix == "" {
		return key
	}
	return strings.TrimSuffix(key, suffixSep+suffix)
}

// SuffixItem returns a copy of the item with every key suffixed, including
// keys nested in groups, rows, pages and the items of nested arrays, which
// matches AddSuffixToValue. Templates carried by add and remove buttons keep
// their canonical keys.
func SuffixItem(it formskema.Item, suffix string) formskema.Item {
	if it.IsObject() {
		defs := make([]*formskema.FieldDef, 0, len(it.Object))
		for _, d := range it.Object {
			defs = append(defs, SuffixField(d, suffix))
		}
		return formskema.Object(defs...)
	}
	if it.Field == nil {
		return it
	}
	return formskema.Single(SuffixField(it.Field, suffix))
}

// SuffixField returns a suffixed copy of f.
func SuffixField(f *formskema.FieldDef, suffix string) *formskema.FieldDef {
	c, _ := deepcopy.Copy(f).(*formskema.FieldDef)
	suffixInPlace(c, suffix)
	return c
}

func suffixInPlace(f *formskema.FieldDef, suffix string) {
	if f == nil {
		return
	}
	f.Key = AddSuffix(f.Key, suffix)
	f.ArrayKey = AddSuffix(f.ArrayKey, suffix)
	for _, it := range f.Fields {
		for _, d := range it.Defs() {
			suffixInPlace(d, suffix)
		}
	}
}

// AddSuffixToValue returns a copy of v whose map keys carry the suffix at
// every depth.
func AddSuffixToValue(v any, suffix string) any {
	return mapKeys(v, func(k string) string { return AddSuffix(k, suffix) })
}

// StripValue reverses AddSuffixToValue, returning a value keyed by canonical
// field keys.
func StripValue(v any, suffix string) any {
	return mapKeys(v, func(k string) string { return StripSuffix(k, suffix) })
}

func mapKeys(v any, fn func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fn(k)] = mapKeys(e, fn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = mapKeys(e, fn)
		}
		return out
	default:
		return v
	}
}
