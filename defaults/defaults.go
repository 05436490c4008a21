// Package defaults synthesizes the initial form value from a field tree.
package defaults

import (
	formskema "github.com/reoring/formskema"
)

// Form computes the default value object of a whole tree. Flatten-mode
// fields splice their children into the object; excluded fields are skipped.
func Form(fields []*formskema.FieldDef, reg formskema.TypeRegistry) map[string]any {
	out := map[string]any{}
	collectInto(out, fields, reg)
	return out
}

// Compute returns the default value of one field. The boolean is false when
// the field contributes no value at all.
func Compute(f *formskema.FieldDef, reg formskema.TypeRegistry) (any, bool) {
	if f == nil {
		return nil, false
	}
	mode := reg.Mode(f.Type)
	switch {
	case mode == formskema.ValueExclude:
		return nil, false
	case mode == formskema.ValueFlatten && len(f.Fields) > 0:
		return flatten(f, reg)
	case f.Type != formskema.TypeArray && len(f.Fields) > 0:
		obj := map[string]any{}
		collectInto(obj, f.ChildDefs(), reg)
		if len(obj) == 0 {
			return nil, false
		}
		return obj, true
	case f.Type == formskema.TypeGroup:
		return nil, false
	}
	if v, ok := explicit(f); ok {
		return v, true
	}
	if f.Type == formskema.TypeArray {
		return arrayItems(f, reg), true
	}
	return zeroFor(f.Type), true
}

func explicit(f *formskema.FieldDef) (any, bool) {
	if f.DefaultValue != nil {
		return f.DefaultValue, true
	}
	switch f.ValueState() {
	case formskema.ValueSet:
		return f.Value, true
	case formskema.ValueNull:
		if formskema.IsCheckboxLike(f.Type) {
			return false, true
		}
		return "", true
	default:
		return nil, false
	}
}

func zeroFor(typeName string) any {
	switch {
	case formskema.IsCheckboxLike(typeName):
		return false
	case typeName == formskema.TypeArray:
		return []any{}
	default:
		return ""
	}
}

// flatten applies the single-child rule: one primitive child surfaces bare,
// one composite child keeps its key, several children form an object.
func flatten(f *formskema.FieldDef, reg formskema.TypeRegistry) (any, bool) {
	type kv struct {
		key string
		val any
	}
	var vals []kv
	for _, c := range f.ChildDefs() {
		if v, ok := Compute(c, reg); ok {
			vals = append(vals, kv{c.Key, v})
		}
	}
	switch len(vals) {
	case 0:
		return nil, false
	case 1:
		if !isComposite(vals[0].val) {
			return vals[0].val, true
		}
		return map[string]any{vals[0].key: vals[0].val}, true
	}
	obj := map[string]any{}
	collectInto(obj, f.ChildDefs(), reg)
	return obj, true
}

func collectInto(obj map[string]any, fields []*formskema.FieldDef, reg formskema.TypeRegistry) {
	for _, c := range fields {
		if c == nil {
			continue
		}
		switch reg.Mode(c.Type) {
		case formskema.ValueExclude:
			continue
		case formskema.ValueFlatten:
			collectInto(obj, c.ChildDefs(), reg)
			continue
		}
		if c.Key == "" {
			continue
		}
		if v, ok := Compute(c, reg); ok {
			obj[c.Key] = v
		}
	}
}

// arrayItems computes each item independently: primitive items contribute
// their bare value, object items a merged object.
func arrayItems(f *formskema.FieldDef, reg formskema.TypeRegistry) []any {
	out := make([]any, 0, len(f.Fields))
	for _, it := range f.Fields {
		if it.IsObject() {
			obj := map[string]any{}
			collectInto(obj, it.Object, reg)
			out = append(out, obj)
			continue
		}
		if v, ok := Compute(it.Field, reg); ok {
			out = append(out, v)
		}
	}
	return out
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
