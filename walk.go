package formskema

import "iter"

// WalkMode selects how array fields are traversed.
type WalkMode int

const (
	// WalkArrayOpaque yields array fields but never enters their items; items
	// are traversed per instance at runtime.
	WalkArrayOpaque WalkMode = iota
	// WalkArrayTemplates enters array items. Paths restart at the item root.
	WalkArrayTemplates
)

// Visit is one field reached by Walk.
type Visit struct {
	Field *FieldDef
	// Path is the dotted path of the field. Inside an array item it is
	// relative to the item. For keyless fields it is the parent's path.
	Path string
	// ArrayKey is the path of the nearest enclosing array when the field sits
	// inside an array item.
	ArrayKey string
}

// InArray reports whether the field sits inside an array item.
func (v Visit) InArray() bool { return v.ArrayKey != "" }

// InstancePath prefixes the path with "<arrayKey>.$." inside array items.
func (v Visit) InstancePath() string {
	if !v.InArray() {
		return v.Path
	}
	return JoinPath(v.ArrayKey, ItemPlaceholder, v.Path)
}

// ResolveTarget rewrites a relative "$.<name>" target to
// "<arrayKey>.$.<name>" inside array items; other targets pass through.
func (v Visit) ResolveTarget(target string) string {
	if !v.InArray() || len(target) < 2 || target[:2] != ItemPlaceholder+"." {
		return target
	}
	return v.ArrayKey + "." + target
}

// Walk yields every field below fields in document order, building dotted
// paths from prefix. Row and page containers contribute no path segment,
// groups contribute their key, and arrays are handled according to mode.
// Keyless fields are yielded with their parent's path and containers among
// them are still entered.
func Walk(fields []*FieldDef, prefix string, mode WalkMode) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		walk(fields, At(prefix), "", mode, yield)
	}
}

// WalkItems is Walk over container items.
func WalkItems(items []Item, prefix string, mode WalkMode) iter.Seq[Visit] {
	var defs []*FieldDef
	for _, it := range items {
		defs = append(defs, it.Defs()...)
	}
	return Walk(defs, prefix, mode)
}

func walk(fields []*FieldDef, prefix PathRef, arrayKey string, mode WalkMode, yield func(Visit) bool) bool {
	for _, f := range fields {
		if f == nil {
			continue
		}
		own := prefix.Field(f.Key)
		if !yield(Visit{Field: f, Path: own.String(), ArrayKey: arrayKey}) {
			return false
		}
		switch {
		case IsTransparent(f.Type):
			if !walk(f.ChildDefs(), prefix, arrayKey, mode, yield) {
				return false
			}
		case f.Type == TypeArray:
			if mode != WalkArrayTemplates {
				continue
			}
			key := own.String()
			if arrayKey != "" {
				key = JoinPath(arrayKey, ItemPlaceholder, key)
			}
			for _, it := range f.Fields {
				if !walk(it.Defs(), Root(), key, mode, yield) {
					return false
				}
			}
		case len(f.Fields) > 0:
			if !walk(f.ChildDefs(), own, arrayKey, mode, yield) {
				return false
			}
		}
	}
	return true
}
