// Package normalize expands shorthand array fields into the canonical tree.
//
// A shorthand array carries a template and an optional list of literal
// values:
//
//	{key: tags, type: array, template: {key: tag, type: input}, value: [a, b]}
//
// It becomes a canonical array with one item per value, an add-button
// sibling, and a remove affordance: inline in each object item, or one
// remove-button sibling for primitive items. Running Fields on canonical
// output returns the same tree and rebuilds the same side-table from the
// button siblings.
package normalize

import (
	"fmt"

	"github.com/mohae/deepcopy"

	formskema "github.com/reoring/formskema"
)

// Generated button keys.
const (
	AddButtonSuffix    = "__add"
	RemoveButtonSuffix = "__remove"
)

// Fields returns a normalized copy of fields and the side-table of expanded
// arrays. The input tree is not modified.
func Fields(fields []*formskema.FieldDef) ([]*formskema.FieldDef, *Meta, error) {
	meta := NewMeta()
	out, err := normalizeList(fields, meta)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

func normalizeList(fields []*formskema.FieldDef, meta *Meta) ([]*formskema.FieldDef, error) {
	if fields == nil {
		return nil, nil
	}
	buttons := siblingButtons(fields)
	out := make([]*formskema.FieldDef, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		if f.IsShorthandArray() {
			expanded, err := expandArray(f, meta)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		c := *f
		itemMeta := meta
		if f.Type == formskema.TypeArray {
			// Arrays nested in items are keyed per rendered instance.
			itemMeta = NewMeta()
			if b, ok := buttons[f.Key]; ok && f.Key != "" {
				meta.put(b.rebuild(f.Key))
			}
		}
		items, err := normalizeItems(f.Fields, itemMeta)
		if err != nil {
			return nil, err
		}
		c.Fields = items
		out = append(out, &c)
	}
	return out, nil
}

// arrayButtons are the generated buttons of one canonical array found among
// its siblings.
type arrayButtons struct {
	add    *formskema.FieldDef
	remove *formskema.FieldDef
}

func siblingButtons(fields []*formskema.FieldDef) map[string]arrayButtons {
	out := map[string]arrayButtons{}
	for _, f := range fields {
		if f == nil || f.ArrayKey == "" {
			continue
		}
		b := out[f.ArrayKey]
		switch f.Type {
		case formskema.TypeAddArrayItem:
			b.add = f
		case formskema.TypeRemoveArrayItem:
			b.remove = f
		default:
			continue
		}
		out[f.ArrayKey] = b
	}
	return out
}

// rebuild recovers the ArrayMeta of an already expanded array. The template
// comes from the add button, or from the primitive remove button when adding
// is disabled.
func (b arrayButtons) rebuild(key string) ArrayMeta {
	am := ArrayMeta{ArrayKey: key}
	switch {
	case b.add != nil && b.add.Template != nil:
		am.Template = cloneItem(*b.add.Template)
	case b.remove != nil && b.remove.Template != nil:
		am.Template = cloneItem(*b.remove.Template)
	}
	if b.remove != nil {
		am.RemoveButton = cloneField(b.remove)
	}
	if !am.Template.IsObject() && am.Template.Field != nil {
		am.PrimitiveFieldKey = am.Template.Field.Key
	}
	return am
}

// normalizeItems keeps runs of single items together so that an expanded
// array and its button siblings are seen side by side.
func normalizeItems(items []formskema.Item, meta *Meta) ([]formskema.Item, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]formskema.Item, 0, len(items))
	var run []*formskema.FieldDef
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		defs, err := normalizeList(run, meta)
		if err != nil {
			return err
		}
		out = append(out, formskema.Children(defs...)...)
		run = nil
		return nil
	}
	for _, it := range items {
		if !it.IsObject() {
			if it.Field != nil {
				run = append(run, it.Field)
			}
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		defs, err := normalizeList(it.Object, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, formskema.Object(defs...))
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func expandArray(f *formskema.FieldDef, meta *Meta) ([]*formskema.FieldDef, error) {
	if len(f.Fields) > 0 {
		return nil, formskema.NewConfigurationError("array %q: template and fields cannot be combined", f.Key)
	}
	tmpl, err := normalizeTemplate(f)
	if err != nil {
		return nil, err
	}
	values, err := literalValues(f)
	if err != nil {
		return nil, err
	}

	arr := *f
	arr.Template = nil
	arr.AddButton = nil
	arr.RemoveButton = nil
	arr.Value = nil
	arr.ValuePresence = 0
	arr.Fields = make([]formskema.Item, 0, len(values))

	am := ArrayMeta{ArrayKey: f.Key, Template: cloneItem(tmpl)}
	var remove *formskema.FieldDef
	if f.RemoveButton.Enabled() {
		remove = button(f.Key+RemoveButtonSuffix, formskema.TypeRemoveArrayItem, f.Key, f.RemoveButton, nil)
		if !tmpl.IsObject() {
			t := cloneItem(tmpl)
			remove.Template = &t
		}
	}
	if tmpl.IsObject() {
		for i, v := range values {
			obj, ok := v.(map[string]any)
			if !ok && v != nil {
				return nil, formskema.NewConfigurationError("array %q: value at index %d must be an object for an object template", f.Key, i)
			}
			item := cloneItem(tmpl)
			mergeObject(item.Object, obj)
			if remove != nil {
				item.Object = append(item.Object, cloneField(remove))
			}
			arr.Fields = append(arr.Fields, item)
		}
	} else {
		am.PrimitiveFieldKey = tmpl.Field.Key
		am.RemoveButton = remove
		for _, v := range values {
			item := cloneItem(tmpl)
			setValue(item.Field, v)
			arr.Fields = append(arr.Fields, item)
		}
	}
	meta.put(am)

	out := []*formskema.FieldDef{&arr}
	if f.AddButton.Enabled() {
		t := cloneItem(tmpl)
		add := button(f.Key+AddButtonSuffix, formskema.TypeAddArrayItem, f.Key, f.AddButton, &t)
		add.Logic = append([]formskema.LogicConfig(nil), f.Logic...)
		out = append(out, add)
	}
	if am.RemoveButton != nil {
		out = append(out, cloneField(am.RemoveButton))
	}
	return out, nil
}

// normalizeTemplate expands shorthand arrays nested in the template. The
// metadata of those nested arrays is not recorded.
func normalizeTemplate(f *formskema.FieldDef) (formskema.Item, error) {
	t := *f.Template
	if t.IsObject() {
		defs, err := normalizeList(t.Object, NewMeta())
		if err != nil {
			return formskema.Item{}, err
		}
		return formskema.Object(defs...), nil
	}
	if t.Field == nil {
		return formskema.Item{}, formskema.NewConfigurationError("array %q: template must be a field or a list of fields", f.Key)
	}
	defs, err := normalizeList([]*formskema.FieldDef{t.Field}, NewMeta())
	if err != nil {
		return formskema.Item{}, err
	}
	if len(defs) != 1 {
		return formskema.Item{}, formskema.NewConfigurationError("array %q: primitive template must expand to a single field", f.Key)
	}
	return formskema.Single(defs[0]), nil
}

func literalValues(f *formskema.FieldDef) ([]any, error) {
	switch v := f.Value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return nil, formskema.NewConfigurationError("array %q: value must be a list, got %T", f.Key, f.Value)
	}
}

func button(key, typ, arrayKey string, spec *formskema.ButtonSpec, tmpl *formskema.Item) *formskema.FieldDef {
	b := &formskema.FieldDef{Key: key, Type: typ, ArrayKey: arrayKey, Template: tmpl}
	if spec != nil {
		b.Label = spec.Label
		if spec.Props != nil {
			b.Props = deepcopy.Copy(spec.Props).(map[string]any)
		}
	}
	return b
}

func mergeObject(defs []*formskema.FieldDef, obj map[string]any) {
	for _, d := range defs {
		switch {
		case formskema.IsTransparent(d.Type) || (d.Key == "" && len(d.Fields) > 0):
			mergeObject(d.ChildDefs(), obj)
		case d.Key == "":
		default:
			v, ok := obj[d.Key]
			if !ok {
				continue
			}
			if sub, isMap := v.(map[string]any); isMap && d.Type == formskema.TypeGroup {
				mergeObject(d.ChildDefs(), sub)
				continue
			}
			setValue(d, v)
		}
	}
}

func setValue(f *formskema.FieldDef, v any) {
	if v == nil {
		f.SetNullValue()
		return
	}
	f.Value = v
	f.ValuePresence |= formskema.PresenceSeen
}

func cloneItem(it formskema.Item) formskema.Item {
	if it.IsObject() {
		defs := make([]*formskema.FieldDef, 0, len(it.Object))
		for _, d := range it.Object {
			defs = append(defs, cloneField(d))
		}
		return formskema.Object(defs...)
	}
	return formskema.Single(cloneField(it.Field))
}

func cloneField(f *formskema.FieldDef) *formskema.FieldDef {
	c, ok := deepcopy.Copy(f).(*formskema.FieldDef)
	if !ok {
		panic(fmt.Sprintf("normalize: unexpected copy of %T", f))
	}
	return c
}
