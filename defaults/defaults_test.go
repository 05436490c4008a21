package defaults_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/defaults"
)

func field(key, typ string) *formskema.FieldDef {
	return &formskema.FieldDef{Key: key, Type: typ}
}

func TestCompute_GroupRoundTrip(t *testing.T) {
	reg := formskema.DefaultRegistry()
	root := &formskema.FieldDef{
		Key: "root", Type: formskema.TypeGroup,
		Fields: formskema.Children(
			field("name", "input"),
			&formskema.FieldDef{
				Key: "address", Type: formskema.TypeGroup,
				Fields: formskema.Children(field("street", "input"), field("city", "input")),
			},
		),
	}

	got, ok := defaults.Compute(root, reg)

	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"name":    "",
		"address": map[string]any{"street": "", "city": ""},
	}, got)
}

func TestCompute_Array(t *testing.T) {
	reg := formskema.DefaultRegistry()

	t.Run("Should return explicit primitive values", func(t *testing.T) {
		arr := &formskema.FieldDef{Key: "tags", Type: formskema.TypeArray, Value: []any{"a", "b"}}

		got, ok := defaults.Compute(arr, reg)

		require.True(t, ok)
		assert.Equal(t, []any{"a", "b"}, got)
	})

	t.Run("Should compute heterogeneous items", func(t *testing.T) {
		tag := field("tag", "input")
		tag.Value = "x"
		arr := &formskema.FieldDef{Key: "mixed", Type: formskema.TypeArray, Fields: []formskema.Item{
			formskema.Single(tag),
			formskema.Object(field("name", "input"), field("ok", formskema.TypeCheckbox), field("remove", formskema.TypeRemoveArrayItem)),
		}}

		got, ok := defaults.Compute(arr, reg)

		require.True(t, ok)
		assert.Equal(t, []any{"x", map[string]any{"name": "", "ok": false}}, got)
	})

	t.Run("Should fall back to an empty slice", func(t *testing.T) {
		got, ok := defaults.Compute(field("empty", formskema.TypeArray), reg)

		require.True(t, ok)
		assert.Equal(t, []any{}, got)
	})
}

func TestCompute_ResolutionOrder(t *testing.T) {
	reg := formskema.DefaultRegistry()

	t.Run("Should return undefined for excluded types", func(t *testing.T) {
		f := field("info", "text")
		f.Value = "ignored"

		_, ok := defaults.Compute(f, reg)

		assert.False(t, ok)
	})

	t.Run("Should prefer defaultValue over value", func(t *testing.T) {
		f := field("n", "input")
		f.Value = "v"
		f.DefaultValue = "d"

		got, _ := defaults.Compute(f, reg)

		assert.Equal(t, "d", got)
	})

	t.Run("Should map explicit null to the type null default", func(t *testing.T) {
		cb := field("agree", formskema.TypeCheckbox)
		cb.SetNullValue()
		in := field("name", "input")
		in.SetNullValue()

		cv, _ := defaults.Compute(cb, reg)
		iv, _ := defaults.Compute(in, reg)

		assert.Equal(t, false, cv)
		assert.Equal(t, "", iv)
	})

	t.Run("Should treat an empty group as undefined", func(t *testing.T) {
		_, ok := defaults.Compute(field("g", formskema.TypeGroup), reg)

		assert.False(t, ok)
	})
}

func TestCompute_Flatten(t *testing.T) {
	reg := formskema.DefaultRegistry()

	t.Run("Should surface a single primitive child bare", func(t *testing.T) {
		row := &formskema.FieldDef{Type: formskema.TypeRow, Fields: formskema.Children(field("a", "input"), field("t", "text"))}

		got, ok := defaults.Compute(row, reg)

		require.True(t, ok)
		assert.Equal(t, "", got)
	})

	t.Run("Should keep the key of a single composite child", func(t *testing.T) {
		row := &formskema.FieldDef{Type: formskema.TypeRow, Fields: formskema.Children(field("tags", formskema.TypeArray))}

		got, ok := defaults.Compute(row, reg)

		require.True(t, ok)
		assert.Equal(t, map[string]any{"tags": []any{}}, got)
	})

	t.Run("Should build an object from several children", func(t *testing.T) {
		row := &formskema.FieldDef{Type: formskema.TypeRow, Fields: formskema.Children(field("a", "input"), field("b", formskema.TypeToggle))}

		got, ok := defaults.Compute(row, reg)

		require.True(t, ok)
		assert.Equal(t, map[string]any{"a": "", "b": false}, got)
	})

	t.Run("Should return undefined without value children", func(t *testing.T) {
		row := &formskema.FieldDef{Type: formskema.TypeRow, Fields: formskema.Children(field("t", "text"))}

		_, ok := defaults.Compute(row, reg)

		assert.False(t, ok)
	})
}

func TestForm(t *testing.T) {
	t.Run("Should splice page and row children into the root", func(t *testing.T) {
		tree := []*formskema.FieldDef{
			{Type: formskema.TypePage, Key: "p1", Fields: formskema.Children(
				&formskema.FieldDef{Type: formskema.TypeRow, Fields: formskema.Children(field("first", "input"), field("last", "input"))},
			)},
			field("submit", "submit"),
			field("newsletter", formskema.TypeCheckbox),
		}

		got := defaults.Form(tree, formskema.DefaultRegistry())

		assert.Equal(t, map[string]any{"first": "", "last": "", "newsletter": false}, got)
	})
}
