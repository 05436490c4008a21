package override_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/logger"
	"github.com/reoring/formskema/override"
)

func samePointer(a, b map[string]any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestApply_Identity(t *testing.T) {
	inputs := map[string]any{"label": "Name"}

	got, err := override.Apply(inputs, map[string]any{})
	require.NoError(t, err)
	assert.True(t, samePointer(inputs, got))

	got, err = override.Apply(inputs, nil)
	require.NoError(t, err)
	assert.True(t, samePointer(inputs, got))
}

func TestApply_Immutability(t *testing.T) {
	style := map[string]any{"color": "red", "size": 1}
	inputs := map[string]any{"label": "Name", "style": style, "options": []any{"a", "b"}}

	got, err := override.Apply(inputs, map[string]any{
		"label":       "Full name",
		"style.color": "blue",
		"style.new":   true,
		"options":     []any{"c"},
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"label":   "Full name",
		"style":   map[string]any{"color": "blue", "size": 1, "new": true},
		"options": []any{"c"},
	}, got)
	assert.Equal(t, map[string]any{"label": "Name", "style": map[string]any{"color": "red", "size": 1}, "options": []any{"a", "b"}}, inputs)
	assert.Equal(t, map[string]any{"color": "red", "size": 1}, style)
}

func TestApply_CreatesMissingParent(t *testing.T) {
	got, err := override.Apply(map[string]any{}, map[string]any{"attrs.id": "x"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"attrs": map[string]any{"id": "x"}}, got)
}

func TestApply_ParentThenChild(t *testing.T) {
	repl := map[string]any{"a": 1}

	got, err := override.Apply(map[string]any{}, map[string]any{"style": repl, "style.b": 2})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, got["style"])
	assert.Equal(t, map[string]any{"a": 1}, repl)
}

func TestApply_DepthLimit(t *testing.T) {
	_, err := override.Apply(map[string]any{}, map[string]any{"a.b.c": 1})

	require.Error(t, err)
	assert.True(t, formskema.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "a.b.c")
	assert.Contains(t, err.Error(), "max 2")
}

func TestApply_DevModeMismatch(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: &buf, TimeFormat: "15:04:05"})

	t.Run("Should warn for an absent standard property", func(t *testing.T) {
		buf.Reset()
		_, err := override.Apply(map[string]any{"label": "x"}, map[string]any{"placeholder": "y"},
			override.WithDevMode(true), override.WithLogger(log))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "placeholder")
	})

	t.Run("Should not warn for custom keys", func(t *testing.T) {
		buf.Reset()
		_, err := override.Apply(map[string]any{}, map[string]any{"dataTestId": "y"},
			override.WithDevMode(true), override.WithLogger(log))

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("Should stay quiet outside dev mode", func(t *testing.T) {
		buf.Reset()
		_, err := override.Apply(map[string]any{}, map[string]any{"placeholder": "y"}, override.WithLogger(log))

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestResolveInputs(t *testing.T) {
	f := &formskema.FieldDef{Key: "email", Type: "input", Label: "Email", Props: map[string]any{"placeholder": "you@example.com"}}

	got, err := override.ResolveInputs(f, map[string]any{"disabled": true}, map[string]any{"label": "Work email"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"key":         "email",
		"label":       "Work email",
		"placeholder": "you@example.com",
		"disabled":    true,
	}, got)
	assert.Equal(t, "Email", f.Label)
	assert.Equal(t, map[string]any{"placeholder": "you@example.com"}, f.Props)
}
