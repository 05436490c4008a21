package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/source"
)

const yamlTree = `
fields:
  - key: name
    type: input
    value: null
  - key: tags
    type: array
    template:
      key: tag
      type: input
    value: [a, b]
    addButton: false
  - key: people
    type: array
    fields:
      - - key: first
          type: input
    logic:
      - type: hidden
        condition: true
`

const jsonTree = `[
  {"key": "agree", "type": "checkbox", "hidden": false},
  {"key": "address", "type": "group", "fields": [
    {"key": "city", "type": "input", "logic": [
      {"type": "disabled", "condition": {"type": "fieldValue", "fieldPath": "agree", "operator": "equals", "value": false}}
    ]}
  ]}
]`

func TestParseTree_YAML(t *testing.T) {
	fields, err := source.ParseTree([]byte(yamlTree), source.FormatYAML)

	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, formskema.ValueNull, fields[0].ValueState())

	tags := fields[1]
	assert.True(t, tags.IsShorthandArray())
	assert.Equal(t, []any{"a", "b"}, tags.Value)
	require.NotNil(t, tags.AddButton)
	assert.False(t, tags.AddButton.Enabled())
	assert.Equal(t, "tag", tags.Template.Field.Key)

	people := fields[2]
	require.Len(t, people.Fields, 1)
	assert.True(t, people.Fields[0].IsObject())
	assert.Equal(t, "first", people.Fields[0].Object[0].Key)
	require.Len(t, people.Logic, 1)
	assert.True(t, people.Logic[0].Condition.IsLiteral())
}

func TestParseTree_JSON(t *testing.T) {
	fields, err := source.ParseTree([]byte(jsonTree), source.FormatJSON)

	require.NoError(t, err)
	require.Len(t, fields, 2)
	require.NotNil(t, fields[0].Hidden)
	assert.False(t, *fields[0].Hidden)
	city := fields[1].Fields[0].Field
	assert.Equal(t, "city", city.Key)
	cond := city.Logic[0].Condition
	assert.Equal(t, formskema.ConditionFieldValue, cond.Type)
	assert.Equal(t, "agree", cond.FieldPath)
	assert.Equal(t, false, cond.Value)
}

func TestParseTree_JSONDocument(t *testing.T) {
	fields, err := source.ParseTree([]byte(`{"fields": [{"key": "a", "type": "input", "value": null}]}`), source.FormatJSON)

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, formskema.ValueNull, fields[0].ValueState())
}

func TestParseTree_StrictKeys(t *testing.T) {
	data := []byte(`[{"key": "a", "type": "input", "props": {"x": 1, "x": 2}}]`)

	_, err := source.ParseTree(data, source.FormatJSON)
	require.NoError(t, err)

	_, err = source.ParseTree(data, source.FormatJSON, source.WithStrictKeys())
	require.Error(t, err)
	assert.True(t, formskema.IsConfigurationError(err))
	iss, ok := formskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/0/props", iss[0].Path)
}

func TestDuplicateKeys(t *testing.T) {
	t.Run("Should find duplicates at every depth", func(t *testing.T) {
		iss, err := source.DuplicateKeys([]byte(`{"a": 1, "b": [{"c": 1, "c": 2}], "a": 3}`))

		require.NoError(t, err)
		require.Len(t, iss, 2)
		assert.Equal(t, "/b/0", iss[0].Path)
		assert.Equal(t, "/", iss[1].Path)
	})

	t.Run("Should allow equal keys in sibling objects", func(t *testing.T) {
		iss, err := source.DuplicateKeys([]byte(`[{"k": 1}, {"k": 2}]`))

		require.NoError(t, err)
		assert.Empty(t, iss)
	})
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, source.FormatJSON, source.DetectFormat("form.json", nil))
	assert.Equal(t, source.FormatYAML, source.DetectFormat("form.yml", nil))
	assert.Equal(t, source.FormatJSON, source.DetectFormat("-", []byte("  [1]")))
	assert.Equal(t, source.FormatYAML, source.DetectFormat("", []byte("fields: []")))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	treePath := filepath.Join(dir, "form.yaml")
	valuesPath := filepath.Join(dir, "values.json")
	require.NoError(t, os.WriteFile(treePath, []byte(yamlTree), 0o600))
	require.NoError(t, os.WriteFile(valuesPath, []byte(`{"name": "Ada", "tags": ["x"]}`), 0o600))

	fields, err := source.LoadTreeFile(treePath)
	require.NoError(t, err)
	assert.Len(t, fields, 3)

	values, err := source.LoadValuesFile(valuesPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada", "tags": []any{"x"}}, values)

	_, err = source.LoadTreeFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
