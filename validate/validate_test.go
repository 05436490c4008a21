package validate_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/logger"
	"github.com/reoring/formskema/validate"
)

func input(key string) *formskema.FieldDef {
	return &formskema.FieldDef{Key: key, Type: "input"}
}

func TestTree_DuplicateKeyScoping(t *testing.T) {
	t.Run("Should allow a key repeated inside an array item", func(t *testing.T) {
		tree := []*formskema.FieldDef{
			input("name"),
			{Key: "people", Type: formskema.TypeArray, Fields: []formskema.Item{
				formskema.Object(input("name"), input("age")),
				formskema.Object(input("name"), input("age")),
			}},
		}

		_, err := validate.Tree(tree, formskema.TypeRegistry{}, nil)

		assert.NoError(t, err)
	})

	t.Run("Should reject a key repeated outside arrays", func(t *testing.T) {
		tree := []*formskema.FieldDef{
			input("name"),
			{Type: formskema.TypeRow, Fields: formskema.Children(input("name"), input("email"), input("email"))},
		}

		rep, err := validate.Tree(tree, formskema.TypeRegistry{}, nil)

		require.Error(t, err)
		assert.True(t, formskema.IsConfigurationError(err))
		assert.Equal(t, []string{"name", "email"}, rep.DuplicateKeys)
		assert.Contains(t, err.Error(), formskema.ConfigurationErrorPrefix)
		assert.Contains(t, err.Error(), "name, email")
	})

	t.Run("Should reject a key repeated across groups", func(t *testing.T) {
		tree := []*formskema.FieldDef{
			input("name"),
			{Key: "billing", Type: formskema.TypeGroup, Fields: formskema.Children(input("street"), input("name"))},
			{Key: "shipping", Type: formskema.TypeGroup, Fields: formskema.Children(input("street"))},
		}

		rep, err := validate.Tree(tree, formskema.TypeRegistry{}, nil)

		require.Error(t, err)
		assert.True(t, formskema.IsConfigurationError(err))
		assert.Equal(t, []string{"name", "street"}, rep.DuplicateKeys)
		assert.Contains(t, err.Error(), "name, street")
	})
}

func TestTree_UnregisteredTypes(t *testing.T) {
	t.Run("Should warn once with every unregistered type", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: &buf, TimeFormat: "15:04:05"})
		tree := []*formskema.FieldDef{
			{Key: "a", Type: "fancy"},
			{Key: "b", Type: "colorpicker"},
			{Key: "c", Type: "fancy"},
			input("d"),
		}

		rep, err := validate.Tree(tree, formskema.DefaultRegistry(), log)

		require.NoError(t, err)
		assert.Equal(t, []string{"colorpicker", "fancy"}, rep.UnregisteredTypes)
		assert.Contains(t, buf.String(), "colorpicker, fancy")
	})

	t.Run("Should skip the check with an empty registry", func(t *testing.T) {
		rep, err := validate.Tree([]*formskema.FieldDef{{Key: "a", Type: "fancy"}}, formskema.TypeRegistry{}, nil)

		require.NoError(t, err)
		assert.Empty(t, rep.UnregisteredTypes)
	})
}

func TestTree_Patterns(t *testing.T) {
	t.Run("Should collect every invalid pattern and return the first", func(t *testing.T) {
		a := input("a")
		a.Pattern = "(abc"
		b := input("b")
		b.Validators = []formskema.ValidatorConfig{{Type: formskema.ValidatorPattern, Value: "[a-"}}
		c := input("c")
		c.Pattern = `^\d{3}$`

		rep, err := validate.Tree([]*formskema.FieldDef{a, b, c}, formskema.TypeRegistry{}, nil)

		require.Error(t, err)
		require.Len(t, rep.InvalidPatterns, 2)
		assert.Equal(t, "a", rep.InvalidPatterns[0].Path)
		assert.Equal(t, "b", rep.InvalidPatterns[1].Path)
		assert.Contains(t, err.Error(), "(abc")
		iss, ok := formskema.AsIssues(err)
		require.True(t, ok)
		assert.Len(t, iss, 2)
	})

	t.Run("Should check patterns inside array items", func(t *testing.T) {
		zip := input("zip")
		zip.Pattern = "(("
		tree := []*formskema.FieldDef{{Key: "addrs", Type: formskema.TypeArray, Fields: []formskema.Item{formskema.Object(zip)}}}

		rep, err := validate.Tree(tree, formskema.TypeRegistry{}, nil)

		require.Error(t, err)
		assert.Equal(t, "addrs.$.zip", rep.InvalidPatterns[0].Path)
	})
}

func TestTree_InvalidField(t *testing.T) {
	t.Run("Should reject fields without a type", func(t *testing.T) {
		_, err := validate.Tree([]*formskema.FieldDef{{Key: "x"}}, formskema.TypeRegistry{}, nil)

		require.Error(t, err)
		assert.True(t, formskema.IsConfigurationError(err))
	})
}
