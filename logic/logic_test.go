package logic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/logic"
)

func ptr[T any](v T) *T { return &v }

func fieldValue(path, op string, want any) *formskema.Condition {
	return &formskema.Condition{Type: formskema.ConditionFieldValue, FieldPath: path, Operator: op, Value: want}
}

func TestResolve_ExplicitValueWins(t *testing.T) {
	lc := logic.Context{
		ExplicitValue: ptr(false),
		FieldLogic: []formskema.LogicConfig{
			{Type: formskema.LogicHidden, Condition: formskema.Literal(true)},
			{Type: formskema.LogicDisabled, Condition: formskema.Literal(true)},
		},
	}

	assert.False(t, logic.ResolveHidden(lc)(context.Background()))
	assert.False(t, logic.ResolveDisabled(lc)(context.Background()))
}

func TestResolve_Independent(t *testing.T) {
	lc := logic.Context{
		FieldLogic: []formskema.LogicConfig{
			{Type: formskema.LogicHidden, Condition: formskema.Literal(true)},
			{Type: formskema.LogicReadonly, Condition: formskema.Literal(true)},
			{Type: formskema.LogicRequired, Condition: formskema.Literal(true)},
		},
	}

	assert.True(t, logic.ResolveHidden(lc)(context.Background()))
	assert.False(t, logic.ResolveDisabled(lc)(context.Background()))
}

func TestResolve_NoLogic(t *testing.T) {
	assert.False(t, logic.ResolveHidden(logic.Context{})(context.Background()))
}

func TestResolve_ORsConditionsAndRecomputes(t *testing.T) {
	form := map[string]any{"country": "JP", "age": 17}
	lc := logic.Context{
		FormValue: func() map[string]any { return form },
		FieldLogic: []formskema.LogicConfig{
			{Type: formskema.LogicHidden, Condition: fieldValue("country", "equals", "US")},
			{Type: formskema.LogicHidden, Condition: fieldValue("age", "less", 18)},
		},
	}
	hidden := logic.ResolveHidden(lc)

	assert.True(t, hidden(context.Background()))

	form = map[string]any{"country": "JP", "age": 30.0}
	assert.False(t, hidden(context.Background()))

	form = map[string]any{"country": "US", "age": 30.0}
	assert.True(t, hidden(context.Background()))
}

func TestResolve_ExpressionConditions(t *testing.T) {
	t.Run("Should delegate to the evaluator", func(t *testing.T) {
		var got string
		ev := formskema.EvaluatorFunc(func(_ context.Context, expr string, fv map[string]any) (any, error) {
			got = expr
			return fv["locked"], nil
		})
		lc := logic.Context{
			Evaluator: ev,
			FormValue: func() map[string]any { return map[string]any{"locked": true} },
			FieldLogic: []formskema.LogicConfig{{
				Type:      formskema.LogicDisabled,
				Condition: &formskema.Condition{Type: formskema.ConditionJavaScript, Expression: "formValue.locked"},
			}},
		}

		assert.True(t, logic.ResolveDisabled(lc)(context.Background()))
		assert.Equal(t, "formValue.locked", got)
	})

	t.Run("Should treat evaluator errors as false", func(t *testing.T) {
		ev := formskema.EvaluatorFunc(func(context.Context, string, map[string]any) (any, error) {
			return nil, errors.New("boom")
		})
		lc := logic.Context{
			Evaluator: ev,
			FieldLogic: []formskema.LogicConfig{{
				Type:      formskema.LogicHidden,
				Condition: &formskema.Condition{Type: formskema.ConditionCustom, Expression: "x"},
			}},
		}

		assert.False(t, logic.ResolveHidden(lc)(context.Background()))
	})
}

func TestResolve_PassesCallerContext(t *testing.T) {
	type key struct{}
	var seen any
	ev := formskema.EvaluatorFunc(func(ctx context.Context, _ string, _ map[string]any) (any, error) {
		seen = ctx.Value(key{})
		return true, nil
	})
	hidden := logic.ResolveHidden(logic.Context{
		Evaluator:  ev,
		FieldLogic: []formskema.LogicConfig{{Type: formskema.LogicHidden, Condition: &formskema.Condition{Type: formskema.ConditionCustom, Expression: "x"}}},
	})

	assert.True(t, hidden(context.WithValue(context.Background(), key{}, "render-1")))
	assert.Equal(t, "render-1", seen)
}

func TestEvaluation_Composite(t *testing.T) {
	fv := map[string]any{"a": 1, "b": "x"}
	e := &logic.Evaluation{}

	and := &formskema.Condition{Type: formskema.ConditionAnd, Conditions: []formskema.Condition{
		*fieldValue("a", "equals", 1.0),
		*fieldValue("b", "equals", "x"),
	}}
	or := &formskema.Condition{Type: formskema.ConditionOr, Conditions: []formskema.Condition{
		*fieldValue("a", "equals", 2),
		*fieldValue("b", "startsWith", "x"),
	}}

	assert.True(t, e.Eval(context.Background(), and, fv))
	assert.True(t, e.Eval(context.Background(), or, fv))
	assert.True(t, e.Eval(context.Background(), nil, fv))
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name string
		cur  any
		op   logic.Operator
		want any
		out  bool
	}{
		{"int equals float", 3, logic.OpEquals, 3.0, true},
		{"strings are not numeric", "3", logic.OpEquals, 3, false},
		{"not equals", "a", logic.OpNotEquals, "b", true},
		{"greater", 10, logic.OpGreater, 9.5, true},
		{"less numeric string", "2.5", logic.OpLess, 3, true},
		{"greater or equal", 3, logic.OpGreaterOrEqual, 3, true},
		{"less or equal", 4, logic.OpLessOrEqual, 3, false},
		{"ordered on non-numbers", "abc", logic.OpGreater, 1, false},
		{"contains substring", "hello", logic.OpContains, "ell", true},
		{"contains element", []any{"a", 2.0}, logic.OpContains, 2, true},
		{"ends with", "file.go", logic.OpEndsWith, ".go", true},
		{"matches", "abc-123", logic.OpMatches, `^\w+-\d+$`, true},
		{"unknown operator", 1, logic.Operator("between"), 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := logic.Compare(tc.cur, tc.op, tc.want)

			require.NoError(t, err)
			assert.Equal(t, tc.out, got)
		})
	}

	t.Run("Should report invalid patterns", func(t *testing.T) {
		_, err := logic.Compare("x", logic.OpMatches, "(")

		assert.Error(t, err)
	})
}

func TestValueAt(t *testing.T) {
	fv := map[string]any{
		"address": map[string]any{"city": "Tokyo"},
		"items":   []any{map[string]any{"qty": 2}},
	}

	v, ok := logic.ValueAt(fv, "address.city")
	assert.True(t, ok)
	assert.Equal(t, "Tokyo", v)

	v, ok = logic.ValueAt(fv, "items.0.qty")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = logic.ValueAt(fv, "address.zip")
	assert.False(t, ok)
}

func TestTruthy(t *testing.T) {
	assert.False(t, logic.Truthy(nil))
	assert.False(t, logic.Truthy(""))
	assert.False(t, logic.Truthy(0))
	assert.False(t, logic.Truthy([]any{}))
	assert.True(t, logic.Truthy("no"))
	assert.True(t, logic.Truthy(int64(2)))
	assert.True(t, logic.Truthy(map[string]any{"a": 1}))
}
