// Package logic resolves the hidden and disabled state of fields that do not
// take part in the form value, and evaluates logic conditions.
package logic

import (
	"context"
	"reflect"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/logger"
)

// Context is the input of ResolveHidden and ResolveDisabled.
type Context struct {
	// ExplicitValue is the author-set flag. When non-nil it always wins.
	ExplicitValue *bool
	FieldLogic    []formskema.LogicConfig
	// FormValue reads the live form value. It is called on every
	// recomputation.
	FormValue func() map[string]any
	Evaluator formskema.Evaluator
	Logger    logger.Logger
}

// Producer recomputes a boolean field state. The context bounds expression
// evaluation for that one computation.
type Producer func(ctx context.Context) bool

// ResolveHidden returns a producer for the hidden state of a field.
func ResolveHidden(c Context) Producer { return resolve(c, formskema.LogicHidden) }

// ResolveDisabled returns a producer for the disabled state of a field.
func ResolveDisabled(c Context) Producer { return resolve(c, formskema.LogicDisabled) }

func resolve(c Context, kind string) Producer {
	if c.ExplicitValue != nil {
		v := *c.ExplicitValue
		return func(context.Context) bool { return v }
	}
	var conds []*formskema.Condition
	for i := range c.FieldLogic {
		if c.FieldLogic[i].Type == kind {
			conds = append(conds, c.FieldLogic[i].Condition)
		}
	}
	if len(conds) == 0 {
		return func(context.Context) bool { return false }
	}
	ev := &Evaluation{Evaluator: c.Evaluator, Logger: logger.OrNop(c.Logger)}
	return func(ctx context.Context) bool {
		var fv map[string]any
		if c.FormValue != nil {
			fv = c.FormValue()
		}
		for _, cond := range conds {
			if ev.Eval(ctx, cond, fv) {
				return true
			}
		}
		return false
	}
}

// Evaluation evaluates conditions against a form value.
type Evaluation struct {
	Evaluator formskema.Evaluator
	Logger    logger.Logger
}

// Eval reports whether cond holds. A nil condition holds. Evaluation errors
// are logged and count as false.
func (e *Evaluation) Eval(ctx context.Context, cond *formskema.Condition, formValue map[string]any) bool {
	log := logger.OrNop(e.Logger)
	if cond == nil {
		return true
	}
	if cond.IsLiteral() {
		return *cond.Literal
	}
	switch cond.Type {
	case formskema.ConditionFieldValue:
		cur, _ := ValueAt(formValue, cond.FieldPath)
		ok, err := Compare(cur, Operator(cond.Operator), cond.Value)
		if err != nil {
			log.Error("Condition comparison failed", "field", cond.FieldPath, "operator", cond.Operator, "error", err)
			return false
		}
		return ok
	case formskema.ConditionAnd:
		for i := range cond.Conditions {
			if !e.Eval(ctx, &cond.Conditions[i], formValue) {
				return false
			}
		}
		return true
	case formskema.ConditionOr:
		for i := range cond.Conditions {
			if e.Eval(ctx, &cond.Conditions[i], formValue) {
				return true
			}
		}
		return false
	default:
		if cond.Expression == "" {
			return false
		}
		if e.Evaluator == nil {
			log.Warn("No expression evaluator configured", "expression", cond.Expression)
			return false
		}
		out, err := e.Evaluator.Evaluate(ctx, cond.Expression, formValue)
		if err != nil {
			log.Error("Condition evaluation failed", "expression", cond.Expression, "error", err)
			return false
		}
		return Truthy(out)
	}
}

// Truthy converts an evaluation result to a boolean: false, nil, zero
// numbers, empty strings and empty collections are false.
func Truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}
	if d, ok := toDecimal(v); ok {
		return !d.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
