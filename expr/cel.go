// Package expr evaluates logic and derivation expressions with CEL.
//
// Expressions see the live form value as the variable formValue:
//
//	formValue.price * formValue.quantity
//	has(formValue.address) && formValue.address.country == "JP"
//
// Programs are sandboxed by CEL's type checker and bounded by a cost limit.
package expr

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// FormValueVar is the variable name bound to the form value.
const FormValueVar = "formValue"

const (
	DefaultCostLimit = 1000
	DefaultCacheSize = 1000
)

// CELEvaluator compiles and runs CEL expressions. It is safe for concurrent
// use.
type CELEvaluator struct {
	env          *cel.Env
	costLimit    uint64
	programCache *ristretto.Cache[string, cel.Program]
}

// Option configures a CELEvaluator.
type Option func(*CELEvaluator) error

// WithCostLimit bounds the runtime cost of one evaluation.
func WithCostLimit(limit uint64) Option {
	return func(e *CELEvaluator) error {
		if limit == 0 {
			return fmt.Errorf("cost limit must be positive")
		}
		e.costLimit = limit
		return nil
	}
}

// WithCacheSize sets the number of compiled programs kept.
func WithCacheSize(size int64) Option {
	return func(e *CELEvaluator) error {
		if size <= 0 {
			return fmt.Errorf("cache size must be positive")
		}
		cache, err := newProgramCache(size)
		if err != nil {
			return err
		}
		if e.programCache != nil {
			e.programCache.Close()
		}
		e.programCache = cache
		return nil
	}
}

// NewCELEvaluator returns an evaluator with a program cache.
func NewCELEvaluator(opts ...Option) (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(FormValueVar, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	e := &CELEvaluator{env: env, costLimit: DefaultCostLimit}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.programCache == nil {
		cache, err := newProgramCache(DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		e.programCache = cache
	}
	return e, nil
}

func newProgramCache(size int64) (*ristretto.Cache[string, cel.Program], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, cel.Program]{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}
	return cache, nil
}

// Close releases the program cache.
func (e *CELEvaluator) Close() {
	if e.programCache != nil {
		e.programCache.Close()
	}
}

// Evaluate runs expression against formValue and returns a native Go value.
func (e *CELEvaluator) Evaluate(ctx context.Context, expression string, formValue map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prg, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	if formValue == nil {
		formValue = map[string]any{}
	}
	out, _, err := prg.ContextEval(ctx, map[string]any{FormValueVar: formValue})
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expression, err)
	}
	return native(out)
}

// EvaluateBool runs expression and requires a boolean result.
func (e *CELEvaluator) EvaluateBool(ctx context.Context, expression string, formValue map[string]any) (bool, error) {
	v, err := e.Evaluate(ctx, expression, formValue)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return a boolean, got %T", expression, v)
	}
	return b, nil
}

func (e *CELEvaluator) program(expression string) (cel.Program, error) {
	if prg, ok := e.programCache.Get(expression); ok {
		return prg, nil
	}
	ast, iss := e.env.Compile(expression)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, iss.Err())
	}
	prg, err := e.env.Program(ast,
		cel.CostLimit(e.costLimit),
		cel.InterruptCheckFrequency(100),
	)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expression, err)
	}
	e.programCache.Set(expression, prg, 1)
	return prg, nil
}

var (
	anySliceType = reflect.TypeOf([]any{})
	anyMapType   = reflect.TypeOf(map[string]any{})
)

func native(v ref.Val) (any, error) {
	switch v.Type() {
	case types.ListType:
		return v.ConvertToNative(anySliceType)
	case types.MapType:
		return v.ConvertToNative(anyMapType)
	case types.NullType:
		return nil, nil
	}
	return v.Value(), nil
}
