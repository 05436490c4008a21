package formskema

import "context"

// Evaluator evaluates an expression against the current form value. Expected
// to be sandboxed (AST based); it must never execute dynamic code.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string, formValue map[string]any) (any, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, expression string, formValue map[string]any) (any, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, expression string, formValue map[string]any) (any, error) {
	return f(ctx, expression, formValue)
}

// IDGenerator produces stable opaque ids for array items.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// ComponentLoader loads the widget implementation behind a field type.
type ComponentLoader interface {
	Load(ctx context.Context, typeName string) (any, error)
}

// ComponentLoaderFunc adapts a function to ComponentLoader.
type ComponentLoaderFunc func(ctx context.Context, typeName string) (any, error)

func (f ComponentLoaderFunc) Load(ctx context.Context, typeName string) (any, error) {
	return f(ctx, typeName)
}
