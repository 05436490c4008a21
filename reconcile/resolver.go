package reconcile

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"

	formskema "github.com/reoring/formskema"
)

// ItemRequest asks for one array item to be resolved.
type ItemRequest struct {
	ArrayKey string
	ID       string
	Index    int
	Template formskema.Item
	Value    any
}

// ResolvedItem is an array item ready to render.
type ResolvedItem struct {
	ID string
	// Index is the position of the item's value in the array value.
	Index int
	// Template is the template the item was created with.
	Template formskema.Item
	// Suffix is appended to every key in Fields.
	Suffix string
	Fields formskema.Item
	// Components maps each field type in the item to its loaded component.
	Components map[string]any
	Value      any
}

// ItemResolver resolves array items. It may be called concurrently.
type ItemResolver interface {
	Resolve(ctx context.Context, req ItemRequest) (ResolvedItem, error)
}

// ItemResolverFunc adapts a function to ItemResolver.
type ItemResolverFunc func(ctx context.Context, req ItemRequest) (ResolvedItem, error)

func (f ItemResolverFunc) Resolve(ctx context.Context, req ItemRequest) (ResolvedItem, error) {
	return f(ctx, req)
}

// KSUIDGenerator generates sortable, globally unique item ids.
type KSUIDGenerator struct{}

func (KSUIDGenerator) NewID() string { return ksuid.New().String() }

// DefaultResolver suffixes the item's keys and loads the component of every
// field type the item uses.
type DefaultResolver struct {
	Loader formskema.ComponentLoader
	// NewSuffix defaults to the package NewSuffix.
	NewSuffix func() string
}

func (r *DefaultResolver) Resolve(ctx context.Context, req ItemRequest) (ResolvedItem, error) {
	newSuffix := r.NewSuffix
	if newSuffix == nil {
		newSuffix = NewSuffix
	}
	suffix := newSuffix()
	item := ResolvedItem{
		ID:       req.ID,
		Index:    req.Index,
		Template: req.Template,
		Suffix:   suffix,
		Fields:   SuffixItem(req.Template, suffix),
		Value:    req.Value,
	}
	if r.Loader == nil {
		return item, nil
	}
	item.Components = map[string]any{}
	for v := range formskema.WalkItems([]formskema.Item{req.Template}, "", formskema.WalkArrayTemplates) {
		typ := v.Field.Type
		if _, done := item.Components[typ]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return ResolvedItem{}, err
		}
		c, err := r.Loader.Load(ctx, typ)
		if err != nil {
			return ResolvedItem{}, fmt.Errorf("load component %q: %w", typ, err)
		}
		item.Components[typ] = c
	}
	return item, nil
}
