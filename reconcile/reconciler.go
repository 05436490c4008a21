package reconcile

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/logger"
)

// Options configures a Reconciler.
type Options struct {
	ArrayKey string
	// Template is the positional default for items with no registered
	// template.
	Template formskema.Item
	Resolver ItemResolver
	IDs      formskema.IDGenerator
	Logger   logger.Logger
	// MaxConcurrency bounds parallel item resolution. Zero means unbounded.
	MaxConcurrency int
}

// Reconciler owns the resolved items of one array.
//
// Every structural operation bumps the version before resolving; a batch
// whose version is stale when it completes is dropped without touching
// visible state.
//
// Items keep the index of the value they were resolved for. An item that
// failed to resolve leaves a gap at its index; the gap is retried by the
// next append or recreate, and the items after it are not renumbered.
type Reconciler struct {
	opts Options

	mu        sync.Mutex
	version   uint64
	length    int
	items     []ResolvedItem
	templates map[string]formskema.Item
	positions map[string]int
	pending   map[int]formskema.Item
	failed    map[int]struct{}
	removed   map[int]struct{}
	recreate  bool
}

// New returns a Reconciler with no items.
func New(opts Options) *Reconciler {
	if opts.IDs == nil {
		opts.IDs = KSUIDGenerator{}
	}
	if opts.Resolver == nil {
		opts.Resolver = &DefaultResolver{}
	}
	return &Reconciler{
		opts:      opts,
		templates: map[string]formskema.Item{},
		positions: map[string]int{},
		pending:   map[int]formskema.Item{},
		failed:    map[int]struct{}{},
		removed:   map[int]struct{}{},
	}
}

// Sync brings the items in line with values and reports the operation it
// applied. A superseded batch reports its operation but changes nothing.
func (r *Reconciler) Sync(ctx context.Context, values []any) (Operation, error) {
	r.mu.Lock()
	op := Classify(r.length, len(values))
	if r.recreate && len(values) > 0 {
		op = Operation{Kind: OpRecreate, End: len(values)}
	}

	switch op.Kind {
	case OpNone:
		r.mu.Unlock()
		return op, nil
	case OpClear:
		r.version++
		r.length = 0
		r.items = nil
		clear(r.templates)
		clear(r.positions)
		clear(r.pending)
		clear(r.failed)
		clear(r.removed)
		r.recreate = false
		r.mu.Unlock()
		return op, nil
	case OpPop:
		r.version++
		r.length = op.Start
		r.items = slices.DeleteFunc(slices.Clone(r.items), func(it ResolvedItem) bool {
			if it.Index < op.Start {
				return false
			}
			delete(r.templates, it.ID)
			delete(r.positions, it.ID)
			return true
		})
		for i := range r.failed {
			if i >= op.Start {
				delete(r.failed, i)
			}
		}
		r.mu.Unlock()
		return op, nil
	}

	r.version++
	v := r.version
	reqs := r.requests(op, values)
	r.mu.Unlock()

	resolved, failed := r.resolveAll(ctx, reqs)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.version != v {
		return op, nil
	}
	log := r.logger(ctx)
	for _, f := range failed {
		log.Error("Failed to resolve array item", "array", r.opts.ArrayKey, "index", f.req.Index, "id", f.req.ID, "error", f.err)
	}
	r.commit(op, reqs, resolved, failed)
	return op, nil
}

// Add registers the template for a new item appended at the end of values
// and syncs.
func (r *Reconciler) Add(ctx context.Context, values []any, template formskema.Item) (Operation, error) {
	r.mu.Lock()
	if len(values) > 0 {
		r.pending[len(values)-1] = template
	}
	r.mu.Unlock()
	return r.Sync(ctx, values)
}

// RemoveAt records that the value at index was removed and syncs against the
// remaining values. Removing the last value is a pop; any other index forces
// a recreate.
func (r *Reconciler) RemoveAt(ctx context.Context, index int, values []any) (Operation, error) {
	r.mu.Lock()
	if index >= 0 && index < r.length-1 {
		r.removed[index] = struct{}{}
		r.recreate = true
	}
	r.mu.Unlock()
	return r.Sync(ctx, values)
}

// Position returns the index of the value the item with id renders.
func (r *Reconciler) Position(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.positions[id]
	return i, ok
}

// TemplateFor returns the template the item with id was created with.
func (r *Reconciler) TemplateFor(id string) (formskema.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	return t, ok
}

// Items returns the resolved items ordered by index.
func (r *Reconciler) Items() []ResolvedItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Version returns the number of structural operations started so far.
func (r *Reconciler) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

func (r *Reconciler) requests(op Operation, values []any) []ItemRequest {
	var reqs []ItemRequest
	switch op.Kind {
	case OpAppend:
		for i := range op.Start {
			if _, retry := r.failed[i]; retry {
				reqs = append(reqs, r.newRequest(i, values[i]))
			}
		}
		for i := op.Start; i < op.End; i++ {
			reqs = append(reqs, r.newRequest(i, values[i]))
		}
	case OpInitial:
		for i := range values {
			reqs = append(reqs, r.newRequest(i, values[i]))
		}
	case OpRecreate:
		byIndex := make(map[int]ResolvedItem, len(r.items))
		for _, it := range r.items {
			byIndex[it.Index] = it
		}
		// Slots are the old indexes that survive the removals, in order.
		// A slot without an item had failed and is resolved afresh.
		var slots []int
		for i := range r.length {
			if _, gone := r.removed[i]; !gone {
				slots = append(slots, i)
			}
		}
		for i := range values {
			if i < len(slots) {
				if it, ok := byIndex[slots[i]]; ok {
					tmpl, ok := r.templates[it.ID]
					if !ok {
						tmpl = r.opts.Template
					}
					reqs = append(reqs, ItemRequest{ArrayKey: r.opts.ArrayKey, ID: it.ID, Index: i, Template: tmpl, Value: values[i]})
					continue
				}
			}
			reqs = append(reqs, r.newRequest(i, values[i]))
		}
	}
	return reqs
}

func (r *Reconciler) newRequest(i int, value any) ItemRequest {
	tmpl, ok := r.pending[i]
	if !ok {
		tmpl = r.opts.Template
	}
	return ItemRequest{ArrayKey: r.opts.ArrayKey, ID: r.opts.IDs.NewID(), Index: i, Template: tmpl, Value: value}
}

type failure struct {
	req ItemRequest
	err error
}

// resolveAll fans out one goroutine per request and joins them. A failing
// item does not affect its siblings.
func (r *Reconciler) resolveAll(ctx context.Context, reqs []ItemRequest) ([]*ResolvedItem, []failure) {
	results := make([]*ResolvedItem, len(reqs))
	errs := make([]error, len(reqs))
	var g errgroup.Group
	if r.opts.MaxConcurrency > 0 {
		g.SetLimit(r.opts.MaxConcurrency)
	}
	for i := range reqs {
		g.Go(func() error {
			it, err := r.opts.Resolver.Resolve(ctx, reqs[i])
			if err != nil {
				errs[i] = err
				return nil
			}
			it.ID, it.Index, it.Template = reqs[i].ID, reqs[i].Index, reqs[i].Template
			results[i] = &it
			return nil
		})
	}
	_ = g.Wait()

	var failed []failure
	for i, err := range errs {
		if err != nil {
			failed = append(failed, failure{req: reqs[i], err: err})
		}
	}
	return results, failed
}

func (r *Reconciler) commit(op Operation, reqs []ItemRequest, resolved []*ResolvedItem, failed []failure) {
	var next []ResolvedItem
	switch op.Kind {
	case OpAppend:
		next = slices.Clone(r.items)
		for _, req := range reqs {
			delete(r.failed, req.Index)
		}
	case OpInitial, OpRecreate:
		clear(r.templates)
		clear(r.positions)
		clear(r.failed)
	}
	for _, it := range resolved {
		if it == nil {
			continue
		}
		next = append(next, *it)
	}
	for _, f := range failed {
		r.failed[f.req.Index] = struct{}{}
	}
	slices.SortFunc(next, func(a, b ResolvedItem) int { return cmp.Compare(a.Index, b.Index) })
	for _, it := range next {
		r.positions[it.ID] = it.Index
		r.templates[it.ID] = it.Template
	}
	r.items = next
	r.length = op.End
	clear(r.pending)
	clear(r.removed)
	r.recreate = false
}

func (r *Reconciler) logger(ctx context.Context) logger.Logger {
	if r.opts.Logger != nil {
		return r.opts.Logger
	}
	return logger.FromContext(ctx)
}
