package normalize

import (
	"slices"
	"strings"
	"sync"

	formskema "github.com/reoring/formskema"
)

// ArrayMeta is the out-of-band metadata of one expanded shorthand array.
type ArrayMeta struct {
	ArrayKey string `json:"arrayKey"`
	// Template builds new items.
	Template formskema.Item `json:"template"`
	// PrimitiveFieldKey is the key of the value field of primitive items.
	PrimitiveFieldKey string `json:"primitiveFieldKey,omitempty"`
	// RemoveButton is the remove affordance for primitive items, which cannot
	// carry it inline without breaking their scalar value. Nil for object
	// items and when the remove button is disabled.
	RemoveButton *formskema.FieldDef `json:"removeButton,omitempty"`
}

// Meta is a side-table from array key to ArrayMeta, written by Fields and
// read by renderers and reconcilers.
type Meta struct {
	mu     sync.RWMutex
	arrays map[string]ArrayMeta
}

// NewMeta returns an empty side-table.
func NewMeta() *Meta { return &Meta{arrays: map[string]ArrayMeta{}} }

// Array returns the metadata recorded for key.
func (m *Meta) Array(key string) (ArrayMeta, bool) {
	if m == nil {
		return ArrayMeta{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.arrays[key]
	return a, ok
}

// Len returns the number of recorded arrays.
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.arrays)
}

// Arrays returns every recorded entry ordered by array key.
func (m *Meta) Arrays() []ArrayMeta {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ArrayMeta, 0, len(m.arrays))
	for _, a := range m.arrays {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b ArrayMeta) int { return strings.Compare(a.ArrayKey, b.ArrayKey) })
	return out
}

func (m *Meta) put(a ArrayMeta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arrays[a.ArrayKey] = a
}
