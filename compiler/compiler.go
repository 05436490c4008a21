// Package compiler runs the static pipeline over a form tree: array
// normalization, configuration checks, rule collection and default values.
package compiler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/collect"
	"github.com/reoring/formskema/defaults"
	"github.com/reoring/formskema/logger"
	"github.com/reoring/formskema/normalize"
	"github.com/reoring/formskema/validate"
)

// DefaultCacheSize is the number of compiled forms kept by default.
const DefaultCacheSize = 128

// Form is the immutable result of compiling a tree. It is shared between
// callers that compile the same shape and must not be modified.
type Form struct {
	Hash                string
	Fields              []*formskema.FieldDef
	Meta                *normalize.Meta
	Report              validate.Report
	CrossField          collect.CrossFieldCollection
	Derivations         collect.DerivationCollection
	PropertyDerivations collect.PropertyDerivationCollection
	Defaults            map[string]any
}

// Compiler compiles form trees against one type registry.
type Compiler struct {
	registry formskema.TypeRegistry
	log      logger.Logger
	cache    *lru.Cache[string, *Form]
}

// Option configures a Compiler.
type Option func(*Compiler) error

// WithLogger sets the logger for diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Compiler) error {
		c.log = l
		return nil
	}
}

// WithCacheSize sets the number of cached forms.
func WithCacheSize(size int) Option {
	return func(c *Compiler) error {
		cache, err := lru.New[string, *Form](size)
		if err != nil {
			return fmt.Errorf("failed to create form cache: %w", err)
		}
		c.cache = cache
		return nil
	}
}

// New returns a Compiler. A nil registry behaves as an empty one.
func New(reg formskema.TypeRegistry, opts ...Option) (*Compiler, error) {
	c := &Compiler{registry: reg}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.cache == nil {
		if err := WithCacheSize(DefaultCacheSize)(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compile runs the pipeline over fields. Trees with the same shape return the
// same *Form.
func (c *Compiler) Compile(ctx context.Context, fields []*formskema.FieldDef) (*Form, error) {
	log := c.log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	hash, err := c.shapeHash(fields)
	if err != nil {
		return nil, err
	}
	if f, ok := c.cache.Get(hash); ok {
		log.Debug("Form cache hit", "hash", hash)
		return f, nil
	}

	normalized, meta, err := normalize.Fields(fields)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report, err := validate.Tree(normalized, c.registry, log)
	if err != nil {
		return nil, err
	}
	form := &Form{
		Hash:                hash,
		Fields:              normalized,
		Meta:                meta,
		Report:              report,
		CrossField:          collect.CrossField(normalized),
		Derivations:         collect.Derivations(normalized),
		PropertyDerivations: collect.PropertyDerivations(normalized),
		Defaults:            defaults.Form(normalized, c.registry),
	}
	c.cache.Add(hash, form)
	log.Debug("Form compiled", "hash", hash,
		"cross_field_validators", len(form.CrossField.Validators),
		"derivations", len(form.Derivations.Entries),
		"property_derivations", len(form.PropertyDerivations.Entries))
	return form, nil
}

// Len returns the number of cached forms.
func (c *Compiler) Len() int { return c.cache.Len() }

// Purge empties the cache.
func (c *Compiler) Purge() { c.cache.Purge() }

// shapeHash hashes the canonical JSON of the tree together with the value
// handling mode of every registered type.
func (c *Compiler) shapeHash(fields []*formskema.FieldDef) (string, error) {
	var b bytes.Buffer
	tree, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode form tree: %w", err)
	}
	b.Write(tree)
	names := make([]string, 0, len(c.registry))
	for name := range c.registry {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(c.registry.Mode(name).String())
	}
	sum := sha256.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
