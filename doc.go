// Package formskema compiles declarative form trees into the flat lookup
// structures a renderer binds to.
//
// A form is a tree of FieldDef nodes. Containers (group, row, page, array)
// hold children in Fields; everything else is a value-bearing or decorative
// leaf. The root package owns the data model, the type registry, dotted path
// building (PathRef, Walk) and the error model (Issue, ConfigurationError).
// The compile passes live in subpackages:
//
//   - normalize: expands shorthand array fields into the canonical shape.
//   - validate: one-pass static checks (duplicate keys, types, patterns).
//   - collect: cross-field, value-derivation and property-derivation entries.
//   - defaults: initial form value synthesis.
//   - logic, override: per-render resolution of hidden/disabled and inputs.
//   - reconcile: stable-identity reconciliation of array items.
//   - compiler: runs the static passes once per tree shape.
//
// Design policy:
//   - Static collector outputs are immutable once produced and may be shared.
//   - Capabilities (expression evaluation, ids, component loading, logging)
//     are passed explicitly; nothing is looked up from globals.
//   - Configuration problems are returned as *ConfigurationError, never panics.
//
// Typical usage:
//
//	fields, err := source.ParseTree(data, source.FormatYAML)
//	form, err := compiler.New(registry).Compile(ctx, fields)
//	hidden := logic.ResolveHidden(logic.Context{FieldLogic: f.Logic, FormValue: read})(ctx)
package formskema
