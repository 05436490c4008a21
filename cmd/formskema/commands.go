package main

import (
	"fmt"

	"github.com/spf13/cobra"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/collect"
	"github.com/reoring/formskema/compiler"
	"github.com/reoring/formskema/logic"
	"github.com/reoring/formskema/normalize"
	"github.com/reoring/formskema/override"
	"github.com/reoring/formskema/reconcile"
	"github.com/reoring/formskema/source"
	"github.com/reoring/formskema/validate"
)

func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", "", "Form tree file (JSON or YAML)")
	_ = cmd.MarkFlagRequired("file")
}

type compileOutput struct {
	Hash                string                             `json:"hash"`
	Fields              []*formskema.FieldDef              `json:"fields"`
	Arrays              []normalize.ArrayMeta              `json:"arrays"`
	CrossField          collect.CrossFieldCollection       `json:"crossField"`
	Derivations         []*collect.DerivationEntry         `json:"derivations"`
	PropertyDerivations []*collect.PropertyDerivationEntry `json:"propertyDerivations"`
	Defaults            map[string]any                     `json:"defaults"`
	UnregisteredTypes   []string                           `json:"unregisteredTypes,omitempty"`
}

func compileCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a form tree and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			form, err := a.compile(cmd, file)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), compileOutput{
				Hash:                form.Hash,
				Fields:              form.Fields,
				Arrays:              form.Meta.Arrays(),
				CrossField:          form.CrossField,
				Derivations:         form.Derivations.Entries,
				PropertyDerivations: form.PropertyDerivations.Entries,
				Defaults:            form.Defaults,
				UnregisteredTypes:   form.Report.UnregisteredTypes,
			})
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func defaultsCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default form value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			form, err := a.compile(cmd, file)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), form.Defaults)
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func validateCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a form tree for configuration errors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			fields, err := a.loadTree(file)
			if err != nil {
				return err
			}
			normalized, _, err := normalize.Fields(fields)
			if err != nil {
				return err
			}
			rep, err := validate.Tree(normalized, a.registry, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d unregistered type(s)\n", len(rep.UnregisteredTypes))
			return nil
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func normalizeCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Expand shorthand arrays and print the canonical tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			fields, err := a.loadTree(file)
			if err != nil {
				return err
			}
			normalized, _, err := normalize.Fields(fields)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), normalized)
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

type fieldState struct {
	Path     string         `json:"path"`
	Hidden   bool           `json:"hidden"`
	Disabled bool           `json:"disabled"`
	Inputs   map[string]any `json:"inputs"`
}

type itemState struct {
	ID     string `json:"id"`
	Suffix string `json:"suffix"`
	Value  any    `json:"value"`
}

type arrayState struct {
	Key       string      `json:"key"`
	Operation string      `json:"operation"`
	Items     []itemState `json:"items"`
}

type resolveOutput struct {
	Fields []fieldState `json:"fields"`
	Arrays []arrayState `json:"arrays"`
}

func resolveCmd(g *globalFlags) *cobra.Command {
	var file, valuesFile, overridesFile string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve field state and array items against a form value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			form, err := a.compile(cmd, file)
			if err != nil {
				return err
			}
			values := form.Defaults
			if valuesFile != "" {
				if values, err = source.LoadValuesFile(valuesFile); err != nil {
					return err
				}
			}
			overrides := map[string]any{}
			if overridesFile != "" {
				if overrides, err = source.LoadValuesFile(overridesFile); err != nil {
					return err
				}
			}
			out, err := a.resolve(cmd, form, values, overrides)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addFileFlag(cmd, &file)
	cmd.Flags().StringVar(&valuesFile, "values", "", "Form value file; defaults to the computed default value")
	cmd.Flags().StringVar(&overridesFile, "overrides", "", "Property overrides keyed by field path")
	return cmd
}

func (a *app) resolve(cmd *cobra.Command, form *compiler.Form, values, overrides map[string]any) (*resolveOutput, error) {
	ctx := a.context(cmd)
	current := func() map[string]any { return values }
	ev := &logic.Evaluation{Evaluator: a.evaluator, Logger: a.log}
	out := &resolveOutput{Fields: []fieldState{}, Arrays: []arrayState{}}

	for v := range formskema.Walk(form.Fields, "", formskema.WalkArrayOpaque) {
		f := v.Field
		if f.Key == "" {
			continue
		}
		lc := logic.Context{FieldLogic: f.Logic, FormValue: current, Evaluator: a.evaluator, Logger: a.log}
		hc, dc := lc, lc
		hc.ExplicitValue, dc.ExplicitValue = f.Hidden, f.Disabled

		derived := map[string]any{}
		for _, e := range form.PropertyDerivations.ByField[v.Path] {
			if !ev.Eval(ctx, &e.Condition, values) {
				continue
			}
			val := e.Value
			if e.Expression != "" {
				r, err := a.evaluator.Evaluate(ctx, e.Expression, values)
				if err != nil {
					a.log.Error("Property derivation failed", "field", v.Path, "property", e.TargetProperty, "error", err)
					continue
				}
				val = r
			}
			derived[e.TargetProperty] = val
		}
		fieldOverrides, _ := overrides[v.Path].(map[string]any)
		inputs, err := override.ResolveInputs(f, derived, fieldOverrides,
			override.WithDevMode(a.cfg.DevMode), override.WithLogger(a.log))
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, fieldState{
			Path:     v.Path,
			Hidden:   logic.ResolveHidden(hc)(ctx),
			Disabled: logic.ResolveDisabled(dc)(ctx),
			Inputs:   inputs,
		})

		if f.Type != formskema.TypeArray {
			continue
		}
		items, _ := logic.ValueAt(values, v.Path)
		list, _ := items.([]any)
		tmpl := arrayTemplate(form, f)
		r := reconcile.New(reconcile.Options{
			ArrayKey:       v.Path,
			Template:       tmpl,
			Logger:         a.log,
			MaxConcurrency: a.cfg.Reconcile.MaxConcurrency,
		})
		op, err := r.Sync(ctx, list)
		if err != nil {
			return nil, err
		}
		st := arrayState{Key: v.Path, Operation: op.String(), Items: []itemState{}}
		for _, it := range r.Items() {
			st.Items = append(st.Items, itemState{ID: it.ID, Suffix: it.Suffix, Value: reconcile.AddSuffixToValue(it.Value, it.Suffix)})
		}
		out.Arrays = append(out.Arrays, st)
	}
	return out, nil
}

// arrayTemplate prefers the template recorded by the normalizer, then the
// first item of the array. The side-table is keyed by the array's own key.
func arrayTemplate(form *compiler.Form, f *formskema.FieldDef) formskema.Item {
	if am, ok := form.Meta.Array(f.Key); ok {
		return am.Template
	}
	if len(f.Fields) > 0 {
		return f.Fields[0]
	}
	return formskema.Item{}
}
