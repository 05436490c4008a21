// Package validate performs the one-pass static checks of a form tree.
package validate

import (
	"slices"
	"strings"

	"github.com/dlclark/regexp2"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/logger"
)

// PatternError records a pattern that failed to compile.
type PatternError struct {
	Path    string
	Pattern string
	Err     error
}

// Report lists the three independent facts gathered by Tree.
type Report struct {
	DuplicateKeys     []string
	UnregisteredTypes []string
	InvalidFields     []string
	InvalidPatterns   []PatternError
}

// Issues converts the report into Issues, fatal findings first.
func (r Report) Issues() formskema.Issues {
	var iss formskema.Issues
	for _, k := range r.DuplicateKeys {
		iss = formskema.AppendIssues(iss, formskema.At(k).Issue(formskema.CodeDuplicateKey, i18n.T(formskema.CodeDuplicateKey, map[string]string{"keys": k})))
	}
	for _, k := range r.InvalidFields {
		iss = formskema.AppendIssues(iss, formskema.At(k).Issue(formskema.CodeInvalidField, i18n.T(formskema.CodeInvalidField, map[string]string{"key": k})))
	}
	for _, p := range r.InvalidPatterns {
		it := formskema.At(p.Path).Issue(formskema.CodeInvalidPattern, i18n.T(formskema.CodeInvalidPattern, map[string]string{"pattern": p.Pattern}), "pattern", p.Pattern)
		it.Cause = p.Err
		iss = formskema.AppendIssues(iss, it)
	}
	for _, t := range r.UnregisteredTypes {
		iss = formskema.AppendIssues(iss, formskema.Root().Issue(formskema.CodeUnregisteredType, i18n.T(formskema.CodeUnregisteredType, map[string]string{"types": t}), "type", t))
	}
	return iss
}

// Tree validates fields in a single traversal.
//
// Duplicate keys are fatal. Keys are compared bare, whatever group they sit
// in; keys inside array items are not checked because they repeat per item. Unregistered types produce one aggregated warning
// unless reg is empty. Every pattern is test-compiled; each failure is
// logged and the first is returned once the pass completes.
func Tree(fields []*formskema.FieldDef, reg formskema.TypeRegistry, log logger.Logger) (Report, error) {
	log = logger.OrNop(log)
	var rep Report
	seen := map[string]int{}
	unregistered := map[string]struct{}{}

	for v := range formskema.Walk(fields, "", formskema.WalkArrayTemplates) {
		f := v.Field
		if f.Key != "" && !v.InArray() {
			seen[f.Key]++
			if seen[f.Key] == 2 {
				rep.DuplicateKeys = append(rep.DuplicateKeys, f.Key)
			}
		}
		if f.Type == "" {
			rep.InvalidFields = append(rep.InvalidFields, v.InstancePath())
		} else if len(reg) > 0 {
			if _, ok := reg.Lookup(f.Type); !ok {
				unregistered[f.Type] = struct{}{}
			}
		}
		if f.IsShorthandArray() && len(f.Fields) > 0 {
			rep.InvalidFields = append(rep.InvalidFields, v.InstancePath())
		}
		for _, p := range patterns(f) {
			if _, err := regexp2.Compile(p, regexp2.ECMAScript); err != nil {
				rep.InvalidPatterns = append(rep.InvalidPatterns, PatternError{Path: v.InstancePath(), Pattern: p, Err: err})
			}
		}
	}

	for t := range unregistered {
		rep.UnregisteredTypes = append(rep.UnregisteredTypes, t)
	}
	slices.Sort(rep.UnregisteredTypes)
	if len(rep.UnregisteredTypes) > 0 {
		log.Warn(i18n.T(formskema.CodeUnregisteredType, map[string]string{"types": strings.Join(rep.UnregisteredTypes, ", ")}),
			"types", rep.UnregisteredTypes)
	}
	for _, p := range rep.InvalidPatterns {
		log.Error(i18n.T(formskema.CodeInvalidPattern, map[string]string{"pattern": p.Pattern}), "field", p.Path, "error", p.Err)
	}

	return rep, fatal(rep)
}

func fatal(rep Report) error {
	iss := rep.Issues()
	switch {
	case len(rep.DuplicateKeys) > 0:
		return &formskema.ConfigurationError{
			Message: i18n.T(formskema.CodeDuplicateKey, map[string]string{"keys": strings.Join(rep.DuplicateKeys, ", ")}),
			Issues:  iss,
		}
	case len(rep.InvalidFields) > 0:
		return &formskema.ConfigurationError{
			Message: i18n.T(formskema.CodeInvalidField, map[string]string{"key": strings.Join(rep.InvalidFields, ", ")}),
			Issues:  iss,
		}
	case len(rep.InvalidPatterns) > 0:
		p := rep.InvalidPatterns[0]
		return &formskema.ConfigurationError{
			Message: i18n.T(formskema.CodeInvalidPattern, map[string]string{"pattern": p.Pattern}) + " (" + p.Err.Error() + ")",
			Issues:  iss,
		}
	}
	return nil
}

func patterns(f *formskema.FieldDef) []string {
	var out []string
	if f.Pattern != "" {
		out = append(out, f.Pattern)
	}
	for _, vc := range f.Validators {
		if vc.Type != formskema.ValidatorPattern {
			continue
		}
		if s, ok := vc.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
