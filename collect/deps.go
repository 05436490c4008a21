package collect

import (
	"regexp"

	formskema "github.com/reoring/formskema"
)

// Wildcard in DependsOn means the entry may read any part of the form value.
const Wildcard = "*"

// formValueRef matches member access on the formValue variable:
// formValue.a.b and formValue["a"] / formValue['a'].
var formValueRef = regexp.MustCompile(`\bformValue(?:\.([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)|\[\s*["']([^"']+)["']\s*\])`)

// ExtractDependencies scans an expression and an optional condition for
// form-value reads. The scan is lexical: it sees formValue member access and
// string-keyed index access, nothing else. Paths are returned in first-seen
// order without duplicates.
func ExtractDependencies(expression string, cond *formskema.Condition) []string {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	scanExpression(expression, add)
	scanCondition(cond, add)
	return out
}

func scanExpression(expr string, add func(string)) {
	if expr == "" {
		return
	}
	for _, m := range formValueRef.FindAllStringSubmatch(expr, -1) {
		if m[1] != "" {
			add(m[1])
		} else {
			add(m[2])
		}
	}
}

func scanCondition(c *formskema.Condition, add func(string)) {
	if c == nil || c.IsLiteral() {
		return
	}
	switch c.Type {
	case formskema.ConditionFieldValue:
		add(c.FieldPath)
	case formskema.ConditionAnd, formskema.ConditionOr:
		for i := range c.Conditions {
			scanCondition(&c.Conditions[i], add)
		}
	}
	scanExpression(c.Expression, add)
}

// dependencies applies the DependsOn resolution order shared by the
// derivation collectors.
func dependencies(explicit []string, expression, functionName string, cond *formskema.Condition) []string {
	if explicit != nil {
		return append([]string{}, explicit...)
	}
	if functionName != "" && expression == "" {
		return []string{Wildcard}
	}
	return ExtractDependencies(expression, cond)
}
