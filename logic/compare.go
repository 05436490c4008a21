package logic

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Operator is a fieldValue comparison operator.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "notEquals"
	OpGreater        Operator = "greater"
	OpLess           Operator = "less"
	OpGreaterOrEqual Operator = "greaterOrEqual"
	OpLessOrEqual    Operator = "lessOrEqual"
	OpContains       Operator = "contains"
	OpStartsWith     Operator = "startsWith"
	OpEndsWith       Operator = "endsWith"
	OpMatches        Operator = "matches"
)

// ValueAt navigates a form value by dotted path. Numeric segments index into
// slices.
func ValueAt(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	for _, seg := range strings.Split(path, ".") {
		for cur.IsValid() && (cur.Kind() == reflect.Interface || cur.Kind() == reflect.Pointer) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

// Compare applies op to the current value and the expected one. Unknown
// operators compare false.
func Compare(cur any, op Operator, want any) (bool, error) {
	switch op {
	case OpEquals, "":
		return equal(cur, want), nil
	case OpNotEquals:
		return !equal(cur, want), nil
	case OpGreater, OpLess, OpGreaterOrEqual, OpLessOrEqual:
		return compareOrdered(cur, op, want), nil
	case OpContains:
		return contains(cur, want), nil
	case OpStartsWith:
		s, w, ok := strings2(cur, want)
		return ok && strings.HasPrefix(s, w), nil
	case OpEndsWith:
		s, w, ok := strings2(cur, want)
		return ok && strings.HasSuffix(s, w), nil
	case OpMatches:
		s, ok := cur.(string)
		p, pok := want.(string)
		if !ok || !pok {
			return false, nil
		}
		re, err := regexp2.Compile(p, regexp2.ECMAScript)
		if err != nil {
			return false, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		return re.MatchString(s)
	default:
		return false, nil
	}
}

func equal(cur, want any) bool {
	_, cs := cur.(string)
	_, ws := want.(string)
	if cs || ws {
		return reflect.DeepEqual(cur, want)
	}
	if a, ok := toDecimal(cur); ok {
		if b, ok := toDecimal(want); ok {
			return a.Equal(b)
		}
	}
	return reflect.DeepEqual(cur, want)
}

func compareOrdered(cur any, op Operator, want any) bool {
	a, ok := toDecimal(cur)
	if !ok {
		return false
	}
	b, ok := toDecimal(want)
	if !ok {
		return false
	}
	c := a.Cmp(b)
	switch op {
	case OpGreater:
		return c > 0
	case OpLess:
		return c < 0
	case OpGreaterOrEqual:
		return c >= 0
	case OpLessOrEqual:
		return c <= 0
	}
	return false
}

func contains(cur, want any) bool {
	if s, ok := cur.(string); ok {
		w, ok := want.(string)
		return ok && strings.Contains(s, w)
	}
	rv := reflect.ValueOf(cur)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equal(rv.Index(i).Interface(), want) {
			return true
		}
	}
	return false
}

func strings2(cur, want any) (string, string, bool) {
	s, ok := cur.(string)
	w, wok := want.(string)
	return s, w, ok && wok
}

// toDecimal converts numbers and numeric strings.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d, err := decimal.NewFromString(strconv.FormatUint(rv.Uint(), 10))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
