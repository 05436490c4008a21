package formskema

import (
	"fmt"
	"strings"
)

// Field type names the compiler has structural knowledge of.
const (
	TypeGroup           = "group"
	TypeRow             = "row"
	TypePage            = "page"
	TypeArray           = "array"
	TypeCheckbox        = "checkbox"
	TypeToggle          = "toggle"
	TypeAddArrayItem    = "addArrayItem"
	TypeRemoveArrayItem = "removeArrayItem"
)

// ValueHandlingMode controls how a field type contributes to the form value.
type ValueHandlingMode int

const (
	ValueInclude ValueHandlingMode = iota // Contributes a value under its own key.
	ValueExclude                          // Never contributes a value.
	ValueFlatten                          // Splices its children's values into the parent level.
)

func (m ValueHandlingMode) String() string {
	switch m {
	case ValueExclude:
		return "exclude"
	case ValueFlatten:
		return "flatten"
	default:
		return "include"
	}
}

// ParseValueHandlingMode converts "include", "exclude" or "flatten".
func ParseValueHandlingMode(s string) (ValueHandlingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "include":
		return ValueInclude, nil
	case "exclude":
		return ValueExclude, nil
	case "flatten":
		return ValueFlatten, nil
	default:
		return ValueInclude, fmt.Errorf("unknown value handling mode %q", s)
	}
}

func (m ValueHandlingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ValueHandlingMode) UnmarshalText(b []byte) error {
	v, err := ParseValueHandlingMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// TypeDef registers a field type. Component is an opaque rendering descriptor;
// Loader, when set, is awaited before an array item using the type counts as
// resolved.
type TypeDef struct {
	Name          string
	ValueHandling ValueHandlingMode
	Component     any
	Loader        ComponentLoader
}

// TypeRegistry maps type names to their definitions. An empty registry is
// valid and means no host adapter is wired in.
type TypeRegistry map[string]TypeDef

// Register adds or replaces definitions and returns the registry for chaining.
func (r TypeRegistry) Register(defs ...TypeDef) TypeRegistry {
	for _, d := range defs {
		r[d.Name] = d
	}
	return r
}

// Lookup returns the definition for typeName.
func (r TypeRegistry) Lookup(typeName string) (TypeDef, bool) {
	d, ok := r[typeName]
	return d, ok
}

// Mode returns the value-handling mode of typeName. Unregistered container
// types fall back to their structural mode; other unregistered types include.
func (r TypeRegistry) Mode(typeName string) ValueHandlingMode {
	if d, ok := r[typeName]; ok {
		return d.ValueHandling
	}
	switch typeName {
	case TypeRow, TypePage:
		return ValueFlatten
	case TypeAddArrayItem, TypeRemoveArrayItem:
		return ValueExclude
	default:
		return ValueInclude
	}
}

// DefaultRegistry returns the structural types plus a common widget set.
func DefaultRegistry() TypeRegistry {
	r := TypeRegistry{}
	r.Register(
		TypeDef{Name: TypeGroup, ValueHandling: ValueInclude},
		TypeDef{Name: TypeArray, ValueHandling: ValueInclude},
		TypeDef{Name: TypeRow, ValueHandling: ValueFlatten},
		TypeDef{Name: TypePage, ValueHandling: ValueFlatten},
		TypeDef{Name: TypeAddArrayItem, ValueHandling: ValueExclude},
		TypeDef{Name: TypeRemoveArrayItem, ValueHandling: ValueExclude},
		TypeDef{Name: "text", ValueHandling: ValueExclude},
		TypeDef{Name: "button", ValueHandling: ValueExclude},
		TypeDef{Name: "submit", ValueHandling: ValueExclude},
		TypeDef{Name: "input", ValueHandling: ValueInclude},
		TypeDef{Name: "textarea", ValueHandling: ValueInclude},
		TypeDef{Name: "select", ValueHandling: ValueInclude},
		TypeDef{Name: "radio", ValueHandling: ValueInclude},
		TypeDef{Name: "datepicker", ValueHandling: ValueInclude},
		TypeDef{Name: "slider", ValueHandling: ValueInclude},
		TypeDef{Name: TypeCheckbox, ValueHandling: ValueInclude},
		TypeDef{Name: TypeToggle, ValueHandling: ValueInclude},
	)
	return r
}

// IsContainer reports whether typeName holds children in Fields.
func IsContainer(typeName string) bool {
	switch typeName {
	case TypeGroup, TypeRow, TypePage, TypeArray:
		return true
	default:
		return false
	}
}

// IsTransparent reports whether typeName contributes no path segment.
func IsTransparent(typeName string) bool { return typeName == TypeRow || typeName == TypePage }

// IsCheckboxLike reports whether typeName defaults to false instead of "".
func IsCheckboxLike(typeName string) bool {
	return typeName == TypeCheckbox || typeName == TypeToggle
}
