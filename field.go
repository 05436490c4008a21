package formskema

import (
	"bytes"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FieldDef is one node of a declarative form tree.
//
// Fields holds the children of container types. For array fields each entry
// is one item: a single FieldDef for a primitive item or a list of FieldDefs
// for an object item.
type FieldDef struct {
	Key          string            `json:"key,omitempty" yaml:"key,omitempty"`
	Type         string            `json:"type" yaml:"type"`
	Label        string            `json:"label,omitempty" yaml:"label,omitempty"`
	Fields       []Item            `json:"fields,omitempty" yaml:"fields,omitempty"`
	Props        map[string]any    `json:"props,omitempty" yaml:"props,omitempty"`
	Value        any               `json:"value,omitempty" yaml:"value,omitempty"`
	DefaultValue any               `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Validators   []ValidatorConfig `json:"validators,omitempty" yaml:"validators,omitempty"`
	Logic        []LogicConfig     `json:"logic,omitempty" yaml:"logic,omitempty"`
	Derivation   string            `json:"derivation,omitempty" yaml:"derivation,omitempty"`
	Pattern      string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Hidden       *bool             `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Disabled     *bool             `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// Shorthand array syntax, expanded by the normalize package.
	Template     *Item       `json:"template,omitempty" yaml:"template,omitempty"`
	AddButton    *ButtonSpec `json:"addButton,omitempty" yaml:"addButton,omitempty"`
	RemoveButton *ButtonSpec `json:"removeButton,omitempty" yaml:"removeButton,omitempty"`

	// ArrayKey names the array an add/remove button field acts on.
	ArrayKey string `json:"arrayKey,omitempty" yaml:"arrayKey,omitempty"`

	ValuePresence Presence `json:"-" yaml:"-"`
}

// Item is one entry of a container's Fields.
type Item struct {
	Field  *FieldDef
	Object []*FieldDef
}

// Single wraps one field as an item.
func Single(f *FieldDef) Item { return Item{Field: f} }

// Object wraps a list of fields as an object-shaped array item.
func Object(fs ...*FieldDef) Item {
	if fs == nil {
		fs = []*FieldDef{}
	}
	return Item{Object: fs}
}

// Children wraps fields as single items, the usual shape for non-array containers.
func Children(fs ...*FieldDef) []Item {
	out := make([]Item, 0, len(fs))
	for _, f := range fs {
		out = append(out, Single(f))
	}
	return out
}

// IsObject reports whether the item is a list of fields.
func (it Item) IsObject() bool { return it.Object != nil }

// Defs returns the fields of the item in order.
func (it Item) Defs() []*FieldDef {
	if it.Object != nil {
		return it.Object
	}
	if it.Field == nil {
		return nil
	}
	return []*FieldDef{it.Field}
}

// ChildDefs flattens every item of the field into one list.
func (f *FieldDef) ChildDefs() []*FieldDef {
	var out []*FieldDef
	for _, it := range f.Fields {
		out = append(out, it.Defs()...)
	}
	return out
}

// IsShorthandArray reports whether the field uses the template shorthand.
func (f *FieldDef) IsShorthandArray() bool {
	return f != nil && f.Type == TypeArray && f.Template != nil
}

// Validator kinds with structural meaning.
const (
	ValidatorCustom  = "custom"
	ValidatorPattern = "pattern"
)

// ValidatorConfig describes one validation rule on a field.
type ValidatorConfig struct {
	Type         string         `json:"type" yaml:"type"`
	Value        any            `json:"value,omitempty" yaml:"value,omitempty"`
	Expression   string         `json:"expression,omitempty" yaml:"expression,omitempty"`
	FunctionName string         `json:"functionName,omitempty" yaml:"functionName,omitempty"`
	Kind         string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	When         *Condition     `json:"when,omitempty" yaml:"when,omitempty"`
	Params       map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Logic kinds.
const (
	LogicHidden             = "hidden"
	LogicDisabled           = "disabled"
	LogicReadonly           = "readonly"
	LogicRequired           = "required"
	LogicDerivation         = "derivation"
	LogicPropertyDerivation = "propertyDerivation"
)

// Derivation triggers.
const (
	TriggerOnChange  = "onChange"
	TriggerOnBlur    = "onBlur"
	TriggerDebounced = "debounced"
)

// LogicConfig describes one logic rule on a field.
type LogicConfig struct {
	Type           string     `json:"type" yaml:"type"`
	Condition      *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	TargetField    string     `json:"targetField,omitempty" yaml:"targetField,omitempty"`
	TargetProperty string     `json:"targetProperty,omitempty" yaml:"targetProperty,omitempty"`
	Expression     string     `json:"expression,omitempty" yaml:"expression,omitempty"`
	Value          any        `json:"value,omitempty" yaml:"value,omitempty"`
	FunctionName   string     `json:"functionName,omitempty" yaml:"functionName,omitempty"`
	Trigger        string     `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	DebounceMs     *int       `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
	DependsOn      []string   `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// Condition kinds.
const (
	ConditionFieldValue = "fieldValue"
	ConditionJavaScript = "javascript"
	ConditionCustom     = "custom"
	ConditionAnd        = "and"
	ConditionOr         = "or"
)

// Condition is either a literal boolean or a typed condition object.
type Condition struct {
	Literal    *bool       `json:"-" yaml:"-"`
	Type       string      `json:"type,omitempty" yaml:"type,omitempty"`
	FieldPath  string      `json:"fieldPath,omitempty" yaml:"fieldPath,omitempty"`
	Operator   string      `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value      any         `json:"value,omitempty" yaml:"value,omitempty"`
	Expression string      `json:"expression,omitempty" yaml:"expression,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Literal returns a constant condition.
func Literal(b bool) *Condition { return &Condition{Literal: &b} }

// IsLiteral reports whether the condition is a constant.
func (c *Condition) IsLiteral() bool { return c != nil && c.Literal != nil }

// ButtonSpec configures the generated add/remove buttons of a shorthand
// array. A literal false decodes as Disabled.
type ButtonSpec struct {
	Disabled bool           `json:"-" yaml:"-"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// Enabled reports whether the button should be generated. A nil spec means
// the default button.
func (b *ButtonSpec) Enabled() bool { return b == nil || !b.Disabled }

// ---- JSON ----

type fieldAlias FieldDef

func (f FieldDef) MarshalJSON() ([]byte, error) {
	if f.ValueState() == ValueNull {
		return json.Marshal(struct {
			fieldAlias
			Value *struct{} `json:"value"`
		}{fieldAlias: fieldAlias(f)})
	}
	return json.Marshal(fieldAlias(f))
}

func (f *FieldDef) UnmarshalJSON(b []byte) error {
	aux := struct {
		*fieldAlias
		Value json.RawMessage `json:"value"`
	}{fieldAlias: (*fieldAlias)(f)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(aux.Value) == 0 {
		return nil
	}
	f.ValuePresence |= PresenceSeen
	if isJSONNull(aux.Value) {
		f.ValuePresence |= PresenceWasNull
		return nil
	}
	return json.Unmarshal(aux.Value, &f.Value)
}

func (it Item) MarshalJSON() ([]byte, error) {
	if it.Object != nil {
		return json.Marshal(it.Object)
	}
	return json.Marshal(it.Field)
}

func (it *Item) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	if len(t) > 0 && t[0] == '[' {
		defs := []*FieldDef{}
		if err := json.Unmarshal(t, &defs); err != nil {
			return err
		}
		*it = Item{Object: defs}
		return nil
	}
	var f FieldDef
	if err := json.Unmarshal(t, &f); err != nil {
		return err
	}
	*it = Item{Field: &f}
	return nil
}

type conditionAlias Condition

func (c Condition) MarshalJSON() ([]byte, error) {
	if c.Literal != nil {
		return json.Marshal(*c.Literal)
	}
	return json.Marshal(conditionAlias(c))
}

func (c *Condition) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	var lit bool
	if err := json.Unmarshal(t, &lit); err == nil {
		*c = Condition{Literal: &lit}
		return nil
	}
	var a conditionAlias
	if err := json.Unmarshal(t, &a); err != nil {
		return err
	}
	*c = Condition(a)
	return nil
}

type buttonAlias ButtonSpec

func (s ButtonSpec) MarshalJSON() ([]byte, error) {
	if s.Disabled {
		return []byte("false"), nil
	}
	return json.Marshal(buttonAlias(s))
}

func (s *ButtonSpec) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	var on bool
	if err := json.Unmarshal(t, &on); err == nil {
		*s = ButtonSpec{Disabled: !on}
		return nil
	}
	var a buttonAlias
	if err := json.Unmarshal(t, &a); err != nil {
		return err
	}
	*s = ButtonSpec(a)
	return nil
}

func isJSONNull(b []byte) bool { return bytes.Equal(bytes.TrimSpace(b), []byte("null")) }

// ---- YAML ----

func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	if err := node.Decode((*fieldAlias)(f)); err != nil {
		return err
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "value" {
			continue
		}
		f.ValuePresence |= PresenceSeen
		if node.Content[i+1].Tag == "!!null" {
			f.ValuePresence |= PresenceWasNull
		}
	}
	return nil
}

func (it Item) MarshalYAML() (any, error) {
	if it.Object != nil {
		return it.Object, nil
	}
	return it.Field, nil
}

func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		defs := []*FieldDef{}
		if err := node.Decode(&defs); err != nil {
			return err
		}
		*it = Item{Object: defs}
		return nil
	}
	var f FieldDef
	if err := node.Decode(&f); err != nil {
		return err
	}
	*it = Item{Field: &f}
	return nil
}

func (c Condition) MarshalYAML() (any, error) {
	if c.Literal != nil {
		return *c.Literal, nil
	}
	return conditionAlias(c), nil
}

func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!bool" {
		var lit bool
		if err := node.Decode(&lit); err != nil {
			return err
		}
		*c = Condition{Literal: &lit}
		return nil
	}
	var a conditionAlias
	if err := node.Decode(&a); err != nil {
		return err
	}
	*c = Condition(a)
	return nil
}

func (s ButtonSpec) MarshalYAML() (any, error) {
	if s.Disabled {
		return false, nil
	}
	return buttonAlias(s), nil
}

func (s *ButtonSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!bool" {
		var on bool
		if err := node.Decode(&on); err != nil {
			return err
		}
		*s = ButtonSpec{Disabled: !on}
		return nil
	}
	var a buttonAlias
	if err := node.Decode(&a); err != nil {
		return err
	}
	*s = ButtonSpec(a)
	return nil
}
