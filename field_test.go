package formskema_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	formskema "github.com/reoring/formskema"
)

func TestFieldDef_ValuePresence(t *testing.T) {
	cases := []struct {
		name string
		json string
		yaml string
		want formskema.ValueState
	}{
		{"absent", `{"key":"a","type":"input"}`, "key: a\ntype: input\n", formskema.ValueAbsent},
		{"null", `{"key":"a","type":"input","value":null}`, "key: a\ntype: input\nvalue: null\n", formskema.ValueNull},
		{"set", `{"key":"a","type":"input","value":"x"}`, "key: a\ntype: input\nvalue: x\n", formskema.ValueSet},
		{"zero", `{"key":"a","type":"input","value":0}`, "key: a\ntype: input\nvalue: 0\n", formskema.ValueSet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var fj formskema.FieldDef
			if err := json.Unmarshal([]byte(tc.json), &fj); err != nil {
				t.Fatalf("json: unexpected error: %v", err)
			}
			if got := fj.ValueState(); got != tc.want {
				t.Fatalf("json: want state %v, got %v", tc.want, got)
			}

			var fy formskema.FieldDef
			if err := yaml.Unmarshal([]byte(tc.yaml), &fy); err != nil {
				t.Fatalf("yaml: unexpected error: %v", err)
			}
			if got := fy.ValueState(); got != tc.want {
				t.Fatalf("yaml: want state %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFieldDef_MarshalKeepsNull(t *testing.T) {
	f := &formskema.FieldDef{Key: "a", Type: "input"}
	f.SetNullValue()

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(b), `"value":null`) {
		t.Fatalf("expected explicit null in %s", b)
	}

	var back formskema.FieldDef
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.ValueState() != formskema.ValueNull {
		t.Fatalf("want null state after decode, got %v", back.ValueState())
	}
}

func TestItem_DecodeList(t *testing.T) {
	var items []formskema.Item
	if err := json.Unmarshal([]byte(`[[{"key":"a","type":"input"}], {"key":"b","type":"input"}]`), &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	if !items[0].IsObject() || items[0].Defs()[0].Key != "a" {
		t.Fatalf("want object item holding a, got %+v", items[0])
	}
	if items[1].IsObject() || items[1].Field.Key != "b" {
		t.Fatalf("want single item b, got %+v", items[1])
	}
}

func TestItem_DecodeEmptyList(t *testing.T) {
	var it formskema.Item
	if err := yaml.Unmarshal([]byte("[]"), &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !it.IsObject() || len(it.Defs()) != 0 {
		t.Fatalf("want empty object item, got %+v", it)
	}
}

func TestCondition_Literal(t *testing.T) {
	var c formskema.Condition
	if err := json.Unmarshal([]byte(`true`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsLiteral() || !*c.Literal {
		t.Fatalf("want literal true, got %+v", c)
	}
	if err := yaml.Unmarshal([]byte(`false`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsLiteral() || *c.Literal {
		t.Fatalf("want literal false, got %+v", c)
	}

	b, err := json.Marshal(formskema.Literal(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "true" {
		t.Fatalf("want true, got %s", b)
	}
}

func TestCondition_Nested(t *testing.T) {
	var c formskema.Condition
	js := `{"type":"and","conditions":[true,{"type":"javascript","expression":"x > 1"}]}`
	if err := json.Unmarshal([]byte(js), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != formskema.ConditionAnd || len(c.Conditions) != 2 {
		t.Fatalf("want and with 2 conditions, got %+v", c)
	}
	if !c.Conditions[0].IsLiteral() {
		t.Fatalf("want first condition literal")
	}
	if c.Conditions[1].Expression != "x > 1" {
		t.Fatalf("want expression x > 1, got %q", c.Conditions[1].Expression)
	}
}

func TestButtonSpec(t *testing.T) {
	var nilSpec *formskema.ButtonSpec
	if !nilSpec.Enabled() {
		t.Fatalf("nil spec must be enabled")
	}

	var f formskema.FieldDef
	if err := yaml.Unmarshal([]byte("type: array\naddButton: false\nremoveButton:\n  label: Drop\n"), &f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.AddButton == nil || f.AddButton.Enabled() {
		t.Fatalf("want disabled add button, got %+v", f.AddButton)
	}
	if f.RemoveButton == nil || !f.RemoveButton.Enabled() || f.RemoveButton.Label != "Drop" {
		t.Fatalf("want enabled remove button labelled Drop, got %+v", f.RemoveButton)
	}

	// disabled buttons encode back to the boolean shorthand
	b, err := json.Marshal(formskema.ButtonSpec{Disabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "false" {
		t.Fatalf("want false, got %s", b)
	}
}
