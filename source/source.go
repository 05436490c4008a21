// Package source decodes form trees and form values from JSON or YAML.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	formskema "github.com/reoring/formskema"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// DetectFormat picks the format from the file extension of name, then from
// the first non-blank byte of data.
func DetectFormat(name string, data []byte) Format {
	if f, err := ParseFormat(filepath.Ext(name)); err == nil {
		return f
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

type options struct {
	strictKeys bool
}

// Option configures decoding.
type Option func(*options)

// WithStrictKeys rejects JSON objects with repeated keys. YAML input always
// rejects them.
func WithStrictKeys() Option { return func(o *options) { o.strictKeys = true } }

// document is the object form of a tree file.
type document struct {
	Fields []*formskema.FieldDef `json:"fields" yaml:"fields"`
}

// ParseTree decodes a form tree. The document is either a list of fields or
// an object with a fields list.
func ParseTree(data []byte, format Format, opts ...Option) ([]*formskema.FieldDef, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	switch format {
	case FormatJSON:
		if o.strictKeys {
			iss, err := DuplicateKeys(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse JSON form tree: %w", err)
			}
			if len(iss) > 0 {
				return nil, &formskema.ConfigurationError{Message: "duplicate object keys in form tree: " + iss.Error(), Issues: iss}
			}
		}
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var doc document
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("failed to parse JSON form tree: %w", err)
			}
			return doc.Fields, nil
		}
		var fields []*formskema.FieldDef
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse JSON form tree: %w", err)
		}
		return fields, nil
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("failed to parse YAML form tree: %w", err)
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		root := node.Content[0]
		if root.Kind == yaml.MappingNode {
			var doc document
			if err := root.Decode(&doc); err != nil {
				return nil, fmt.Errorf("failed to parse YAML form tree: %w", err)
			}
			return doc.Fields, nil
		}
		var fields []*formskema.FieldDef
		if err := root.Decode(&fields); err != nil {
			return nil, fmt.Errorf("failed to parse YAML form tree: %w", err)
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// ParseValues decodes a form value object.
func ParseValues(data []byte, format Format) (map[string]any, error) {
	var out map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &out)
	case FormatYAML:
		err = yaml.Unmarshal(data, &out)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s form value: %w", format, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// LoadTreeFile reads and decodes a form tree file.
func LoadTreeFile(path string, opts ...Option) ([]*formskema.FieldDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form tree: %w", err)
	}
	return ParseTree(data, DetectFormat(path, data), opts...)
}

// LoadValuesFile reads and decodes a form value file.
func LoadValuesFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form value: %w", err)
	}
	return ParseValues(data, DetectFormat(path, data))
}
