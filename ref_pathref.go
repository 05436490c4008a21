package formskema

import (
	"fmt"
	"strings"
)

// ItemPlaceholder stands in for "the current item" inside array paths.
const ItemPlaceholder = "$"

// PathRef builds dotted field paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Item() PathRef
	Parts() []string
	String() string
	Issue(code, msg string, kv ...any) Issue
}

type pathRef struct {
	parts []string
}

// Root returns the empty path.
func Root() PathRef { return &pathRef{} }

// At parses a dotted path.
func At(path string) PathRef {
	if path == "" {
		return Root()
	}
	parts := []string{}
	for _, p := range strings.Split(path, ".") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return &pathRef{parts: parts}
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return &pathRef{parts: append(append([]string{}, p.parts...), name)}
}

func (p *pathRef) Item() PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), ItemPlaceholder)}
}

func (p *pathRef) Parts() []string { return append([]string(nil), p.parts...) }

func (p *pathRef) String() string { return strings.Join(p.parts, ".") }

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.String(), Code: code, Message: msg, Params: m}
}

// JoinPath joins non-empty dotted segments.
func JoinPath(segs ...string) string {
	var p PathRef = Root()
	for _, s := range segs {
		for _, part := range strings.Split(s, ".") {
			p = p.Field(part)
		}
	}
	return p.String()
}
