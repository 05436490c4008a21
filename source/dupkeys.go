package source

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	formskema "github.com/reoring/formskema"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	index        int
}

// DuplicateKeys reports every object key that appears twice in the same JSON
// object, as issues pointing at the enclosing object. JSON decoders keep the
// last value silently, which hides mistakes in hand-written form trees.
func DuplicateKeys(data []byte) (formskema.Issues, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		issues formskema.Issues
		stack  []dupFrame
	)

	// child returns the pointer of the value about to start and marks the
	// parent as consumed.
	child := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			p := top.path + "/" + strconv.Itoa(top.index)
			top.index++
			return p
		}
		return top.path
	}
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}

	var lastKey string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return issues, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				p := child()
				if len(stack) > 0 && stack[len(stack)-1].kind == kindObject {
					p += "/" + escapePointer(lastKey)
				}
				f := dupFrame{kind: kindArray, path: p}
				if v == '{' {
					f = dupFrame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true, path: p}
				}
				stack = append(stack, f)
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					if _, ok := top.keys[v]; ok {
						path := top.path
						if path == "" {
							path = "/"
						}
						issues = formskema.AppendIssues(issues, formskema.Issue{
							Path:    path,
							Code:    formskema.CodeDuplicateKey,
							Message: "key '" + v + "' duplicated",
							Params:  map[string]any{"key": v},
						})
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					lastKey = v
					continue
				}
				if top.kind == kindArray {
					top.index++
				}
			}
			valueDone()
		default:
			if len(stack) > 0 && stack[len(stack)-1].kind == kindArray {
				stack[len(stack)-1].index++
			}
			valueDone()
		}
	}
	return issues, nil
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
