// Package reconcile keeps a rendered array's item list in step with its value
// while disturbing unaffected items as little as possible.
package reconcile

import "fmt"

// OpKind is the structural change selected for an array update.
type OpKind int

const (
	OpNone OpKind = iota
	OpClear
	OpInitial
	OpAppend
	OpPop
	OpRecreate
)

func (k OpKind) String() string {
	switch k {
	case OpNone:
		return "none"
	case OpClear:
		return "clear"
	case OpInitial:
		return "initial"
	case OpAppend:
		return "append"
	case OpPop:
		return "pop"
	case OpRecreate:
		return "recreate"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Operation is a classified update. For append, [Start, End) is the new
// tail to resolve. For pop, Start is the new length and [Start, End) the
// dropped tail. For initial and recreate, [0, End) is resolved.
type Operation struct {
	Kind  OpKind
	Start int
	End   int
}

func (o Operation) String() string {
	switch o.Kind {
	case OpAppend:
		return fmt.Sprintf("append[%d,%d)", o.Start, o.End)
	case OpPop:
		return fmt.Sprintf("pop(%d)", o.Start)
	default:
		return o.Kind.String()
	}
}

// Classify selects the operation for a change from current resolved items
// to newLength values. Recreate is never selected here; it follows an
// explicit mid-array removal.
func Classify(current, newLength int) Operation {
	switch {
	case newLength == 0:
		return Operation{Kind: OpClear, End: current}
	case current == 0:
		return Operation{Kind: OpInitial, End: newLength}
	case newLength > current:
		return Operation{Kind: OpAppend, Start: current, End: newLength}
	case newLength < current:
		return Operation{Kind: OpPop, Start: newLength, End: current}
	default:
		return Operation{Kind: OpNone, Start: current, End: current}
	}
}
