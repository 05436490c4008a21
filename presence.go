package formskema

// Presence is the bit flag recorded while decoding a field's value property.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // The property appeared in the input.
	PresenceWasNull                      // The property was an explicit null.
)

// Has reports whether all bits of q are set.
func (p Presence) Has(q Presence) bool { return p&q == q }

// ValueState classifies a FieldDef value for default-value synthesis.
type ValueState int

const (
	ValueAbsent ValueState = iota // No value property (or explicit undefined).
	ValueNull                     // Explicit null.
	ValueSet                      // A concrete value.
)

// ValueState reports whether the field carries a concrete value, an explicit
// null, or nothing at all. A non-nil Value is always treated as set so that
// trees built in code do not need to maintain presence flags.
func (f *FieldDef) ValueState() ValueState {
	if f == nil {
		return ValueAbsent
	}
	if f.Value != nil {
		return ValueSet
	}
	if f.ValuePresence.Has(PresenceWasNull) {
		return ValueNull
	}
	return ValueAbsent
}

// SetNullValue marks the value as an explicit null.
func (f *FieldDef) SetNullValue() {
	f.Value = nil
	f.ValuePresence |= PresenceSeen | PresenceWasNull
}
