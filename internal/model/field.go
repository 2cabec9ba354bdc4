package model

// Field is an optional float64 metric value. A Field is either known or
// absent; absent fields contribute nothing to downstream scoring, which is
// different from a known zero. All metric reads go through Field so that
// "no data" can never be mistaken for "safe".
type Field struct {
	val   float64
	known bool
}

// Known returns a Field holding v.
func Known(v float64) Field {
	return Field{val: v, known: true}
}

// Unknown returns an absent Field.
func Unknown() Field {
	return Field{}
}

// Value returns the held value and whether it is known.
func (f Field) Value() (float64, bool) {
	return f.val, f.known
}

// Or returns the held value, or def when the field is absent.
func (f Field) Or(def float64) float64 {
	if !f.known {
		return def
	}
	return f.val
}

// IsKnown reports whether the field holds a value.
func (f Field) IsKnown() bool {
	return f.known
}

// MustValue returns the held value, or 0 when absent. Callers that care
// about the distinction use Value.
func (f Field) MustValue() float64 {
	return f.val
}
