// Package forms implements the shared form-submission lifecycle: a
// schema describes each resource's fields, defaults, and constraints;
// Parse validates a submitted draft and coerces string inputs into the
// typed payload sent to the backend.
package forms

import (
	"time"
)

// Kind is the input type of a form field, driving both rendering
// (input type, required/min/max attributes) and coercion at submission.
type Kind int

const (
	Text Kind = iota
	Decimal
	Integer
	Date
	Bool
	Enum
)

// Field describes one form input.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool

	// Min/Max bound Integer and Decimal fields; both zero means no
	// explicit range (e.g. day-of-month fields use 1..31).
	Min float64
	Max float64

	// NonNegative rejects values below zero even when Min/Max are unset
	// (rates and amounts where zero is a legal value).
	NonNegative bool

	// MaxLen bounds Text fields; 0 means unbounded.
	MaxLen int

	// Default is the draft value before the user edits anything. For
	// Date fields the sentinel "today" resolves at draft creation.
	Default string

	// Options lists the accepted values for Enum fields, first is the
	// default unless Default is set.
	Options []string

	// Placeholder is a rendering hint only.
	Placeholder string
}

// Schema is the form descriptor for one resource.
type Schema struct {
	Resource string
	Fields   []Field
}

// Defaults returns the initial draft: empty strings, default enum
// values, the current date where applicable.
func (s Schema) Defaults() map[string]string {
	draft := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		draft[f.Name] = f.defaultValue()
	}
	return draft
}

func (f Field) defaultValue() string {
	switch {
	case f.Kind == Date && (f.Default == "" || f.Default == "today"):
		return time.Now().Format("2006-01-02")
	case f.Kind == Enum && f.Default == "" && len(f.Options) > 0:
		return f.Options[0]
	default:
		return f.Default
	}
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// InputType returns the HTML input type for rendering.
func (f Field) InputType() string {
	switch f.Kind {
	case Decimal, Integer:
		return "number"
	case Date:
		return "date"
	case Bool:
		return "checkbox"
	default:
		return "text"
	}
}

// Step returns the HTML step attribute for numeric inputs.
func (f Field) Step() string {
	switch f.Kind {
	case Decimal:
		return "0.01"
	case Integer:
		return "1"
	default:
		return ""
	}
}
