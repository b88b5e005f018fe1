package forms

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValidationError carries per-field messages from a failed Parse. The
// submission is blocked before any backend call; the form stays open
// with the draft preserved so the user can fix and retry.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for name, msg := range e.Fields {
		parts = append(parts, name+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Parse validates the submitted values against the schema and coerces
// them into the typed payload sent to the backend:
//   - Decimal fields parse as float64, Integer fields as int
//   - Bool fields follow checkbox semantics ("on"/"true" => true,
//     absent => false, always present in the payload)
//   - empty optional fields are omitted entirely, never sent as 0 or null
//   - Date fields must be yyyy-mm-dd
//
// On any violation Parse returns a *ValidationError and a nil payload.
func (s Schema) Parse(values url.Values) (map[string]any, error) {
	payload := make(map[string]any, len(s.Fields))
	verr := &ValidationError{}

	for _, f := range s.Fields {
		raw := strings.TrimSpace(values.Get(f.Name))

		if f.Kind == Bool {
			payload[f.Name] = raw == "on" || raw == "true" || raw == "1"
			continue
		}

		if raw == "" {
			if f.Required {
				verr.add(f.Name, "required")
			}
			// Optional and empty: omit from the payload.
			continue
		}

		switch f.Kind {
		case Decimal:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				verr.add(f.Name, "must be a number")
				continue
			}
			if err := f.checkRange(v); err != nil {
				verr.add(f.Name, err.Error())
				continue
			}
			payload[f.Name] = v

		case Integer:
			v, err := strconv.Atoi(raw)
			if err != nil {
				verr.add(f.Name, "must be a whole number")
				continue
			}
			if err := f.checkRange(float64(v)); err != nil {
				verr.add(f.Name, err.Error())
				continue
			}
			payload[f.Name] = v

		case Date:
			if _, err := time.Parse("2006-01-02", raw); err != nil {
				verr.add(f.Name, "must be a date (yyyy-mm-dd)")
				continue
			}
			payload[f.Name] = raw

		case Enum:
			if !f.allowsOption(raw) {
				verr.add(f.Name, "invalid value")
				continue
			}
			payload[f.Name] = raw

		default:
			if f.MaxLen > 0 && len(raw) > f.MaxLen {
				verr.add(f.Name, fmt.Sprintf("too long (max %d characters)", f.MaxLen))
				continue
			}
			payload[f.Name] = raw
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return payload, nil
}

func (f Field) checkRange(v float64) error {
	if f.NonNegative && v < 0 {
		return fmt.Errorf("must not be negative")
	}
	if f.Min == 0 && f.Max == 0 {
		return nil
	}
	if v < f.Min || (f.Max != 0 && v > f.Max) {
		if f.Max != 0 {
			return fmt.Errorf("must be between %g and %g", f.Min, f.Max)
		}
		return fmt.Errorf("must be at least %g", f.Min)
	}
	return nil
}

func (f Field) allowsOption(v string) bool {
	for _, opt := range f.Options {
		if v == opt {
			return true
		}
	}
	return false
}
