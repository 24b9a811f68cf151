package graduate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Screen identifies which edit surface a submission came from. Each
// screen may only touch its own allow-listed columns; anything else in
// the form is ignored.
type Screen string

const (
	ScreenCheckIn Screen = "checkin"
	ScreenGown    Screen = "gown"
	ScreenAdmin   Screen = "admin"
)

// ValidationError carries per-field messages back to the form. Nothing
// is saved when any field fails.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindBool
	kindPositiveIntOrNull
)

type fieldSpec struct {
	column string
	kind   fieldKind
}

var fieldSpecs = map[string]fieldSpec{
	"attended":           {"attended", kindBool},
	"seat_row":           {"seat_row", kindText},
	"seat_number":        {"seat_number", kindText},
	"presentation_order": {"presentation_order", kindPositiveIntOrNull},
	"gown_size":          {"gown_size", kindText},
	"gown_collected":     {"gown_collected", kindBool},
	"gown_returned":      {"gown_returned", kindBool},
	"gown_notes":         {"gown_notes", kindText},
	"display_name":       {"display_name", kindText},
	"course_name":        {"course_name", kindText},
}

var screenFields = map[Screen][]string{
	ScreenCheckIn: {"attended", "seat_row", "seat_number", "presentation_order"},
	ScreenGown:    {"gown_size", "gown_collected", "gown_returned", "gown_notes"},
	ScreenAdmin: {
		"attended", "seat_row", "seat_number", "presentation_order",
		"gown_size", "gown_collected", "gown_returned", "gown_notes",
		"display_name", "course_name",
	},
}

// ParseForm coerces a submitted form into column changes for the given
// screen. Checkbox fields follow HTML semantics: an absent key means
// unchecked, so every bool on the screen always yields a value. Text
// fields are only applied when present in the submission.
func ParseForm(screen Screen, form url.Values) (map[string]any, error) {
	fields, ok := screenFields[screen]
	if !ok {
		return nil, fmt.Errorf("unknown screen %q", screen)
	}

	changes := make(map[string]any)
	invalid := make(map[string]string)

	for _, name := range fields {
		spec := fieldSpecs[name]
		raw := strings.TrimSpace(form.Get(name))

		switch spec.kind {
		case kindBool:
			changes[spec.column] = ParseCheckbox(raw)
		case kindText:
			if _, present := form[name]; present {
				changes[spec.column] = raw
			}
		case kindPositiveIntOrNull:
			if _, present := form[name]; !present {
				continue
			}
			if raw == "" {
				changes[spec.column] = (*int)(nil)
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				invalid[name] = "must be a positive whole number or empty"
				continue
			}
			changes[spec.column] = n
		}
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	return changes, nil
}

// ParseCheckbox coerces a submitted checkbox value; anything not
// recognizably truthy, including an absent key, reads as unchecked.
func ParseCheckbox(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
