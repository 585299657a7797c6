package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/facet-hq/facet/internal/dates"
	"github.com/facet-hq/facet/internal/schema"
)

// Cast converts a string-encoded stored value to its typed representation.
// Empty or invalid input casts to null; callers that must distinguish
// "absent" from "invalid" use Validate instead.
func Cast(raw string, t schema.PropertyType) Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Null()
	}

	switch t {
	case schema.TypeString:
		return String(raw)
	case schema.TypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Null()
		}
		return Number(n)
	case schema.TypeBoolean:
		switch raw {
		case "true", "1":
			return Bool(true)
		case "false", "0":
			return Bool(false)
		}
		return Null()
	case schema.TypeDate:
		d, err := dates.ParseDate(raw)
		if err != nil {
			return Null()
		}
		return Date(d)
	case schema.TypeDatetime:
		dt, err := dates.ParseDatetime(raw)
		if err != nil {
			return Null()
		}
		return Datetime(dt)
	case schema.TypeTime:
		tod, err := dates.ParseTimeOfDay(raw)
		if err != nil {
			return Null()
		}
		return TimeOfDay(tod)
	case schema.TypeReference:
		if uuid.Validate(raw) != nil {
			return Null()
		}
		return Ref(raw)
	}
	return Null()
}

// Format converts a typed value back to its canonical storage string.
// Returns false for null values and for values whose kind does not match
// the property type.
func Format(v Value, t schema.PropertyType) (string, bool) {
	if v.IsNull() {
		return "", false
	}

	switch t {
	case schema.TypeString:
		s, ok := v.AsString()
		return s, ok
	case schema.TypeNumber:
		n, ok := v.AsNumber()
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case schema.TypeBoolean:
		b, ok := v.AsBool()
		if !ok {
			return "", false
		}
		return strconv.FormatBool(b), true
	case schema.TypeDate:
		d, ok := v.AsTime()
		if !ok {
			return "", false
		}
		return d.Format(dates.DateLayout), true
	case schema.TypeDatetime:
		dt, ok := v.AsTime()
		if !ok {
			return "", false
		}
		return dt.Format(dates.DatetimeLayout), true
	case schema.TypeTime:
		tod, ok := v.AsTime()
		if !ok {
			return "", false
		}
		return tod.Format(dates.TimeLayout), true
	case schema.TypeReference:
		if !v.IsRef() {
			return "", false
		}
		s, _ := v.AsString()
		return s, true
	}
	return "", false
}

// Validate checks string-encoded input values against the property's type
// and flags. values carries the raw input: one element for a scalar, any
// number (including zero) for a list. The returned message is human-facing
// and actionable.
func Validate(values []string, t schema.PropertyType, required, isList bool) (bool, string) {
	if isList {
		if len(values) == 0 {
			if required {
				return false, "This field is required"
			}
			return true, ""
		}
		for _, raw := range values {
			if ok, msg := validateScalar(raw, t, true); !ok {
				return false, msg
			}
		}
		return true, ""
	}

	if len(values) > 1 {
		return false, "Expected a single value"
	}
	raw := ""
	if len(values) == 1 {
		raw = values[0]
	}
	if strings.TrimSpace(raw) == "" {
		if required {
			return false, "This field is required"
		}
		return true, ""
	}
	return validateScalar(raw, t, true)
}

// validateScalar checks one non-empty raw value against the type's shape.
// rejectEmpty controls whether an empty element inside a list fails.
func validateScalar(raw string, t schema.PropertyType, rejectEmpty bool) (bool, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if rejectEmpty {
			return false, "Value must not be empty"
		}
		return true, ""
	}

	switch t {
	case schema.TypeString:
		return true, ""
	case schema.TypeNumber:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return false, fmt.Sprintf("'%s' is not a number", raw)
		}
	case schema.TypeBoolean:
		switch raw {
		case "true", "false", "1", "0":
		default:
			return false, fmt.Sprintf("'%s' is not a boolean", raw)
		}
	case schema.TypeDate:
		if !dates.IsValidDate(raw) {
			return false, fmt.Sprintf("'%s' is not a date in YYYY-MM-DD format", raw)
		}
	case schema.TypeDatetime:
		if !dates.IsValidDatetime(raw) {
			return false, fmt.Sprintf("'%s' is not a valid datetime", raw)
		}
	case schema.TypeTime:
		if !dates.IsValidTimeOfDay(raw) {
			return false, fmt.Sprintf("'%s' is not a time in HH:MM:SS format", raw)
		}
	case schema.TypeReference:
		if uuid.Validate(raw) != nil {
			return false, fmt.Sprintf("'%s' is not a valid record id", raw)
		}
	default:
		return false, fmt.Sprintf("unknown property type '%s'", t)
	}
	return true, ""
}

// ValidateDefault checks a property's declared default value against its
// own type. The empty string means "no default" and always passes.
func ValidateDefault(p schema.Property) (bool, string) {
	if p.Default == "" {
		return true, ""
	}
	return validateScalar(p.Default, p.Type, true)
}

// FormatDisplayValue renders a typed value for human display.
// Booleans become Yes/No; dates and times use locale-style dd/MM/yyyy
// formatting. Null renders as the empty string.
func FormatDisplayValue(v Value, t schema.PropertyType) string {
	if v.IsNull() {
		return ""
	}

	switch t {
	case schema.TypeBoolean:
		if b, ok := v.AsBool(); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	case schema.TypeNumber:
		if n, ok := v.AsNumber(); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case schema.TypeDate:
		if d, ok := v.AsTime(); ok {
			return d.Format("02/01/2006")
		}
	case schema.TypeDatetime:
		if dt, ok := v.AsTime(); ok {
			return dt.Format("02/01/2006 15:04")
		}
	case schema.TypeTime:
		if tod, ok := v.AsTime(); ok {
			return tod.Format("15:04")
		}
	default:
		if s, ok := v.AsString(); ok {
			return s
		}
	}

	if s, ok := v.AsString(); ok {
		return s
	}
	return ""
}
