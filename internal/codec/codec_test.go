package codec

import (
	"testing"

	"github.com/facet-hq/facet/internal/schema"
)

func TestCastFormatRoundTrip(t *testing.T) {
	// Format(Cast(s, T), T) == canonical form of s.
	cases := []struct {
		t    schema.PropertyType
		in   string
		want string
	}{
		{schema.TypeString, "hello", "hello"},
		{schema.TypeNumber, "42", "42"},
		{schema.TypeNumber, "3.50", "3.5"},
		{schema.TypeNumber, "-0.25", "-0.25"},
		{schema.TypeBoolean, "true", "true"},
		{schema.TypeBoolean, "1", "true"},
		{schema.TypeBoolean, "0", "false"},
		{schema.TypeDate, "2025-06-15", "2025-06-15"},
		{schema.TypeDatetime, "2025-06-15T14:00", "2025-06-15T14:00:00"},
		{schema.TypeDatetime, "2025-06-15T14:00:30", "2025-06-15T14:00:30"},
		{schema.TypeTime, "09:30:00", "09:30:00"},
		{schema.TypeReference, "4d8f6f0e-7c1a-4b4e-9f6d-2b6a8a1c9e11", "4d8f6f0e-7c1a-4b4e-9f6d-2b6a8a1c9e11"},
	}
	for _, tc := range cases {
		v := Cast(tc.in, tc.t)
		if v.IsNull() {
			t.Errorf("Cast(%q, %s) unexpectedly null", tc.in, tc.t)
			continue
		}
		got, ok := Format(v, tc.t)
		if !ok || got != tc.want {
			t.Errorf("Format(Cast(%q, %s)) = %q ok=%v, want %q", tc.in, tc.t, got, ok, tc.want)
		}
	}
}

func TestCastInvalidReturnsNull(t *testing.T) {
	cases := []struct {
		t  schema.PropertyType
		in string
	}{
		{schema.TypeString, ""},
		{schema.TypeNumber, "abc"},
		{schema.TypeBoolean, "yes"},
		{schema.TypeDate, "15/06/2025"},
		{schema.TypeDatetime, "2025-06-15"},
		{schema.TypeTime, "9:30"},
		{schema.TypeReference, "not-a-uuid"},
	}
	for _, tc := range cases {
		if v := Cast(tc.in, tc.t); !v.IsNull() {
			t.Errorf("Cast(%q, %s) = %v, want null", tc.in, tc.t, v.Raw())
		}
	}
}

func TestValidateScalars(t *testing.T) {
	// Required scalars reject missing and empty.
	if ok, msg := Validate(nil, schema.TypeString, true, false); ok || msg != "This field is required" {
		t.Fatalf("missing required: ok=%v msg=%q", ok, msg)
	}
	if ok, _ := Validate([]string{""}, schema.TypeString, true, false); ok {
		t.Fatal("empty required scalar must fail")
	}

	// Optional empties pass.
	if ok, _ := Validate(nil, schema.TypeNumber, false, false); !ok {
		t.Fatal("absent optional scalar must pass")
	}
	if ok, _ := Validate([]string{""}, schema.TypeNumber, false, false); !ok {
		t.Fatal("empty optional scalar must pass")
	}

	// Shape checks.
	if ok, msg := Validate([]string{"abc"}, schema.TypeNumber, false, false); ok || msg == "" {
		t.Fatal("non-numeric value must fail with a message")
	}
	if ok, _ := Validate([]string{"2025-02-30"}, schema.TypeDate, false, false); ok {
		t.Fatal("impossible date must fail")
	}
	if ok, _ := Validate([]string{"30"}, schema.TypeNumber, true, false); !ok {
		t.Fatal("valid number must pass")
	}

	// Multiple values on a non-list property fail.
	if ok, _ := Validate([]string{"a", "b"}, schema.TypeString, false, false); ok {
		t.Fatal("multiple values on a scalar must fail")
	}
}

func TestValidateLists(t *testing.T) {
	// Empty list fails only when required.
	if ok, msg := Validate(nil, schema.TypeString, true, true); ok || msg != "This field is required" {
		t.Fatalf("empty required list: ok=%v msg=%q", ok, msg)
	}
	if ok, _ := Validate(nil, schema.TypeString, false, true); !ok {
		t.Fatal("empty optional list must pass")
	}

	// Elements validated independently.
	if ok, _ := Validate([]string{"1", "2", "3"}, schema.TypeNumber, true, true); !ok {
		t.Fatal("valid number list must pass")
	}
	if ok, _ := Validate([]string{"1", "x"}, schema.TypeNumber, false, true); ok {
		t.Fatal("list with an invalid element must fail")
	}
}

func TestValidateIdempotent(t *testing.T) {
	values := []string{"2025-01-01"}
	for i := 0; i < 3; i++ {
		if ok, _ := Validate(values, schema.TypeDate, true, false); !ok {
			t.Fatalf("re-validation %d of a valid value must pass", i)
		}
	}
}

func TestValidateDefault(t *testing.T) {
	p := schema.Property{Type: schema.TypeNumber, Default: "10"}
	if ok, _ := ValidateDefault(p); !ok {
		t.Fatal("valid default must pass")
	}

	p.Default = "ten"
	if ok, msg := ValidateDefault(p); ok || msg == "" {
		t.Fatal("invalid default must fail with a message")
	}

	p.Default = ""
	if ok, _ := ValidateDefault(p); !ok {
		t.Fatal("absent default must pass")
	}
}

func TestFormatDisplayValue(t *testing.T) {
	cases := []struct {
		t    schema.PropertyType
		in   string
		want string
	}{
		{schema.TypeBoolean, "true", "Yes"},
		{schema.TypeBoolean, "false", "No"},
		{schema.TypeDate, "2025-06-15", "15/06/2025"},
		{schema.TypeDatetime, "2025-06-15T14:30:00", "15/06/2025 14:30"},
		{schema.TypeTime, "14:30:00", "14:30"},
		{schema.TypeNumber, "3.50", "3.5"},
		{schema.TypeString, "Ann", "Ann"},
	}
	for _, tc := range cases {
		got := FormatDisplayValue(Cast(tc.in, tc.t), tc.t)
		if got != tc.want {
			t.Errorf("FormatDisplayValue(%q, %s) = %q, want %q", tc.in, tc.t, got, tc.want)
		}
	}

	if got := FormatDisplayValue(Null(), schema.TypeString); got != "" {
		t.Errorf("null display = %q, want empty", got)
	}
}
