package schema

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// MachineName derives a property's camelCase machine name from its display
// label: "First Name" -> "firstName", "Age (years)" -> "ageYears".
//
// The slug library handles unicode transliteration and symbol stripping;
// the dash-separated result is then camel-joined.
func MachineName(label string) string {
	slugged := goslug.Make(label)
	if slugged == "" {
		return ""
	}

	parts := strings.Split(slugged, "-")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
