// Package display renders entity instances to human-readable labels by
// substituting property placeholders in an entity's display template.
package display

import (
	"regexp"
	"strings"

	"github.com/facet-hq/facet/internal/codec"
	"github.com/facet-hq/facet/internal/schema"
)

var tokenRegex = regexp.MustCompile(`\{([^}]+)\}`)

// Resolve substitutes {propertyName} tokens in template with the instance's
// display-formatted values. List properties join their elements with ", ".
// Unknown or missing tokens resolve to the empty string; literal braces
// never survive in the output. Repeated occurrences of the same token all
// resolve identically.
func Resolve(template string, values map[string][]codec.Value, props map[string]schema.Property) string {
	matches := tokenRegex.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return template
	}

	seen := make(map[string]bool, len(matches))
	out := template
	for _, m := range matches {
		token, name := m[0], m[1]
		if seen[token] {
			continue
		}
		seen[token] = true
		out = strings.ReplaceAll(out, token, replacement(name, values, props))
	}
	return out
}

func replacement(name string, values map[string][]codec.Value, props map[string]schema.Property) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}
	vals := values[name]
	if len(vals) == 0 {
		return ""
	}

	if prop.IsList {
		parts := make([]string, 0, len(vals))
		for _, v := range vals {
			parts = append(parts, codec.FormatDisplayValue(v, prop.Type))
		}
		return strings.Join(parts, ", ")
	}
	return codec.FormatDisplayValue(vals[0], prop.Type)
}

// Tokens returns the distinct property names referenced by a template, in
// first-appearance order.
func Tokens(template string) []string {
	matches := tokenRegex.FindAllStringSubmatch(template, -1)
	var names []string
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
