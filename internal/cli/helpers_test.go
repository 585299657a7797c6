package cli

import (
	"reflect"
	"testing"
)

func TestParseSetArgs(t *testing.T) {
	got, err := parseSetArgs([]string{"firstName=Ann", "tags=a", "tags=b", "age="})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := map[string][]string{
		"firstName": {"Ann"},
		"tags":      {"a", "b"},
		"age":       {""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsed %v, want %v", got, want)
	}
}

func TestParseSetArgsRejectsBadAssignments(t *testing.T) {
	for _, bad := range []string{"noequals", "=value", " =x"} {
		if _, err := parseSetArgs([]string{bad}); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestParseSetArgsKeepsValueEquals(t *testing.T) {
	got, err := parseSetArgs([]string{"formula=a=b"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got["formula"][0] != "a=b" {
		t.Errorf("value with '=' mangled: %q", got["formula"][0])
	}
}
