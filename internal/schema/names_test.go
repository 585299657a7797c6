package schema

import "testing"

func TestMachineName(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"First Name", "firstName"},
		{"firstName", "firstname"},
		{"Age", "age"},
		{"Date of Birth", "dateOfBirth"},
		{"Email Address 2", "emailAddress2"},
		{"  Trimmed  Label  ", "trimmedLabel"},
		{"Zip/Postal Code", "zipPostalCode"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MachineName(tc.label); got != tc.want {
			t.Errorf("MachineName(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}
