package utils

import "testing"

func TestKebabCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"In Progress", "in-progress"},
		{"  a   b ", "a-b"},
		{"Done", "done"},
		{"TO DO", "to-do"},
		{"already-kebab", "already-kebab"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := KebabCase(c.in); got != c.want {
			t.Errorf("KebabCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKebabCaseIdempotent(t *testing.T) {
	for _, in := range []string{"In Progress", "  a   b ", "To Do", "done"} {
		once := KebabCase(in)
		if twice := KebabCase(once); twice != once {
			t.Errorf("KebabCase not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
