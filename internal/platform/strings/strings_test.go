package strings

import (
	"testing"

	"crosspost/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"*"}
	if got := IfEmpty(nil, def); len(got) != 1 || got[0] != "*" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	if got := IfEmpty([]string{"https://a.example"}, def); got[0] != "https://a.example" {
		t.Fatalf("IfEmpty kept = %v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"publish":     "/publish",
		"/publish/":   "/publish",
		"  /a/b/ ":    "/a/b",
		"//publish//": "/publish",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q want %q", in, got, want)
		}
	}
	testkit.MustPanic(t, func() { MustPrefix(" / ") })
	testkit.MustPanic(t, func() { MustPrefix("") })
}

func TestSQLNull(t *testing.T) {
	if SQLNull("  ") != nil {
		t.Fatalf("blank should be NULL")
	}
	if SQLNull("timeout") != "timeout" {
		t.Fatalf("value should pass through")
	}
}
