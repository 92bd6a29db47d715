package content

import (
	"strings"
	"testing"

	perr "crosspost/internal/platform/errors"
	kit "crosspost/internal/platform/testkit"
)

func TestValidate_Boundary(t *testing.T) {
	cases := []struct {
		name  string
		in    Content
		valid bool
	}{
		{"empty", Content{}, false},
		{"empty text", Content{Text: ""}, false},
		{"whitespace text", Content{Text: " \n\t "}, false},
		{"text", Content{Text: "hi"}, true},
		{"photo only", Content{Photo: "u"}, true},
		{"video only", Content{Video: "v.mp4"}, true},
		{"document only", Content{Document: "d.pdf"}, true},
		{"audio only", Content{Audio: "a.ogg"}, true},
		{"tags do not count", Content{Tags: []string{"public"}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Validate(c.in)
			if got.Valid != c.valid {
				t.Fatalf("Validate(%+v).Valid = %v want %v (%v)", c.in, got.Valid, c.valid, got.Errors)
			}
			if !c.valid && len(got.Errors) == 0 {
				t.Fatalf("invalid result must carry at least one error")
			}
		})
	}
}

func TestValidate_MessageMentionsTextAndMedia(t *testing.T) {
	got := Validate(Content{})
	msg := strings.Join(got.Errors, " ")
	kit.MustContain(t, msg, "text")
	kit.MustContain(t, msg, "media")
}

func TestValidatorFunc(t *testing.T) {
	v := ValidatorFunc(func(c Content) Result {
		if c.Lang == "" {
			return Result{Errors: []string{"lang is required"}}
		}
		return Result{Valid: true}
	})
	if v.Validate(Content{Text: "x"}).Valid {
		t.Fatalf("custom validator should reject missing lang")
	}
	if !v.Validate(Content{Lang: "en"}).Valid {
		t.Fatalf("custom validator should accept lang")
	}
}

func TestValidationError(t *testing.T) {
	if ValidationError(Result{Valid: true}) != nil {
		t.Fatalf("valid result should produce nil error")
	}
	err := ValidationError(Result{Errors: []string{"a", "b"}})
	kit.MustCode(t, err, perr.ErrorCodeValidation)
	e, _ := perr.As(err)
	if d := e.Details(); len(d) != 2 || d[0] != "a" || d[1] != "b" {
		t.Fatalf("details = %v", d)
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := Content{Text: "hi", Tags: []string{"a"}, Options: map[string]any{"channel": "x"}}
	c := orig.Clone()
	c.Tags[0] = "b"
	c.Options["channel"] = "y"
	if orig.Tags[0] != "a" || orig.Options["channel"] != "x" {
		t.Fatalf("clone mutated original: %+v", orig)
	}
	if c.Option("channel") != "y" || c.Option("missing") != "" {
		t.Fatalf("Option lookup mismatch")
	}
}

func TestHasTagAndMedia(t *testing.T) {
	c := Content{Tags: []string{"public", "x"}, Audio: "a"}
	if !c.HasTag("x") || c.HasTag("y") {
		t.Fatalf("HasTag mismatch")
	}
	if !c.HasMedia() || c.HasText() {
		t.Fatalf("HasMedia/HasText mismatch")
	}
}
