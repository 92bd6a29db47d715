package config

import (
	"testing"
	"time"

	kit "crosspost/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	core := New().Prefix("CORE_")
	if got := core.Key("PORT"); got != "CORE_PORT" {
		t.Fatalf("Key() = %q, want %q", got, "CORE_PORT")
	}
	nested := core.Prefix("PUBLISH_")
	if got := nested.Key("MAX_DELAY"); got != "CORE_PUBLISH_MAX_DELAY" {
		t.Fatalf("nested Key() = %q", got)
	}
}

func TestScope(t *testing.T) {
	a := New().Prefix("CORE_ADAPTERS_").Scope(" mastodon-eu.1 ")
	if got := a.Key("CAPS"); got != "CORE_ADAPTERS_MASTODON_EU_1_CAPS" {
		t.Fatalf("Scope key = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  crosspost ")
	if got := c.MustString("NAME"); got != "crosspost" {
		t.Fatalf("MustString = %q, want %q", got, "crosspost")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_CONNS", "  8 ")
	if got := c.MustInt("CONNS"); got != 8 {
		t.Fatalf("MustInt = %d, want 8", got)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestMustDuration(t *testing.T) {
	c := New().Prefix("D_")
	t.Setenv("D_TIMEOUT", " 250ms ")
	if got := c.MustDuration("TIMEOUT"); got != 250*time.Millisecond {
		t.Fatalf("MustDuration = %v", got)
	}
	t.Setenv("D_BAD", "nope")
	kit.MustPanic(t, func() { _ = c.MustDuration("BAD") })
}

func TestPorts(t *testing.T) {
	c := New().Prefix("P_")
	t.Setenv("P_PORT", "4000")
	if got := c.MustPort("PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q", got)
	}
	if got := c.MayPort("MISSING", ":4100"); got != ":4100" {
		t.Fatalf("MayPort default = %q", got)
	}
	t.Setenv("P_BAD", "abc")
	kit.MustPanic(t, func() { _ = c.MustPort("BAD") })
	t.Setenv("P_OOB", "70000")
	kit.MustPanic(t, func() { _ = c.MayPort("OOB", "4000") })
}

func TestRequireAndHas(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_WS", "   ")
	c.Require("A")
	if !c.Has("A") || c.Has("WS") {
		t.Fatalf("Has mismatch")
	}
	kit.MustPanic(t, func() { c.Require("A", "WS") })
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}

	t.Setenv("M_INT", " 7 ")
	t.Setenv("M_BADINT", "x")
	if c.MayInt("INT", 0) != 7 || c.MayInt("BADINT", 3) != 3 || c.MayInt("NOPE", 9) != 9 {
		t.Fatalf("MayInt mismatch")
	}

	t.Setenv("M_BOOL", "false")
	t.Setenv("M_BADBOOL", "nope")
	if c.MayBool("BOOL", true) || !c.MayBool("BADBOOL", true) || !c.MayBool("NOPE", true) {
		t.Fatalf("MayBool mismatch")
	}

	t.Setenv("M_DUR", "150ms")
	t.Setenv("M_BADDUR", "nope")
	if c.MayDuration("DUR", time.Second) != 150*time.Millisecond || c.MayDuration("BADDUR", time.Minute) != time.Minute {
		t.Fatalf("MayDuration mismatch")
	}
}

func TestMayURL(t *testing.T) {
	c := New().Prefix("U_")
	if c.MayURL("MISSING") != nil {
		t.Fatalf("missing URL should be nil")
	}
	t.Setenv("U_BASE", "https://example.social/@me")
	if u := c.MayURL("BASE"); u == nil || u.Host != "example.social" {
		t.Fatalf("MayURL = %v", u)
	}
	t.Setenv("U_REL", "/relative")
	if c.MayURL("REL") != nil {
		t.Fatalf("relative URL should be rejected")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"a", "b"}
	if got := c.MayCSV("MISS", def); len(got) != 2 || got[0] != "a" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " one, two , ,three ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	t.Setenv("CSV_EMPTY", " , ,  ,")
	if got := c.MayCSV("EMPTY", []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISS", "json", "json", "console"); got != "json" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_FMT", "Console")
	if got := c.MayEnum("FMT", "json", "json", "console"); got != "Console" {
		t.Fatalf("MayEnum allowed value = %q", got)
	}
	t.Setenv("E_BAD", "xml")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "json", "json", "console") })
}
