package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crosspost/internal/platform/testkit"
	"crosspost/internal/services/publish/domain"
)

const ruleFile = `
rules:
  - name: releases
    if:
      tags: [release]
    publish:
      - adapter: mastodon
      - adapter: telegram
        delay: 0
  - name: misc
    publish:
      - adapter: mastodon
`

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("CORE_ADAPTERS_IDS", "mastodon,telegram")
	p := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(p, []byte(ruleFile), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestRun_DryRun(t *testing.T) {
	rules := setup(t)
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-rules", rules, "-text", "v1 out", "-tags", "release, go", "-dry-run"}, nil, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, errOut.String())
	}
	var rep domain.Report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rep.DryRun || len(rep.Tasks) != 3 || len(rep.Results) != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRun_PublishFromStdin(t *testing.T) {
	rules := setup(t)
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-rules", rules, "-content", "-"}, strings.NewReader(`{"text":"hello"}`), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, errOut.String())
	}
	var rep domain.Report
	_ = json.Unmarshal(out.Bytes(), &rep)
	if len(rep.Results) != 1 || rep.Results[0].RuleName != "misc" {
		t.Fatalf("results = %+v", rep.Results)
	}
}

func TestRun_Errors(t *testing.T) {
	rules := setup(t)
	var out, errOut bytes.Buffer

	if code := run(context.Background(), []string{"-text", "x"}, nil, &out, &errOut); code != 2 {
		t.Fatalf("missing -rules exit = %d", code)
	}
	testkit.MustContain(t, errOut.String(), "-rules is required")

	if code := run(context.Background(), []string{"-rules", rules, "-content", "-"}, strings.NewReader("{"), &out, &errOut); code != 2 {
		t.Fatalf("bad content exit = %d", code)
	}

	out.Reset()
	if code := run(context.Background(), []string{"-rules", rules, "-text", "   "}, nil, &out, &errOut); code != 1 {
		t.Fatalf("invalid content exit = %d", code)
	}
	testkit.MustContain(t, out.String(), `"failure"`)

	if code := run(context.Background(), []string{"-bogus"}, nil, &out, &errOut); code != 2 {
		t.Fatalf("unknown flag exit = %d", code)
	}
}
