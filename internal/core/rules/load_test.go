package rules

import (
	"path/filepath"
	"strings"
	"testing"

	perr "crosspost/internal/platform/errors"
	kit "crosspost/internal/platform/testkit"
)

func TestLoadFile_YAML(t *testing.T) {
	set, err := LoadFile(filepath.Join("testdata", "rules.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(set.Rules) != 3 {
		t.Fatalf("rules = %d want 3", len(set.Rules))
	}
	r := set.Rules[0]
	if r.Name != "announce" || len(r.If.Tags) != 1 || r.If.Lang != "en" || len(r.Publish) != 2 {
		t.Fatalf("first rule = %+v", r)
	}
	if r.Publish[1].Channel != "@crosspost_news" || r.Publish[1].Delay != "30m" {
		t.Fatalf("destination = %+v", r.Publish[1])
	}
	if hm := set.Rules[2].If.HasMedia; hm == nil || !*hm {
		t.Fatalf("hasMedia not decoded")
	}
}

func TestLoad_BareListAndJSON(t *testing.T) {
	set, err := Load(strings.NewReader(`
- name: a
  publish: [{adapter: x, delay: 1500}]
`))
	if err != nil || len(set.Rules) != 1 {
		t.Fatalf("bare list: %+v %v", set, err)
	}

	set, err = Load(strings.NewReader(`{"rules":[{"name":"j","if":{"tags":["public"]},"publish":[{"adapter":"x","delay":"2h"}]}]}`))
	if err != nil || set.Rules[0].Name != "j" || set.Rules[0].Publish[0].Delay != "2h" {
		t.Fatalf("json: %+v %v", set, err)
	}
}

func TestLoad_ValidationCollectsEverything(t *testing.T) {
	_, err := Load(strings.NewReader(`
rules:
  - name: ""
    publish: []
  - name: bad-delay
    publish:
      - adapter: x
        delay: tomorrow
      - delay: 5m
`))
	kit.MustCode(t, err, perr.ErrorCodeValidation)
	e, _ := perr.As(err)
	joined := strings.Join(e.Details(), "|")
	kit.MustContain(t, joined, "name is a required field")
	kit.MustContain(t, joined, "publish must be at least 1")
	kit.MustContain(t, joined, "delay is not a valid delay expression")
	kit.MustContain(t, joined, "adapter is a required field")
}

func TestRegisterDelayTag(t *testing.T) {
	if err := registerDelayTag(); err != nil {
		t.Fatalf("re-registering the delay tag: %v", err)
	}
	set := Set{Rules: []Rule{{Name: "r", Publish: []Destination{{Adapter: "x", Delay: "soon"}}}}}
	kit.MustCode(t, set.Validate(), perr.ErrorCodeValidation)
}

func TestLoad_DuplicateNames(t *testing.T) {
	_, err := Load(strings.NewReader(`
- name: a
  publish: [{adapter: x}]
- name: a
  publish: [{adapter: y}]
`))
	kit.MustCode(t, err, perr.ErrorCodeValidation)
}

func TestLoad_Malformed(t *testing.T) {
	for _, in := range []string{"", "   ", "rules: [", "just a string", "rules: {name: x}"} {
		_, err := Load(strings.NewReader(in))
		kit.MustCode(t, err, perr.ErrorCodeValidation)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	kit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}
