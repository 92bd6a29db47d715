package module

import (
	"testing"

	"crosspost/internal/modkit/httpkit"
	"crosspost/internal/platform/testkit"
)

type Publisher interface{ Publish() string }

type pubImpl struct{ v string }

func (p pubImpl) Publish() string { return p.v }

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string               { return m.name }
func (m fakeModule) Ports() any                 { return m.ports }
func (m fakeModule) MountRoutes(httpkit.Router) {}

func TestPortsOf(t *testing.T) {
	type Ports struct {
		Publisher Publisher
		Other     int
	}
	type hidden struct{ p Publisher }

	cases := []struct {
		name  string
		ports any
		want  string
		ok    bool
	}{
		{"nil", nil, "", false},
		{"direct", Publisher(pubImpl{"direct"}), "direct", true},
		{"bundle", Ports{Publisher: pubImpl{"field"}}, "field", true},
		{"bundle pointer", &Ports{Publisher: pubImpl{"ptr"}}, "ptr", true},
		{"nil pointer", (*Ports)(nil), "", false},
		{"unexported field", hidden{p: pubImpl{"x"}}, "", false},
		{"scalar", 42, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[Publisher](fakeModule{name: tc.name, ports: tc.ports})
			if ok != tc.ok || (ok && got.Publish() != tc.want) {
				t.Fatalf("PortsOf = %v %v", got, ok)
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	m := fakeModule{name: "publish", ports: pubImpl{"ok"}}
	if MustPortsOf[Publisher](m).Publish() != "ok" {
		t.Fatalf("MustPortsOf mismatch")
	}
	testkit.MustPanic(t, func() { MustPortsOf[Publisher](fakeModule{name: "meta"}) })
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("publish", pubImpl{"a"})
	Register("publish", pubImpl{"b"})
	got, ok := PortsAs[Publisher]("publish")
	if !ok || got.Publish() != "b" {
		t.Fatalf("PortsAs = %v %v", got, ok)
	}
	if _, ok := PortsAs[int]("publish"); ok {
		t.Fatalf("type mismatch should be false")
	}
	if _, ok := PortsAs[Publisher]("missing"); ok {
		t.Fatalf("missing should be false")
	}
	if n := Names(); len(n) != 1 || n[0] != "publish" {
		t.Fatalf("Names = %v", n)
	}
}
