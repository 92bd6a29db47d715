package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "crosspost/internal/platform/net/http"
	"crosspost/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, d)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("%s = %d", path, rec.Code)
	}
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHealthAndService(t *testing.T) {
	started := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	testkit.Swap(t, &now, testkit.Clock(started.Add(90*time.Second)))
	d := Deps{ServiceName: "crosspost-api", StartedAt: started}

	var h HealthResponse
	get(t, d, "/health", &h)
	if !h.OK || h.Service != "crosspost-api" || h.Now != "2024-01-01T09:01:30Z" {
		t.Fatalf("health = %+v", h)
	}

	var s ServiceResponse
	get(t, d, "/service", &s)
	if s.Uptime != 90 || s.Adapters == nil {
		t.Fatalf("service = %+v", s)
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		deps Deps
		want string
	}{
		{"storage disabled", Deps{Adapters: []string{"mastodon"}}, "ok"},
		{"all up", Deps{PG: pinger{}, CH: pinger{}, Adapters: []string{"mastodon"}}, "ok"},
		{"pg down", Deps{PG: pinger{err: errors.New("refused")}, Adapters: []string{"mastodon"}}, "fail"},
		{"no adapters", Deps{}, "fail"},
		{"not a pinger", Deps{PG: struct{}{}, Adapters: []string{"mastodon"}}, "degraded"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var rr ReadyResponse
			get(t, c.deps, "/ready", &rr)
			if rr.Status != c.want || len(rr.Checks) != 3 {
				t.Fatalf("ready = %+v", rr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	var v struct {
		Service string `json:"service"`
		Version string `json:"version"`
	}
	get(t, Deps{ServiceName: "crosspost-api"}, "/version", &v)
	if v.Service != "crosspost-api" || v.Version == "" {
		t.Fatalf("version = %+v", v)
	}
}
