package module

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"crosspost/internal/adapters/memory"
	"crosspost/internal/core/adapter"
	"crosspost/internal/modkit"
	phttp "crosspost/internal/platform/net/http"
	"crosspost/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestModule_MountsUnderMeta(t *testing.T) {
	reg, _ := adapter.NewMap(memory.New("mastodon"))
	m := New(modkit.Deps{Adapters: reg})
	if m.Name() != "meta" || m.Ports() != nil {
		t.Fatalf("module = %s %v", m.Name(), m.Ports())
	}

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/service", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	testkit.MustContain(t, rec.Body.String(), `"adapters":["mastodon"]`)
	testkit.MustContain(t, rec.Body.String(), ServiceName)
}
