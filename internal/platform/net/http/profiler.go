package http

import (
	stdhttp "net/http"
	"strings"

	mw "github.com/go-chi/chi/v5/middleware"
)

// DefaultProfilerPrefix is where pprof is served when no prefix is given
const DefaultProfilerPrefix = "/debug"

// MountProfiler serves the pprof index and profiles under prefix, nothing is mounted when disabled
// The profiles live at <prefix>/pprof/..., e.g. /debug/pprof/heap
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = DefaultProfilerPrefix
	}

	h := stdhttp.StripPrefix(prefix, mw.Profiler())
	serve := func(w stdhttp.ResponseWriter, req *stdhttp.Request) { h.ServeHTTP(w, req) }
	r.Get(prefix, serve)
	r.Get(prefix+"/*", serve)
}
