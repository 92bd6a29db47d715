package httpkit

import (
	"net/http"
	"strings"
)

// APIVersion is the path segment the crosspost api is served under
const APIVersion = "v1"

// Middlewares is a chain applied to one mounted scope, outermost first
type Middlewares = []func(http.Handler) http.Handler

// APIPrefix returns "/api/<version>" with stray slashes trimmed from version
func APIPrefix(version string) string { return "/api/" + strings.Trim(version, "/") }

// MountUnder gives mount a subrouter at prefix with mw installed ahead of its routes
func MountUnder(r Router, prefix string, mw Middlewares, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPI mounts under APIPrefix(version)
func MountAPI(r Router, version string, mw Middlewares, mount func(Router)) {
	MountUnder(r, APIPrefix(version), mw, mount)
}

// MountAPIV1 mounts under the current APIVersion
func MountAPIV1(r Router, mw Middlewares, mount func(Router)) {
	MountAPI(r, APIVersion, mw, mount)
}
