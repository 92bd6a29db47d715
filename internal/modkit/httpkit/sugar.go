package httpkit

import (
	"net/http"

	phttp "crosspost/internal/platform/net/http"
)

// GetJSON mounts a body-less handler under GET
func GetJSON[R any](r Router, path string, h func(*http.Request) (R, error)) {
	phttp.GetJSON(r, path, h)
}

// DeleteJSON mounts a body-less handler under DELETE
func DeleteJSON[R any](r Router, path string, h func(*http.Request) (R, error)) {
	phttp.DeleteJSON(r, path, h)
}

// PostJSON decodes and validates T then mounts under POST
func PostJSON[T, R any](r Router, path string, h func(*http.Request, T) (R, error)) {
	phttp.PostJSON(r, path, h)
}

// PutJSON decodes and validates T then mounts under PUT
func PutJSON[T, R any](r Router, path string, h func(*http.Request, T) (R, error)) {
	phttp.PutJSON(r, path, h)
}

// Get registers a no-body handler through Call so it may return a Response such as List
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}
