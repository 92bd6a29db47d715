// Package http provides the chi backed server, router facade and JSON envelope helpers
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "crosspost/internal/platform/net"
	"crosspost/internal/platform/net/http/bind"
)

// Envelope is the standard response body for all endpoints
type Envelope struct {
	pnet.Wire
	Page *Page `json:"page,omitempty"`
}

// Page describes pagination when returning lists
type Page struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Cursor   string `json:"cursor,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps a project error into an envelope and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, wire := pnet.Error(err, pnet.RequestID(r.Context()))
	JSON(w, status, Envelope{Wire: wire})
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	Page   *Page
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if err, ok := resp.Body.(error); ok && err != nil {
		RespondError(w, r, err)
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}
	_, wire := pnet.Status(status, resp.Body, pnet.RequestID(r.Context()))
	JSON(w, status, Envelope{Wire: wire, Page: resp.Page})
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }

// List returns a 200 response with items as data and a pagination block
func List(items any, total, page, size int, cursor string) Response {
	return Response{
		Status: stdhttp.StatusOK,
		Body:   items,
		Page:   &Page{Total: total, Page: page, PageSize: size, Cursor: cursor},
	}
}

// JSONHandler decodes and validates T, calls fn and wraps the result as 200
func JSONHandler[T, R any](fn func(*stdhttp.Request, T) (R, error)) Handler {
	return Handle(func(r *stdhttp.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

// NoBodyHandler calls fn without reading the request body and wraps the result as 200
func NoBodyHandler[R any](fn func(*stdhttp.Request) (R, error)) Handler {
	return Handle(func(r *stdhttp.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

// GetJSON mounts a body-less JSON handler for GET
func GetJSON[R any](r Router, path string, h func(*stdhttp.Request) (R, error)) {
	r.Get(path, NoBodyHandler(h))
}

// DeleteJSON mounts a body-less JSON handler for DELETE
func DeleteJSON[R any](r Router, path string, h func(*stdhttp.Request) (R, error)) {
	r.Delete(path, NoBodyHandler(h))
}

// PostJSON mounts a JSON handler for POST
func PostJSON[T, R any](r Router, path string, h func(*stdhttp.Request, T) (R, error)) {
	r.Post(path, JSONHandler(h))
}

// PutJSON mounts a JSON handler for PUT
func PutJSON[T, R any](r Router, path string, h func(*stdhttp.Request, T) (R, error)) {
	r.Put(path, JSONHandler(h))
}
