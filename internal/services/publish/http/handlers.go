// Package http provides http transport for publish
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"crosspost/internal/modkit/httpkit"
	perr "crosspost/internal/platform/errors"
	"crosspost/internal/services/publish/domain"
)

// Service is everything the transport needs from publish
type Service interface {
	domain.PublisherPort
	domain.LifecyclePort
	domain.QueryPort
}

// Register mounts publish endpoints on the given router
func Register(r httpkit.Router, s Service) {
	h := &handlers{svc: s}
	r.Post("/", httpkit.Handle(h.publish))
	r.Post("/preview", httpkit.Handle(h.preview))
	httpkit.GetJSON(r, "/adapters", h.adapters)
	httpkit.Get(r, "/publications", h.publications)
	httpkit.PutJSON(r, "/posts/{adapter}/{id}", h.update)
	httpkit.DeleteJSON(r, "/posts/{adapter}/{id}", h.delete)
	httpkit.GetJSON(r, "/posts/{adapter}/{id}/feedback", h.feedback)
	r.Post("/replies/{adapter}", httpkit.Handle(h.reply))
}

type handlers struct{ svc Service }

// POST /publish
// routes content through the rules and dispatches the tasks
// a batch that stopped early still answers with its report, status follows the failure
func (h *handlers) publish(r *stdhttp.Request) httpkit.Response {
	in, err := httpkit.Bind[domain.PublishInput](r)
	if err != nil {
		return httpkit.Error(err)
	}
	return report(h.svc.Publish(r.Context(), in))
}

// POST /publish/preview
func (h *handlers) preview(r *stdhttp.Request) httpkit.Response {
	in, err := httpkit.Bind[domain.PublishInput](r)
	if err != nil {
		return httpkit.Error(err)
	}
	return report(h.svc.Preview(r.Context(), in))
}

func report(rep domain.Report, err error) httpkit.Response {
	switch {
	case err == nil:
		return httpkit.OK(rep)
	case rep.Failure == nil:
		return httpkit.Error(err)
	default:
		return httpkit.Response{Status: perr.HTTPStatus(err), Body: rep}
	}
}

// GET /publish/adapters
func (h *handlers) adapters(*stdhttp.Request) ([]domain.AdapterView, error) {
	return h.svc.Adapters(), nil
}

// GET /publish/publications?adapter=&rule=&batch=&page=&size=
func (h *handlers) publications(r *stdhttp.Request) (any, error) {
	qs := r.URL.Query()
	page, err := intParam(qs.Get("page"), "page")
	if err != nil {
		return nil, err
	}
	size, err := intParam(qs.Get("size"), "size")
	if err != nil {
		return nil, err
	}

	q := domain.PublicationQuery{
		Adapter:  strings.TrimSpace(qs.Get("adapter")),
		Rule:     strings.TrimSpace(qs.Get("rule")),
		BatchID:  strings.TrimSpace(qs.Get("batch")),
		Page:     max(page, 1),
		PageSize: h.svc.PageSize(size),
	}
	items, total, err := h.svc.Publications(r.Context(), q)
	if err != nil {
		return nil, err
	}
	return httpkit.List(items, total, q.Page, q.PageSize, ""), nil
}

// PUT /publish/posts/{adapter}/{id}
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Update(r.Context(), httpkit.Param(r, "adapter"), httpkit.Param(r, "id"), in.Content)
}

// DELETE /publish/posts/{adapter}/{id}
func (h *handlers) delete(r *stdhttp.Request) (domain.DeleteResult, error) {
	ok, err := h.svc.Delete(r.Context(), httpkit.Param(r, "adapter"), httpkit.Param(r, "id"))
	return domain.DeleteResult{Deleted: ok}, err
}

// GET /publish/posts/{adapter}/{id}/feedback
func (h *handlers) feedback(r *stdhttp.Request) (any, error) {
	return h.svc.Feedback(r.Context(), httpkit.Param(r, "adapter"), httpkit.Param(r, "id"))
}

// POST /publish/replies/{adapter}
func (h *handlers) reply(r *stdhttp.Request) httpkit.Response {
	in, err := httpkit.Bind[domain.ReplyInput](r)
	if err != nil {
		return httpkit.Error(err)
	}
	ref, err := h.svc.Reply(r.Context(), httpkit.Param(r, "adapter"), in.Target, in.Text)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Created(ref)
}

func intParam(s, name string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a non negative integer", name), name)
	}
	return n, nil
}
