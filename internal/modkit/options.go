package modkit

import (
	"net/http"

	pstrings "crosspost/internal/platform/strings"
)

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
}

// WithName sets the name a module logs under and registers its ports with
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPrefix mounts a module under prefix, normalized to one leading slash and no trailing one
// a blank prefix panics since a module cannot own the api root
func WithPrefix(prefix string) Option {
	p := pstrings.MustPrefix(prefix)
	return func(c *buildCfg) { c.prefix = p }
}

// WithMiddlewares appends per module middleware, later options wrap inside earlier ones
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}
