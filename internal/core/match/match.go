// Package match evaluates a content item against a rule's declarative filter
package match

import (
	"slices"

	"crosspost/internal/core/content"
)

// Conditions is a rule filter. Every present field must hold; an empty value imposes no constraint
type Conditions struct {
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`         // any-of
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`         // exact
	Lang     string   `json:"lang,omitempty" yaml:"lang,omitempty"`         // exact
	HasMedia *bool    `json:"hasMedia,omitempty" yaml:"hasMedia,omitempty"` // presence of any media reference
}

// Empty reports whether the conditions constrain nothing
func (c *Conditions) Empty() bool {
	return c == nil || (len(c.Tags) == 0 && c.Type == "" && c.Lang == "" && c.HasMedia == nil)
}

// Matches reports whether c satisfies cond. Nil or empty conditions match everything
func Matches(c content.Content, cond *Conditions) bool {
	if cond.Empty() {
		return true
	}
	if len(cond.Tags) > 0 && !slices.ContainsFunc(cond.Tags, c.HasTag) {
		return false
	}
	if cond.Type != "" && cond.Type != c.Type {
		return false
	}
	if cond.Lang != "" && cond.Lang != c.Lang {
		return false
	}
	if cond.HasMedia != nil && *cond.HasMedia != c.HasMedia() {
		return false
	}
	return true
}
