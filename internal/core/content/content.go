// Package content holds the unit being distributed and its structural validation
package content

import (
	"maps"
	"slices"
	"strings"
)

// Content is one item to route. Media fields hold references (URLs, file paths, upload ids)
type Content struct {
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Photo    string         `json:"photo,omitempty" yaml:"photo,omitempty"`
	Video    string         `json:"video,omitempty" yaml:"video,omitempty"`
	Document string         `json:"document,omitempty" yaml:"document,omitempty"`
	Audio    string         `json:"audio,omitempty" yaml:"audio,omitempty"`
	Tags     []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Type     string         `json:"type,omitempty" yaml:"type,omitempty"`
	Lang     string         `json:"lang,omitempty" yaml:"lang,omitempty"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// HasMedia reports whether any media reference is present
func (c Content) HasMedia() bool {
	return c.Photo != "" || c.Video != "" || c.Document != "" || c.Audio != ""
}

// HasText reports whether the text body has non-whitespace content
func (c Content) HasText() bool { return strings.TrimSpace(c.Text) != "" }

// HasTag reports whether tag is one of the content's tags
func (c Content) HasTag(tag string) bool { return slices.Contains(c.Tags, tag) }

// Option returns the string value of an option, "" when absent or not a string
func (c Content) Option(key string) string {
	s, _ := c.Options[key].(string)
	return s
}

// Clone returns a copy whose Tags and Options can be mutated without touching c
// nested option values are shared
func (c Content) Clone() Content {
	out := c
	if c.Tags != nil {
		out.Tags = slices.Clone(c.Tags)
	}
	if c.Options != nil {
		out.Options = maps.Clone(c.Options)
	}
	return out
}
