package adapter

import (
	"slices"
	"strings"
)

// Capability names one optional behavior an adapter may support
type Capability string

// Capability vocabulary
const (
	CapMedia    Capability = "media"
	CapDelete   Capability = "delete"
	CapReply    Capability = "reply"
	CapEdit     Capability = "edit"
	CapThreads  Capability = "threads"
	CapPhoto    Capability = "photo"
	CapVideo    Capability = "video"
	CapDocument Capability = "document"
	CapAudio    Capability = "audio"
)

var vocabulary = []Capability{CapMedia, CapDelete, CapReply, CapEdit, CapThreads, CapPhoto, CapVideo, CapDocument, CapAudio}

// Known reports whether c belongs to the capability vocabulary
func (c Capability) Known() bool { return slices.Contains(vocabulary, c) }

// ParseCapabilities converts tokens into a set, returning the tokens it did not recognize
func ParseCapabilities(tokens ...string) (CapabilitySet, []string) {
	set := CapabilitySet{}
	var unknown []string
	for _, t := range tokens {
		c := Capability(strings.ToLower(strings.TrimSpace(t)))
		if c == "" {
			continue
		}
		if !c.Known() {
			unknown = append(unknown, t)
			continue
		}
		set[c] = struct{}{}
	}
	return set, unknown
}

// CapabilitySet is an unordered set of capability tokens
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from caps
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has is a pure membership test
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the tokens sorted
func (s CapabilitySet) List() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	slices.Sort(out)
	return out
}

// Limits are per-adapter numeric constraints
type Limits struct {
	MaxLength int `json:"maxLength"` // text length in characters, 0 is unbounded
}

// Allows reports whether n characters fit within the limit
func (l Limits) Allows(n int) bool { return l.MaxLength <= 0 || n <= l.MaxLength }
