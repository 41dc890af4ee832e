package groups

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidGroup is returned when a group definition is incomplete or inconsistent.
var ErrInvalidGroup = errors.New("invalid group definition")

// Group is one experimental cohort sharing a single EC treatment value.
type Group struct {
	Name  string  `mapstructure:"name" yaml:"name" json:"name"`
	EC    float64 `mapstructure:"ec" yaml:"ec" json:"ec"`
	Color string  `mapstructure:"color" yaml:"color" json:"color"`
}

// Registry holds groups in canonical order. The zero value is an empty registry.
type Registry struct {
	groups []Group
	index  map[string]int
}

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Defaults returns the four school cohorts of the EC experiment.
func Defaults() []Group {
	return []Group{
		{Name: "송도고", EC: 1.0, Color: "#1f77b4"},
		{Name: "하늘고", EC: 2.0, Color: "#2ca02c"},
		{Name: "아라고", EC: 4.0, Color: "#ff7f0e"},
		{Name: "동산고", EC: 8.0, Color: "#d62728"},
	}
}

// New validates the given groups and returns a registry preserving their order.
// Names are stored NFC-normalized so lookups are independent of the source's composition form.
func New(gs []Group) (*Registry, error) {
	r := &Registry{groups: make([]Group, 0, len(gs)), index: make(map[string]int, len(gs))}
	for i, g := range gs {
		g.Name = norm.NFC.String(strings.TrimSpace(g.Name))
		if g.Name == "" {
			return nil, fmt.Errorf("%w: group %d has no name", ErrInvalidGroup, i+1)
		}
		if _, dup := r.index[g.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate group %q", ErrInvalidGroup, g.Name)
		}
		if g.EC <= 0 {
			return nil, fmt.Errorf("%w: group %q has non-positive EC %v", ErrInvalidGroup, g.Name, g.EC)
		}
		if !colorRe.MatchString(g.Color) {
			return nil, fmt.Errorf("%w: group %q has invalid color %q (want #rrggbb)", ErrInvalidGroup, g.Name, g.Color)
		}
		r.index[g.Name] = len(r.groups)
		r.groups = append(r.groups, g)
	}
	return r, nil
}

// MustDefault returns a registry of Defaults. It panics only if Defaults is malformed.
func MustDefault() *Registry {
	r, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return r
}

// Len reports the number of groups.
func (r *Registry) Len() int { return len(r.groups) }

// All returns a copy of the groups in canonical order.
func (r *Registry) All() []Group {
	out := make([]Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// Names returns group names in canonical order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.groups))
	for i, g := range r.groups {
		out[i] = g.Name
	}
	return out
}

// Lookup finds a group by name.
func (r *Registry) Lookup(name string) (Group, bool) {
	i, ok := r.index[norm.NFC.String(name)]
	if !ok {
		return Group{}, false
	}
	return r.groups[i], true
}

// Index returns the canonical position of name, or -1.
func (r *Registry) Index(name string) int {
	i, ok := r.index[norm.NFC.String(name)]
	if !ok {
		return -1
	}
	return i
}
