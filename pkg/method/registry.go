// Package method holds the per-method extraction and matching constants used to
// drive the match-graph stage.
//
// A Registry is built once at start-up from two tables, one for extraction size
// limits and one for matcher settings. A method is only usable when it appears
// in both. The registry is validated eagerly and never mutated afterwards.
package method

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// MatcherKind selects how tentative matches are filtered.
type MatcherKind string

const (
	MatcherRatio      MatcherKind = "ratio"
	MatcherSimilarity MatcherKind = "similarity"
)

// Valid reports whether k is a known matcher kind.
func (k MatcherKind) Valid() bool {
	return k == MatcherRatio || k == MatcherSimilarity
}

// Size holds the feature extraction limits at octave 0.
type Size struct {
	// MaxEdge is the maximum image edge.
	MaxEdge int
	// MaxSumEdges is the maximum sum of image edges.
	MaxSumEdges int
}

// Matcher holds the matcher configuration of a method.
type Matcher struct {
	Kind      MatcherKind
	Threshold float64
}

// Config is the resolved configuration of one method.
type Config struct {
	Name string
	Size
	Matcher
}

// DefaultSizes returns the built-in extraction size table.
func DefaultSizes() map[string]Size {
	return map[string]Size{
		"sift":       {MaxEdge: 1600, MaxSumEdges: 3200},
		"surf":       {MaxEdge: 1600, MaxSumEdges: 3200},
		"d2-net":     {MaxEdge: 1600, MaxSumEdges: 2800},
		"keynet":     {MaxEdge: 1600, MaxSumEdges: 3200},
		"r2d2":       {MaxEdge: 1600, MaxSumEdges: 3200},
		"superpoint": {MaxEdge: 1600, MaxSumEdges: 2800},
	}
}

// DefaultMatchers returns the built-in matcher table.
func DefaultMatchers() map[string]Matcher {
	return map[string]Matcher{
		"sift":       {Kind: MatcherRatio, Threshold: 0.8},
		"surf":       {Kind: MatcherRatio, Threshold: 0.8},
		"d2-net":     {Kind: MatcherSimilarity, Threshold: 0.8},
		"keynet":     {Kind: MatcherRatio, Threshold: 0.9},
		"r2d2":       {Kind: MatcherSimilarity, Threshold: 0.9},
		"superpoint": {Kind: MatcherSimilarity, Threshold: 0.755},
	}
}

// Registry is an immutable lookup table of method configurations.
type Registry struct {
	sizes    map[string]Size
	matchers map[string]Matcher
}

// NewRegistry copies and validates both tables.
func NewRegistry(sizes map[string]Size, matchers map[string]Matcher) (*Registry, error) {
	reg := &Registry{
		sizes:    make(map[string]Size, len(sizes)),
		matchers: make(map[string]Matcher, len(matchers)),
	}

	for name, size := range sizes {
		if err := validateSize(size); err != nil {
			return nil, errors.Wrapf(err, "method %q", name)
		}
		reg.sizes[name] = size
	}

	for name, matcher := range matchers {
		if err := validateMatcher(matcher); err != nil {
			return nil, errors.Wrapf(err, "method %q", name)
		}
		reg.matchers[name] = matcher
	}

	return reg, nil
}

// NewDefaultRegistry returns the registry built from the default tables.
func NewDefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultSizes(), DefaultMatchers())
	if err != nil {
		panic(err)
	}

	return reg
}

func validateSize(size Size) error {
	if size.MaxEdge <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max edge must be positive, got %d", size.MaxEdge)
	}
	if size.MaxSumEdges < size.MaxEdge {
		return errors.Wrapf(ErrInvalidConfig, "max sum of edges %d is lower than max edge %d", size.MaxSumEdges, size.MaxEdge)
	}

	return nil
}

func validateMatcher(matcher Matcher) error {
	if !matcher.Kind.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown matcher %q", matcher.Kind)
	}
	if matcher.Threshold < 0 || matcher.Threshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "threshold %v is outside [0, 1]", matcher.Threshold)
	}

	return nil
}

// Lookup returns the configuration of the named method.
// It fails with an *UnknownMethodError when the method is missing from either table.
func (r *Registry) Lookup(name string) (Config, error) {
	size, okSize := r.sizes[name]
	matcher, okMatcher := r.matchers[name]
	if !okSize || !okMatcher {
		return Config{}, &UnknownMethodError{Name: name}
	}

	return Config{Name: name, Size: size, Matcher: matcher}, nil
}

// Names returns the sorted names of methods present in both tables.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sizes))
	for name := range r.sizes {
		if _, ok := r.matchers[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names
}

// String renders a method configuration on one line.
func (c Config) String() string {
	return fmt.Sprintf("%s max_edge=%d max_sum_edges=%d matcher=%s threshold=%v",
		c.Name, c.MaxEdge, c.MaxSumEdges, c.Kind, c.Threshold)
}
