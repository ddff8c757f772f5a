package tiercache

import (
	"fmt"
	"path"
	"sync"
)

// Matcher selects keys for invalidation. It is a closed variant: either an
// exact key or a glob pattern, never an ad hoc string that might be either.
type Matcher struct {
	value  string
	isGlob bool
}

// Exact matches a single key literally.
func Exact(key string) Matcher {
	return Matcher{value: key}
}

// Pattern matches keys against a path.Match-style glob ('*', '?', character
// classes). A malformed pattern is a programmer error and is rejected here,
// not at invalidation time.
func Pattern(glob string) (Matcher, error) {
	if _, err := path.Match(glob, ""); err != nil {
		return Matcher{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, glob, err)
	}
	return Matcher{value: glob, isGlob: true}, nil
}

// MustPattern is Pattern for static, known-good globs; it panics on error.
func MustPattern(glob string) Matcher {
	m, err := Pattern(glob)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether the matcher selects key.
func (m Matcher) Match(key string) bool {
	if !m.isGlob {
		return m.value == key
	}
	ok, _ := path.Match(m.value, key)
	return ok
}

// String returns the matcher's source text.
func (m Matcher) String() string { return m.value }

// Rule links an invalidation pattern to the dependency prefixes it cascades
// to: when a key matching Matcher is invalidated, every key carrying one of
// the Dependencies prefixes goes with it.
type Rule struct {
	Matcher      Matcher
	Dependencies []string
}

// RuleEngine holds the configured cascading-invalidation rules.
// Thread-safe; rules are typically registered at startup.
type RuleEngine struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRuleEngine creates an empty rule engine.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// AddRule registers a rule.
func (e *RuleEngine) AddRule(m Matcher, dependencies ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, Rule{
		Matcher:      m,
		Dependencies: append([]string(nil), dependencies...),
	})
}

// Rules returns a snapshot of the registered rules.
func (e *RuleEngine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Rule(nil), e.rules...)
}

// DependenciesFor returns the union of dependency prefixes of every rule
// whose matcher matches key.
func (e *RuleEngine) DependenciesFor(key string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var deps []string
	seen := make(map[string]struct{})
	for _, r := range e.rules {
		if !r.Matcher.Match(key) {
			continue
		}
		for _, d := range r.Dependencies {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			deps = append(deps, d)
		}
	}
	return deps
}
