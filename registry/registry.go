// Package registry holds the process-wide component registry: a write-once
// map from component key to its implementation, resolved against a SemVer
// constraint at compile time. Registry implements compile.ComponentResolver.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xyzen-dev/agentgraph/compile"
)

// DuplicateKeyError is returned by Register when key is already registered
// and override was not requested.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("component %q already registered", e.Key)
}

// NotFoundError is returned by Resolve/Get when no component is registered
// under key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no component registered under key %q", e.Key)
}

// NoVersionSatisfiesError is returned by Resolve when components exist for
// key but none satisfy a recognized constraint.
type NoVersionSatisfiesError struct {
	Key, Constraint string
}

func (e *NoVersionSatisfiesError) Error() string {
	return fmt.Sprintf("no version of component %q satisfies constraint %q", e.Key, e.Constraint)
}

// Warning is a non-fatal note Resolve records, e.g. a degraded constraint
// match. Consumers that care can drain Registry.Warnings(); most callers
// ignore it.
type Warning struct {
	Key, Constraint, Message string
}

// Registry is a process-wide, write-once-per-key store of registered
// components. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string][]compile.Component
	warnings []Warning

	ensureOnce sync.Once
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string][]compile.Component{}}
}

// EnsureRegistered registers the built-in components (ReAct, the four
// deep-research phases) exactly once, regardless of how many times it's
// called. Safe to call from multiple goroutines at startup.
func (r *Registry) EnsureRegistered(builtins []compile.Component) {
	r.ensureOnce.Do(func() {
		for _, c := range builtins {
			_ = r.Register(c, false)
		}
	})
}

// Register adds c under its metadata key. If a component is already
// registered under that key, Register fails unless override is true, in
// which case c is appended as an additional version.
func (r *Registry) Register(c compile.Component, override bool) error {
	key := c.Metadata().Key

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.entries[key]; len(existing) > 0 && !override {
		return &DuplicateKeyError{Key: key}
	}
	r.entries[key] = append(r.entries[key], c)
	return nil
}

// Get returns the highest-version component registered under key, if any.
func (r *Registry) Get(key string) (compile.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.entries[key]
	if len(versions) == 0 {
		return nil, false
	}
	return highestVersion(versions), true
}

// Resolve satisfies compile.ComponentResolver. It finds the highest
// registered version of key matching versionConstraint. An unrecognized
// constraint syntax degrades to returning the highest registered version
// with a recorded Warning rather than failing, matching the original
// system's resolver behavior.
func (r *Registry) Resolve(key, versionConstraint string) (compile.Component, error) {
	r.mu.RLock()
	versions := append([]compile.Component(nil), r.entries[key]...)
	r.mu.RUnlock()

	if len(versions) == 0 {
		return nil, &NotFoundError{Key: key}
	}

	var matches []compile.Component
	anyRecognized := false
	for _, c := range versions {
		matched, recognized := satisfies(c.Metadata().Version, versionConstraint)
		if recognized {
			anyRecognized = true
			if matched {
				matches = append(matches, c)
			}
		}
	}

	if len(matches) > 0 {
		return highestVersion(matches), nil
	}
	if anyRecognized {
		return nil, &NoVersionSatisfiesError{Key: key, Constraint: versionConstraint}
	}

	r.recordWarning(Warning{
		Key:        key,
		Constraint: versionConstraint,
		Message:    "unrecognized version constraint syntax, returning highest registered version",
	})
	return highestVersion(versions), nil
}

// ListAll returns every registered component across every key.
func (r *Registry) ListAll() []compile.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []compile.Component
	for _, versions := range r.entries {
		out = append(out, versions...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata().Key < out[j].Metadata().Key
	})
	return out
}

// ListMetadata returns metadata for every registered component.
func (r *Registry) ListMetadata() []compile.ComponentMetadata {
	all := r.ListAll()
	out := make([]compile.ComponentMetadata, len(all))
	for i, c := range all {
		out[i] = c.Metadata()
	}
	return out
}

// Warnings returns every degraded-resolution warning recorded so far.
func (r *Registry) Warnings() []Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Warning(nil), r.warnings...)
}

func (r *Registry) recordWarning(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

func highestVersion(components []compile.Component) compile.Component {
	best := components[0]
	bestVer, _ := parseVersion(best.Metadata().Version)
	for _, c := range components[1:] {
		v, ok := parseVersion(c.Metadata().Version)
		if ok && v.compare(bestVer) > 0 {
			best, bestVer = c, v
		}
	}
	return best
}
