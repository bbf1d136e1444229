package codegen

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry manages the plugins known to one pipeline host
type Registry struct {
	mu      sync.RWMutex
	plugins map[Role][]Plugin
}

// NewRegistry creates a new, empty plugin registry
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[Role][]Plugin),
	}
}

// Register adds a plugin under the role its descriptor declares.
// Returns an error if the plugin does not implement that role's interface or
// if a plugin with the same name is already registered for the role.
func (r *Registry) Register(p Plugin) error {
	desc := p.Descriptor()

	if desc.Name == "" {
		return errors.Newf("plugin of role %s has no name", desc.Role)
	}
	if !implementsRole(p, desc.Role) {
		return errors.Newf("plugin %s declares role %s but does not implement it", desc.Name, desc.Role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins[desc.Role] {
		if existing.Descriptor().Name == desc.Name {
			return errors.Newf("plugin already registered: %s (%s)", desc.Name, desc.Role)
		}
	}

	r.plugins[desc.Role] = append(r.plugins[desc.Role], p)
	return nil
}

// MustRegister registers every plugin and panics on the first error.
// Intended for wiring built-ins whose descriptors are known to be valid.
func (r *Registry) MustRegister(plugins ...Plugin) {
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

// Ordered returns the plugins of role by ascending priority; equal priorities
// are ordered by name so the result is the same on every run
func (r *Registry) Ordered(role Role) []Plugin {
	r.mu.RLock()
	plugins := append([]Plugin(nil), r.plugins[role]...)
	r.mu.RUnlock()

	sort.SliceStable(plugins, func(i, j int) bool {
		a, b := plugins[i].Descriptor(), plugins[j].Descriptor()
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Name < b.Name
	})
	return plugins
}

// Filter returns the ordered plugins of role whose names appear in enabled.
// Names that match no plugin are ignored, so stale configuration referencing
// removed plugins is not an error. A nil enabled list selects every plugin of
// the role; an empty, non-nil list selects none.
func (r *Registry) Filter(role Role, enabled []string) []Plugin {
	ordered := r.Ordered(role)
	if enabled == nil {
		return ordered
	}

	set := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		set[name] = struct{}{}
	}

	result := make([]Plugin, 0, len(ordered))
	for _, p := range ordered {
		if _, ok := set[p.Descriptor().Name]; ok {
			result = append(result, p)
		}
	}
	return result
}

// Get returns the plugin registered under role and name
func (r *Registry) Get(role Role, name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins[role] {
		if p.Descriptor().Name == name {
			return p, true
		}
	}
	return nil, false
}

// Names returns the names of role's plugins in execution order
func (r *Registry) Names(role Role) []string {
	ordered := r.Ordered(role)
	names := make([]string, 0, len(ordered))
	for _, p := range ordered {
		names = append(names, p.Descriptor().Name)
	}
	return names
}

// Descriptors returns every registered descriptor, grouped by role in
// execution order and ordered within each role
func (r *Registry) Descriptors() []Descriptor {
	var out []Descriptor
	for _, role := range Roles {
		for _, p := range r.Ordered(role) {
			out = append(out, p.Descriptor())
		}
	}
	return out
}
