package typename

import (
	"sort"

	"github.com/okra-platform/genpipe/internal/typedesc"
)

// Collision is a set of distinct full names that share one human-readable name
type Collision struct {
	HumanReadable string
	FullNames     []string
}

// Collisions reports human-readable names that more than one distinct full
// name maps to. Descriptors with the same full name count once. Results are
// sorted by human-readable name; full names within a collision are sorted.
func Collisions(ds []*typedesc.TypeDescriptor) []Collision {
	byName := make(map[string]map[string]struct{})
	for _, d := range ds {
		hr := HumanReadableName(d)
		if byName[hr] == nil {
			byName[hr] = make(map[string]struct{})
		}
		byName[hr][FullName(d)] = struct{}{}
	}

	var out []Collision
	for hr, fulls := range byName {
		if len(fulls) < 2 {
			continue
		}
		names := make([]string, 0, len(fulls))
		for f := range fulls {
			names = append(names, f)
		}
		sort.Strings(names)
		out = append(out, Collision{HumanReadable: hr, FullNames: names})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].HumanReadable < out[j].HumanReadable
	})
	return out
}
