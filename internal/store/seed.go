package store

import (
	"strings"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// builtInPriorities are seeded when the priorities collection loads empty.
var builtInPriorities = []struct {
	name  string
	color string
}{
	{types.PriorityLow, "#10b981"},
	{types.PriorityMedium, "#f59e0b"},
	{types.PriorityHigh, "#ef4444"},
}

// seedPriorities fills an empty priority collection with the built-in set.
// Returns false when priorities already exist.
func (s *Store) seedPriorities() bool {
	if len(s.priorities) > 0 {
		return false
	}
	for _, bp := range builtInPriorities {
		s.priorities = append(s.priorities, types.Priority{
			PriorityID: generateUUID(),
			Name:       bp.name,
			Color:      bp.color,
		})
	}
	return true
}

// defaultPriority returns the priority new tasks get when none is supplied:
// the one named Medium, else the first, else nil.
func (s *Store) defaultPriority() *types.Priority {
	if len(s.priorities) == 0 {
		return nil
	}
	for _, p := range s.priorities {
		if strings.EqualFold(p.Name, types.PriorityMedium) {
			p := p
			return &p
		}
	}
	p := s.priorities[0]
	return &p
}
