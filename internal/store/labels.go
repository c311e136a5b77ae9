package store

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// AddLabel creates a label and returns it.
func (s *Store) AddLabel(ctx context.Context, name, color string) (types.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Label{}, types.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Label{}, types.ErrStoreClosed
	}

	l := types.Label{
		LabelID: generateUUID(),
		Name:    name,
		Color:   strings.TrimSpace(color),
	}
	s.labels = append(s.labels, l)
	s.persistLocked(types.CollectionLabels)
	return l, nil
}

// DeleteLabel removes a label from the collection and from every task that
// carries it, in one critical section. Unknown IDs are a no-op.
func (s *Store) DeleteLabel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	i := -1
	for j, l := range s.labels {
		if l.LabelID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return nil
	}
	s.labels = append(s.labels[:i], s.labels[i+1:]...)

	now := s.now()
	touched := 0
	for _, t := range s.tasks {
		if t.RemoveLabel(id, now) {
			touched++
		}
	}

	s.persistLocked(types.CollectionLabels)
	if touched > 0 {
		s.persistLocked(types.CollectionTasks)
	}
	s.log.WithFields(log.Fields{"label_id": id, "tasks": touched}).Debug("store.label.deleted")
	return nil
}

// AddPriority creates a priority and returns it.
func (s *Store) AddPriority(ctx context.Context, name, color string) (types.Priority, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Priority{}, types.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Priority{}, types.ErrStoreClosed
	}

	p := types.Priority{
		PriorityID: generateUUID(),
		Name:       name,
		Color:      strings.TrimSpace(color),
	}
	s.priorities = append(s.priorities, p)
	s.persistLocked(types.CollectionPriorities)
	return p, nil
}

// DeletePriority removes a priority and leaves every task that held it with
// no priority. Unknown IDs are a no-op.
func (s *Store) DeletePriority(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	i := -1
	for j, p := range s.priorities {
		if p.PriorityID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return nil
	}
	s.priorities = append(s.priorities[:i], s.priorities[i+1:]...)

	now := s.now()
	touched := 0
	for _, t := range s.tasks {
		if t.UnassignPriority(id, now) {
			touched++
		}
	}

	s.persistLocked(types.CollectionPriorities)
	if touched > 0 {
		s.persistLocked(types.CollectionTasks)
	}
	s.log.WithFields(log.Fields{"priority_id": id, "tasks": touched}).Debug("store.priority.deleted")
	return nil
}
