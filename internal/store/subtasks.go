package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// AddSubtask appends a subtask to the named task and returns a copy of it.
// Returns nil without error when the task does not exist.
func (s *Store) AddSubtask(ctx context.Context, taskID, text string) (*types.Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, types.ErrInvalidText
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}

	t := s.findTask(taskID)
	if t == nil {
		return nil, nil
	}
	now := s.now()
	st := types.Subtask{
		SubtaskID: generateUUID(),
		Text:      text,
		CreatedAt: now,
	}
	t.AppendSubtask(st, now)
	s.persistLocked(types.CollectionTasks)
	return &st, nil
}

// ToggleSubtaskComplete flips one subtask's completion flag. Unknown task or
// subtask IDs are a no-op.
func (s *Store) ToggleSubtaskComplete(ctx context.Context, taskID, subtaskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	t := s.findTask(taskID)
	if t == nil {
		return nil
	}
	if t.ToggleSubtask(subtaskID, s.now()) {
		s.persistLocked(types.CollectionTasks)
	}
	return nil
}

// DeleteSubtask removes one subtask. Unknown task or subtask IDs are a no-op.
func (s *Store) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	t := s.findTask(taskID)
	if t == nil {
		return nil
	}
	if t.RemoveSubtask(subtaskID, s.now()) {
		s.persistLocked(types.CollectionTasks)
	}
	return nil
}

// AddComment appends a timestamped comment to the named task and returns a
// copy of it. Returns nil without error when the task does not exist.
func (s *Store) AddComment(ctx context.Context, taskID, text string) (*types.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, types.ErrInvalidText
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}

	t := s.findTask(taskID)
	if t == nil {
		return nil, nil
	}
	now := s.now()
	c := types.Comment{
		CommentID: generateUUID(),
		Text:      text,
		CreatedAt: now,
	}
	t.AppendComment(c, now)
	s.persistLocked(types.CollectionTasks)
	return &c, nil
}

// GenerateSubtasks asks gen to break the task's title into count steps and
// adds each returned step as a subtask, in order. It returns the number of
// subtasks added. The lock is not held while gen runs; subtasks added before
// a failure are kept.
func (s *Store) GenerateSubtasks(ctx context.Context, taskID string, gen types.SubtaskGenerator, count int) (int, error) {
	if gen == nil {
		return 0, types.ErrGeneratorNotConfigured
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, types.ErrStoreClosed
	}
	t := s.findTask(taskID)
	if t == nil {
		s.mu.Unlock()
		return 0, nil
	}
	title := t.Title
	s.mu.Unlock()

	steps, err := gen.GenerateSubtasks(ctx, title, count)
	if err != nil {
		return 0, fmt.Errorf("generating subtasks for task %s: %w", taskID, err)
	}

	added := 0
	for _, step := range steps {
		st, err := s.AddSubtask(ctx, taskID, step)
		if errors.Is(err, types.ErrInvalidText) {
			continue
		}
		if err != nil {
			return added, err
		}
		if st == nil {
			// Task was deleted while the generator ran.
			break
		}
		added++
	}

	s.log.WithFields(log.Fields{
		"task_id":  taskID,
		"returned": len(steps),
		"added":    added,
	}).Debug("store.subtasks.generated")
	return added, nil
}
