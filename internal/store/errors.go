package store

import "errors"

var (
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned when a status value is outside the
	// entity's allowed set. Nothing is mutated.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrNoDeadline is returned when postponing a task that has no deadline.
	ErrNoDeadline = errors.New("task has no deadline")

	// ErrSubtaskDepth is returned when creating a subtask under a task that
	// is itself a subtask. Nesting is limited to one level.
	ErrSubtaskDepth = errors.New("subtask nesting limited to one level")

	// ErrEmptyUpdate is returned when a partial update carries no fields.
	ErrEmptyUpdate = errors.New("no fields to update")
)
