package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const taskColumns = `id, title, description, project_id, parent_task_id, status,
	priority, deadline, created_at, updated_at, completed_at`

// orderByPriorityDeadline is the one ordering every list view relies on:
// priority by severity, ties broken by ascending deadline with nulls last.
const orderByPriorityDeadline = `
	ORDER BY
		CASE priority
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 3
		END,
		deadline IS NULL,
		deadline ASC`

func (s *Store) CreateTask(title, description string, projectID, parentTaskID *int64, priority Priority, deadline *time.Time) (*Task, error) {
	if !priority.IsValid() {
		return nil, fmt.Errorf("create task: priority %q: %w", priority, ErrInvalidStatus)
	}
	if parentTaskID != nil {
		parent, err := s.GetTask(*parentTaskID)
		if err != nil {
			return nil, err
		}
		if parent.IsSubtask() {
			return nil, fmt.Errorf("create task under %d: %w", *parentTaskID, ErrSubtaskDepth)
		}
	}

	now := nowStamp()
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, description, project_id, parent_task_id, priority, deadline, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title, description, nullID(projectID), nullID(parentTaskID), priority, nullDate(deadline), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListTasks compiles the filter into a single query. Filters combine by AND;
// see TaskFilter for the supported predicates.
func (s *Store) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if f.Status != nil {
		if !f.Status.IsValid() {
			return nil, fmt.Errorf("list tasks: status %q: %w", *f.Status, ErrInvalidStatus)
		}
		query += ` AND status = ?`
		args = append(args, *f.Status)
	}
	if f.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.Priority != nil {
		if !f.Priority.IsValid() {
			return nil, fmt.Errorf("list tasks: priority %q: %w", *f.Priority, ErrInvalidStatus)
		}
		query += ` AND priority = ?`
		args = append(args, *f.Priority)
	}
	if f.Overdue {
		query += ` AND deadline < ? AND status != 'completed'`
		args = append(args, today())
	}
	if f.DueToday {
		query += ` AND deadline = ? AND status != 'completed'`
		args = append(args, today())
	}
	if f.ParentOnly {
		query += ` AND parent_task_id IS NULL`
	}
	if f.DeadlineFrom != nil {
		query += ` AND deadline >= ?`
		args = append(args, f.DeadlineFrom.Format(dateOnly))
	}
	if f.DeadlineTo != nil {
		query += ` AND deadline <= ?`
		args = append(args, f.DeadlineTo.Format(dateOnly))
	}
	query += orderByPriorityDeadline

	return s.queryTasks(query, args...)
}

// Subtasks returns the direct children of a task, oldest first.
func (s *Store) Subtasks(parentTaskID int64) ([]Task, error) {
	return s.queryTasks(
		`SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = ? ORDER BY created_at ASC`,
		parentTaskID,
	)
}

// UpdateTask applies a typed partial update. An update with no fields set is
// rejected; fields outside TaskUpdate cannot be expressed at all.
func (s *Store) UpdateTask(id int64, u TaskUpdate) error {
	set := ""
	args := []any{}
	add := func(clause string, v any) {
		set += clause + ", "
		args = append(args, v)
	}
	if u.Title != nil {
		add("title = ?", *u.Title)
	}
	if u.Description != nil {
		add("description = ?", *u.Description)
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			return fmt.Errorf("update task %d: priority %q: %w", id, *u.Priority, ErrInvalidStatus)
		}
		add("priority = ?", *u.Priority)
	}
	if u.ClearDeadline {
		set += "deadline = NULL, "
	} else if u.Deadline != nil {
		add("deadline = ?", u.Deadline.Format(dateOnly))
	}
	if set == "" {
		return ErrEmptyUpdate
	}

	args = append(args, nowStamp(), id)
	res, err := s.db.Exec(`UPDATE tasks SET `+set+`updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return requireRow(res, id)
}

// SetTaskStatus changes the task status. Entering completed stamps
// completed_at; leaving it clears the stamp. Invalid values mutate nothing.
func (s *Store) SetTaskStatus(id int64, status TaskStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("task status %q: %w", status, ErrInvalidStatus)
	}
	var completedAt any
	if status == TaskCompleted {
		completedAt = nowStamp()
	}
	res, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		status, completedAt, nowStamp(), id,
	)
	if err != nil {
		return fmt.Errorf("set task %d status: %w", id, err)
	}
	return requireRow(res, id)
}

// PostponeTask shifts the deadline by days, which may be negative. A task
// without a deadline fails with ErrNoDeadline and is left unchanged.
func (s *Store) PostponeTask(id int64, days int) error {
	t, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if t.Deadline == nil {
		return fmt.Errorf("postpone task %d: %w", id, ErrNoDeadline)
	}

	newDeadline := t.Deadline.AddDate(0, 0, days).Format(dateOnly)
	// deadline IS NOT NULL keeps the write a no-op if the deadline vanished
	// between the read and this statement.
	res, err := s.db.Exec(
		`UPDATE tasks SET deadline = ?, updated_at = ? WHERE id = ? AND deadline IS NOT NULL`,
		newDeadline, nowStamp(), id,
	)
	if err != nil {
		return fmt.Errorf("postpone task %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteTask removes the task and, via the declared cascade, all of its
// subtasks. Notes pointing at it keep existing with a null task_id.
func (s *Store) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (s *Store) queryTasks(query string, args ...any) ([]Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(r rowScanner) (*Task, error) {
	t := &Task{}
	var projectID, parentTaskID sql.NullInt64
	var deadline, completedAt sql.NullString
	var createdAt, updatedAt string
	err := r.Scan(
		&t.ID, &t.Title, &t.Description, &projectID, &parentTaskID, &t.Status,
		&t.Priority, &deadline, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ProjectID = idPtr(projectID)
	t.ParentTaskID = idPtr(parentTaskID)
	t.Deadline = parseNullDate(deadline)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	t.CompletedAt = parseNullTimestamp(completedAt)
	return t, nil
}
