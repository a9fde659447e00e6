package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

const projectColumns = `id, name, description, client, status, priority, deadline,
	created_at, updated_at, completed_at`

func (s *Store) CreateProject(name, description, client string, priority Priority, deadline *time.Time) (*Project, error) {
	if !priority.IsValid() {
		return nil, fmt.Errorf("create project: priority %q: %w", priority, ErrInvalidStatus)
	}
	now := nowStamp()
	res, err := s.db.Exec(
		`INSERT INTO projects (name, description, client, priority, deadline, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, description, client, priority, nullDate(deadline), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetProject(id)
}

func (s *Store) GetProject(id int64) (*Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// ListProjects returns projects ordered by priority severity then deadline,
// nulls last. A nil status returns every project.
func (s *Store) ListProjects(status *ProjectStatus) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += orderByPriorityDeadline

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject applies a typed partial update. Unknown fields cannot be
// expressed; an update with no fields set is rejected.
func (s *Store) UpdateProject(id int64, u ProjectUpdate) error {
	set := ""
	args := []any{}
	add := func(clause string, v any) {
		set += clause + ", "
		args = append(args, v)
	}
	if u.Name != nil {
		add("name = ?", *u.Name)
	}
	if u.Description != nil {
		add("description = ?", *u.Description)
	}
	if u.Client != nil {
		add("client = ?", *u.Client)
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			return fmt.Errorf("update project %d: priority %q: %w", id, *u.Priority, ErrInvalidStatus)
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
	res, err := s.db.Exec(`UPDATE projects SET `+set+`updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update project %d: %w", id, err)
	}
	return requireRow(res, id)
}

// SetProjectStatus changes the project status. Entering completed stamps
// completed_at; leaving it clears the stamp.
func (s *Store) SetProjectStatus(id int64, status ProjectStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("project status %q: %w", status, ErrInvalidStatus)
	}
	var completedAt any
	if status == ProjectCompleted {
		completedAt = nowStamp()
	}
	res, err := s.db.Exec(
		`UPDATE projects SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		status, completedAt, nowStamp(), id,
	)
	if err != nil {
		return fmt.Errorf("set project %d status: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteProject removes the project. Its tasks (and their subtasks) go with
// it via the declared cascade; notes keep existing with a null project_id.
func (s *Store) DeleteProject(id int64) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return requireRow(res, id)
}

// ProjectProgress derives completion over the project's direct top-level
// tasks. Subtasks are intentionally not counted.
func (s *Store) ProjectProgress(id int64) (*Progress, error) {
	if _, err := s.GetProject(id); err != nil {
		return nil, err
	}

	var total, completed int
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		 FROM tasks
		 WHERE project_id = ? AND parent_task_id IS NULL`, id,
	).Scan(&total, &completed)
	if err != nil {
		return nil, fmt.Errorf("project %d progress: %w", id, err)
	}

	p := &Progress{Total: total, Completed: completed, Pending: total - completed}
	if total > 0 {
		p.Percentage = math.Round(float64(completed)/float64(total)*1000) / 10
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (*Project, error) {
	p := &Project{}
	var deadline, completedAt sql.NullString
	var createdAt, updatedAt string
	err := r.Scan(
		&p.ID, &p.Name, &p.Description, &p.Client, &p.Status, &p.Priority,
		&deadline, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Deadline = parseNullDate(deadline)
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	p.CompletedAt = parseNullTimestamp(completedAt)
	return p, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return nil
}
