package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const noteColumns = `id, title, content, tags, project_id, task_id, created_at, updated_at`

func (s *Store) CreateNote(title, content, tags string, projectID, taskID *int64) (*Note, error) {
	now := nowStamp()
	res, err := s.db.Exec(
		`INSERT INTO notes (title, content, tags, project_id, task_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, content, tags, nullID(projectID), nullID(taskID), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetNote(id)
}

func (s *Store) GetNote(id int64) (*Note, error) {
	row := s.db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}
	return n, nil
}

// ListNotes returns notes newest-updated first, narrowed by the filter.
func (s *Store) ListNotes(f NoteFilter) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE 1=1`
	args := []any{}

	if f.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.Tag != "" {
		query += ` AND tags LIKE ?`
		args = append(args, "%"+f.Tag+"%")
	}
	if f.Search != "" {
		query += ` AND (title LIKE ? OR content LIKE ?)`
		term := "%" + f.Search + "%"
		args = append(args, term, term)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *Store) UpdateNote(id int64, u NoteUpdate) error {
	set := ""
	args := []any{}
	if u.Title != nil {
		set += "title = ?, "
		args = append(args, *u.Title)
	}
	if u.Content != nil {
		set += "content = ?, "
		args = append(args, *u.Content)
	}
	if u.Tags != nil {
		set += "tags = ?, "
		args = append(args, *u.Tags)
	}
	if set == "" {
		return ErrEmptyUpdate
	}

	args = append(args, nowStamp(), id)
	res, err := s.db.Exec(`UPDATE notes SET `+set+`updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update note %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (s *Store) DeleteNote(id int64) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return requireRow(res, id)
}

func scanNote(r rowScanner) (*Note, error) {
	n := &Note{}
	var projectID, taskID sql.NullInt64
	var createdAt, updatedAt string
	err := r.Scan(&n.ID, &n.Title, &n.Content, &n.Tags, &projectID, &taskID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	n.ProjectID = idPtr(projectID)
	n.TaskID = idPtr(taskID)
	n.CreatedAt = parseTimestamp(createdAt)
	n.UpdatedAt = parseTimestamp(updatedAt)
	return n, nil
}
