// Package export writes the whole workspace to a file. JSON carries every
// entity; CSV flattens tasks joined with their project names.
package export

import (
	"fmt"
	"time"

	"github.com/sadopc/steward/internal/store"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Snapshot is everything worth exporting, read in one pass.
type Snapshot struct {
	Projects []store.Project
	Tasks    []store.Task
	Notes    []store.Note
}

// Collect reads the full workspace. Tasks include subtasks.
func Collect(s *store.Store) (*Snapshot, error) {
	projects, err := s.ListProjects(nil)
	if err != nil {
		return nil, fmt.Errorf("collect projects: %w", err)
	}
	tasks, err := s.ListTasks(store.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("collect tasks: %w", err)
	}
	notes, err := s.ListNotes(store.NoteFilter{})
	if err != nil {
		return nil, fmt.Errorf("collect notes: %w", err)
	}
	return &Snapshot{Projects: projects, Tasks: tasks, Notes: notes}, nil
}

// Write renders the snapshot to path in the given format.
func Write(snap *Snapshot, format Format, path string) error {
	switch format {
	case FormatJSON:
		return ToJSON(snap, path)
	case FormatCSV:
		return ToCSV(snap, path)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// FileName builds a timestamped export file name.
func FileName(format Format, now time.Time) string {
	return fmt.Sprintf("steward-export-%s.%s", now.Format("20060102-150405"), format)
}

// projectNames indexes project names by id for the flattened outputs.
func projectNames(snap *Snapshot) map[int64]string {
	names := make(map[int64]string, len(snap.Projects))
	for _, p := range snap.Projects {
		names[p.ID] = p.Name
	}
	return names
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
