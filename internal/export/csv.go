package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

func ToCSV(snap *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Project", "Parent Task", "Status", "Priority", "Deadline", "Created", "Completed"}); err != nil {
		return err
	}

	names := projectNames(snap)

	for _, t := range snap.Tasks {
		project := ""
		if t.ProjectID != nil {
			project = names[*t.ProjectID]
		}
		parent := ""
		if t.ParentTaskID != nil {
			parent = fmt.Sprintf("%d", *t.ParentTaskID)
		}
		completed := ""
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Format(time.RFC3339)
		}

		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Title,
			project,
			parent,
			string(t.Status),
			string(t.Priority),
			dateString(t.Deadline),
			t.CreatedAt.Format(time.RFC3339),
			completed,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
