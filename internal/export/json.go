package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Projects   []jsonProject `json:"projects"`
	Tasks      []jsonTask    `json:"tasks"`
	Notes      []jsonNote    `json:"notes"`
}

type jsonProject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Client      string `json:"client,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Deadline    string `json:"deadline,omitempty"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type jsonTask struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Project      string `json:"project,omitempty"`
	ProjectID    *int64 `json:"project_id,omitempty"`
	ParentTaskID *int64 `json:"parent_task_id,omitempty"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	Deadline     string `json:"deadline,omitempty"`
	CreatedAt    string `json:"created_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

type jsonNote struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Tags      string `json:"tags,omitempty"`
	ProjectID *int64 `json:"project_id,omitempty"`
	TaskID    *int64 `json:"task_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func ToJSON(snap *Snapshot, path string) error {
	names := projectNames(snap)

	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, p := range snap.Projects {
		jp := jsonProject{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Client:      p.Client,
			Status:      string(p.Status),
			Priority:    string(p.Priority),
			Deadline:    dateString(p.Deadline),
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		}
		if p.CompletedAt != nil {
			jp.CompletedAt = p.CompletedAt.Format(time.RFC3339)
		}
		out.Projects = append(out.Projects, jp)
	}

	for _, t := range snap.Tasks {
		jt := jsonTask{
			ID:           t.ID,
			Title:        t.Title,
			Description:  t.Description,
			ProjectID:    t.ProjectID,
			ParentTaskID: t.ParentTaskID,
			Status:       string(t.Status),
			Priority:     string(t.Priority),
			Deadline:     dateString(t.Deadline),
			CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		}
		if t.ProjectID != nil {
			jt.Project = names[*t.ProjectID]
		}
		if t.CompletedAt != nil {
			jt.CompletedAt = t.CompletedAt.Format(time.RFC3339)
		}
		out.Tasks = append(out.Tasks, jt)
	}

	for _, n := range snap.Notes {
		out.Notes = append(out.Notes, jsonNote{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			Tags:      n.Tags,
			ProjectID: n.ProjectID,
			TaskID:    n.TaskID,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
			UpdatedAt: n.UpdatedAt.Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
