package store

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(dateOnly, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return &d
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/steward.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Projects
// ============================================================

func TestCreateAndGetProject(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("Website", "Client redesign", "Acme", PriorityHigh, datePtr(t, "2030-06-01"))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if p.Name != "Website" || p.Client != "Acme" || p.Priority != PriorityHigh {
		t.Fatalf("unexpected project: %+v", p)
	}
	if p.Status != ProjectActive {
		t.Fatalf("new project should be active, got %s", p.Status)
	}
	if p.Deadline == nil || p.Deadline.Format(dateOnly) != "2030-06-01" {
		t.Fatalf("deadline not stored: %v", p.Deadline)
	}
	if p.CompletedAt != nil {
		t.Fatal("new project should not have completed_at")
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProject(999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListProjectsOrdering(t *testing.T) {
	s := newTestStore(t)
	s.CreateProject("Low", "", "", PriorityLow, nil)
	s.CreateProject("HighLate", "", "", PriorityHigh, datePtr(t, "2030-02-01"))
	s.CreateProject("HighEarly", "", "", PriorityHigh, datePtr(t, "2030-01-01"))
	s.CreateProject("HighNoDate", "", "", PriorityHigh, nil)
	s.CreateProject("Medium", "", "", PriorityMedium, nil)

	projects, err := s.ListProjects(nil)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(projects))
	for i, p := range projects {
		got[i] = p.Name
	}
	want := []string{"HighEarly", "HighLate", "HighNoDate", "Medium", "Low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestListProjectsByStatus(t *testing.T) {
	s := newTestStore(t)
	p1, _ := s.CreateProject("Active", "", "", PriorityMedium, nil)
	p2, _ := s.CreateProject("Paused", "", "", PriorityMedium, nil)
	s.SetProjectStatus(p2.ID, ProjectPaused)

	active := ProjectActive
	projects, err := s.ListProjects(&active)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].ID != p1.ID {
		t.Fatalf("expected only the active project, got %+v", projects)
	}
}

func TestUpdateProject(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("Old", "", "", PriorityLow, nil)

	name := "New"
	prio := PriorityHigh
	if err := s.UpdateProject(p.ID, ProjectUpdate{Name: &name, Priority: &prio, Deadline: datePtr(t, "2030-03-03")}); err != nil {
		t.Fatal(err)
	}
	updated, _ := s.GetProject(p.ID)
	if updated.Name != "New" || updated.Priority != PriorityHigh {
		t.Fatalf("update failed: %+v", updated)
	}
	if updated.Deadline == nil {
		t.Fatal("deadline should be set")
	}

	if err := s.UpdateProject(p.ID, ProjectUpdate{ClearDeadline: true}); err != nil {
		t.Fatal(err)
	}
	updated, _ = s.GetProject(p.ID)
	if updated.Deadline != nil {
		t.Fatal("deadline should be cleared")
	}
}

func TestUpdateProjectEmpty(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)
	if err := s.UpdateProject(p.ID, ProjectUpdate{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestProjectCompletionStamp(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)

	if err := s.SetProjectStatus(p.ID, ProjectCompleted); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetProject(p.ID)
	if got.CompletedAt == nil {
		t.Fatal("completed_at should be stamped on completion")
	}

	// Re-opening clears the stamp
	if err := s.SetProjectStatus(p.ID, ProjectActive); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProject(p.ID)
	if got.CompletedAt != nil {
		t.Fatal("completed_at should be cleared when leaving completed")
	}
}

func TestSetProjectStatusInvalid(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)

	err := s.SetProjectStatus(p.ID, ProjectStatus("archived"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	got, _ := s.GetProject(p.ID)
	if got.Status != ProjectActive {
		t.Fatal("invalid status must not mutate the project")
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)
	t1, _ := s.CreateTask("Top1", "", &p.ID, nil, PriorityMedium, nil)
	t2, _ := s.CreateTask("Top2", "", &p.ID, nil, PriorityMedium, nil)
	sub, _ := s.CreateTask("Sub", "", &p.ID, &t1.ID, PriorityMedium, nil)
	note, _ := s.CreateNote("N", "content", "", &p.ID, nil)

	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatal(err)
	}

	for _, id := range []int64{t1.ID, t2.ID, sub.ID} {
		if _, err := s.GetTask(id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("task %d should be gone, got %v", id, err)
		}
	}

	// Note survives but is detached
	got, err := s.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ProjectID != nil {
		t.Fatal("note project_id should be null after project delete")
	}
}

// ============================================================
// Notes
// ============================================================

func TestCreateAndGetNote(t *testing.T) {
	s := newTestStore(t)
	n, err := s.CreateNote("Meeting", "Discussed API design", "work,api", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetNote(n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Meeting" || got.Tags != "work,api" {
		t.Fatalf("unexpected note: %+v", got)
	}
}

func TestListNotesFilters(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)
	task, _ := s.CreateTask("T", "", nil, nil, PriorityMedium, nil)

	s.CreateNote("Idea", "a grand plan", "ideas", &p.ID, nil)
	s.CreateNote("Linked", "attached to task", "work", nil, &task.ID)
	s.CreateNote("Loose", "nothing attached", "", nil, nil)

	byProject, _ := s.ListNotes(NoteFilter{ProjectID: &p.ID})
	if len(byProject) != 1 || byProject[0].Title != "Idea" {
		t.Fatalf("project filter: %+v", byProject)
	}

	byTask, _ := s.ListNotes(NoteFilter{TaskID: &task.ID})
	if len(byTask) != 1 || byTask[0].Title != "Linked" {
		t.Fatalf("task filter: %+v", byTask)
	}

	byTag, _ := s.ListNotes(NoteFilter{Tag: "ideas"})
	if len(byTag) != 1 || byTag[0].Title != "Idea" {
		t.Fatalf("tag filter: %+v", byTag)
	}

	bySearch, _ := s.ListNotes(NoteFilter{Search: "grand"})
	if len(bySearch) != 1 || bySearch[0].Title != "Idea" {
		t.Fatalf("search filter: %+v", bySearch)
	}

	all, _ := s.ListNotes(NoteFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(all))
	}
}

func TestNoteDetachedOnTaskDelete(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", "", nil, nil, PriorityMedium, nil)
	n, _ := s.CreateNote("N", "c", "", nil, &task.ID)

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetNote(n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TaskID != nil {
		t.Fatal("note task_id should be null after task delete")
	}
}

func TestUpdateNote(t *testing.T) {
	s := newTestStore(t)
	n, _ := s.CreateNote("N", "old", "", nil, nil)

	content := "new content"
	if err := s.UpdateNote(n.ID, NoteUpdate{Content: &content}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetNote(n.ID)
	if got.Content != "new content" || got.Title != "N" {
		t.Fatalf("unexpected note after update: %+v", got)
	}

	if err := s.UpdateNote(n.ID, NoteUpdate{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestDeleteNoteNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteNote(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	st, err := s.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if st.DailySummaryTime != "07:00" || st.EveningReminderTime != "18:00" {
		t.Fatalf("unexpected default times: %+v", st)
	}
	if st.Timezone != "Europe/Madrid" {
		t.Fatalf("unexpected default timezone: %s", st.Timezone)
	}
	if !st.DailySummaryEnabled || !st.EveningReminderEnabled {
		t.Fatal("both digests should default to enabled")
	}
}

func TestSaveSettingsInPlace(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSettings(Settings{
		DailySummaryTime:       "08:30",
		EveningReminderTime:    "19:00",
		Timezone:               "UTC",
		DailySummaryEnabled:    false,
		EveningReminderEnabled: true,
	}); err != nil {
		t.Fatal(err)
	}

	st, _ := s.GetSettings()
	if st.DailySummaryTime != "08:30" || st.Timezone != "UTC" || st.DailySummaryEnabled {
		t.Fatalf("settings not saved: %+v", st)
	}

	// Still exactly one row
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM user_settings`).Scan(&count)
	if count != 1 {
		t.Fatalf("expected singleton settings row, got %d", count)
	}
}
