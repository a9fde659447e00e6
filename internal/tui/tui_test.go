package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/dispatch"
	"github.com/sadopc/steward/internal/export"
	"github.com/sadopc/steward/internal/store"
)

// ============================================================
// Command parsing
// ============================================================

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want dispatch.Action
	}{
		{"/start", dispatch.ShowDashboard{}},
		{"/dashboard", dispatch.ShowDashboard{}},
		{"/tasks", dispatch.ListTasks{Scope: dispatch.ScopeAll}},
		{"/tasks today", dispatch.ListTasks{Scope: dispatch.ScopeToday}},
		{"/tasks OVERDUE", dispatch.ListTasks{Scope: dispatch.ScopeOverdue}},
		{"/task 5", dispatch.ViewTask{ID: 5}},
		{"/newtask", dispatch.StartTaskDialog{}},
		{"/newproject", dispatch.StartProjectDialog{}},
		{"/subtask 3", dispatch.StartSubtaskDialog{ParentID: 3}},
		{"/edit 7 title", dispatch.StartEditDialog{TaskID: 7, Field: dialog.EditTitle}},
		{"/edit 7 deadline", dispatch.StartEditDialog{TaskID: 7, Field: dialog.EditDeadline}},
		{"/done 9", dispatch.CompleteTask{ID: 9}},
		{"/status 4 progress", dispatch.ChangeTaskStatus{ID: 4, Status: store.TaskInProgress}},
		{"/postpone 2", dispatch.PostponeTask{ID: 2, Days: 1}},
		{"/postpone 2 5", dispatch.PostponeTask{ID: 2, Days: 5}},
		{"/postpone 2 -3", dispatch.PostponeTask{ID: 2, Days: -3}},
		{"/deltask 8", dispatch.DeleteTask{ID: 8}},
		{"/project 1", dispatch.ViewProject{ID: 1}},
		{"/projstatus 1 paused", dispatch.ChangeProjectStatus{ID: 1, Status: store.ProjectPaused}},
		{"/delproject 1", dispatch.DeleteProject{ID: 1}},
		{"/note 6", dispatch.ViewNote{ID: 6}},
		{"/delnote 6", dispatch.DeleteNote{ID: 6}},
		{"/settings", dispatch.ShowSettings{}},
		{"/week", dispatch.ShowWeeklyStats{}},
		{"/month", dispatch.ShowMonthlyStats{}},
		{"/export", dispatch.ExportWorkspace{Format: export.FormatJSON}},
		{"/export csv", dispatch.ExportWorkspace{Format: export.FormatCSV}},
	}
	for _, c := range cases {
		got, err := parseCommand(c.in)
		if err != nil {
			t.Fatalf("parseCommand(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parseCommand(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestParseCommandNotesFilters(t *testing.T) {
	a, err := parseCommand("/notes #ideas")
	if err != nil {
		t.Fatal(err)
	}
	if a.(dispatch.ListNotes).Filter.Tag != "ideas" {
		t.Fatalf("tag filter wrong: %#v", a)
	}

	a, err = parseCommand("/notes meeting follow up")
	if err != nil {
		t.Fatal(err)
	}
	if a.(dispatch.ListNotes).Filter.Search != "meeting follow up" {
		t.Fatalf("search filter wrong: %#v", a)
	}
}

func TestParseCommandErrors(t *testing.T) {
	bad := []string{
		"/task",
		"/task abc",
		"/task -1",
		"/tasks someday",
		"/edit 5",
		"/edit 5 color",
		"/status 5 blocked",
		"/postpone 5 soon",
		"/export xml",
		"/frobnicate",
	}
	for _, in := range bad {
		if _, err := parseCommand(in); err == nil {
			t.Errorf("parseCommand(%q) should fail", in)
		}
	}
}

// ============================================================
// Rendering
// ============================================================

func taskFixture() store.Task {
	d := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)
	return store.Task{
		ID:       1,
		Title:    "write report",
		Status:   store.TaskPending,
		Priority: store.PriorityHigh,
		Deadline: &d,
	}
}

func TestRenderTaskList(t *testing.T) {
	out := renderView(dispatch.TaskList{
		Scope: dispatch.ScopeToday,
		Tasks: []store.Task{taskFixture()},
	}, 80)
	if !strings.Contains(out, "Due today") {
		t.Fatalf("missing scope title:\n%s", out)
	}
	if !strings.Contains(out, "write report") {
		t.Fatalf("missing task title:\n%s", out)
	}
}

func TestRenderEmptyTaskList(t *testing.T) {
	out := renderView(dispatch.TaskList{Scope: dispatch.ScopeAll}, 80)
	if !strings.Contains(out, "nothing here") {
		t.Fatalf("empty list should say so:\n%s", out)
	}
}

func TestRenderTaskDetailWithSubtasks(t *testing.T) {
	task := taskFixture()
	out := renderView(dispatch.TaskDetail{
		Task:        task,
		ProjectName: "Alpha",
		Subtasks:    []store.Task{{ID: 2, Title: "gather data", Status: store.TaskCompleted, Priority: store.PriorityMedium}},
	}, 80)
	for _, want := range []string{"write report", "Alpha", "gather data", "2030-06-15"} {
		if !strings.Contains(out, want) {
			t.Fatalf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPromptNumbersOptions(t *testing.T) {
	prompt := &dialog.Prompt{
		Flow: dialog.FlowNewTask,
		Step: dialog.StepPriority,
		Options: []dialog.Option{
			{Kind: dialog.OptionPriority, Priority: store.PriorityHigh},
			{Kind: dialog.OptionPriority, Priority: store.PriorityMedium},
			{Kind: dialog.OptionPriority, Priority: store.PriorityLow},
			{Kind: dialog.OptionCancel},
		},
	}
	out := renderView(dispatch.DialogView{Prompt: prompt}, 80)
	for _, want := range []string{"1.", "2.", "3.", "4.", "high", "Cancel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPromptShowsValidationError(t *testing.T) {
	prompt := &dialog.Prompt{
		Flow: dialog.FlowNewTask,
		Step: dialog.StepTitle,
		Err:  errFake("title is too long"),
	}
	out := renderView(dispatch.DialogView{Prompt: prompt}, 80)
	if !strings.Contains(out, "title is too long") {
		t.Fatalf("validation error not shown:\n%s", out)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }

func TestRenderNoticeVariants(t *testing.T) {
	task := taskFixture()
	project := store.Project{ID: 1, Name: "Alpha", Status: store.ProjectPaused}

	cases := []struct {
		notice dispatch.Notice
		want   string
	}{
		{dispatch.Notice{Kind: dispatch.NoticeTaskCreated, Task: &task}, "Task created"},
		{dispatch.Notice{Kind: dispatch.NoticeTaskPostponed, Task: &task}, "Postponed"},
		{dispatch.Notice{Kind: dispatch.NoticeProjectDeleted, Project: &project}, "Alpha"},
		{dispatch.Notice{Kind: dispatch.NoticeStatusChanged, Project: &project}, "paused"},
		{dispatch.Notice{Kind: dispatch.NoticeDialogCancelled}, "Cancelled"},
		{dispatch.Notice{Kind: dispatch.NoticeError, Err: errFake("boom")}, "boom"},
	}
	for _, c := range cases {
		out := renderView(c.notice, 80)
		if !strings.Contains(out, c.want) {
			t.Errorf("notice %d missing %q:\n%s", c.notice.Kind, c.want, out)
		}
	}
}

func TestOptionLabelsByStep(t *testing.T) {
	none := dialog.Option{Kind: dialog.OptionNone}
	if got := optionLabel(none, dialog.StepProject); got != "No project" {
		t.Fatalf("project step none = %q", got)
	}
	if got := optionLabel(none, dialog.StepDeadline); got != "No deadline" {
		t.Fatalf("deadline step none = %q", got)
	}
	proj := dialog.Option{Kind: dialog.OptionProject, ProjectID: 1, ProjectName: "Alpha"}
	if got := optionLabel(proj, dialog.StepProject); got != "Alpha" {
		t.Fatalf("project label = %q", got)
	}
}

func TestProgressBarBounds(t *testing.T) {
	out := progressBar(store.Progress{Total: 3, Completed: 1, Pending: 2, Percentage: 33.3})
	if !strings.Contains(out, "33.3%") || !strings.Contains(out, "(1/3)") {
		t.Fatalf("progress bar wrong: %s", out)
	}
	empty := progressBar(store.Progress{})
	if !strings.Contains(empty, "0.0%") {
		t.Fatalf("empty progress wrong: %s", empty)
	}
}
