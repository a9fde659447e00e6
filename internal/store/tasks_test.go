package store

import (
	"errors"
	"testing"
	"time"
)

func relDate(days int) *time.Time {
	d, _ := time.Parse(dateOnly, time.Now().UTC().AddDate(0, 0, days).Format(dateOnly))
	return &d
}

// ============================================================
// Task CRUD
// ============================================================

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)

	task, err := s.CreateTask("Ship release", "cut the tag", &p.ID, nil, PriorityHigh, relDate(3))
	if err != nil {
		t.Fatal(err)
	}
	if task.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if task.Status != TaskPending {
		t.Fatalf("new task should be pending, got %s", task.Status)
	}
	if task.ProjectID == nil || *task.ProjectID != p.ID {
		t.Fatal("task should reference project")
	}
	if task.IsSubtask() {
		t.Fatal("task without parent should not be a subtask")
	}

	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Ship release" || got.Description != "cut the tag" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetTask(123); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSubtask(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateTask("Parent", "", nil, nil, PriorityMedium, nil)

	sub, err := s.CreateTask("Child", "", nil, &parent.ID, PriorityMedium, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !sub.IsSubtask() {
		t.Fatal("task with parent should be a subtask")
	}

	subs, err := s.Subtasks(parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].ID != sub.ID {
		t.Fatalf("unexpected subtasks: %+v", subs)
	}
}

func TestSubtaskDepthLimit(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateTask("Parent", "", nil, nil, PriorityMedium, nil)
	sub, _ := s.CreateTask("Child", "", nil, &parent.ID, PriorityMedium, nil)

	_, err := s.CreateTask("Grandchild", "", nil, &sub.ID, PriorityMedium, nil)
	if !errors.Is(err, ErrSubtaskDepth) {
		t.Fatalf("expected ErrSubtaskDepth, got %v", err)
	}
}

func TestCreateSubtaskMissingParent(t *testing.T) {
	s := newTestStore(t)
	missing := int64(999)
	_, err := s.CreateTask("Orphan", "", nil, &missing, PriorityMedium, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskCascadesSubtasks(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateTask("Parent", "", nil, nil, PriorityMedium, nil)
	sub, _ := s.CreateTask("Child", "", nil, &parent.ID, PriorityMedium, nil)

	if err := s.DeleteTask(parent.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTask(sub.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("subtask should be gone with its parent, got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", "", nil, nil, PriorityLow, relDate(1))

	title := "Renamed"
	prio := PriorityHigh
	if err := s.UpdateTask(task.ID, TaskUpdate{Title: &title, Priority: &prio, ClearDeadline: true}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Title != "Renamed" || got.Priority != PriorityHigh || got.Deadline != nil {
		t.Fatalf("update failed: %+v", got)
	}

	if err := s.UpdateTask(task.ID, TaskUpdate{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}

	bad := Priority("urgent")
	if err := s.UpdateTask(task.ID, TaskUpdate{Priority: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for bad priority, got %v", err)
	}
}

// ============================================================
// Lifecycle
// ============================================================

func TestTaskCompletionStampSymmetric(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", "", nil, nil, PriorityMedium, nil)

	if err := s.SetTaskStatus(task.ID, TaskCompleted); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.CompletedAt == nil {
		t.Fatal("completed_at should be stamped")
	}

	if err := s.SetTaskStatus(task.ID, TaskInProgress); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTask(task.ID)
	if got.CompletedAt != nil {
		t.Fatal("completed_at should be cleared on re-open")
	}
	if got.Status != TaskInProgress {
		t.Fatalf("unexpected status: %s", got.Status)
	}
}

func TestSetTaskStatusInvalid(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", "", nil, nil, PriorityMedium, nil)

	err := s.SetTaskStatus(task.ID, TaskStatus("done"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != TaskPending {
		t.Fatal("invalid status must not mutate the task")
	}
}

func TestSetTaskStatusNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetTaskStatus(77, TaskCompleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Postpone
// ============================================================

func TestPostponeTask(t *testing.T) {
	s := newTestStore(t)
	deadline, _ := time.Parse(dateOnly, "2024-01-10")
	task, _ := s.CreateTask("T", "", nil, nil, PriorityMedium, &deadline)

	if err := s.PostponeTask(task.ID, 3); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Deadline.Format(dateOnly) != "2024-01-13" {
		t.Fatalf("expected 2024-01-13, got %s", got.Deadline.Format(dateOnly))
	}

	// Negative days pull the deadline earlier
	if err := s.PostponeTask(task.ID, -5); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Deadline.Format(dateOnly) != "2024-01-08" {
		t.Fatalf("expected 2024-01-08, got %s", got.Deadline.Format(dateOnly))
	}
}

func TestPostponeTaskNoDeadline(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", "", nil, nil, PriorityMedium, nil)

	err := s.PostponeTask(task.ID, 3)
	if !errors.Is(err, ErrNoDeadline) {
		t.Fatalf("expected ErrNoDeadline, got %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Deadline != nil {
		t.Fatal("task must be unchanged after failed postpone")
	}
}

// ============================================================
// Query engine
// ============================================================

func TestListTasksStatusAndProject(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)
	t1, _ := s.CreateTask("InP", "", &p.ID, nil, PriorityMedium, nil)
	s.CreateTask("Loose", "", nil, nil, PriorityMedium, nil)
	s.SetTaskStatus(t1.ID, TaskInProgress)

	status := TaskInProgress
	tasks, err := s.ListTasks(TaskFilter{Status: &status, ProjectID: &p.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ID != t1.ID {
		t.Fatalf("unexpected result: %+v", tasks)
	}
}

func TestOverdueAndTodayAreDisjoint(t *testing.T) {
	s := newTestStore(t)
	overdue, _ := s.CreateTask("Overdue", "", nil, nil, PriorityMedium, relDate(-1))
	todayTask, _ := s.CreateTask("Today", "", nil, nil, PriorityMedium, relDate(0))
	s.CreateTask("Future", "", nil, nil, PriorityMedium, relDate(5))
	doneLate, _ := s.CreateTask("DoneLate", "", nil, nil, PriorityMedium, relDate(-2))
	s.SetTaskStatus(doneLate.ID, TaskCompleted)

	overdueList, err := s.ListTasks(TaskFilter{Overdue: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(overdueList) != 1 || overdueList[0].ID != overdue.ID {
		t.Fatalf("overdue: expected only the overdue task, got %+v", overdueList)
	}

	todayList, err := s.ListTasks(TaskFilter{DueToday: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(todayList) != 1 || todayList[0].ID != todayTask.ID {
		t.Fatalf("today: expected only today's task, got %+v", todayList)
	}

	// A task due exactly today must never classify as overdue.
	for _, task := range overdueList {
		if task.ID == todayTask.ID {
			t.Fatal("task due today classified as overdue")
		}
	}
}

func TestCompletedNeverOverdueOrToday(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateTask("A", "", nil, nil, PriorityMedium, relDate(-3))
	b, _ := s.CreateTask("B", "", nil, nil, PriorityMedium, relDate(0))
	s.SetTaskStatus(a.ID, TaskCompleted)
	s.SetTaskStatus(b.ID, TaskCompleted)

	overdueList, _ := s.ListTasks(TaskFilter{Overdue: true})
	todayList, _ := s.ListTasks(TaskFilter{DueToday: true})
	if len(overdueList) != 0 || len(todayList) != 0 {
		t.Fatalf("completed tasks leaked into overdue=%d today=%d", len(overdueList), len(todayList))
	}
}

func TestDeadlineRangeInclusive(t *testing.T) {
	s := newTestStore(t)
	s.CreateTask("Before", "", nil, nil, PriorityMedium, datePtr(t, "2030-01-01"))
	s.CreateTask("From", "", nil, nil, PriorityMedium, datePtr(t, "2030-01-10"))
	s.CreateTask("Mid", "", nil, nil, PriorityMedium, datePtr(t, "2030-01-15"))
	s.CreateTask("To", "", nil, nil, PriorityMedium, datePtr(t, "2030-01-20"))
	s.CreateTask("After", "", nil, nil, PriorityMedium, datePtr(t, "2030-01-21"))

	tasks, err := s.ListTasks(TaskFilter{
		DeadlineFrom: datePtr(t, "2030-01-10"),
		DeadlineTo:   datePtr(t, "2030-01-20"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks in range, got %d", len(tasks))
	}
}

func TestParentOnlyWithPriority(t *testing.T) {
	s := newTestStore(t)
	top1, _ := s.CreateTask("TopHighLate", "", nil, nil, PriorityHigh, datePtr(t, "2030-02-01"))
	top2, _ := s.CreateTask("TopHighEarly", "", nil, nil, PriorityHigh, datePtr(t, "2030-01-01"))
	s.CreateTask("TopLow", "", nil, nil, PriorityLow, nil)
	s.CreateTask("SubHigh", "", nil, &top1.ID, PriorityHigh, nil)

	prio := PriorityHigh
	tasks, err := s.ListTasks(TaskFilter{Priority: &prio, ParentOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 top-level high tasks, got %d", len(tasks))
	}
	// Ties broken by ascending deadline
	if tasks[0].ID != top2.ID || tasks[1].ID != top1.ID {
		t.Fatalf("unexpected order: %s, %s", tasks[0].Title, tasks[1].Title)
	}
}

func TestListTasksInvalidFilterValues(t *testing.T) {
	s := newTestStore(t)
	bad := TaskStatus("nope")
	if _, err := s.ListTasks(TaskFilter{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	badPrio := Priority("urgent")
	if _, err := s.ListTasks(TaskFilter{Priority: &badPrio}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

// ============================================================
// Progress
// ============================================================

func TestProjectProgress(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)
	t1, _ := s.CreateTask("A", "", &p.ID, nil, PriorityMedium, nil)
	s.CreateTask("B", "", &p.ID, nil, PriorityMedium, nil)
	s.CreateTask("C", "", &p.ID, nil, PriorityMedium, nil)
	s.SetTaskStatus(t1.ID, TaskCompleted)

	prog, err := s.ProjectProgress(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Total != 3 || prog.Completed != 1 || prog.Pending != 2 {
		t.Fatalf("unexpected progress: %+v", prog)
	}
	if prog.Percentage != 33.3 {
		t.Fatalf("expected 33.3%%, got %v", prog.Percentage)
	}
}

func TestProjectProgressEmpty(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("Empty", "", "", PriorityMedium, nil)

	prog, err := s.ProjectProgress(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Percentage != 0 || prog.Total != 0 {
		t.Fatalf("zero tasks should yield zero percentage, got %+v", prog)
	}
}

func TestProjectProgressExcludesSubtasks(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "", "", PriorityMedium, nil)
	top, _ := s.CreateTask("Top", "", &p.ID, nil, PriorityMedium, nil)
	sub, _ := s.CreateTask("Sub", "", &p.ID, &top.ID, PriorityMedium, nil)
	s.SetTaskStatus(sub.ID, TaskCompleted)

	prog, _ := s.ProjectProgress(p.ID)
	if prog.Total != 1 || prog.Completed != 0 {
		t.Fatalf("subtasks must not count toward progress: %+v", prog)
	}
}

func TestProjectProgressNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ProjectProgress(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
