package store

import "time"

// Priority orders work items. High sorts before medium, medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          int64
	Name        string
	Description string
	Client      string
	Status      ProjectStatus
	Priority    Priority
	Deadline    *time.Time // date only, midnight UTC
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

type Task struct {
	ID           int64
	Title        string
	Description  string
	ProjectID    *int64
	ParentTaskID *int64 // non-nil marks this task as a subtask
	Status       TaskStatus
	Priority     Priority
	Deadline     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// IsSubtask reports whether the task is nested under a parent task.
func (t *Task) IsSubtask() bool { return t.ParentTaskID != nil }

type Note struct {
	ID        int64
	Title     string
	Content   string
	Tags      string // comma-separated, free text
	ProjectID *int64
	TaskID    *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings is the singleton user configuration row.
type Settings struct {
	DailySummaryTime       string // "HH:MM"
	EveningReminderTime    string // "HH:MM"
	Timezone               string
	DailySummaryEnabled    bool
	EveningReminderEnabled bool
}

// TaskFilter selects tasks in ListTasks. All set fields are ANDed together.
type TaskFilter struct {
	Status       *TaskStatus
	ProjectID    *int64
	Priority     *Priority
	Overdue      bool       // deadline strictly before today, not completed
	DueToday     bool       // deadline is today, not completed
	ParentOnly   bool       // exclude subtasks
	DeadlineFrom *time.Time // inclusive
	DeadlineTo   *time.Time // inclusive
}

// NoteFilter selects notes in ListNotes.
type NoteFilter struct {
	ProjectID *int64
	TaskID    *int64
	Tag       string // substring match on tags
	Search    string // substring match on title or content
}

// TaskUpdate is a typed partial update. Nil fields are left untouched.
// ClearDeadline removes the deadline; it wins over Deadline if both are set.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Deadline      *time.Time
	ClearDeadline bool
}

// ProjectUpdate is a typed partial update for projects.
type ProjectUpdate struct {
	Name          *string
	Description   *string
	Client        *string
	Priority      *Priority
	Deadline      *time.Time
	ClearDeadline bool
}

// NoteUpdate is a typed partial update for notes.
type NoteUpdate struct {
	Title   *string
	Content *string
	Tags    *string
}

// Progress is the derived completion state of a project, computed over its
// direct top-level tasks. Subtasks do not count toward project progress.
type Progress struct {
	Total      int
	Completed  int
	Pending    int
	Percentage float64 // 0..100, one decimal, 0 when Total is 0
}
