package dispatch

import (
	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/digest"
	"github.com/sadopc/steward/internal/export"
	"github.com/sadopc/steward/internal/store"
)

// View is the typed answer to an event. The conversation surface owns turning
// these into strings.
type View interface{ isView() }

type TaskList struct {
	Scope TaskScope
	Tasks []store.Task
}

type TaskDetail struct {
	Task        store.Task
	ProjectName string
	Subtasks    []store.Task
}

type ProjectList struct {
	Status   *store.ProjectStatus
	Projects []store.Project
}

type ProjectDetail struct {
	Project  store.Project
	Progress store.Progress
	Tasks    []store.Task
}

type NoteList struct {
	Filter store.NoteFilter
	Notes  []store.Note
}

type NoteDetail struct{ Note store.Note }

type Dashboard struct{ Daily *digest.Daily }

type WeeklyStats struct{ Weekly *digest.Weekly }

type MonthlyStats struct{ Monthly *digest.Monthly }

type SettingsView struct{ Settings store.Settings }

// DialogView is an in-progress dialog prompt awaiting the next input.
type DialogView struct{ Prompt *dialog.Prompt }

type ExportDone struct {
	Format export.Format
	Path   string
}

// NoticeKind classifies one-shot outcome messages.
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeNoDialog
	NoticeDialogCancelled
	NoticeTaskCreated
	NoticeTaskUpdated
	NoticeTaskDeleted
	NoticeTaskPostponed
	NoticeProjectCreated
	NoticeProjectDeleted
	NoticeNoteDeleted
	NoticeStatusChanged
	NoticeSettingsSaved
)

// Notice reports a completed or failed operation. Task and Project carry the
// affected entity when one exists; Err is set only for NoticeError.
type Notice struct {
	Kind    NoticeKind
	Task    *store.Task
	Project *store.Project
	Err     error
}

func (TaskList) isView()      {}
func (TaskDetail) isView()    {}
func (ProjectList) isView()   {}
func (ProjectDetail) isView() {}
func (NoteList) isView()      {}
func (NoteDetail) isView()    {}
func (Dashboard) isView()     {}
func (WeeklyStats) isView()   {}
func (MonthlyStats) isView()  {}
func (SettingsView) isView()  {}
func (DialogView) isView()    {}
func (ExportDone) isView()    {}
func (Notice) isView()        {}
