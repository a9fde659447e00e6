// Package dispatch routes typed events from the conversation surface to the
// store, the dialog machine, and the digest engine, and answers with typed
// views. No text formatting happens here.
package dispatch

import (
	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/export"
	"github.com/sadopc/steward/internal/store"
)

// Event is one user interaction. FreeText and Choose feed an active dialog;
// Do carries a direct action and abandons any dialog first.
type Event interface{ isEvent() }

type FreeText struct{ Text string }

type Choose struct{ Option dialog.Option }

type Do struct{ Action Action }

func (FreeText) isEvent() {}
func (Choose) isEvent()   {}
func (Do) isEvent()       {}

// TaskScope names the canned task list filters the surface can ask for.
type TaskScope int

const (
	ScopeAll TaskScope = iota
	ScopeToday
	ScopeOverdue
	ScopePending
	ScopeInProgress
	ScopeCompleted
)

// Action is the closed set of direct commands. The surface builds these from
// whatever affordance it exposes; nothing downstream parses strings.
type Action interface{ isAction() }

type ShowDashboard struct{}

type ListTasks struct{ Scope TaskScope }

type ViewTask struct{ ID int64 }

type ChangeTaskStatus struct {
	ID     int64
	Status store.TaskStatus
}

type CompleteTask struct{ ID int64 }

type PostponeTask struct {
	ID   int64
	Days int
}

type DeleteTask struct{ ID int64 }

type StartTaskDialog struct{}

type StartSubtaskDialog struct{ ParentID int64 }

type StartEditDialog struct {
	TaskID int64
	Field  dialog.EditField
}

type ListProjects struct{ Status *store.ProjectStatus }

type ViewProject struct{ ID int64 }

type ChangeProjectStatus struct {
	ID     int64
	Status store.ProjectStatus
}

type DeleteProject struct{ ID int64 }

type StartProjectDialog struct{}

type ListNotes struct{ Filter store.NoteFilter }

type ViewNote struct{ ID int64 }

type DeleteNote struct{ ID int64 }

type ShowSettings struct{}

type SaveSettings struct{ Settings store.Settings }

type ShowWeeklyStats struct{}

type ShowMonthlyStats struct{}

type ExportWorkspace struct{ Format export.Format }

func (ShowDashboard) isAction()       {}
func (ListTasks) isAction()           {}
func (ViewTask) isAction()            {}
func (ChangeTaskStatus) isAction()    {}
func (CompleteTask) isAction()        {}
func (PostponeTask) isAction()        {}
func (DeleteTask) isAction()          {}
func (StartTaskDialog) isAction()     {}
func (StartSubtaskDialog) isAction()  {}
func (StartEditDialog) isAction()     {}
func (ListProjects) isAction()        {}
func (ViewProject) isAction()         {}
func (ChangeProjectStatus) isAction() {}
func (DeleteProject) isAction()       {}
func (StartProjectDialog) isAction()  {}
func (ListNotes) isAction()           {}
func (ViewNote) isAction()            {}
func (DeleteNote) isAction()          {}
func (ShowSettings) isAction()        {}
func (SaveSettings) isAction()        {}
func (ShowWeeklyStats) isAction()     {}
func (ShowMonthlyStats) isAction()    {}
func (ExportWorkspace) isAction()     {}
