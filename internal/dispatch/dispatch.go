package dispatch

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/digest"
	"github.com/sadopc/steward/internal/export"
	"github.com/sadopc/steward/internal/store"
)

// defaultActor keys dialog sessions for the single local user.
const defaultActor int64 = 1

var errUnknownAction = errors.New("unknown action")

type Dispatcher struct {
	store     *store.Store
	machine   *dialog.Machine
	digests   *digest.Engine
	exportDir string
	log       *slog.Logger
	actor     int64
	now       func() time.Time
}

func New(s *store.Store, m *dialog.Machine, e *digest.Engine, exportDir string, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		store:     s,
		machine:   m,
		digests:   e,
		exportDir: exportDir,
		log:       log,
		actor:     defaultActor,
		now:       time.Now,
	}
}

// Handle routes one event. Text and choices go to the active dialog; a direct
// action abandons any dialog in progress before it runs.
func (d *Dispatcher) Handle(ev Event) View {
	switch ev := ev.(type) {
	case FreeText:
		if !d.machine.Active(d.actor) {
			return Notice{Kind: NoticeNoDialog}
		}
		return d.dialogView(d.machine.Handle(d.actor, dialog.Text(ev.Text)))
	case Choose:
		if !d.machine.Active(d.actor) {
			return Notice{Kind: NoticeNoDialog}
		}
		return d.dialogView(d.machine.Handle(d.actor, dialog.Choose(ev.Option)))
	case Do:
		d.machine.Cancel(d.actor)
		return d.apply(ev.Action)
	}
	return Notice{Kind: NoticeNoDialog}
}

func (d *Dispatcher) dialogView(res dialog.Result) View {
	switch res.Status {
	case dialog.StatusContinue:
		return DialogView{Prompt: res.Prompt}
	case dialog.StatusCreated:
		if res.Project != nil {
			return Notice{Kind: NoticeProjectCreated, Project: res.Project}
		}
		return Notice{Kind: NoticeTaskCreated, Task: res.Task}
	case dialog.StatusUpdated:
		return Notice{Kind: NoticeTaskUpdated, Task: res.Task}
	case dialog.StatusFailed:
		return d.fail("dialog commit", res.Err)
	default:
		return Notice{Kind: NoticeDialogCancelled}
	}
}

func (d *Dispatcher) apply(a Action) View {
	switch a := a.(type) {
	case ShowDashboard:
		daily, err := d.digests.Daily()
		if err != nil {
			return d.fail("dashboard", err)
		}
		return Dashboard{Daily: daily}

	case ListTasks:
		tasks, err := d.store.ListTasks(scopeFilter(a.Scope))
		if err != nil {
			return d.fail("list tasks", err)
		}
		return TaskList{Scope: a.Scope, Tasks: tasks}

	case ViewTask:
		return d.taskDetail(a.ID)

	case ChangeTaskStatus:
		if err := d.store.SetTaskStatus(a.ID, a.Status); err != nil {
			return d.fail("change task status", err)
		}
		return d.taskNotice(NoticeStatusChanged, a.ID)

	case CompleteTask:
		if err := d.store.SetTaskStatus(a.ID, store.TaskCompleted); err != nil {
			return d.fail("complete task", err)
		}
		return d.taskNotice(NoticeStatusChanged, a.ID)

	case PostponeTask:
		if err := d.store.PostponeTask(a.ID, a.Days); err != nil {
			return d.fail("postpone task", err)
		}
		return d.taskNotice(NoticeTaskPostponed, a.ID)

	case DeleteTask:
		task, err := d.store.GetTask(a.ID)
		if err != nil {
			return d.fail("delete task", err)
		}
		if err := d.store.DeleteTask(a.ID); err != nil {
			return d.fail("delete task", err)
		}
		return Notice{Kind: NoticeTaskDeleted, Task: task}

	case StartTaskDialog:
		return DialogView{Prompt: d.machine.StartTask(d.actor)}

	case StartSubtaskDialog:
		prompt, err := d.machine.StartSubtask(d.actor, a.ParentID)
		if err != nil {
			return d.fail("start subtask dialog", err)
		}
		return DialogView{Prompt: prompt}

	case StartEditDialog:
		prompt, err := d.machine.StartEdit(d.actor, a.TaskID, a.Field)
		if err != nil {
			return d.fail("start edit dialog", err)
		}
		return DialogView{Prompt: prompt}

	case ListProjects:
		projects, err := d.store.ListProjects(a.Status)
		if err != nil {
			return d.fail("list projects", err)
		}
		return ProjectList{Status: a.Status, Projects: projects}

	case ViewProject:
		return d.projectDetail(a.ID)

	case ChangeProjectStatus:
		if err := d.store.SetProjectStatus(a.ID, a.Status); err != nil {
			return d.fail("change project status", err)
		}
		project, err := d.store.GetProject(a.ID)
		if err != nil {
			return d.fail("change project status", err)
		}
		return Notice{Kind: NoticeStatusChanged, Project: project}

	case DeleteProject:
		project, err := d.store.GetProject(a.ID)
		if err != nil {
			return d.fail("delete project", err)
		}
		if err := d.store.DeleteProject(a.ID); err != nil {
			return d.fail("delete project", err)
		}
		return Notice{Kind: NoticeProjectDeleted, Project: project}

	case StartProjectDialog:
		return DialogView{Prompt: d.machine.StartProject(d.actor)}

	case ListNotes:
		notes, err := d.store.ListNotes(a.Filter)
		if err != nil {
			return d.fail("list notes", err)
		}
		return NoteList{Filter: a.Filter, Notes: notes}

	case ViewNote:
		note, err := d.store.GetNote(a.ID)
		if err != nil {
			return d.fail("view note", err)
		}
		return NoteDetail{Note: *note}

	case DeleteNote:
		if err := d.store.DeleteNote(a.ID); err != nil {
			return d.fail("delete note", err)
		}
		return Notice{Kind: NoticeNoteDeleted}

	case ShowSettings:
		settings, err := d.store.GetSettings()
		if err != nil {
			return d.fail("show settings", err)
		}
		return SettingsView{Settings: *settings}

	case SaveSettings:
		if err := d.store.SaveSettings(a.Settings); err != nil {
			return d.fail("save settings", err)
		}
		return Notice{Kind: NoticeSettingsSaved}

	case ShowWeeklyStats:
		weekly, err := d.digests.Weekly()
		if err != nil {
			return d.fail("weekly stats", err)
		}
		return WeeklyStats{Weekly: weekly}

	case ShowMonthlyStats:
		monthly, err := d.digests.Monthly()
		if err != nil {
			return d.fail("monthly stats", err)
		}
		return MonthlyStats{Monthly: monthly}

	case ExportWorkspace:
		snap, err := export.Collect(d.store)
		if err != nil {
			return d.fail("export", err)
		}
		path := filepath.Join(d.exportDir, export.FileName(a.Format, d.now()))
		if err := export.Write(snap, a.Format, path); err != nil {
			return d.fail("export", err)
		}
		return ExportDone{Format: a.Format, Path: path}
	}

	return d.fail("dispatch", errUnknownAction)
}

func (d *Dispatcher) taskDetail(id int64) View {
	task, err := d.store.GetTask(id)
	if err != nil {
		return d.fail("view task", err)
	}
	detail := TaskDetail{Task: *task}
	if task.ProjectID != nil {
		if project, err := d.store.GetProject(*task.ProjectID); err == nil {
			detail.ProjectName = project.Name
		}
	}
	if !task.IsSubtask() {
		subtasks, err := d.store.Subtasks(task.ID)
		if err != nil {
			return d.fail("view task", err)
		}
		detail.Subtasks = subtasks
	}
	return detail
}

func (d *Dispatcher) projectDetail(id int64) View {
	project, err := d.store.GetProject(id)
	if err != nil {
		return d.fail("view project", err)
	}
	progress, err := d.store.ProjectProgress(id)
	if err != nil {
		return d.fail("view project", err)
	}
	tasks, err := d.store.ListTasks(store.TaskFilter{ProjectID: &project.ID, ParentOnly: true})
	if err != nil {
		return d.fail("view project", err)
	}
	return ProjectDetail{Project: *project, Progress: *progress, Tasks: tasks}
}

func (d *Dispatcher) taskNotice(kind NoticeKind, id int64) View {
	task, err := d.store.GetTask(id)
	if err != nil {
		return d.fail("load task", err)
	}
	return Notice{Kind: kind, Task: task}
}

func (d *Dispatcher) fail(op string, err error) View {
	d.log.Warn("dispatch failed", "op", op, "err", err)
	return Notice{Kind: NoticeError, Err: err}
}

func scopeFilter(scope TaskScope) store.TaskFilter {
	f := store.TaskFilter{ParentOnly: true}
	switch scope {
	case ScopeToday:
		f.DueToday = true
	case ScopeOverdue:
		f.Overdue = true
	case ScopePending:
		s := store.TaskPending
		f.Status = &s
	case ScopeInProgress:
		s := store.TaskInProgress
		f.Status = &s
	case ScopeCompleted:
		s := store.TaskCompleted
		f.Status = &s
	}
	return f
}
