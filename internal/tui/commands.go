package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/dispatch"
	"github.com/sadopc/steward/internal/export"
	"github.com/sadopc/steward/internal/store"
)

// parseCommand turns a slash command into a typed action. Everything after
// this point works with actions and options only; no other layer sees the
// command text.
func parseCommand(text string) (dispatch.Action, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "/start", "/dashboard":
		return dispatch.ShowDashboard{}, nil

	case "/tasks":
		scope := dispatch.ScopeAll
		if len(args) > 0 {
			s, ok := taskScopes[strings.ToLower(args[0])]
			if !ok {
				return nil, fmt.Errorf("usage: /tasks [today|overdue|pending|progress|done]")
			}
			scope = s
		}
		return dispatch.ListTasks{Scope: scope}, nil

	case "/task":
		id, err := argID(args, "/task <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.ViewTask{ID: id}, nil

	case "/newtask":
		return dispatch.StartTaskDialog{}, nil

	case "/newproject":
		return dispatch.StartProjectDialog{}, nil

	case "/subtask":
		id, err := argID(args, "/subtask <parent task id>")
		if err != nil {
			return nil, err
		}
		return dispatch.StartSubtaskDialog{ParentID: id}, nil

	case "/edit":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: /edit <id> <title|desc|priority|deadline>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		field, ok := editFields[strings.ToLower(args[1])]
		if !ok {
			return nil, fmt.Errorf("usage: /edit <id> <title|desc|priority|deadline>")
		}
		return dispatch.StartEditDialog{TaskID: id, Field: field}, nil

	case "/done":
		id, err := argID(args, "/done <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.CompleteTask{ID: id}, nil

	case "/status":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: /status <id> <pending|progress|done>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		status, ok := taskStatuses[strings.ToLower(args[1])]
		if !ok {
			return nil, fmt.Errorf("usage: /status <id> <pending|progress|done>")
		}
		return dispatch.ChangeTaskStatus{ID: id, Status: status}, nil

	case "/postpone":
		id, err := argID(args, "/postpone <id> [days]")
		if err != nil {
			return nil, err
		}
		days := 1
		if len(args) > 1 {
			days, err = strconv.Atoi(args[1])
			if err != nil {
				return nil, fmt.Errorf("usage: /postpone <id> [days]")
			}
		}
		return dispatch.PostponeTask{ID: id, Days: days}, nil

	case "/deltask":
		id, err := argID(args, "/deltask <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.DeleteTask{ID: id}, nil

	case "/projects":
		var status *store.ProjectStatus
		if len(args) > 0 {
			s, ok := projectStatuses[strings.ToLower(args[0])]
			if !ok {
				return nil, fmt.Errorf("usage: /projects [active|paused|done]")
			}
			status = &s
		}
		return dispatch.ListProjects{Status: status}, nil

	case "/project":
		id, err := argID(args, "/project <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.ViewProject{ID: id}, nil

	case "/projstatus":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: /projstatus <id> <active|paused|done>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		status, ok := projectStatuses[strings.ToLower(args[1])]
		if !ok {
			return nil, fmt.Errorf("usage: /projstatus <id> <active|paused|done>")
		}
		return dispatch.ChangeProjectStatus{ID: id, Status: status}, nil

	case "/delproject":
		id, err := argID(args, "/delproject <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.DeleteProject{ID: id}, nil

	case "/notes":
		var filter store.NoteFilter
		if len(args) > 0 {
			if tag, ok := strings.CutPrefix(args[0], "#"); ok {
				filter.Tag = tag
			} else {
				filter.Search = strings.Join(args, " ")
			}
		}
		return dispatch.ListNotes{Filter: filter}, nil

	case "/note":
		id, err := argID(args, "/note <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.ViewNote{ID: id}, nil

	case "/delnote":
		id, err := argID(args, "/delnote <id>")
		if err != nil {
			return nil, err
		}
		return dispatch.DeleteNote{ID: id}, nil

	case "/settings":
		return dispatch.ShowSettings{}, nil

	case "/week":
		return dispatch.ShowWeeklyStats{}, nil

	case "/month":
		return dispatch.ShowMonthlyStats{}, nil

	case "/export":
		format := export.FormatJSON
		if len(args) > 0 {
			switch strings.ToLower(args[0]) {
			case "json":
				format = export.FormatJSON
			case "csv":
				format = export.FormatCSV
			default:
				return nil, fmt.Errorf("usage: /export [json|csv]")
			}
		}
		return dispatch.ExportWorkspace{Format: format}, nil
	}

	return nil, fmt.Errorf("unknown command %s (try /help)", cmd)
}

var taskScopes = map[string]dispatch.TaskScope{
	"all":      dispatch.ScopeAll,
	"today":    dispatch.ScopeToday,
	"overdue":  dispatch.ScopeOverdue,
	"pending":  dispatch.ScopePending,
	"progress": dispatch.ScopeInProgress,
	"done":     dispatch.ScopeCompleted,
}

var taskStatuses = map[string]store.TaskStatus{
	"pending":  store.TaskPending,
	"progress": store.TaskInProgress,
	"done":     store.TaskCompleted,
}

var projectStatuses = map[string]store.ProjectStatus{
	"active": store.ProjectActive,
	"paused": store.ProjectPaused,
	"done":   store.ProjectCompleted,
}

var editFields = map[string]dialog.EditField{
	"title":    dialog.EditTitle,
	"desc":     dialog.EditDescription,
	"priority": dialog.EditPriority,
	"deadline": dialog.EditDeadline,
}

func argID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return parseID(args[0])
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not an id", s)
	}
	return id, nil
}

const helpText = `Commands:
  /dashboard            today's overview
  /tasks [scope]        list tasks (today, overdue, pending, progress, done)
  /task <id>            task details
  /newtask              create a task
  /subtask <id>         add a subtask
  /edit <id> <field>    edit title, desc, priority or deadline
  /done <id>            complete a task
  /status <id> <s>      set pending, progress or done
  /postpone <id> [n]    push the deadline n days
  /deltask <id>         delete a task
  /projects [status]    list projects
  /project <id>         project details
  /newproject           create a project
  /projstatus <id> <s>  set active, paused or done
  /delproject <id>      delete a project
  /notes [#tag|text]    list notes
  /note <id>            note details
  /delnote <id>         delete a note
  /settings             digest times and timezone
  /week  /month         stats digests
  /export [json|csv]    export everything`
