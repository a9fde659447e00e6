package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/digest"
	"github.com/sadopc/steward/internal/dispatch"
	"github.com/sadopc/steward/internal/store"
)

// renderView turns a dispatcher view into transcript text.
func renderView(v dispatch.View, width int) string {
	switch v := v.(type) {
	case dispatch.TaskList:
		return renderTaskList(v)
	case dispatch.TaskDetail:
		return renderTaskDetail(v)
	case dispatch.ProjectList:
		return renderProjectList(v)
	case dispatch.ProjectDetail:
		return renderProjectDetail(v)
	case dispatch.NoteList:
		return renderNoteList(v)
	case dispatch.NoteDetail:
		return renderNoteDetail(v)
	case dispatch.Dashboard:
		return renderDaily(v.Daily)
	case dispatch.WeeklyStats:
		return renderWeekly(v.Weekly, width)
	case dispatch.MonthlyStats:
		return renderMonthly(v.Monthly)
	case dispatch.SettingsView:
		return renderSettings(v.Settings)
	case dispatch.DialogView:
		return renderPrompt(v.Prompt)
	case dispatch.ExportDone:
		return successStyle.Render("Exported to " + v.Path)
	case dispatch.Notice:
		return renderNotice(v)
	}
	return ""
}

var scopeTitles = map[dispatch.TaskScope]string{
	dispatch.ScopeAll:        "Tasks",
	dispatch.ScopeToday:      "Due today",
	dispatch.ScopeOverdue:    "Overdue",
	dispatch.ScopePending:    "Pending",
	dispatch.ScopeInProgress: "In progress",
	dispatch.ScopeCompleted:  "Completed",
}

func renderTaskList(v dispatch.TaskList) string {
	var rows []string
	rows = append(rows, titleStyle.Render(scopeTitles[v.Scope]))
	if len(v.Tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  nothing here"))
		return strings.Join(rows, "\n")
	}
	for _, t := range v.Tasks {
		rows = append(rows, "  "+taskLine(t))
	}
	return strings.Join(rows, "\n")
}

func taskLine(t store.Task) string {
	parts := []string{
		mutedStyle.Render(fmt.Sprintf("#%d", t.ID)),
		statusMark(t.Status),
		priorityMark(t.Priority),
		t.Title,
	}
	if t.Deadline != nil {
		parts = append(parts, mutedStyle.Render(t.Deadline.Format("Jan 02")))
	}
	return strings.Join(parts, " ")
}

func renderTaskDetail(v dispatch.TaskDetail) string {
	t := v.Task
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)))
	rows = append(rows, "  "+statusMark(t.Status)+" "+string(t.Status)+"  "+priorityMark(t.Priority)+" "+string(t.Priority))
	if t.Description != "" {
		rows = append(rows, "  "+t.Description)
	}
	if v.ProjectName != "" {
		rows = append(rows, "  "+mutedStyle.Render("project: ")+v.ProjectName)
	}
	if t.Deadline != nil {
		rows = append(rows, "  "+mutedStyle.Render("deadline: ")+t.Deadline.Format("2006-01-02"))
	}
	if t.CompletedAt != nil {
		rows = append(rows, "  "+successStyle.Render("completed "+t.CompletedAt.Format("2006-01-02")))
	}
	if len(v.Subtasks) > 0 {
		rows = append(rows, "  "+mutedStyle.Render("subtasks:"))
		for _, s := range v.Subtasks {
			rows = append(rows, "    "+taskLine(s))
		}
	}
	return strings.Join(rows, "\n")
}

func renderProjectList(v dispatch.ProjectList) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Projects"))
	if len(v.Projects) == 0 {
		rows = append(rows, mutedStyle.Render("  no projects"))
		return strings.Join(rows, "\n")
	}
	for _, p := range v.Projects {
		line := fmt.Sprintf("  %s %s %s %s",
			mutedStyle.Render(fmt.Sprintf("#%d", p.ID)),
			projectMark(p.Status),
			priorityMark(p.Priority),
			p.Name,
		)
		if p.Deadline != nil {
			line += " " + mutedStyle.Render(p.Deadline.Format("Jan 02"))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func renderProjectDetail(v dispatch.ProjectDetail) string {
	p := v.Project
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("#%d %s", p.ID, p.Name)))
	rows = append(rows, "  "+projectMark(p.Status)+" "+string(p.Status)+"  "+priorityMark(p.Priority)+" "+string(p.Priority))
	if p.Description != "" {
		rows = append(rows, "  "+p.Description)
	}
	if p.Client != "" {
		rows = append(rows, "  "+mutedStyle.Render("client: ")+p.Client)
	}
	if p.Deadline != nil {
		rows = append(rows, "  "+mutedStyle.Render("deadline: ")+p.Deadline.Format("2006-01-02"))
	}
	rows = append(rows, "  "+progressBar(v.Progress))
	if len(v.Tasks) > 0 {
		rows = append(rows, "  "+mutedStyle.Render("tasks:"))
		for _, t := range v.Tasks {
			rows = append(rows, "    "+taskLine(t))
		}
	}
	return strings.Join(rows, "\n")
}

func progressBar(p store.Progress) string {
	const cells = 20
	filled := 0
	if p.Total > 0 {
		filled = p.Completed * cells / p.Total
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", cells-filled))
	return fmt.Sprintf("%s %.1f%% (%d/%d)", bar, p.Percentage, p.Completed, p.Total)
}

func renderNoteList(v dispatch.NoteList) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Notes"))
	if len(v.Notes) == 0 {
		rows = append(rows, mutedStyle.Render("  no notes"))
		return strings.Join(rows, "\n")
	}
	for _, n := range v.Notes {
		line := fmt.Sprintf("  %s %s", mutedStyle.Render(fmt.Sprintf("#%d", n.ID)), n.Title)
		if n.Tags != "" {
			line += " " + highlightStyle.Render(n.Tags)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func renderNoteDetail(v dispatch.NoteDetail) string {
	n := v.Note
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("#%d %s", n.ID, n.Title)))
	if n.Content != "" {
		rows = append(rows, "  "+n.Content)
	}
	if n.Tags != "" {
		rows = append(rows, "  "+highlightStyle.Render(n.Tags))
	}
	rows = append(rows, "  "+mutedStyle.Render("updated "+n.UpdatedAt.Format("2006-01-02 15:04")))
	return strings.Join(rows, "\n")
}

func renderDaily(d *digest.Daily) string {
	var rows []string
	rows = append(rows, titleStyle.Render(d.Date.Format("Monday, Jan 02")))
	if len(d.DueToday) > 0 {
		rows = append(rows, warningStyle.Render("Due today:"))
		for _, t := range d.DueToday {
			rows = append(rows, "  "+taskLine(t))
		}
	}
	if len(d.Overdue) > 0 {
		rows = append(rows, errorStyle.Render("Overdue:"))
		for _, t := range d.Overdue {
			rows = append(rows, "  "+taskLine(t))
		}
	}
	if len(d.DueToday) == 0 && len(d.Overdue) == 0 {
		rows = append(rows, successStyle.Render("Nothing due. Clear runway."))
	}
	if len(d.UpcomingProjects) > 0 {
		rows = append(rows, mutedStyle.Render("Project deadlines this week:"))
		for _, p := range d.UpcomingProjects {
			rows = append(rows, fmt.Sprintf("  %s %s", p.Name, mutedStyle.Render(p.Deadline.Format("Jan 02"))))
		}
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("%d active projects", d.ActiveProjects)))
	return strings.Join(rows, "\n")
}

func renderEvening(e *digest.Evening) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Tomorrow"))
	for _, t := range e.DueTomorrow {
		rows = append(rows, "  "+taskLine(t))
	}
	return strings.Join(rows, "\n")
}

func renderWeekly(w *digest.Weekly, width int) string {
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("Week %s — %s",
		w.WeekStart.Format("Jan 02"), w.WeekEnd.Format("Jan 02"))))
	rows = append(rows, fmt.Sprintf("  created %d  completed %d  overdue %d",
		w.Created, w.Completed, w.Overdue))
	rows = append(rows, fmt.Sprintf("  completion rate %.1f%%  daily average %.1f",
		w.CompletionRate, w.DailyAverage))

	if chart := weeklyChart(w, width); chart != "" {
		rows = append(rows, chart)
	}

	if len(w.Projects) > 0 {
		rows = append(rows, mutedStyle.Render("  projects:"))
		for _, line := range w.Projects {
			rows = append(rows, fmt.Sprintf("    %s %s", line.Project.Name, progressBar(line.Progress)))
		}
	}
	return strings.Join(rows, "\n")
}

// weeklyChart draws completions per day as a bar chart.
func weeklyChart(w *digest.Weekly, width int) string {
	if len(w.CompletedByDay) == 0 {
		return ""
	}
	chartWidth := width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	if chartWidth > 60 {
		chartWidth = 60
	}

	chart := barchart.New(chartWidth, 8)
	day := w.WeekStart
	for _, n := range w.CompletedByDay {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if n == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		chart.Push(barchart.BarData{
			Label: day.Format("Mon"),
			Values: []barchart.BarValue{
				{Name: "completed", Value: float64(n), Style: style},
			},
		})
		day = day.AddDate(0, 0, 1)
	}
	chart.Draw()
	return chart.View()
}

func renderMonthly(m *digest.Monthly) string {
	var rows []string
	rows = append(rows, titleStyle.Render(m.MonthStart.Format("January 2006")))
	rows = append(rows, fmt.Sprintf("  tasks: %d created, %d completed (%.1f%% on time)",
		m.Created, m.Completed, m.OnTimeRate))
	rows = append(rows, fmt.Sprintf("  projects: %d completed, %d active",
		m.ProjectsCompleted, m.ActiveProjects))
	if len(m.Priorities) > 0 {
		rows = append(rows, fmt.Sprintf("  priorities: %d high, %d medium, %d low",
			m.Priorities[store.PriorityHigh], m.Priorities[store.PriorityMedium], m.Priorities[store.PriorityLow]))
	}
	if m.Overdue > 0 {
		rows = append(rows, errorStyle.Render(fmt.Sprintf("  %d overdue right now", m.Overdue)))
	}
	return strings.Join(rows, "\n")
}

func renderSettings(s store.Settings) string {
	onOff := func(b bool) string {
		if b {
			return successStyle.Render("on")
		}
		return mutedStyle.Render("off")
	}
	var rows []string
	rows = append(rows, titleStyle.Render("Settings"))
	rows = append(rows, fmt.Sprintf("  daily summary    %s at %s", onOff(s.DailySummaryEnabled), s.DailySummaryTime))
	rows = append(rows, fmt.Sprintf("  evening reminder %s at %s", onOff(s.EveningReminderEnabled), s.EveningReminderTime))
	rows = append(rows, "  timezone         "+s.Timezone)
	rows = append(rows, mutedStyle.Render("  ctrl+s to edit"))
	return strings.Join(rows, "\n")
}

var stepQuestions = map[dialog.Step]string{
	dialog.StepTitle:       "What should it be called?",
	dialog.StepDescription: "Add a description?",
	dialog.StepPriority:    "How urgent is it?",
	dialog.StepDeadline:    "When is it due?",
	dialog.StepProject:     "Which project does it belong to?",
	dialog.StepConfirm:     "Create it?",
}

var editQuestions = map[dialog.EditField]string{
	dialog.EditTitle:       "New title?",
	dialog.EditDescription: "New description?",
	dialog.EditPriority:    "New priority?",
	dialog.EditDeadline:    "New deadline?",
}

func renderPrompt(p *dialog.Prompt) string {
	var rows []string

	if p.Err != nil {
		rows = append(rows, errorStyle.Render(p.Err.Error()))
	}

	question := stepQuestions[p.Step]
	if p.Flow == dialog.FlowEditTask {
		question = editQuestions[p.Field]
	}
	rows = append(rows, question)

	if p.Step == dialog.StepConfirm {
		rows = append(rows, draftSummary(p.Draft))
	}

	for i, o := range p.Options {
		rows = append(rows, fmt.Sprintf("  %s %s",
			optionNumStyle.Render(fmt.Sprintf("%d.", i+1)),
			optionStyle.Render(optionLabel(o, p.Step)),
		))
	}
	return strings.Join(rows, "\n")
}

func draftSummary(d dialog.Draft) string {
	var rows []string
	rows = append(rows, "  "+titleStyle.Render(d.Title))
	if d.Description != "" {
		rows = append(rows, "  "+d.Description)
	}
	rows = append(rows, "  "+priorityMark(d.Priority)+" "+string(d.Priority))
	if d.Deadline != nil {
		rows = append(rows, "  "+mutedStyle.Render("due ")+d.Deadline.Format("2006-01-02"))
	}
	if d.ProjectName != "" {
		rows = append(rows, "  "+mutedStyle.Render("in ")+d.ProjectName)
	}
	return strings.Join(rows, "\n")
}

func optionLabel(o dialog.Option, step dialog.Step) string {
	switch o.Kind {
	case dialog.OptionCancel:
		return "Cancel"
	case dialog.OptionSkip:
		return "Skip"
	case dialog.OptionConfirm:
		return "Confirm"
	case dialog.OptionNone:
		if step == dialog.StepProject {
			return "No project"
		}
		return "No deadline"
	case dialog.OptionPriority:
		return priorityMark(o.Priority) + " " + string(o.Priority)
	case dialog.OptionProject:
		return o.ProjectName
	case dialog.OptionDate:
		return o.Date.Format("2006-01-02") + " (" + relativeDay(o.Date) + ")"
	}
	return ""
}

func relativeDay(d time.Time) string {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	switch days := int(d.Sub(today).Hours() / 24); days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("+%dd", days)
	}
}

func renderNotice(n dispatch.Notice) string {
	switch n.Kind {
	case dispatch.NoticeError:
		return errorStyle.Render("Error: " + n.Err.Error())
	case dispatch.NoticeNoDialog:
		return mutedStyle.Render("No dialog in progress. Commands start with / — try /help.")
	case dispatch.NoticeDialogCancelled:
		return mutedStyle.Render("Cancelled.")
	case dispatch.NoticeTaskCreated:
		return successStyle.Render("Task created: ") + taskLine(*n.Task)
	case dispatch.NoticeTaskUpdated:
		return successStyle.Render("Updated: ") + taskLine(*n.Task)
	case dispatch.NoticeTaskDeleted:
		return mutedStyle.Render("Deleted task ") + n.Task.Title
	case dispatch.NoticeTaskPostponed:
		return successStyle.Render("Postponed: ") + taskLine(*n.Task)
	case dispatch.NoticeProjectCreated:
		return successStyle.Render("Project created: ") + n.Project.Name
	case dispatch.NoticeProjectDeleted:
		return mutedStyle.Render("Deleted project ") + n.Project.Name
	case dispatch.NoticeNoteDeleted:
		return mutedStyle.Render("Note deleted.")
	case dispatch.NoticeStatusChanged:
		if n.Task != nil {
			return successStyle.Render("Status: ") + taskLine(*n.Task)
		}
		return successStyle.Render("Status: ") + n.Project.Name + " is now " + string(n.Project.Status)
	case dispatch.NoticeSettingsSaved:
		return successStyle.Render("Settings saved.")
	}
	return ""
}

func statusMark(s store.TaskStatus) string {
	switch s {
	case store.TaskCompleted:
		return successStyle.Render("✓")
	case store.TaskInProgress:
		return warningStyle.Render("▸")
	default:
		return mutedStyle.Render("○")
	}
}

func projectMark(s store.ProjectStatus) string {
	switch s {
	case store.ProjectCompleted:
		return successStyle.Render("✓")
	case store.ProjectPaused:
		return warningStyle.Render("⏸")
	default:
		return highlightStyle.Render("●")
	}
}

func priorityMark(p store.Priority) string {
	switch p {
	case store.PriorityHigh:
		return errorStyle.Render("!")
	case store.PriorityLow:
		return mutedStyle.Render("·")
	default:
		return warningStyle.Render("-")
	}
}
