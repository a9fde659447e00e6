// Package digest computes the scheduled summary payloads. Everything here is
// read-only over the store; delivery is the caller's concern.
package digest

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/steward/internal/store"
)

const upcomingWindowDays = 7

// Engine derives digest payloads from the store at a point in time. The clock
// is injectable so a payload can be computed for any day under test.
type Engine struct {
	store *store.Store
	now   func() time.Time
	loc   *time.Location
}

func New(s *store.Store, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{store: s, now: time.Now, loc: loc}
}

// today is the current date in the engine's location, normalized to midnight
// UTC to match how the store keys dates.
func (e *Engine) today() time.Time {
	t := e.now().In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Daily is the morning summary: what is due, what slipped, and which
// project deadlines are close.
type Daily struct {
	Date             time.Time
	DueToday         []store.Task
	Overdue          []store.Task
	UpcomingProjects []store.Project
	ActiveProjects   int
}

func (e *Engine) Daily() (*Daily, error) {
	day := e.today()

	dueToday, err := e.openTasksBetween(day, day)
	if err != nil {
		return nil, err
	}

	dayBefore := day.AddDate(0, 0, -1)
	overdue, err := e.openTasksBetween(time.Time{}, dayBefore)
	if err != nil {
		return nil, err
	}

	upcoming, err := e.upcomingProjects(day)
	if err != nil {
		return nil, err
	}

	active, err := e.store.CountActiveProjects()
	if err != nil {
		return nil, err
	}

	return &Daily{
		Date:             day,
		DueToday:         dueToday,
		Overdue:          overdue,
		UpcomingProjects: upcoming,
		ActiveProjects:   active,
	}, nil
}

// Evening previews tomorrow. Empty is set when there is nothing due, so the
// caller can skip the notification entirely.
type Evening struct {
	Date        time.Time
	DueTomorrow []store.Task
	Empty       bool
}

func (e *Engine) Evening() (*Evening, error) {
	tomorrow := e.today().AddDate(0, 0, 1)
	due, err := e.openTasksBetween(tomorrow, tomorrow)
	if err != nil {
		return nil, err
	}
	return &Evening{Date: e.today(), DueTomorrow: due, Empty: len(due) == 0}, nil
}

// ProjectProgress pairs a project with its completion counts for the weekly
// per-project breakdown.
type ProjectProgress struct {
	Project  store.Project
	Progress store.Progress
}

// Weekly covers the Monday-based week containing today.
type Weekly struct {
	WeekStart      time.Time
	WeekEnd        time.Time
	Created        int
	Completed      int
	CompletedByDay []int
	Overdue        int
	CompletionRate float64
	DailyAverage   float64
	Projects       []ProjectProgress
}

func (e *Engine) Weekly() (*Weekly, error) {
	start := weekStart(e.today())
	end := start.AddDate(0, 0, 6)

	created, err := e.store.CountTasksCreatedBetween(start, end)
	if err != nil {
		return nil, err
	}
	completed, err := e.store.CountTasksCompletedBetween(start, end)
	if err != nil {
		return nil, err
	}
	byDay, err := e.store.CountTasksCompletedByDay(start, end)
	if err != nil {
		return nil, err
	}
	overdue, err := e.store.CountTasksOverdueAsOf(e.today())
	if err != nil {
		return nil, err
	}

	active := store.ProjectActive
	projects, err := e.store.ListProjects(&active)
	if err != nil {
		return nil, err
	}
	lines := make([]ProjectProgress, 0, len(projects))
	for _, p := range projects {
		progress, err := e.store.ProjectProgress(p.ID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ProjectProgress{Project: p, Progress: *progress})
	}

	return &Weekly{
		WeekStart:      start,
		WeekEnd:        end,
		Created:        created,
		Completed:      completed,
		CompletedByDay: byDay,
		Overdue:        overdue,
		CompletionRate: rate(completed, created),
		DailyAverage:   math.Round(float64(completed)/7*10) / 10,
		Projects:       lines,
	}, nil
}

// Monthly covers the previous calendar month.
type Monthly struct {
	MonthStart        time.Time
	MonthEnd          time.Time
	Created           int
	Completed         int
	OnTimeRate        float64
	ProjectsCompleted int
	ActiveProjects    int
	Priorities        map[store.Priority]int
	Overdue           int
}

func (e *Engine) Monthly() (*Monthly, error) {
	day := e.today()
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	end := start.AddDate(0, 1, -1)

	created, err := e.store.CountTasksCreatedBetween(start, end)
	if err != nil {
		return nil, err
	}
	completed, err := e.store.CountTasksCompletedBetween(start, end)
	if err != nil {
		return nil, err
	}
	onTime, err := e.store.CountTasksCompletedOnTimeBetween(start, end)
	if err != nil {
		return nil, err
	}
	projectsDone, err := e.store.CountProjectsCompletedBetween(start, end)
	if err != nil {
		return nil, err
	}
	active, err := e.store.CountActiveProjects()
	if err != nil {
		return nil, err
	}
	priorities, err := e.store.PriorityBreakdownBetween(start, end)
	if err != nil {
		return nil, err
	}
	overdue, err := e.store.CountTasksOverdueAsOf(day)
	if err != nil {
		return nil, err
	}

	return &Monthly{
		MonthStart:        start,
		MonthEnd:          end,
		Created:           created,
		Completed:         completed,
		OnTimeRate:        rate(onTime, completed),
		ProjectsCompleted: projectsDone,
		ActiveProjects:    active,
		Priorities:        priorities,
		Overdue:           overdue,
	}, nil
}

// openTasksBetween lists top-level, non-completed tasks with deadlines in
// [from, to]. A zero from means no lower bound.
func (e *Engine) openTasksBetween(from, to time.Time) ([]store.Task, error) {
	filter := store.TaskFilter{ParentOnly: true, DeadlineTo: &to}
	if !from.IsZero() {
		filter.DeadlineFrom = &from
	}
	tasks, err := e.store.ListTasks(filter)
	if err != nil {
		return nil, err
	}
	open := tasks[:0]
	for _, t := range tasks {
		if t.Status != store.TaskCompleted {
			open = append(open, t)
		}
	}
	return open, nil
}

// upcomingProjects lists active projects with deadlines within the next week,
// nearest deadline first.
func (e *Engine) upcomingProjects(day time.Time) ([]store.Project, error) {
	active := store.ProjectActive
	projects, err := e.store.ListProjects(&active)
	if err != nil {
		return nil, err
	}
	cutoff := day.AddDate(0, 0, upcomingWindowDays)
	var upcoming []store.Project
	for _, p := range projects {
		if p.Deadline == nil {
			continue
		}
		if p.Deadline.Before(day) || p.Deadline.After(cutoff) {
			continue
		}
		upcoming = append(upcoming, p)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Deadline.Before(*upcoming[j].Deadline)
	})
	return upcoming, nil
}

// weekStart returns the Monday of the week containing the given date.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
