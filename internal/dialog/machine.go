package dialog

import (
	"fmt"
	"sync"
	"time"

	"github.com/sadopc/steward/internal/store"
)

// Limits carries the field-length caps, read once at process start.
type Limits struct {
	MaxProjectName int
	MaxTaskTitle   int
	MaxDescription int
	MaxNoteTitle   int
	MaxNoteContent int
}

// session is one in-progress dialog. There is at most one per actor; starting
// a new flow discards the old draft.
type session struct {
	flow      FlowKind
	step      Step
	field     EditField
	draft     Draft
	targetID  int64 // task id for edit flows
	updatedAt time.Time
}

// Machine owns every dialog session, keyed by actor id. All access goes
// through the mutex so handling one event is atomic over the draft it touches.
type Machine struct {
	mu       sync.Mutex
	store    *store.Store
	limits   Limits
	timeout  time.Duration // zero disables idle expiry
	now      func() time.Time
	sessions map[int64]*session
}

func NewMachine(s *store.Store, limits Limits, timeout time.Duration) *Machine {
	return &Machine{
		store:    s,
		limits:   limits,
		timeout:  timeout,
		now:      time.Now,
		sessions: make(map[int64]*session),
	}
}

// StartTask begins a new-task flow, abandoning any dialog already active for
// the actor.
func (m *Machine) StartTask(actor int64) *Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start(actor, &session{flow: FlowNewTask, step: StepTitle})
}

// StartProject begins a new-project flow.
func (m *Machine) StartProject(actor int64) *Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start(actor, &session{flow: FlowNewProject, step: StepTitle})
}

// StartSubtask begins a subtask flow under a top-level parent task. The
// subtask inherits the parent's project.
func (m *Machine) StartSubtask(actor, parentID int64) (*Prompt, error) {
	parent, err := m.store.GetTask(parentID)
	if err != nil {
		return nil, err
	}
	if parent.IsSubtask() {
		return nil, fmt.Errorf("task %d: %w", parentID, store.ErrSubtaskDepth)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess := &session{flow: FlowNewSubtask, step: StepTitle}
	sess.draft.ParentID = &parent.ID
	sess.draft.ProjectID = parent.ProjectID
	return m.start(actor, sess), nil
}

// StartEdit begins a single-field edit flow for an existing task.
func (m *Machine) StartEdit(actor, taskID int64, field EditField) (*Prompt, error) {
	if _, err := m.store.GetTask(taskID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start(actor, &session{flow: FlowEditTask, step: StepValue, field: field, targetID: taskID}), nil
}

func (m *Machine) start(actor int64, sess *session) *Prompt {
	sess.updatedAt = m.now()
	m.sessions[actor] = sess
	return m.promptFor(sess, nil)
}

// Active reports whether the actor has a live dialog. An idle session past
// the timeout is discarded here, so expiry needs no background sweep.
func (m *Machine) Active(actor int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(actor) != nil
}

// Cancel discards the actor's draft immediately, from any state.
func (m *Machine) Cancel(actor int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, actor)
}

func (m *Machine) live(actor int64) *session {
	sess, ok := m.sessions[actor]
	if !ok {
		return nil
	}
	if m.timeout > 0 && m.now().Sub(sess.updatedAt) > m.timeout {
		delete(m.sessions, actor)
		return nil
	}
	return sess
}

// Handle feeds one input to the actor's session. Validation failures keep the
// session in the same step; Cancel works from every state; only a write
// failure at the commit step ends the dialog abnormally.
func (m *Machine) Handle(actor int64, in Input) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.live(actor)
	if sess == nil {
		return Result{Status: StatusCancelled}
	}

	if in.Option != nil && in.Option.Kind == OptionCancel {
		delete(m.sessions, actor)
		return Result{Status: StatusCancelled}
	}

	sess.updatedAt = m.now()

	var res Result
	switch sess.flow {
	case FlowNewTask:
		res = m.stepTask(actor, sess, in)
	case FlowNewProject:
		res = m.stepProject(actor, sess, in)
	case FlowNewSubtask:
		res = m.stepSubtask(actor, sess, in)
	case FlowEditTask:
		res = m.stepEdit(actor, sess, in)
	}
	return res
}

// --- new task flow ---

func (m *Machine) stepTask(actor int64, sess *session, in Input) Result {
	switch sess.step {
	case StepTitle:
		if err := m.takeTitle(sess, in, m.limits.MaxTaskTitle); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepDescription
	case StepDescription:
		if err := m.takeDescription(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepPriority
	case StepPriority:
		if err := takePriority(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepDeadline
	case StepDeadline:
		if err := m.takeDeadline(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepProject
	case StepProject:
		if err := m.takeProject(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepConfirm
	case StepConfirm:
		if in.Option == nil || in.Option.Kind != OptionConfirm {
			return m.retry(sess, errBadChoice())
		}
		delete(m.sessions, actor)
		task, err := m.store.CreateTask(
			sess.draft.Title, sess.draft.Description,
			sess.draft.ProjectID, nil, sess.draft.Priority, sess.draft.Deadline,
		)
		if err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
		return Result{Status: StatusCreated, Task: task}
	}
	return m.advance(sess)
}

// --- new project flow ---

func (m *Machine) stepProject(actor int64, sess *session, in Input) Result {
	switch sess.step {
	case StepTitle:
		if err := m.takeTitle(sess, in, m.limits.MaxProjectName); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepDescription
	case StepDescription:
		if err := m.takeDescription(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepPriority
	case StepPriority:
		if err := takePriority(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepDeadline
	case StepDeadline:
		if err := m.takeDeadline(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepConfirm
	case StepConfirm:
		if in.Option == nil || in.Option.Kind != OptionConfirm {
			return m.retry(sess, errBadChoice())
		}
		delete(m.sessions, actor)
		project, err := m.store.CreateProject(
			sess.draft.Title, sess.draft.Description, "",
			sess.draft.Priority, sess.draft.Deadline,
		)
		if err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
		return Result{Status: StatusCreated, Project: project}
	}
	return m.advance(sess)
}

// --- subtask flow: title, description, confirm ---

func (m *Machine) stepSubtask(actor int64, sess *session, in Input) Result {
	switch sess.step {
	case StepTitle:
		if err := m.takeTitle(sess, in, m.limits.MaxTaskTitle); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepDescription
	case StepDescription:
		if err := m.takeDescription(sess, in); err != nil {
			return m.retry(sess, err)
		}
		sess.step = StepConfirm
	case StepConfirm:
		if in.Option == nil || in.Option.Kind != OptionConfirm {
			return m.retry(sess, errBadChoice())
		}
		delete(m.sessions, actor)
		task, err := m.store.CreateTask(
			sess.draft.Title, sess.draft.Description,
			sess.draft.ProjectID, sess.draft.ParentID, store.PriorityMedium, nil,
		)
		if err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
		return Result{Status: StatusCreated, Task: task}
	}
	return m.advance(sess)
}

// --- single-field edit flow ---

func (m *Machine) stepEdit(actor int64, sess *session, in Input) Result {
	var update store.TaskUpdate

	switch sess.field {
	case EditTitle:
		title := in.Text
		if in.Option != nil {
			return m.retry(sess, errBadChoice())
		}
		if title == "" {
			return m.retry(sess, errRequired("title"))
		}
		if len([]rune(title)) > m.limits.MaxTaskTitle {
			return m.retry(sess, errTooLong("title", m.limits.MaxTaskTitle))
		}
		update.Title = &title
	case EditDescription:
		desc := in.Text
		if in.Option != nil && in.Option.Kind == OptionSkip {
			desc = ""
		} else if in.Option != nil {
			return m.retry(sess, errBadChoice())
		}
		if len([]rune(desc)) > m.limits.MaxDescription {
			return m.retry(sess, errTooLong("description", m.limits.MaxDescription))
		}
		update.Description = &desc
	case EditPriority:
		if in.Option == nil || in.Option.Kind != OptionPriority {
			return m.retry(sess, errBadChoice())
		}
		p := in.Option.Priority
		update.Priority = &p
	case EditDeadline:
		deadline, err := takeDateInput(in, m.now())
		if err != nil {
			return m.retry(sess, err)
		}
		if deadline == nil {
			update.ClearDeadline = true
		} else {
			update.Deadline = deadline
		}
	}

	delete(m.sessions, actor)
	if err := m.store.UpdateTask(sess.targetID, update); err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	task, err := m.store.GetTask(sess.targetID)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	return Result{Status: StatusUpdated, Task: task}
}

// --- shared step handlers ---

func (m *Machine) takeTitle(sess *session, in Input, max int) error {
	if in.Option != nil {
		return errBadChoice()
	}
	if in.Text == "" {
		return errRequired("title")
	}
	if len([]rune(in.Text)) > max {
		return errTooLong("title", max)
	}
	sess.draft.Title = in.Text
	return nil
}

func (m *Machine) takeDescription(sess *session, in Input) error {
	if in.Option != nil {
		if in.Option.Kind != OptionSkip {
			return errBadChoice()
		}
		sess.draft.Description = ""
		return nil
	}
	text := in.Text
	if text == "-" {
		text = ""
	}
	if len([]rune(text)) > m.limits.MaxDescription {
		return errTooLong("description", m.limits.MaxDescription)
	}
	sess.draft.Description = text
	return nil
}

func takePriority(sess *session, in Input) error {
	if in.Option == nil || in.Option.Kind != OptionPriority {
		return errBadChoice()
	}
	sess.draft.Priority = in.Option.Priority
	return nil
}

func (m *Machine) takeDeadline(sess *session, in Input) error {
	deadline, err := takeDateInput(in, m.now())
	if err != nil {
		return err
	}
	sess.draft.Deadline = deadline
	return nil
}

func takeDateInput(in Input, now time.Time) (*time.Time, error) {
	if in.Option != nil {
		switch in.Option.Kind {
		case OptionDate:
			d := midnight(in.Option.Date)
			return &d, nil
		case OptionNone:
			return nil, nil
		default:
			return nil, errBadChoice()
		}
	}
	return ParseDeadline(in.Text, now)
}

// takeProject resolves the project choice. An id that no longer exists falls
// back to no project instead of failing the dialog.
func (m *Machine) takeProject(sess *session, in Input) error {
	if in.Option == nil {
		return errBadChoice()
	}
	switch in.Option.Kind {
	case OptionNone:
		sess.draft.ProjectID = nil
		sess.draft.ProjectName = ""
	case OptionProject:
		project, err := m.store.GetProject(in.Option.ProjectID)
		if err != nil {
			sess.draft.ProjectID = nil
			sess.draft.ProjectName = ""
			return nil
		}
		sess.draft.ProjectID = &project.ID
		sess.draft.ProjectName = project.Name
	default:
		return errBadChoice()
	}
	return nil
}

// --- prompt construction ---

func (m *Machine) advance(sess *session) Result {
	return Result{Status: StatusContinue, Prompt: m.promptFor(sess, nil)}
}

func (m *Machine) retry(sess *session, err error) Result {
	return Result{Status: StatusContinue, Prompt: m.promptFor(sess, err)}
}

func (m *Machine) promptFor(sess *session, stepErr error) *Prompt {
	p := &Prompt{
		Flow:  sess.flow,
		Step:  sess.step,
		Field: sess.field,
		Draft: sess.draft,
		Err:   stepErr,
	}

	if sess.flow == FlowEditTask {
		switch sess.field {
		case EditPriority:
			p.Options = priorityOptions()
		case EditDeadline:
			p.Options = deadlineOptions(m.now())
		default:
			p.Options = textOptions()
		}
		return p
	}

	switch sess.step {
	case StepTitle:
		p.Options = textOptions()
	case StepDescription:
		p.Options = textSkipOptions()
	case StepPriority:
		p.Options = priorityOptions()
	case StepDeadline:
		p.Options = deadlineOptions(m.now())
	case StepProject:
		active := store.ProjectActive
		projects, err := m.store.ListProjects(&active)
		if err != nil {
			projects = nil
		}
		p.Options = projectOptions(projects)
	case StepConfirm:
		p.Options = confirmOptions()
	}
	return p
}
