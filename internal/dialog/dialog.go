// Package dialog drives the multi-step conversations that collect fields for
// one entity before a single commit. Each flow is a finite automaton executed
// one step per inbound input; the draft lives only for the duration of the
// dialog and is discarded on completion, cancellation, or timeout.
package dialog

import (
	"fmt"
	"time"

	"github.com/sadopc/steward/internal/store"
)

// FlowKind identifies which automaton a session is running.
type FlowKind int

const (
	FlowNewTask FlowKind = iota
	FlowNewProject
	FlowNewSubtask
	FlowEditTask
)

// Step is a named state within a flow.
type Step int

const (
	StepTitle Step = iota
	StepDescription
	StepPriority
	StepDeadline
	StepProject
	StepConfirm
	StepValue // the single input step of an edit flow
)

// EditField selects the field a FlowEditTask session rewrites.
type EditField int

const (
	EditTitle EditField = iota
	EditDescription
	EditPriority
	EditDeadline
)

// Draft is the partially filled entity a dialog accumulates. Nothing is
// persisted until the confirm step commits it in one write.
type Draft struct {
	Title       string
	Description string
	Priority    store.Priority
	Deadline    *time.Time
	ProjectID   *int64
	ProjectName string // display metadata for the confirm summary
	ParentID    *int64 // set for subtask flows
}

// OptionKind tags the discrete choices a prompt offers.
type OptionKind int

const (
	OptionCancel OptionKind = iota
	OptionSkip
	OptionNone // "no deadline" / "no project"
	OptionConfirm
	OptionPriority
	OptionProject
	OptionDate
)

// Option is a typed choice attached to a prompt. The front end renders it and
// hands the chosen value back untouched, so nothing ever re-parses strings.
type Option struct {
	Kind        OptionKind
	Priority    store.Priority
	ProjectID   int64
	ProjectName string
	Date        time.Time
}

// Input is one inbound dialog event: free text or a chosen option.
type Input struct {
	Text   string
	Option *Option
}

func Text(s string) Input   { return Input{Text: s} }
func Choose(o Option) Input { return Input{Option: &o} }

// Prompt tells the front end what to ask next. Err, when set, is the
// recoverable validation failure from the previous attempt at this step.
type Prompt struct {
	Flow    FlowKind
	Step    Step
	Field   EditField // meaningful for FlowEditTask
	Draft   Draft
	Options []Option
	Err     error
}

// Status is the terminal classification of a Handle call.
type Status int

const (
	StatusContinue Status = iota
	StatusCreated
	StatusUpdated
	StatusCancelled
	StatusFailed // unexpected write failure at commit; dialog is over
)

// Result is the outcome of one dialog step. Prompt is non-nil exactly when
// Status is StatusContinue.
type Result struct {
	Status  Status
	Prompt  *Prompt
	Task    *store.Task
	Project *store.Project
	Err     error
}

// ValidationError marks a recoverable input problem: the session stays in the
// same step and the user may retry indefinitely.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func errTooLong(what string, max int) error {
	return validationErrorf("%s is too long, maximum %d characters", what, max)
}

func errRequired(what string) error {
	return validationErrorf("%s cannot be empty", what)
}

func errBadChoice() error {
	return validationErrorf("pick one of the offered options")
}

// --- option constructors ---

func cancelOption() Option  { return Option{Kind: OptionCancel} }
func skipOption() Option    { return Option{Kind: OptionSkip} }
func noneOption() Option    { return Option{Kind: OptionNone} }
func confirmOption() Option { return Option{Kind: OptionConfirm} }

func priorityOptions() []Option {
	return []Option{
		{Kind: OptionPriority, Priority: store.PriorityHigh},
		{Kind: OptionPriority, Priority: store.PriorityMedium},
		{Kind: OptionPriority, Priority: store.PriorityLow},
		cancelOption(),
	}
}

func deadlineOptions(now time.Time) []Option {
	today := midnight(now)
	return []Option{
		{Kind: OptionDate, Date: today},
		{Kind: OptionDate, Date: today.AddDate(0, 0, 1)},
		{Kind: OptionDate, Date: today.AddDate(0, 0, 7)},
		noneOption(),
		cancelOption(),
	}
}

// maxProjectChoices bounds the project picker so prompts stay short.
const maxProjectChoices = 5

func projectOptions(projects []store.Project) []Option {
	opts := make([]Option, 0, maxProjectChoices+2)
	for i, p := range projects {
		if i == maxProjectChoices {
			break
		}
		opts = append(opts, Option{Kind: OptionProject, ProjectID: p.ID, ProjectName: p.Name})
	}
	opts = append(opts, noneOption(), cancelOption())
	return opts
}

func confirmOptions() []Option {
	return []Option{confirmOption(), cancelOption()}
}

func textOptions() []Option {
	return []Option{cancelOption()}
}

func textSkipOptions() []Option {
	return []Option{skipOption(), cancelOption()}
}
