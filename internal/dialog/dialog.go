package dialog

import (
	"context"

	ierr "github.com/resumeforge/resumeforge/internal/errors"
)

// Step is one stage of the cancellation confirmation wizard.
type Step string

const (
	StepWarning      Step = "warning"
	StepConfirmation Step = "confirmation"
	StepFeedback     Step = "feedback"
)

// Legal transitions. Anything not listed is rejected, so submitting from
// the warning step is unrepresentable rather than merely unlikely.
var (
	forward = map[Step]Step{
		StepWarning:      StepConfirmation,
		StepConfirmation: StepFeedback,
	}
	backward = map[Step]Step{
		StepConfirmation: StepWarning,
		StepFeedback:     StepConfirmation,
	}
)

// FeedbackDraft is the in-progress exit survey.
type FeedbackDraft struct {
	Reason       string
	Satisfaction string
	Comments     string
}

// SubmitFunc performs the actual cancellation once the wizard completes.
type SubmitFunc func(ctx context.Context, draft FeedbackDraft) error

// Dialog is the cancellation wizard state machine. One instance per open
// dialog; not safe for concurrent use, matching its single-caller nature.
type Dialog struct {
	step      Step
	open      bool
	loading   bool
	draft     FeedbackDraft
	submitErr error
	submit    SubmitFunc
}

func New(submit SubmitFunc) *Dialog {
	return &Dialog{submit: submit}
}

// Open starts the wizard at the warning step, with a clean draft.
func (d *Dialog) Open() {
	d.reset()
	d.open = true
	d.step = StepWarning
}

// Continue advances to the next step.
func (d *Dialog) Continue() error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	next, ok := forward[d.step]
	if !ok {
		return ierr.NewErrorf("cannot continue from step %s", d.step).
			Mark(ierr.ErrValidation)
	}
	d.step = next
	return nil
}

// Back returns to the previous step. The draft survives.
func (d *Dialog) Back() error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	prev, ok := backward[d.step]
	if !ok {
		return ierr.NewErrorf("cannot go back from step %s", d.step).
			Mark(ierr.ErrValidation)
	}
	d.step = prev
	return nil
}

// Close abandons the wizard from any step and discards all draft state.
func (d *Dialog) Close() {
	d.reset()
}

// SetDraft replaces the in-progress feedback.
func (d *Dialog) SetDraft(draft FeedbackDraft) {
	d.draft = draft
}

// Submit runs the cancellation. Only legal on the feedback step, with a
// non-empty reason, and at most once while a submission is in flight. On
// success the dialog closes and resets; on failure it stays on the feedback
// step with the error exposed and loading cleared so a retry is possible.
func (d *Dialog) Submit(ctx context.Context) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	if d.step != StepFeedback {
		return ierr.NewErrorf("cannot submit from step %s", d.step).
			Mark(ierr.ErrValidation)
	}
	if d.draft.Reason == "" {
		return ierr.NewError("a cancellation reason is required").
			WithHint("Select a reason before submitting").
			Mark(ierr.ErrValidation)
	}
	if d.loading {
		return ierr.NewError("submission already in progress").
			Mark(ierr.ErrValidation)
	}

	d.loading = true
	err := d.submit(ctx, d.draft)
	d.loading = false

	if err != nil {
		d.submitErr = err
		return err
	}

	d.reset()
	return nil
}

func (d *Dialog) Step() Step       { return d.step }
func (d *Dialog) IsOpen() bool     { return d.open }
func (d *Dialog) IsLoading() bool  { return d.loading }
func (d *Dialog) SubmitErr() error { return d.submitErr }
func (d *Dialog) Draft() FeedbackDraft {
	return d.draft
}

func (d *Dialog) ensureOpen() error {
	if !d.open {
		return ierr.NewError("dialog is not open").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (d *Dialog) reset() {
	d.open = false
	d.loading = false
	d.step = ""
	d.draft = FeedbackDraft{}
	d.submitErr = nil
}
