// Package workflow holds the submission review state machine:
//
//	pending -> under_review -> approved | rejected
//	pending -> approved | rejected
//
// Transitions are pure: they take a submission value and return the next one.
// Persisting the result is the store's job.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sai-review-api/internal/models"
)

// Outcome is a reviewer verdict.
type Outcome string

const (
	// OutcomeApprove moves a submission to approved.
	OutcomeApprove Outcome = "approve"
	// OutcomeReject moves a submission to rejected.
	OutcomeReject Outcome = "reject"
)

// Status returns the terminal status the outcome leads to.
func (o Outcome) Status() (models.SubmissionStatus, error) {
	switch o {
	case OutcomeApprove:
		return models.SubmissionStatusApproved, nil
	case OutcomeReject:
		return models.SubmissionStatusRejected, nil
	}
	return "", models.NewValidationError("outcome", "must be approve or reject")
}

// Decision is the reviewer payload for Decide.
type Decision struct {
	SAIScore     *float64 `validate:"required,gte=0,lte=100"`
	Feedback     string   `validate:"required"`
	Strengths    []string
	Improvements []string
	NextSteps    string `validate:"required"`
}

// Command applies one transition to a submission. The store runs commands
// while holding the submission's write lock.
type Command func(current models.Submission) (models.Submission, error)

// Machine validates and applies review transitions.
type Machine struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewMachine builds a state machine. A nil clock defaults to time.Now.
func NewMachine(validate *validator.Validate, now func() time.Time) *Machine {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{validate: validate, now: now}
}

// MarkUnderReview claims a pending submission for actor. ClaimedBy holds the
// reviewer that Review.ReviewedBy would name at this stage, with ClaimedAt as
// the claim time. The Review block stays empty until Decide fills it.
func (m *Machine) MarkUnderReview(current models.Submission, actor string) (models.Submission, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return models.Submission{}, models.NewValidationError("actor", "is required")
	}

	state, err := current.State()
	if err != nil {
		return models.Submission{}, err
	}

	if _, ok := state.(models.Pending); !ok {
		return models.Submission{}, transitionError(state.Status(), models.SubmissionStatusUnderReview)
	}

	next := current.Clone()
	claimedAt := m.now().UTC()
	next.Status = models.SubmissionStatusUnderReview
	next.ClaimedBy = actor
	next.ClaimedAt = &claimedAt

	return next, nil
}

// Decide records a verdict on a pending or under-review submission.
func (m *Machine) Decide(current models.Submission, outcome Outcome, decision Decision, actor string) (models.Submission, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return models.Submission{}, models.NewValidationError("actor", "is required")
	}

	target, err := outcome.Status()
	if err != nil {
		return models.Submission{}, err
	}

	state, err := current.State()
	if err != nil {
		return models.Submission{}, err
	}

	switch state.(type) {
	case models.Pending, models.UnderReview:
	default:
		return models.Submission{}, transitionError(state.Status(), target)
	}

	decision = normalizeDecision(decision)
	if err := m.validate.Struct(decision); err != nil {
		return models.Submission{}, models.FromValidator(err)
	}

	next := current.Clone()
	next.Status = target
	next.Review = &models.Review{
		SAIScore:     *decision.SAIScore,
		Feedback:     decision.Feedback,
		Strengths:    decision.Strengths,
		Improvements: decision.Improvements,
		NextSteps:    decision.NextSteps,
		ReviewedBy:   actor,
		ReviewedAt:   m.now().UTC(),
	}

	return next, nil
}

// ClaimCommand wraps MarkUnderReview as a store command.
func (m *Machine) ClaimCommand(actor string) Command {
	return func(current models.Submission) (models.Submission, error) {
		return m.MarkUnderReview(current, actor)
	}
}

// DecideCommand wraps Decide as a store command.
func (m *Machine) DecideCommand(outcome Outcome, decision Decision, actor string) Command {
	return func(current models.Submission) (models.Submission, error) {
		return m.Decide(current, outcome, decision, actor)
	}
}

func normalizeDecision(decision Decision) Decision {
	decision.Feedback = strings.TrimSpace(decision.Feedback)
	decision.NextSteps = strings.TrimSpace(decision.NextSteps)
	decision.Strengths = compactList(decision.Strengths)
	decision.Improvements = compactList(decision.Improvements)
	if decision.SAIScore != nil {
		score := *decision.SAIScore
		decision.SAIScore = &score
	}
	return decision
}

func compactList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func transitionError(from, to models.SubmissionStatus) error {
	return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
}
