package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sai-review-api/internal/models"
)

var fixedNow = time.Date(2024, 2, 10, 14, 30, 0, 0, time.UTC)

func newTestMachine() *Machine {
	return NewMachine(nil, func() time.Time { return fixedNow })
}

func pendingSubmission() models.Submission {
	return models.Submission{
		ID:          "sub-1",
		UserID:      "user-1",
		UserName:    "Rahul Singh",
		Sport:       "Athletics",
		Subcategory: "100m Sprint",
		AIScore:     92,
		Status:      models.SubmissionStatusPending,
		SubmittedAt: fixedNow.Add(-48 * time.Hour),
	}
}

func score(v float64) *float64 { return &v }

func validDecision() Decision {
	return Decision{
		SAIScore:  score(95),
		Feedback:  "Excellent",
		NextSteps: "Invite to camp",
	}
}

func TestMarkUnderReviewFromPending(t *testing.T) {
	machine := newTestMachine()

	next, err := machine.MarkUnderReview(pendingSubmission(), "coach-sunita")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusUnderReview, next.Status)
	require.Equal(t, "coach-sunita", next.ClaimedBy)
	require.NotNil(t, next.ClaimedAt)
	require.Equal(t, fixedNow, *next.ClaimedAt)
	require.Nil(t, next.Review)
}

func TestMarkUnderReviewRequiresPending(t *testing.T) {
	machine := newTestMachine()

	claimed, err := machine.MarkUnderReview(pendingSubmission(), "coach-a")
	require.NoError(t, err)

	_, err = machine.MarkUnderReview(claimed, "coach-b")
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	approved, err := machine.Decide(claimed, OutcomeApprove, validDecision(), "coach-a")
	require.NoError(t, err)
	_, err = machine.MarkUnderReview(approved, "coach-b")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestMarkUnderReviewRequiresActor(t *testing.T) {
	_, err := newTestMachine().MarkUnderReview(pendingSubmission(), "   ")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestClaimThenApprove(t *testing.T) {
	machine := newTestMachine()

	claimed, err := machine.MarkUnderReview(pendingSubmission(), "coach-sunita")
	require.NoError(t, err)

	decision := validDecision()
	decision.Strengths = []string{"Perfect starting position", "  ", "Excellent acceleration"}
	approved, err := machine.Decide(claimed, OutcomeApprove, decision, "coach-sunita")
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusApproved, approved.Status)
	require.NotNil(t, approved.Review)
	require.Equal(t, 95.0, approved.Review.SAIScore)
	require.Equal(t, "Excellent", approved.Review.Feedback)
	require.Equal(t, "Invite to camp", approved.Review.NextSteps)
	require.Equal(t, []string{"Perfect starting position", "Excellent acceleration"}, approved.Review.Strengths)
	require.Equal(t, []string{}, approved.Review.Improvements)
	require.Equal(t, "coach-sunita", approved.Review.ReviewedBy)
	require.Equal(t, fixedNow, approved.Review.ReviewedAt)
	require.Equal(t, "coach-sunita", approved.ClaimedBy)
	require.NoError(t, approved.CheckInvariants())

	state, err := approved.State()
	require.NoError(t, err)
	require.IsType(t, models.Approved{}, state)
}

func TestDecideDirectlyFromPending(t *testing.T) {
	rejected, err := newTestMachine().Decide(pendingSubmission(), OutcomeReject, Decision{
		SAIScore:     score(58),
		Feedback:     "Bowling action needs significant improvement.",
		Improvements: []string{"Correct bowling action"},
		NextSteps:    "Recommended for technique correction coaching",
	}, "coach-rajesh")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, rejected.Status)
	require.Empty(t, rejected.ClaimedBy)
	require.Equal(t, 58.0, rejected.Review.SAIScore)
}

func TestDecideOnTerminalFails(t *testing.T) {
	machine := newTestMachine()

	approved, err := machine.Decide(pendingSubmission(), OutcomeApprove, validDecision(), "coach-a")
	require.NoError(t, err)
	before := approved.Clone()

	_, err = machine.Decide(approved, OutcomeReject, validDecision(), "coach-b")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	require.Equal(t, before, approved)
}

func TestDecideValidatesPayload(t *testing.T) {
	machine := newTestMachine()

	cases := map[string]Decision{
		"missing score":      {Feedback: "ok", NextSteps: "next"},
		"score above 100":    {SAIScore: score(100.5), Feedback: "ok", NextSteps: "next"},
		"negative score":     {SAIScore: score(-1), Feedback: "ok", NextSteps: "next"},
		"blank feedback":     {SAIScore: score(80), Feedback: "   ", NextSteps: "next"},
		"missing next steps": {SAIScore: score(80), Feedback: "ok"},
	}

	for name, decision := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := machine.Decide(pendingSubmission(), OutcomeApprove, decision, "coach")
			require.ErrorIs(t, err, models.ErrValidation)
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestDecideRejectsUnknownOutcomeAndActor(t *testing.T) {
	machine := newTestMachine()

	_, err := machine.Decide(pendingSubmission(), Outcome("maybe"), validDecision(), "coach")
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = machine.Decide(pendingSubmission(), OutcomeApprove, validDecision(), "")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	machine := newTestMachine()
	original := pendingSubmission()
	original.Metrics = map[string]float64{"reaction_time": 0.14}

	next, err := machine.Decide(original, OutcomeApprove, validDecision(), "coach")
	require.NoError(t, err)
	next.Metrics["reaction_time"] = 1

	require.Equal(t, models.SubmissionStatusPending, original.Status)
	require.Nil(t, original.Review)
	require.Equal(t, 0.14, original.Metrics["reaction_time"])
}

func TestCommandsWrapTransitions(t *testing.T) {
	machine := newTestMachine()

	claimed, err := machine.ClaimCommand("coach")(pendingSubmission())
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusUnderReview, claimed.Status)

	decided, err := machine.DecideCommand(OutcomeReject, validDecision(), "coach")(claimed)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, decided.Status)
}
