package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/events"
	"github.com/noah-isme/sai-review-api/internal/models"
)

var reviewer = Actor{ID: "coach-sunita", Role: "reviewer"}

func createEligible(t *testing.T, fixture serviceFixture, userID string, score float64) dto.SubmissionResponse {
	t.Helper()
	response, err := fixture.submissions().Create(context.Background(), dto.SubmissionCreateRequest{
		UserID:      userID,
		Sport:       "Athletics",
		Subcategory: "100m Sprint",
		AIScore:     floatPointer(score),
	})
	require.NoError(t, err)
	return response
}

func TestReviewServiceClaimThenApprove(t *testing.T) {
	fixture := newServiceFixture(t)
	svc := fixture.reviews()
	user := fixture.athlete(t, "Rahul Singh")
	created := createEligible(t, fixture, user.ID, 92)
	ctx := context.Background()

	claimed, err := svc.Claim(ctx, created.ID, reviewer)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusUnderReview), claimed.Status)
	require.Equal(t, reviewer.ID, claimed.ClaimedBy)
	require.Nil(t, claimed.SAIScore)
	require.Empty(t, claimed.ReviewedBy)

	decided, err := svc.Decide(ctx, created.ID, dto.ReviewDecisionRequest{
		Outcome:   "approve",
		SAIScore:  floatPointer(95),
		Feedback:  "Excellent",
		NextSteps: "Invite to camp",
	}, reviewer)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusApproved), decided.Status)
	require.Equal(t, 95.0, *decided.SAIScore)
	require.Equal(t, "A+", decided.SAIGrade.Label)
	require.Equal(t, reviewer.ID, decided.ReviewedBy)
	require.Equal(t, fixedReviewTime, *decided.ReviewedAt)
	require.Empty(t, decided.Strengths)

	require.Equal(t, []events.Type{
		events.TypeSubmissionCreated,
		events.TypeSubmissionClaimed,
		events.TypeSubmissionReviewed,
	}, fixture.publisher.types())
	require.Equal(t, 3, fixture.invalidator.calls())
}

func TestReviewServiceDirectRejectSanitizesText(t *testing.T) {
	fixture := newServiceFixture(t)
	user := fixture.athlete(t, "Arjun Kumar")
	created := createEligible(t, fixture, user.ID, 80)

	decided, err := fixture.reviews().Decide(context.Background(), created.ID, dto.ReviewDecisionRequest{
		Outcome:      "reject",
		SAIScore:     floatPointer(58),
		Feedback:     "<script>alert(1)</script>Bowling action needs <b>work</b>",
		Strengths:    []string{"Good pace variation", "   "},
		Improvements: []string{"<i>Correct bowling action</i>"},
		NextSteps:    "Technique coaching",
	}, Actor{ID: "coach-rajesh"})
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusRejected), decided.Status)
	require.Equal(t, "Bowling action needs work", decided.Feedback)
	require.Equal(t, []string{"Good pace variation"}, decided.Strengths)
	require.Equal(t, []string{"Correct bowling action"}, decided.Improvements)
}

func TestReviewServiceStripsEntityEncodedMarkup(t *testing.T) {
	fixture := newServiceFixture(t)
	user := fixture.athlete(t, "Kavya Nair")
	created := createEligible(t, fixture, user.ID, 82)

	decided, err := fixture.reviews().Decide(context.Background(), created.ID, dto.ReviewDecisionRequest{
		Outcome:      "approve",
		SAIScore:     floatPointer(84),
		Feedback:     "&lt;script&gt;alert(1)&lt;/script&gt;Solid &lt;b&gt;follow-through&lt;/b&gt;",
		Strengths:    []string{"&lt;img src=x onerror=alert(1)&gt;Quick release"},
		Improvements: []string{"&amp;lt;script&amp;gt;Footwork"},
		NextSteps:    "&lt;a href=&quot;javascript:alert(1)&quot;&gt;District camp&lt;/a&gt;",
	}, Actor{ID: "coach-meera"})
	require.NoError(t, err)

	require.Equal(t, "Solid follow-through", decided.Feedback)
	require.Equal(t, []string{"Quick release"}, decided.Strengths)
	require.Equal(t, "District camp", decided.NextSteps)
	require.Len(t, decided.Improvements, 1)
	require.NotContains(t, decided.Improvements[0], "<")

	stored, err := fixture.store.GetSubmission(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Review)
	require.NotContains(t, stored.Review.Feedback, "<")
	require.NotContains(t, stored.Review.NextSteps, "<")
}

func TestReviewServiceDecideValidation(t *testing.T) {
	fixture := newServiceFixture(t)
	svc := fixture.reviews()
	user := fixture.athlete(t, "Priya Sharma")
	created := createEligible(t, fixture, user.ID, 82)

	cases := map[string]dto.ReviewDecisionRequest{
		"missing score":     {Outcome: "approve", Feedback: "ok", NextSteps: "next"},
		"score over range":  {Outcome: "approve", SAIScore: floatPointer(100.5), Feedback: "ok", NextSteps: "next"},
		"missing feedback":  {Outcome: "approve", SAIScore: floatPointer(80), NextSteps: "next"},
		"markup only":       {Outcome: "approve", SAIScore: floatPointer(80), Feedback: "<b></b>", NextSteps: "next"},
		"missing nextSteps": {Outcome: "reject", SAIScore: floatPointer(80), Feedback: "ok"},
		"unknown outcome":   {Outcome: "defer", SAIScore: floatPointer(80), Feedback: "ok", NextSteps: "next"},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Decide(context.Background(), created.ID, payload, reviewer)
			require.ErrorIs(t, err, models.ErrValidation)
		})
	}

	current, err := fixture.submissions().Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusPending), current.Status)
}

func TestReviewServiceTerminalSubmissionIsFinal(t *testing.T) {
	fixture := newServiceFixture(t)
	svc := fixture.reviews()
	user := fixture.athlete(t, "Sneha Patel")
	created := createEligible(t, fixture, user.ID, 88)
	ctx := context.Background()

	decision := dto.ReviewDecisionRequest{Outcome: "approve", SAIScore: floatPointer(90), Feedback: "Strong", NextSteps: "Camp"}
	first, err := svc.Decide(ctx, created.ID, decision, reviewer)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, created.ID, reviewer)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	decision.Outcome = "reject"
	_, err = svc.Decide(ctx, created.ID, decision, Actor{ID: "coach-other"})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	current, err := fixture.submissions().Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, first, current)
}

func TestReviewServiceUnknownSubmission(t *testing.T) {
	_, err := newServiceFixture(t).reviews().Claim(context.Background(), "missing", reviewer)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestReviewServiceConcurrentDecisionsHaveOneWinner(t *testing.T) {
	fixture := newServiceFixture(t)
	svc := fixture.reviews()
	user := fixture.athlete(t, "Vikash Yadav")
	created := createEligible(t, fixture, user.ID, 90)

	var (
		wg       sync.WaitGroup
		accepted int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(outcome string) {
			defer wg.Done()
			_, err := svc.Decide(context.Background(), created.ID, dto.ReviewDecisionRequest{
				Outcome: outcome, SAIScore: floatPointer(91), Feedback: "Reviewed", NextSteps: "Notify athlete",
			}, reviewer)
			if err == nil {
				atomic.AddInt32(&accepted, 1)
				return
			}
			if !errors.Is(err, models.ErrInvalidTransition) {
				t.Errorf("unexpected error: %v", err)
			}
		}(map[bool]string{true: "approve", false: "reject"}[i%2 == 0])
	}
	wg.Wait()

	require.Equal(t, int32(1), accepted)
}
