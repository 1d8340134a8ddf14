package service

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/events"
	"github.com/noah-isme/sai-review-api/internal/grading"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/observability"
	"github.com/noah-isme/sai-review-api/internal/repository"
	"github.com/noah-isme/sai-review-api/internal/workflow"
)

// Actor is the authenticated caller of a review operation.
type Actor struct {
	ID   string
	Role string
}

// ReviewService moves submissions through the review workflow.
type ReviewService interface {
	Claim(ctx context.Context, id string, actor Actor) (dto.SubmissionResponse, error)
	Decide(ctx context.Context, id string, payload dto.ReviewDecisionRequest, actor Actor) (dto.SubmissionResponse, error)
}

type reviewService struct {
	store       repository.SubmissionStore
	machine     *workflow.Machine
	engine      *grading.Engine
	validator   *validator.Validate
	publisher   events.Publisher
	invalidator StatisticsInvalidator
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewReviewService constructs a ReviewService.
func NewReviewService(store repository.SubmissionStore, machine *workflow.Machine, engine *grading.Engine, validate *validator.Validate, publisher events.Publisher, invalidator StatisticsInvalidator, logger zerolog.Logger) ReviewService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &reviewService{
		store:       store,
		machine:     machine,
		engine:      engine,
		validator:   validate,
		publisher:   publisher,
		invalidator: invalidator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "review_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/sai-review-api/internal/service/review"),
		now:         time.Now,
	}
}

func (s *reviewService) Claim(ctx context.Context, id string, actor Actor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.claim")
	span.SetAttributes(
		attribute.String("review.submission_id", id),
		attribute.String("review.actor", actor.ID),
	)
	defer span.End()

	submission, from, err := s.apply(ctx, id, s.machine.ClaimCommand(actor.ID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim_failed")
		return dto.SubmissionResponse{}, err
	}

	s.afterTransition(ctx, events.TypeSubmissionClaimed, from, submission, actor)
	return dto.NewSubmissionResponse(submission, s.engine), nil
}

func (s *reviewService) Decide(ctx context.Context, id string, payload dto.ReviewDecisionRequest, actor Actor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.decide")
	span.SetAttributes(
		attribute.String("review.submission_id", id),
		attribute.String("review.actor", actor.ID),
		attribute.String("review.outcome", payload.Outcome),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, models.FromValidator(err)
	}

	decision := workflow.Decision{
		SAIScore:     payload.SAIScore,
		Feedback:     s.sanitize(payload.Feedback),
		Strengths:    s.sanitizeList(payload.Strengths),
		Improvements: s.sanitizeList(payload.Improvements),
		NextSteps:    s.sanitize(payload.NextSteps),
	}

	command := s.machine.DecideCommand(workflow.Outcome(payload.Outcome), decision, actor.ID)
	submission, from, err := s.apply(ctx, id, command)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decide_failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Float64("review.sai_score", *payload.SAIScore))
	s.afterTransition(ctx, events.TypeSubmissionReviewed, from, submission, actor)
	return dto.NewSubmissionResponse(submission, s.engine), nil
}

// apply runs command through the store and reports the status it started from.
func (s *reviewService) apply(ctx context.Context, id string, command workflow.Command) (models.Submission, models.SubmissionStatus, error) {
	var from models.SubmissionStatus
	recording := func(current models.Submission) (models.Submission, error) {
		from = current.Status
		return command(current)
	}

	submission, err := s.store.ApplyReview(ctx, id, recording)
	if err != nil {
		return models.Submission{}, "", err
	}
	return submission, from, nil
}

func (s *reviewService) afterTransition(ctx context.Context, kind events.Type, from models.SubmissionStatus, submission models.Submission, actor Actor) {
	observability.ReviewTransitions().WithLabelValues(string(from), string(submission.Status)).Inc()

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	event := events.Event{
		Type:         kind,
		SubmissionID: submission.ID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		Actor:        actor.ID,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to publish review event")
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("actor", actor.ID).
		Str("from", string(from)).
		Str("to", string(submission.Status)).
		Msg("submission transitioned")
}

// sanitize decodes entities first so encoded tags are parsed as markup and
// stripped. The sanitizer output is stored as is.
func (s *reviewService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(html.UnescapeString(value)))
}

func (s *reviewService) sanitizeList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, s.sanitize(value))
	}
	return out
}
