package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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
)

// ErrNotEligible indicates an analysis score below the submission threshold.
var ErrNotEligible = errors.New("score is below the eligibility threshold")

// StatisticsInvalidator drops cached dashboard figures after a write.
type StatisticsInvalidator interface {
	Invalidate(ctx context.Context)
}

// SubmissionService turns analysis results into stored submissions.
type SubmissionService interface {
	Evaluate(ctx context.Context, score float64) (dto.EvaluationResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id string) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	store       repository.SubmissionStore
	engine      *grading.Engine
	rule        grading.EligibilityRule
	validator   *validator.Validate
	publisher   events.Publisher
	invalidator StatisticsInvalidator
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(store repository.SubmissionStore, engine *grading.Engine, rule grading.EligibilityRule, validate *validator.Validate, publisher events.Publisher, invalidator StatisticsInvalidator, logger zerolog.Logger) SubmissionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &submissionService{
		store:       store,
		engine:      engine,
		rule:        rule,
		validator:   validate,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/sai-review-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Evaluate(ctx context.Context, score float64) (dto.EvaluationResponse, error) {
	grade, err := s.engine.GradeFor(score)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	return dto.EvaluationResponse{
		Score:     score,
		Grade:     dto.NewGradeResponse(grade),
		Eligible:  s.rule.IsEligible(score),
		Threshold: s.rule.Threshold(),
	}, nil
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.create")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		observability.SubmissionsRejected().WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, models.FromValidator(err)
	}
	if err := validateMetrics(payload.Metrics); err != nil {
		observability.SubmissionsRejected().WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	score := *payload.AIScore
	span.SetAttributes(
		attribute.String("submission.user_id", payload.UserID),
		attribute.String("submission.sport", payload.Sport),
		attribute.Float64("submission.ai_score", score),
	)

	if !s.rule.IsEligible(score) {
		observability.SubmissionsRejected().WithLabelValues("not_eligible").Inc()
		span.SetStatus(codes.Error, "not_eligible")
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %.1f < %.1f", ErrNotEligible, score, s.rule.Threshold())
	}

	submission, err := s.store.CreateSubmission(ctx, repository.NewSubmission{
		UserID:      payload.UserID,
		Sport:       payload.Sport,
		Subcategory: payload.Subcategory,
		VideoURI:    payload.VideoURI,
		AIScore:     payload.AIScore,
		Metrics:     payload.Metrics,
	})
	if err != nil {
		reason := "store_error"
		if errors.Is(err, models.ErrValidation) {
			reason = "invalid"
		}
		observability.SubmissionsRejected().WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsCreated().WithLabelValues(strings.ToLower(submission.Sport)).Inc()
	span.SetAttributes(attribute.String("submission.id", submission.ID))

	s.afterWrite(ctx, events.Event{
		Type:         events.TypeSubmissionCreated,
		SubmissionID: submission.ID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		OccurredAt:   s.now().UTC(),
	})

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("user_id", submission.UserID).
		Float64("ai_score", submission.AIScore).
		Msg("submission queued for review")

	return dto.NewSubmissionResponse(submission, s.engine), nil
}

func (s *submissionService) Get(ctx context.Context, id string) (dto.SubmissionResponse, error) {
	submission, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission, s.engine), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, models.FromValidator(err)
	}

	repoFilter := repository.SubmissionFilter{
		UserID: strings.TrimSpace(filter.UserID),
		Sport:  strings.TrimSpace(filter.Sport),
	}
	if filter.Status != "" {
		status := models.SubmissionStatus(filter.Status)
		repoFilter.Status = &status
	}

	submissions, err := s.store.ListSubmissions(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions, s.engine), nil
}

func (s *submissionService) afterWrite(ctx context.Context, event events.Event) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", event.SubmissionID).Msg("failed to publish submission event")
	}
}

func validateMetrics(metrics map[string]float64) error {
	for name, value := range metrics {
		if strings.TrimSpace(name) == "" {
			return models.NewValidationError("metrics", "names must not be empty")
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return models.NewValidationError("metrics", fmt.Sprintf("%s must be a finite number", name))
		}
	}
	return nil
}
