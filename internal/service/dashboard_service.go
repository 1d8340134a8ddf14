package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/sai-review-api/internal/analytics"
	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/grading"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/observability"
	"github.com/noah-isme/sai-review-api/internal/repository"
)

const (
	statisticsCacheKey      = "sai:review:statistics"
	statisticsGenerationKey = "sai:review:statistics:generation"
)

var errStaleStatistics = errors.New("statistics snapshot is stale")

// DashboardService serves reviewer statistics and search.
type DashboardService interface {
	Statistics(ctx context.Context) (dto.StatisticsResponse, error)
	Search(ctx context.Context, query dto.SearchQuery) ([]dto.SubmissionResponse, error)
	Invalidate(ctx context.Context)
}

type dashboardService struct {
	store     repository.SubmissionStore
	engine    *grading.Engine
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	group     singleflight.Group
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewDashboardService constructs the dashboard service. A nil cache disables caching.
func NewDashboardService(store repository.SubmissionStore, engine *grading.Engine, validate *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		store:     store,
		engine:    engine,
		validator: validate,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sai-review-api/internal/service/dashboard"),
		now:       time.Now,
	}
}

func (s *dashboardService) Statistics(ctx context.Context) (dto.StatisticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.statistics")
	span.SetAttributes(attribute.String("dashboard.cache_key", statisticsCacheKey))
	defer span.End()

	if cached, ok := s.readCache(ctx, span); ok {
		return cached, nil
	}

	// Callers share one computation per cache generation. The shared work runs
	// detached from any single caller's cancellation.
	generation, cacheable := s.readGeneration(ctx, span)
	flightKey := statisticsCacheKey + ":" + strconv.FormatInt(generation, 10)
	value, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		computeCtx := context.WithoutCancel(ctx)
		submissions, err := s.store.ListSubmissions(computeCtx, repository.SubmissionFilter{})
		if err != nil {
			return nil, err
		}

		response := dto.NewStatisticsResponse(analytics.ComputeStatistics(submissions), s.now().UTC())
		if cacheable {
			s.writeCache(computeCtx, span, response, generation)
		}
		return response, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute_statistics_failed")
		return dto.StatisticsResponse{}, err
	}

	response := value.(dto.StatisticsResponse)
	span.SetAttributes(attribute.Int("dashboard.total", response.Total))
	return response, nil
}

func (s *dashboardService) Search(ctx context.Context, query dto.SearchQuery) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, models.FromValidator(err)
	}

	submissions, err := s.store.ListSubmissions(ctx, repository.SubmissionFilter{})
	if err != nil {
		return nil, err
	}

	filter := analytics.SearchFilter{
		Sport:    strings.TrimSpace(query.Sport),
		MinScore: query.MinScore,
	}
	if query.Status != "" {
		status := models.SubmissionStatus(query.Status)
		filter.Status = &status
	}

	return dto.NewSubmissionResponseSlice(analytics.Search(submissions, query.Query, filter), s.engine), nil
}

func (s *dashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Bumping the generation stops in-flight computations from writing back a
	// snapshot taken before this call.
	_, err := s.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, statisticsGenerationKey)
		pipe.Del(ctx, statisticsCacheKey)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate statistics cache")
	}
}

func (s *dashboardService) readGeneration(ctx context.Context, span trace.Span) (int64, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return 0, false
	}
	generation, err := s.cache.Get(ctx, statisticsGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		s.logger.Warn().Err(err).Msg("failed to read statistics cache generation")
		span.RecordError(err)
		return 0, false
	}
	return generation, true
}

func (s *dashboardService) readCache(ctx context.Context, span trace.Span) (dto.StatisticsResponse, bool) {
	if s.cache == nil {
		return dto.StatisticsResponse{}, false
	}

	cached, err := s.cache.Get(ctx, statisticsCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read statistics cache")
			span.RecordError(err)
		}
		observability.StatisticsCache().WithLabelValues("miss").Inc()
		return dto.StatisticsResponse{}, false
	}

	var response dto.StatisticsResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed statistics cache entry")
		observability.StatisticsCache().WithLabelValues("miss").Inc()
		return dto.StatisticsResponse{}, false
	}

	response.CacheHit = true
	observability.StatisticsCache().WithLabelValues("hit").Inc()
	span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
	return response, true
}

func (s *dashboardService) writeCache(ctx context.Context, span trace.Span, response dto.StatisticsResponse, generation int64) {
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	err = s.cache.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, statisticsGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleStatistics
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statisticsCacheKey, payload, s.cacheTTL)
			return nil
		})
		return err
	}, statisticsGenerationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleStatistics), errors.Is(err, redis.TxFailedErr):
		s.logger.Debug().Int64("generation", generation).Msg("skipping stale statistics cache write")
	default:
		s.logger.Warn().Err(err).Msg("failed to store statistics cache")
		span.RecordError(err)
	}
}
