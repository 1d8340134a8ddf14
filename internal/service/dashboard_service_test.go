package service

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/repository"
)

// interleavingStore runs afterList once, right after the first snapshot is read.
type interleavingStore struct {
	repository.SubmissionStore
	once      sync.Once
	afterList func()
}

func (s *interleavingStore) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	submissions, err := s.SubmissionStore.ListSubmissions(ctx, filter)
	if err == nil && s.afterList != nil {
		s.once.Do(s.afterList)
	}
	return submissions, err
}

func seedReviewQueue(t *testing.T, fixture serviceFixture) {
	t.Helper()
	ctx := context.Background()
	rahul := fixture.athlete(t, "Rahul Singh")
	priya := fixture.athlete(t, "Priya Sharma")

	sprint := createEligible(t, fixture, rahul.ID, 92)
	_, err := fixture.reviews().Decide(ctx, sprint.ID, dto.ReviewDecisionRequest{
		Outcome: "approve", SAIScore: floatPointer(95), Feedback: "Outstanding", NextSteps: "Camp",
	}, reviewer)
	require.NoError(t, err)

	_, err = fixture.submissions().Create(ctx, dto.SubmissionCreateRequest{
		UserID: priya.ID, Sport: "Badminton", Subcategory: "Smash Technique", AIScore: floatPointer(82),
	})
	require.NoError(t, err)
}

func TestDashboardStatisticsCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer redisClient.Close()

	fixture := newServiceFixture(t)
	dashboard := NewDashboardService(fixture.store, fixture.engine, fixture.validate, redisClient, time.Minute, testLogger())
	seedReviewQueue(t, fixture)

	ctx := context.Background()
	first, err := dashboard.Statistics(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, 2, first.Total)
	require.Equal(t, map[string]int{"approved": 1, "pending": 1}, first.ByStatus)
	require.Equal(t, 1, first.Pending)
	require.Equal(t, 1, first.Reviewed)
	require.InDelta(t, 87.0, first.AvgAIScore, 1e-9)
	require.InDelta(t, 95.0, first.AvgSAIScore, 1e-9)
	require.True(t, mini.Exists(statisticsCacheKey))

	second, err := dashboard.Statistics(ctx)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Total, second.Total)

	dashboard.Invalidate(ctx)
	require.False(t, mini.Exists(statisticsCacheKey))

	third, err := dashboard.Statistics(ctx)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
}

func TestDashboardStatisticsDropsSnapshotInvalidatedMidComputation(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer redisClient.Close()

	fixture := newServiceFixture(t)
	seedReviewQueue(t, fixture)
	ctx := context.Background()

	store := &interleavingStore{SubmissionStore: fixture.store}
	dashboard := NewDashboardService(store, fixture.engine, fixture.validate, redisClient, time.Minute, testLogger())
	late := fixture.athlete(t, "Kavya Nair")
	store.afterList = func() {
		_, err := fixture.store.CreateSubmission(ctx, repository.NewSubmission{
			UserID: late.ID, Sport: "Athletics", Subcategory: "High Jump", AIScore: floatPointer(78),
		})
		require.NoError(t, err)
		dashboard.Invalidate(ctx)
	}

	stale, err := dashboard.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stale.Total)
	require.False(t, mini.Exists(statisticsCacheKey))

	fresh, err := dashboard.Statistics(ctx)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, 3, fresh.Total)
	require.True(t, mini.Exists(statisticsCacheKey))

	cached, err := dashboard.Statistics(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, 3, cached.Total)
}

func TestDashboardStatisticsSurvivesCancelledCaller(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer redisClient.Close()

	fixture := newServiceFixture(t)
	seedReviewQueue(t, fixture)
	dashboard := NewDashboardService(fixture.store, fixture.engine, fixture.validate, redisClient, time.Minute, testLogger())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := dashboard.Statistics(cancelled)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)

	next, err := dashboard.Statistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, next.Total)
}

func TestDashboardStatisticsEmptyStoreWithoutCache(t *testing.T) {
	fixture := newServiceFixture(t)
	dashboard := NewDashboardService(fixture.store, fixture.engine, fixture.validate, nil, time.Minute, testLogger())

	stats, err := dashboard.Statistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, stats.Total)
	require.Empty(t, stats.ByStatus)
	require.Zero(t, stats.AvgAIScore)
	require.Zero(t, stats.AvgSAIScore)
	require.False(t, stats.GeneratedAt.IsZero())
}

func TestDashboardSearch(t *testing.T) {
	fixture := newServiceFixture(t)
	dashboard := NewDashboardService(fixture.store, fixture.engine, fixture.validate, nil, 0, testLogger())
	seedReviewQueue(t, fixture)
	ctx := context.Background()

	all, err := dashboard.Search(ctx, dto.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.ElementsMatch(t, []string{"Rahul Singh", "Priya Sharma"}, []string{all[0].UserName, all[1].UserName})

	byName, err := dashboard.Search(ctx, dto.SearchQuery{Query: "rahul"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "100m Sprint", byName[0].Subcategory)

	pendingSprint, err := dashboard.Search(ctx, dto.SearchQuery{Query: "sprint", Status: string(models.SubmissionStatusPending)})
	require.NoError(t, err)
	require.Empty(t, pendingSprint)

	highScores, err := dashboard.Search(ctx, dto.SearchQuery{MinScore: floatPointer(90)})
	require.NoError(t, err)
	require.Len(t, highScores, 1)

	bySport, err := dashboard.Search(ctx, dto.SearchQuery{Sport: "badminton"})
	require.NoError(t, err)
	require.Len(t, bySport, 1)

	_, err = dashboard.Search(ctx, dto.SearchQuery{Status: "closed"})
	require.ErrorIs(t, err, models.ErrValidation)
}
