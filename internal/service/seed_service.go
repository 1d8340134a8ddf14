package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/repository"
	"github.com/noah-isme/sai-review-api/internal/workflow"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads demo athletes and submissions.
type SeedService interface {
	SeedDemo(ctx context.Context, token string) (dto.SeedResult, error)
	// SeedOnStart seeds without a token. It is used by the server when
	// seeding at startup is configured.
	SeedOnStart(ctx context.Context) (dto.SeedResult, error)
}

type seedService struct {
	store       repository.SubmissionStore
	machine     *workflow.Machine
	invalidator StatisticsInvalidator
	enabled     bool
	token       string
	logger      zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(store repository.SubmissionStore, machine *workflow.Machine, invalidator StatisticsInvalidator, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		store:       store,
		machine:     machine,
		invalidator: invalidator,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedDemo(ctx context.Context, token string) (dto.SeedResult, error) {
	if !s.enabled {
		return dto.SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedResult{}, ErrSeedUnauthorized
	}
	return s.seed(ctx)
}

func (s *seedService) SeedOnStart(ctx context.Context) (dto.SeedResult, error) {
	if !s.enabled {
		return dto.SeedResult{}, ErrSeedDisabled
	}
	return s.seed(ctx)
}

// seed goes through the store and the state machine so every demo record
// satisfies the same invariants as live data. Athletes whose email is already
// registered are skipped.
func (s *seedService) seed(ctx context.Context) (dto.SeedResult, error) {
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return dto.SeedResult{}, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, user := range existing {
		known[strings.ToLower(user.Email)] = struct{}{}
	}

	var result dto.SeedResult
	for _, athlete := range demoAthletes() {
		if _, ok := known[athlete.email]; ok {
			result.Skipped++
			continue
		}

		user, err := s.store.CreateUser(ctx, models.User{
			FullName:    athlete.fullName,
			Email:       athlete.email,
			PhoneNumber: athlete.phone,
			DateOfBirth: athlete.dateOfBirth,
			Gender:      athlete.gender,
			City:        athlete.city,
			State:       athlete.state,
			Sport:       athlete.sport,
			Experience:  athlete.experience,
		})
		if err != nil {
			return result, err
		}
		result.Users++

		for _, demo := range athlete.submissions {
			if err := s.seedSubmission(ctx, user.ID, demo); err != nil {
				return result, err
			}
			result.Submissions++
		}
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	s.logger.Info().
		Int("users", result.Users).
		Int("submissions", result.Submissions).
		Int("skipped", result.Skipped).
		Msg("demo data seeded")

	return result, nil
}

func (s *seedService) seedSubmission(ctx context.Context, userID string, demo demoSubmission) error {
	score := demo.aiScore
	submission, err := s.store.CreateSubmission(ctx, repository.NewSubmission{
		UserID:      userID,
		Sport:       demo.sport,
		Subcategory: demo.subcategory,
		VideoURI:    demo.videoURI,
		AIScore:     &score,
	})
	if err != nil {
		return err
	}

	switch {
	case demo.reviewer == "":
		return nil
	case demo.claimOnly:
		_, err = s.store.ApplyReview(ctx, submission.ID, s.machine.ClaimCommand(demo.reviewer))
		return err
	}

	if _, err := s.store.ApplyReview(ctx, submission.ID, s.machine.ClaimCommand(demo.reviewer)); err != nil {
		return err
	}

	saiScore := demo.saiScore
	decision := workflow.Decision{
		SAIScore:     &saiScore,
		Feedback:     demo.feedback,
		Strengths:    demo.strengths,
		Improvements: demo.improvements,
		NextSteps:    demo.nextSteps,
	}
	_, err = s.store.ApplyReview(ctx, submission.ID, s.machine.DecideCommand(demo.outcome, decision, demo.reviewer))
	return err
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
