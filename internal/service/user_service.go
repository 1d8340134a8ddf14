package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/dto"
	"github.com/noah-isme/sai-review-api/internal/grading"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/repository"
)

// UserService manages athlete profiles and their submission history.
type UserService interface {
	Register(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	Update(ctx context.Context, id string, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Submissions(ctx context.Context, id string) ([]dto.SubmissionResponse, error)
	Summary(ctx context.Context, id string) (dto.UserSummaryResponse, error)
}

type userService struct {
	store     repository.SubmissionStore
	engine    *grading.Engine
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewUserService constructs a UserService.
func NewUserService(store repository.SubmissionStore, engine *grading.Engine, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		store:     store,
		engine:    engine,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, models.FromValidator(err)
	}

	user, err := s.store.CreateUser(ctx, models.User{
		FullName:    s.clean(payload.FullName),
		Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		PhoneNumber: strings.TrimSpace(payload.PhoneNumber),
		DateOfBirth: strings.TrimSpace(payload.DateOfBirth),
		Gender:      s.clean(payload.Gender),
		City:        s.clean(payload.City),
		State:       s.clean(payload.State),
		Sport:       s.clean(payload.Sport),
		Experience:  payload.Experience,
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("athlete registered")
	return dto.NewUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, id string) (dto.UserResponse, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id string, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, models.FromValidator(err)
	}

	user, err := s.store.UpdateUser(ctx, id, func(user *models.User) error {
		if payload.FullName != nil {
			user.FullName = s.clean(*payload.FullName)
		}
		if payload.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*payload.Email))
		}
		if payload.PhoneNumber != nil {
			user.PhoneNumber = strings.TrimSpace(*payload.PhoneNumber)
		}
		if payload.DateOfBirth != nil {
			user.DateOfBirth = strings.TrimSpace(*payload.DateOfBirth)
		}
		if payload.Gender != nil {
			user.Gender = s.clean(*payload.Gender)
		}
		if payload.City != nil {
			user.City = s.clean(*payload.City)
		}
		if payload.State != nil {
			user.State = s.clean(*payload.State)
		}
		if payload.Sport != nil {
			user.Sport = s.clean(*payload.Sport)
		}
		if payload.Experience != nil {
			user.Experience = *payload.Experience
		}
		return nil
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Submissions(ctx context.Context, id string) ([]dto.SubmissionResponse, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return nil, err
	}

	submissions, err := s.store.ListSubmissions(ctx, repository.SubmissionFilter{UserID: id})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions, s.engine), nil
}

func (s *userService) Summary(ctx context.Context, id string) (dto.UserSummaryResponse, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return dto.UserSummaryResponse{}, err
	}

	submissions, err := s.store.ListSubmissions(ctx, repository.SubmissionFilter{UserID: id})
	if err != nil {
		return dto.UserSummaryResponse{}, err
	}

	summary := dto.UserSummaryResponse{UserID: id, Total: len(submissions)}
	for _, submission := range submissions {
		switch submission.Status {
		case models.SubmissionStatusPending:
			summary.Pending++
		case models.SubmissionStatusUnderReview:
			summary.UnderReview++
		case models.SubmissionStatusApproved:
			summary.Approved++
		case models.SubmissionStatusRejected:
			summary.Rejected++
		}

		score := submission.EffectiveScore()
		if summary.BestScore == nil || score > *summary.BestScore {
			best := score
			summary.BestScore = &best
		}
	}

	return summary, nil
}

func (s *userService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}
