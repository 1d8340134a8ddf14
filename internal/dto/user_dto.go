package dto

import (
	"time"

	"github.com/noah-isme/sai-review-api/internal/models"
)

// UserCreateRequest registers an athlete. At least one of email and phone
// number is required.
type UserCreateRequest struct {
	FullName    string `json:"full_name" validate:"required,max=128"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"omitempty,max=32"`
	City        string `json:"city" validate:"omitempty,max=64"`
	State       string `json:"state" validate:"omitempty,max=64"`
	Sport       string `json:"sport" validate:"omitempty,max=64"`
	Experience  int    `json:"experience_years" validate:"gte=0,lte=80"`
}

// UserUpdateRequest edits profile fields. Nil fields are left unchanged.
type UserUpdateRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=1,max=128"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender" validate:"omitempty,max=32"`
	City        *string `json:"city" validate:"omitempty,max=64"`
	State       *string `json:"state" validate:"omitempty,max=64"`
	Sport       *string `json:"sport" validate:"omitempty,max=64"`
	Experience  *int    `json:"experience_years" validate:"omitempty,gte=0,lte=80"`
}

// UserResponse is the public view of an athlete.
type UserResponse struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email,omitempty"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	DateOfBirth   string    `json:"date_of_birth,omitempty"`
	Gender        string    `json:"gender,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Sport         string    `json:"sport,omitempty"`
	Experience    int       `json:"experience_years"`
	CurrentStatus string    `json:"current_status"`
	SubmissionIDs []string  `json:"submission_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserSummaryResponse is the profile dashboard of one athlete.
type UserSummaryResponse struct {
	UserID      string   `json:"user_id"`
	Total       int      `json:"total"`
	Pending     int      `json:"pending"`
	UnderReview int      `json:"under_review"`
	Approved    int      `json:"approved"`
	Rejected    int      `json:"rejected"`
	BestScore   *float64 `json:"best_score"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	ids := append([]string{}, model.SubmissionIDs...)
	return UserResponse{
		ID:            model.ID,
		FullName:      model.FullName,
		Email:         model.Email,
		PhoneNumber:   model.PhoneNumber,
		DateOfBirth:   model.DateOfBirth,
		Gender:        model.Gender,
		City:          model.City,
		State:         model.State,
		Sport:         model.Sport,
		Experience:    model.Experience,
		CurrentStatus: string(model.CurrentStatus),
		SubmissionIDs: ids,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewUserResponseSlice converts users into DTOs.
func NewUserResponseSlice(items []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewUserResponse(item))
	}
	return responses
}
