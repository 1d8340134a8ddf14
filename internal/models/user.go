package models

import (
	"strings"
	"time"
)

// UserStatus tags where an athlete is in the submission journey.
type UserStatus string

const (
	// UserStatusRegistered is assigned at registration.
	UserStatusRegistered UserStatus = "registered"
	// UserStatusSubmitted is assigned once the athlete owns at least one submission.
	UserStatusSubmitted UserStatus = "submitted"
)

// User is an athlete identity record. Users are never deleted.
type User struct {
	ID            string     `json:"id"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email,omitempty"`
	PhoneNumber   string     `json:"phone_number,omitempty"`
	DateOfBirth   string     `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	City          string     `json:"city,omitempty"`
	State         string     `json:"state,omitempty"`
	Sport         string     `json:"sport,omitempty"`
	Experience    int        `json:"experience_years"`
	CurrentStatus UserStatus `json:"current_status"`
	SubmissionIDs []string   `json:"submission_ids"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks the record-level rules that the store enforces on every write.
func (u User) Validate() error {
	if strings.TrimSpace(u.FullName) == "" {
		return NewValidationError("full_name", "is required")
	}
	if strings.TrimSpace(u.Email) == "" && strings.TrimSpace(u.PhoneNumber) == "" {
		return NewValidationError("contact", "email or phone number is required")
	}
	if u.Experience < 0 {
		return NewValidationError("experience_years", "must not be negative")
	}
	switch u.CurrentStatus {
	case UserStatusRegistered, UserStatusSubmitted:
	default:
		return NewValidationError("current_status", "is not recognised")
	}
	return nil
}

// HasSubmission reports whether the submission id is already owned by the user.
func (u User) HasSubmission(id string) bool {
	for _, existing := range u.SubmissionIDs {
		if existing == id {
			return true
		}
	}
	return false
}
