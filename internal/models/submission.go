package models

import (
	"time"
)

// SubmissionStatus is the review lifecycle state of a submission.
type SubmissionStatus string

const (
	// SubmissionStatusPending is the initial state of every new submission.
	SubmissionStatusPending SubmissionStatus = "pending"
	// SubmissionStatusUnderReview indicates a reviewer has claimed the submission.
	SubmissionStatusUnderReview SubmissionStatus = "under_review"
	// SubmissionStatusApproved is a terminal state.
	SubmissionStatusApproved SubmissionStatus = "approved"
	// SubmissionStatusRejected is a terminal state.
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// SubmissionStatuses lists every status in lifecycle order.
var SubmissionStatuses = []SubmissionStatus{
	SubmissionStatusPending,
	SubmissionStatusUnderReview,
	SubmissionStatusApproved,
	SubmissionStatusRejected,
}

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusUnderReview, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// MinScore and MaxScore bound both AI and SAI scores.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// ScoreInRange reports whether score lies in [MinScore, MaxScore].
func ScoreInRange(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// Review is the reviewer output. It is written as a whole or not at all.
type Review struct {
	SAIScore     float64   `json:"sai_score"`
	Feedback     string    `json:"feedback"`
	Strengths    []string  `json:"strengths"`
	Improvements []string  `json:"improvements"`
	NextSteps    string    `json:"next_steps"`
	ReviewedBy   string    `json:"reviewed_by"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// AnalysisResult is the opaque output of the upstream analysis provider.
type AnalysisResult struct {
	Score   float64            `json:"score"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Submission is an athlete performance entry moving through review.
//
// ClaimedBy is set when a reviewer marks the submission under review and is
// kept afterwards. Review is nil until a decision is recorded.
type Submission struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	Sport       string             `json:"sport"`
	Subcategory string             `json:"subcategory"`
	VideoURI    string             `json:"video_uri,omitempty"`
	AIScore     float64            `json:"ai_score"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Status      SubmissionStatus   `json:"status"`
	ClaimedBy   string             `json:"claimed_by,omitempty"`
	ClaimedAt   *time.Time         `json:"claimed_at,omitempty"`
	Review      *Review            `json:"review,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// State is the status-tagged view of a submission. Exactly one of Pending,
// UnderReview, Approved and Rejected implements it.
type State interface {
	Status() SubmissionStatus
	isState()
}

// Pending carries no review data.
type Pending struct{}

// UnderReview records who claimed the submission.
type UnderReview struct {
	ClaimedBy string
	ClaimedAt time.Time
}

// Approved carries the complete review.
type Approved struct{ Review Review }

// Rejected carries the complete review.
type Rejected struct{ Review Review }

func (Pending) Status() SubmissionStatus     { return SubmissionStatusPending }
func (UnderReview) Status() SubmissionStatus { return SubmissionStatusUnderReview }
func (Approved) Status() SubmissionStatus    { return SubmissionStatusApproved }
func (Rejected) Status() SubmissionStatus    { return SubmissionStatusRejected }

func (Pending) isState()     {}
func (UnderReview) isState() {}
func (Approved) isState()    {}
func (Rejected) isState()    {}

// State returns the tagged variant for the submission. It fails when the
// stored fields do not describe a consistent state.
func (s Submission) State() (State, error) {
	if err := s.CheckInvariants(); err != nil {
		return nil, err
	}

	switch s.Status {
	case SubmissionStatusPending:
		return Pending{}, nil
	case SubmissionStatusUnderReview:
		claimed := UnderReview{ClaimedBy: s.ClaimedBy}
		if s.ClaimedAt != nil {
			claimed.ClaimedAt = *s.ClaimedAt
		}
		return claimed, nil
	case SubmissionStatusApproved:
		return Approved{Review: s.Review.clone()}, nil
	default:
		return Rejected{Review: s.Review.clone()}, nil
	}
}

// CheckInvariants verifies the lifecycle rules for the stored fields.
func (s Submission) CheckInvariants() error {
	if !s.Status.Valid() {
		return NewValidationError("status", "is not recognised")
	}
	if !ScoreInRange(s.AIScore) {
		return NewValidationError("ai_score", "must be between 0 and 100")
	}

	switch s.Status {
	case SubmissionStatusPending:
		if s.Review != nil || s.ClaimedBy != "" {
			return NewValidationError("status", "pending submission must not carry review data")
		}
	case SubmissionStatusUnderReview:
		if s.Review != nil {
			return NewValidationError("status", "under review submission must not carry a decision")
		}
		if s.ClaimedBy == "" {
			return NewValidationError("claimed_by", "is required while under review")
		}
	case SubmissionStatusApproved, SubmissionStatusRejected:
		if s.Review == nil {
			return NewValidationError("review", "is required for a terminal submission")
		}
		if err := s.Review.check(); err != nil {
			return err
		}
	}

	return nil
}

// Clone returns a deep copy so callers never share slices or maps with the store.
func (s Submission) Clone() Submission {
	out := s
	if s.Metrics != nil {
		out.Metrics = make(map[string]float64, len(s.Metrics))
		for k, v := range s.Metrics {
			out.Metrics[k] = v
		}
	}
	if s.ClaimedAt != nil {
		at := *s.ClaimedAt
		out.ClaimedAt = &at
	}
	if s.Review != nil {
		review := s.Review.clone()
		out.Review = &review
	}
	return out
}

// EffectiveScore prefers the reviewer score over the AI score.
func (s Submission) EffectiveScore() float64 {
	if s.Review != nil {
		return s.Review.SAIScore
	}
	return s.AIScore
}

func (r *Review) check() error {
	if !ScoreInRange(r.SAIScore) {
		return NewValidationError("sai_score", "must be between 0 and 100")
	}
	if r.Feedback == "" {
		return NewValidationError("feedback", "is required")
	}
	if r.NextSteps == "" {
		return NewValidationError("next_steps", "is required")
	}
	if r.ReviewedBy == "" {
		return NewValidationError("reviewed_by", "is required")
	}
	if r.ReviewedAt.IsZero() {
		return NewValidationError("reviewed_at", "is required")
	}
	return nil
}

func (r *Review) clone() Review {
	out := *r
	out.Strengths = append([]string{}, r.Strengths...)
	out.Improvements = append([]string{}, r.Improvements...)
	return out
}
