package dto

import (
	"time"

	"github.com/noah-isme/sai-review-api/internal/grading"
	"github.com/noah-isme/sai-review-api/internal/models"
)

// SubmissionCreateRequest is the payload an athlete sends after on-device analysis.
type SubmissionCreateRequest struct {
	UserID      string             `json:"user_id" validate:"required"`
	Sport       string             `json:"sport" validate:"required,max=64"`
	Subcategory string             `json:"subcategory" validate:"omitempty,max=128"`
	VideoURI    string             `json:"video_uri" validate:"omitempty,uri"`
	AIScore     *float64           `json:"ai_score" validate:"required,gte=0,lte=100"`
	Metrics     map[string]float64 `json:"metrics"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	UserID string `query:"user_id"`
	Status string `query:"status" validate:"omitempty,oneof=pending under_review approved rejected"`
	Sport  string `query:"sport"`
}

// GradeResponse is a letter grade with its score range.
type GradeResponse struct {
	Label string  `json:"label"`
	Tier  string  `json:"tier"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	UserName     string             `json:"user_name"`
	Sport        string             `json:"sport"`
	Subcategory  string             `json:"subcategory"`
	VideoURI     string             `json:"video_uri,omitempty"`
	AIScore      float64            `json:"ai_score"`
	AIGrade      *GradeResponse     `json:"ai_grade,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Status       string             `json:"status"`
	ClaimedBy    string             `json:"claimed_by,omitempty"`
	ClaimedAt    *time.Time         `json:"claimed_at,omitempty"`
	SAIScore     *float64           `json:"sai_score"`
	SAIGrade     *GradeResponse     `json:"sai_grade,omitempty"`
	Feedback     string             `json:"feedback,omitempty"`
	Strengths    []string           `json:"strengths"`
	Improvements []string           `json:"improvements"`
	NextSteps    string             `json:"next_steps,omitempty"`
	ReviewedBy   string             `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time         `json:"reviewed_at,omitempty"`
	SubmittedAt  time.Time          `json:"submitted_at"`
}

// EvaluationResponse reports what a score is worth before submitting.
type EvaluationResponse struct {
	Score     float64       `json:"score"`
	Grade     GradeResponse `json:"grade"`
	Eligible  bool          `json:"eligible"`
	Threshold float64       `json:"threshold"`
}

// NewGradeResponse converts a grade into a DTO.
func NewGradeResponse(grade grading.Grade) GradeResponse {
	return GradeResponse{
		Label: grade.Label,
		Tier:  grade.Tier,
		Min:   grade.Min,
		Max:   grade.Max,
	}
}

// NewSubmissionResponse converts a Submission model into a DTO. Grades are
// omitted when engine is nil.
func NewSubmissionResponse(model models.Submission, engine *grading.Engine) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		UserName:     model.UserName,
		Sport:        model.Sport,
		Subcategory:  model.Subcategory,
		VideoURI:     model.VideoURI,
		AIScore:      model.AIScore,
		AIGrade:      gradeOf(engine, model.AIScore),
		Metrics:      model.Metrics,
		Status:       string(model.Status),
		ClaimedBy:    model.ClaimedBy,
		ClaimedAt:    model.ClaimedAt,
		Strengths:    []string{},
		Improvements: []string{},
		SubmittedAt:  model.SubmittedAt,
	}

	if review := model.Review; review != nil {
		score := review.SAIScore
		reviewedAt := review.ReviewedAt
		response.SAIScore = &score
		response.SAIGrade = gradeOf(engine, score)
		response.Feedback = review.Feedback
		response.Strengths = append(response.Strengths, review.Strengths...)
		response.Improvements = append(response.Improvements, review.Improvements...)
		response.NextSteps = review.NextSteps
		response.ReviewedBy = review.ReviewedBy
		response.ReviewedAt = &reviewedAt
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of Submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission, engine *grading.Engine) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item, engine))
	}
	return responses
}

func gradeOf(engine *grading.Engine, score float64) *GradeResponse {
	if engine == nil {
		return nil
	}
	grade, err := engine.GradeFor(score)
	if err != nil {
		return nil
	}
	response := NewGradeResponse(grade)
	return &response
}
