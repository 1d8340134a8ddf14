package dto

import (
	"time"

	"github.com/noah-isme/sai-review-api/internal/analytics"
)

// ReviewDecisionRequest is the reviewer verdict on a submission.
type ReviewDecisionRequest struct {
	Outcome      string   `json:"outcome" validate:"required,oneof=approve reject"`
	SAIScore     *float64 `json:"sai_score" validate:"required,gte=0,lte=100"`
	Feedback     string   `json:"feedback" validate:"required,max=4000"`
	Strengths    []string `json:"strengths" validate:"omitempty,max=20,dive,max=280"`
	Improvements []string `json:"improvements" validate:"omitempty,max=20,dive,max=280"`
	NextSteps    string   `json:"next_steps" validate:"required,max=2000"`
}

// SearchQuery holds the reviewer search parameters.
type SearchQuery struct {
	Query    string   `query:"q" validate:"omitempty,max=128"`
	Status   string   `query:"status" validate:"omitempty,oneof=pending under_review approved rejected"`
	Sport    string   `query:"sport" validate:"omitempty,max=64"`
	MinScore *float64 `query:"min_score" validate:"omitempty,gte=0,lte=100"`
}

// StatisticsResponse is the reviewer dashboard summary.
type StatisticsResponse struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	Pending     int            `json:"pending"`
	Reviewed    int            `json:"reviewed"`
	AvgAIScore  float64        `json:"avg_ai_score"`
	AvgSAIScore float64        `json:"avg_sai_score"`
	GeneratedAt time.Time      `json:"generated_at"`
	CacheHit    bool           `json:"cache_hit"`
}

// NewStatisticsResponse converts computed statistics into a DTO.
func NewStatisticsResponse(stats analytics.Statistics, generatedAt time.Time) StatisticsResponse {
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return StatisticsResponse{
		Total:       stats.Total,
		ByStatus:    byStatus,
		Pending:     stats.Pending(),
		Reviewed:    stats.Reviewed(),
		AvgAIScore:  stats.AvgAIScore,
		AvgSAIScore: stats.AvgSAIScore,
		GeneratedAt: generatedAt,
	}
}
