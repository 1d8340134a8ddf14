// Package analytics derives dashboard figures from submission snapshots.
package analytics

import (
	"github.com/montanaflynn/stats"

	"github.com/noah-isme/sai-review-api/internal/models"
)

// Statistics summarises a set of submissions.
type Statistics struct {
	Total       int                             `json:"total"`
	ByStatus    map[models.SubmissionStatus]int `json:"by_status"`
	AvgAIScore  float64                         `json:"avg_ai_score"`
	AvgSAIScore float64                         `json:"avg_sai_score"`
}

// Pending returns the number of submissions still waiting for a reviewer.
func (s Statistics) Pending() int {
	return s.ByStatus[models.SubmissionStatusPending]
}

// Reviewed returns the number of submissions with a final decision.
func (s Statistics) Reviewed() int {
	return s.ByStatus[models.SubmissionStatusApproved] + s.ByStatus[models.SubmissionStatusRejected]
}

// ComputeStatistics aggregates submissions. ByStatus only holds statuses that
// occur. Averages over an empty population are 0.
func ComputeStatistics(submissions []models.Submission) Statistics {
	result := Statistics{
		Total:    len(submissions),
		ByStatus: make(map[models.SubmissionStatus]int),
	}

	aiScores := make(stats.Float64Data, 0, len(submissions))
	saiScores := make(stats.Float64Data, 0, len(submissions))
	for _, submission := range submissions {
		result.ByStatus[submission.Status]++
		aiScores = append(aiScores, submission.AIScore)
		if submission.Review != nil {
			saiScores = append(saiScores, submission.Review.SAIScore)
		}
	}

	result.AvgAIScore = mean(aiScores)
	result.AvgSAIScore = mean(saiScores)
	return result
}

func mean(values stats.Float64Data) float64 {
	if values.Len() == 0 {
		return 0
	}
	avg, err := values.Mean()
	if err != nil {
		return 0
	}
	return avg
}
