package analytics

import (
	"strings"

	"github.com/noah-isme/sai-review-api/internal/models"
)

// SearchFilter narrows Search beyond the free-text query. Nil and empty
// fields match everything.
type SearchFilter struct {
	Status   *models.SubmissionStatus
	Sport    string
	MinScore *float64
}

// Search returns the submissions whose user name, sport or subcategory
// contains query (case-insensitive) and that satisfy filter. A blank query
// matches every submission. Input order is preserved.
func Search(submissions []models.Submission, query string, filter SearchFilter) []models.Submission {
	needle := strings.ToLower(strings.TrimSpace(query))

	matches := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if !matchesQuery(submission, needle) || !filter.matches(submission) {
			continue
		}
		matches = append(matches, submission)
	}
	return matches
}

func matchesQuery(submission models.Submission, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{submission.UserName, submission.Sport, submission.Subcategory} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (f SearchFilter) matches(submission models.Submission) bool {
	if f.Status != nil && submission.Status != *f.Status {
		return false
	}
	if sport := strings.TrimSpace(f.Sport); sport != "" && !strings.EqualFold(submission.Sport, sport) {
		return false
	}
	if f.MinScore != nil && submission.EffectiveScore() < *f.MinScore {
		return false
	}
	return true
}
