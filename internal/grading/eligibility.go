package grading

import (
	"fmt"

	"github.com/noah-isme/sai-review-api/internal/models"
)

// DefaultThreshold is the SAI selection minimum score.
const DefaultThreshold = 75.0

// IsEligible reports whether score meets threshold. The boundary is inclusive.
func IsEligible(score, threshold float64) bool {
	return score >= threshold
}

// EligibilityRule gates new submissions on a configurable threshold.
type EligibilityRule struct {
	threshold float64
}

// NewEligibilityRule validates threshold and returns the rule.
func NewEligibilityRule(threshold float64) (EligibilityRule, error) {
	if !models.ScoreInRange(threshold) {
		return EligibilityRule{}, fmt.Errorf("%w: threshold %v", ErrInvalidScore, threshold)
	}
	return EligibilityRule{threshold: threshold}, nil
}

// Threshold returns the configured minimum.
func (r EligibilityRule) Threshold() float64 {
	return r.threshold
}

// IsEligible applies the rule to score.
func (r EligibilityRule) IsEligible(score float64) bool {
	return IsEligible(score, r.threshold)
}
