// Package grading converts performance scores into SAI letter grades and
// decides whether a score is good enough for a formal submission.
package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/sai-review-api/internal/models"
)

var (
	// ErrInvalidScore indicates a score outside [0, 100].
	ErrInvalidScore = errors.New("score must be between 0 and 100")
	// ErrInvalidGradeTable indicates the configured range table is inconsistent.
	ErrInvalidGradeTable = errors.New("invalid grade table")
)

// Range maps an inclusive score interval to a grade.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
	Tier  string  `json:"tier"`
}

// Contains reports whether score lies in [Min, Max].
func (r Range) Contains(score float64) bool {
	return score >= r.Min && score <= r.Max
}

// Grade is the derived label and tier for a score.
type Grade struct {
	Label string  `json:"label"`
	Tier  string  `json:"tier"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// DefaultTable is the SAI performance grade table. Each decade boundary
// (50, 60, 70, 80, 90) belongs to the higher grade, so every range ends on
// the float just below the next range's minimum.
func DefaultTable() []Range {
	return []Range{
		{Min: 0, Max: justBelow(50), Label: "D", Tier: "Poor Performance"},
		{Min: 50, Max: justBelow(60), Label: "C", Tier: "Needs Improvement"},
		{Min: 60, Max: justBelow(70), Label: "B", Tier: "Satisfactory Performance"},
		{Min: 70, Max: justBelow(80), Label: "B+", Tier: "Good Performance"},
		{Min: 80, Max: justBelow(90), Label: "A", Tier: "Very Good Performance"},
		{Min: 90, Max: 100, Label: "A+", Tier: "Exceptional Performance"},
	}
}

func justBelow(boundary float64) float64 {
	return math.Nextafter(boundary, math.Inf(-1))
}

// adjoins reports whether next starts where prev ends, either on the same
// value (a shared boundary) or on the float immediately after it.
func adjoins(prev, next Range) bool {
	return next.Min == prev.Max || next.Min == math.Nextafter(prev.Max, math.Inf(1))
}

// Engine looks up grades in a validated table. It is safe for concurrent use.
type Engine struct {
	table []Range
}

// NewEngine validates the table and returns an engine serving it.
func NewEngine(table []Range) (*Engine, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	copied := make([]Range, len(table))
	copy(copied, table)
	return &Engine{table: copied}, nil
}

// MustDefaultEngine returns an engine over DefaultTable.
func MustDefaultEngine() *Engine {
	engine, err := NewEngine(DefaultTable())
	if err != nil {
		panic(err)
	}
	return engine
}

// GradeFor returns the grade whose range contains score. When two ranges
// claim the same boundary value, the lowest-ordered range wins.
func (e *Engine) GradeFor(score float64) (Grade, error) {
	if !models.ScoreInRange(score) {
		return Grade{}, fmt.Errorf("%w: got %v", ErrInvalidScore, score)
	}

	for _, r := range e.table {
		if r.Contains(score) {
			return Grade{Label: r.Label, Tier: r.Tier, Min: r.Min, Max: r.Max}, nil
		}
	}

	// unreachable for a validated table
	return Grade{}, fmt.Errorf("%w: no range contains %v", ErrInvalidGradeTable, score)
}

// Table returns a copy of the ranges served by the engine.
func (e *Engine) Table() []Range {
	out := make([]Range, len(e.table))
	copy(out, e.table)
	return out
}

// ValidateTable checks that ranges ascend by Min, start at 0, end at 100 and
// are contiguous: each range starts on the previous range's Max or on the
// next representable value after it.
func ValidateTable(table []Range) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidGradeTable)
	}

	for i, r := range table {
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("%w: range %d has no label", ErrInvalidGradeTable, i)
		}
		if r.Min > r.Max {
			return fmt.Errorf("%w: range %q has min %v above max %v", ErrInvalidGradeTable, r.Label, r.Min, r.Max)
		}
		if i == 0 {
			continue
		}

		prev := table[i-1]
		switch {
		case r.Min <= prev.Min:
			return fmt.Errorf("%w: range %q is not ordered by ascending min", ErrInvalidGradeTable, r.Label)
		case r.Min > prev.Max && !adjoins(prev, r):
			return fmt.Errorf("%w: gap between %q and %q", ErrInvalidGradeTable, prev.Label, r.Label)
		case r.Min < prev.Max:
			return fmt.Errorf("%w: %q overlaps %q", ErrInvalidGradeTable, r.Label, prev.Label)
		}
	}

	if table[0].Min != models.MinScore {
		return fmt.Errorf("%w: first range must start at %v", ErrInvalidGradeTable, models.MinScore)
	}
	if last := table[len(table)-1]; last.Max != models.MaxScore {
		return fmt.Errorf("%w: last range must end at %v", ErrInvalidGradeTable, models.MaxScore)
	}

	return nil
}
