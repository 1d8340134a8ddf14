package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sai-review-api/internal/events"
	"github.com/noah-isme/sai-review-api/internal/grading"
	"github.com/noah-isme/sai-review-api/internal/kv"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/repository"
	"github.com/noah-isme/sai-review-api/internal/workflow"
)

var fixedReviewTime = time.Date(2024, 1, 23, 10, 30, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

type countingInvalidator struct {
	mu    sync.Mutex
	count int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingInvalidator) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

type serviceFixture struct {
	store       repository.SubmissionStore
	engine      *grading.Engine
	rule        grading.EligibilityRule
	validate    *validator.Validate
	machine     *workflow.Machine
	publisher   *recordingPublisher
	invalidator *countingInvalidator
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	rule, err := grading.NewEligibilityRule(grading.DefaultThreshold)
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return serviceFixture{
		store:       repository.NewSubmissionStore(kv.NewMemory(), testLogger()),
		engine:      grading.MustDefaultEngine(),
		rule:        rule,
		validate:    validate,
		machine:     workflow.NewMachine(validate, func() time.Time { return fixedReviewTime }),
		publisher:   &recordingPublisher{},
		invalidator: &countingInvalidator{},
	}
}

func (f serviceFixture) submissions() SubmissionService {
	return NewSubmissionService(f.store, f.engine, f.rule, f.validate, f.publisher, f.invalidator, testLogger())
}

func (f serviceFixture) reviews() ReviewService {
	return NewReviewService(f.store, f.machine, f.engine, f.validate, f.publisher, f.invalidator, testLogger())
}

func (f serviceFixture) athlete(t *testing.T, name string) models.User {
	t.Helper()
	user, err := f.store.CreateUser(context.Background(), models.User{
		FullName: name,
		Email:    "athlete@example.com",
		Sport:    "Athletics",
	})
	require.NoError(t, err)
	return user
}

func floatPointer(v float64) *float64 {
	return &v
}
