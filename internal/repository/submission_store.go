package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sai-review-api/internal/kv"
	"github.com/noah-isme/sai-review-api/internal/models"
	"github.com/noah-isme/sai-review-api/internal/workflow"
)

const (
	submissionKeyPrefix = "submissions:"
	userKeyPrefix       = "users:"
	submissionIndexKey  = "index:submissions"
	userIndexKey        = "index:users"

	loadConcurrency = 8
)

// SubmissionFilter narrows ListSubmissions. Zero values match everything.
type SubmissionFilter struct {
	UserID string
	Status *models.SubmissionStatus
	Sport  string
}

func (f SubmissionFilter) matches(submission models.Submission) bool {
	if f.UserID != "" && submission.UserID != f.UserID {
		return false
	}
	if f.Status != nil && submission.Status != *f.Status {
		return false
	}
	if f.Sport != "" && !strings.EqualFold(submission.Sport, f.Sport) {
		return false
	}
	return true
}

// NewSubmission is the input for CreateSubmission.
type NewSubmission struct {
	UserID      string
	Sport       string
	Subcategory string
	VideoURI    string
	AIScore     *float64
	Metrics     map[string]float64
}

// SubmissionStore is the single authoritative collection of submissions and users.
type SubmissionStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateSubmission(ctx context.Context, input NewSubmission) (models.Submission, error)
	GetSubmission(ctx context.Context, id string) (models.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ApplyReview(ctx context.Context, id string, command workflow.Command) (models.Submission, error)
}

type submissionStore struct {
	kv      kv.Store
	locks   *keyedMutex
	indexMu sync.Mutex
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// NewSubmissionStore builds the store on top of a key-value backend.
func NewSubmissionStore(store kv.Store, logger zerolog.Logger) SubmissionStore {
	return &submissionStore{
		kv:     store,
		locks:  newKeyedMutex(),
		logger: logger.With().Str("component", "submission_store").Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *submissionStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := s.now().UTC()
	user.ID = s.newID()
	user.CurrentStatus = models.UserStatusRegistered
	user.SubmissionIDs = []string{}
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := user.Validate(); err != nil {
		return models.User{}, err
	}

	if err := s.putJSON(ctx, userKey(user.ID), user); err != nil {
		return models.User{}, err
	}
	if err := s.appendIndex(ctx, userIndexKey, user.ID); err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *submissionStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	found, err := s.getJSON(ctx, userKey(id), &user)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, models.NotFoundError("user", id)
	}
	return user, nil
}

func (s *submissionStore) UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (models.User, error) {
	unlock := s.locks.Lock(userKey(id))
	defer unlock()

	current, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	next := current
	next.SubmissionIDs = append([]string{}, current.SubmissionIDs...)
	if err := mutate(&next); err != nil {
		return models.User{}, err
	}

	// identity and ownership are managed by the store
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.SubmissionIDs = current.SubmissionIDs
	next.CurrentStatus = current.CurrentStatus
	next.UpdatedAt = s.now().UTC()

	if err := next.Validate(); err != nil {
		return models.User{}, err
	}
	if err := s.putJSON(ctx, userKey(id), next); err != nil {
		return models.User{}, err
	}

	return next, nil
}

func (s *submissionStore) ListUsers(ctx context.Context) ([]models.User, error) {
	ids, err := s.readIndex(ctx, userIndexKey)
	if err != nil {
		return nil, err
	}

	loaded := make([]*models.User, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(loadConcurrency)
	for i, id := range ids {
		group.Go(func() error {
			var user models.User
			found, err := s.getJSON(groupCtx, userKey(id), &user)
			if err != nil {
				return err
			}
			if found {
				loaded[i] = &user
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(loaded))
	for _, user := range loaded {
		if user != nil {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (s *submissionStore) CreateSubmission(ctx context.Context, input NewSubmission) (models.Submission, error) {
	if input.AIScore == nil {
		return models.Submission{}, models.NewValidationError("ai_score", "is required")
	}
	if !models.ScoreInRange(*input.AIScore) {
		return models.Submission{}, models.NewValidationError("ai_score", "must be between 0 and 100")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return models.Submission{}, models.NewValidationError("user_id", "is required")
	}

	unlock := s.locks.Lock(userKey(input.UserID))
	defer unlock()

	user, err := s.GetUser(ctx, input.UserID)
	if err != nil {
		if isNotFound(err) {
			return models.Submission{}, models.NewValidationError("user_id", "does not reference an existing user")
		}
		return models.Submission{}, err
	}

	submission := models.Submission{
		ID:          s.newID(),
		UserID:      user.ID,
		UserName:    user.FullName,
		Sport:       strings.TrimSpace(input.Sport),
		Subcategory: strings.TrimSpace(input.Subcategory),
		VideoURI:    strings.TrimSpace(input.VideoURI),
		AIScore:     *input.AIScore,
		Metrics:     input.Metrics,
		Status:      models.SubmissionStatusPending,
		SubmittedAt: s.now().UTC(),
	}
	submission = submission.Clone()

	if err := submission.CheckInvariants(); err != nil {
		return models.Submission{}, err
	}

	// The record is written first and only becomes reachable once the owner
	// links it and the index lists it. A failed step undoes the earlier ones.
	if err := s.putJSON(ctx, submissionKey(submission.ID), submission); err != nil {
		return models.Submission{}, err
	}

	owner := user
	owner.SubmissionIDs = append(append([]string{}, user.SubmissionIDs...), submission.ID)
	owner.CurrentStatus = models.UserStatusSubmitted
	owner.UpdatedAt = submission.SubmittedAt
	if err := s.putJSON(ctx, userKey(user.ID), owner); err != nil {
		s.discardSubmission(context.WithoutCancel(ctx), submission.ID)
		return models.Submission{}, err
	}

	if err := s.appendIndex(ctx, submissionIndexKey, submission.ID); err != nil {
		rollbackCtx := context.WithoutCancel(ctx)
		if restoreErr := s.putJSON(rollbackCtx, userKey(user.ID), user); restoreErr != nil {
			s.logger.Error().Err(restoreErr).Str("submission_id", submission.ID).Str("user_id", user.ID).Msg("failed to restore user after aborted submission")
		}
		s.discardSubmission(rollbackCtx, submission.ID)
		return models.Submission{}, err
	}

	return submission, nil
}

func (s *submissionStore) discardSubmission(ctx context.Context, id string) {
	if err := s.kv.Delete(ctx, submissionKey(id)); err != nil {
		s.logger.Error().Err(err).Str("submission_id", id).Msg("failed to discard aborted submission")
	}
}

func (s *submissionStore) GetSubmission(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	found, err := s.getJSON(ctx, submissionKey(id), &submission)
	if err != nil {
		return models.Submission{}, err
	}
	if !found {
		return models.Submission{}, models.NotFoundError("submission", id)
	}
	return submission, nil
}

// ListSubmissions returns matching submissions, most recently submitted first.
// Submissions with the same timestamp keep their insertion order.
func (s *submissionStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	ids, err := s.readIndex(ctx, submissionIndexKey)
	if err != nil {
		return nil, err
	}

	loaded := make([]*models.Submission, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(loadConcurrency)
	for i, id := range ids {
		group.Go(func() error {
			var submission models.Submission
			found, err := s.getJSON(groupCtx, submissionKey(id), &submission)
			if err != nil {
				return err
			}
			if !found {
				s.logger.Warn().Str("submission_id", id).Msg("indexed submission has no record")
				return nil
			}
			loaded[i] = &submission
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	submissions := make([]models.Submission, 0, len(loaded))
	for _, submission := range loaded {
		if submission != nil && filter.matches(*submission) {
			submissions = append(submissions, *submission)
		}
	}

	sort.SliceStable(submissions, func(i, j int) bool {
		return submissions[i].SubmittedAt.After(submissions[j].SubmittedAt)
	})

	return submissions, nil
}

// ApplyReview runs command against the stored submission under its write lock
// and persists the result. A failing command leaves the record untouched.
func (s *submissionStore) ApplyReview(ctx context.Context, id string, command workflow.Command) (models.Submission, error) {
	unlock := s.locks.Lock(submissionKey(id))
	defer unlock()

	current, err := s.GetSubmission(ctx, id)
	if err != nil {
		return models.Submission{}, err
	}

	next, err := command(current.Clone())
	if err != nil {
		return models.Submission{}, err
	}

	if next.ID != current.ID || next.UserID != current.UserID || next.AIScore != current.AIScore || !next.SubmittedAt.Equal(current.SubmittedAt) {
		return models.Submission{}, fmt.Errorf("review command changed immutable fields of submission %s", id)
	}
	if err := next.CheckInvariants(); err != nil {
		return models.Submission{}, err
	}

	if err := s.putJSON(ctx, submissionKey(id), next); err != nil {
		return models.Submission{}, err
	}

	s.logger.Debug().
		Str("submission_id", id).
		Str("from", string(current.Status)).
		Str("to", string(next.Status)).
		Msg("submission transitioned")

	return next, nil
}

func (s *submissionStore) appendIndex(ctx context.Context, key, id string) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids, err := s.readIndex(ctx, key)
	if err != nil {
		return err
	}
	return s.putJSON(ctx, key, append(ids, id))
}

func (s *submissionStore) readIndex(ctx context.Context, key string) ([]string, error) {
	var ids []string
	if _, err := s.getJSON(ctx, key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *submissionStore) getJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *submissionStore) putJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

func submissionKey(id string) string {
	return submissionKeyPrefix + id
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
