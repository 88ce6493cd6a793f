package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=progress_test

type progressRepo interface {
	WeightHistory(ctx context.Context, userID string, dateRange DateRange) ([]WeightEntry, error)
	AddWeight(ctx context.Context, entry WeightEntry) (*WeightEntry, error)
	UpdateWeight(ctx context.Context, userID, entryID string, update WeightUpdate) (*WeightEntry, error)
	DeleteWeight(ctx context.Context, userID, entryID string) error
	WorkoutHistory(ctx context.Context, userID string, dateRange DateRange) ([]WorkoutEntry, error)
	AddWorkout(ctx context.Context, entry WorkoutEntry) (*WorkoutEntry, error)
	UpdateWorkout(ctx context.Context, userID, entryID string, update WorkoutUpdate) (*WorkoutEntry, error)
	DeleteWorkout(ctx context.Context, userID, entryID string) error
}

// profileReader returns the goal weight from the user's profile (nil when not set).
// A missing profile is reported with an error matching pkg.ErrNotFound.
type profileReader interface {
	GoalWeight(ctx context.Context, userID string) (*float64, error)
}

type WeightData struct {
	History []WeightEntry `json:"history"`
	Metrics WeightMetrics `json:"metrics"`
}

type WorkoutData struct {
	History []WorkoutEntry `json:"history"`
	Metrics WorkoutMetrics `json:"metrics"`
}

type AggregateResult struct {
	WeightData  WeightData  `json:"weightData"`
	WorkoutData WorkoutData `json:"workoutData"`
	DateRange   DateRange   `json:"dateRange"`
}

type Service struct {
	repo           progressRepo
	profiles       profileReader
	storeTimeout   time.Duration
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo progressRepo, profiles profileReader, storeTimeout time.Duration, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		profiles:       profiles,
		storeTimeout:   storeTimeout,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (s *Service) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// GetUserProgress loads both histories for the range and computes their metrics.
func (s *Service) GetUserProgress(ctx context.Context, userID string, dateRange DateRange) (_ *AggregateResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.aggregate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))
	span.SetAttributes(attribute.Bool("all-time", dateRange.IsAllTime()))

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	goalWeight, err := s.profiles.GoalWeight(ctx, userID)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal weight: %w", err)
	}

	var (
		weightHistory  []WeightEntry
		workoutHistory []WorkoutEntry
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		weightHistory, err = s.repo.WeightHistory(gCtx, userID, dateRange)
		if err != nil {
			return fmt.Errorf("weight history: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		workoutHistory, err = s.repo.WorkoutHistory(gCtx, userID, dateRange)
		if err != nil {
			return fmt.Errorf("workout history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weightMetrics, err := ComputeWeightMetrics(weightHistory, goalWeight)
	if err != nil {
		return nil, err
	}
	workoutMetrics, err := ComputeWorkoutMetrics(workoutHistory)
	if err != nil {
		return nil, err
	}

	return &AggregateResult{
		WeightData: WeightData{
			History: nonNil(weightHistory),
			Metrics: weightMetrics,
		},
		WorkoutData: WorkoutData{
			History: nonNil(workoutHistory),
			Metrics: workoutMetrics,
		},
		DateRange: dateRange,
	}, nil
}

func (s *Service) WeightHistory(ctx context.Context, userID string, dateRange DateRange) ([]WeightEntry, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	entries, err := s.repo.WeightHistory(ctx, userID, dateRange)
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

func (s *Service) AddWeight(ctx context.Context, userID string, req WeightEntryRequest) (*WeightEntry, error) {
	entry, err := req.toEntry(userID)
	if err != nil {
		return nil, err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	added, err := s.repo.AddWeight(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.metricsManager.CounterProgressEntries.WithLabelValues("weight").Inc()
	log.Debugf("weight entry [%s] added for user [%s]", added.ID, userID)
	return added, nil
}

func (s *Service) UpdateWeight(ctx context.Context, userID, entryID string, req WeightEntryRequest) (*WeightEntry, error) {
	update, err := req.toUpdate()
	if err != nil {
		return nil, err
	}
	if !validEntryID(entryID) {
		return nil, ErrWeightEntryNotFound
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	return s.repo.UpdateWeight(ctx, userID, entryID, update)
}

func (s *Service) DeleteWeight(ctx context.Context, userID, entryID string) error {
	if !validEntryID(entryID) {
		return ErrWeightEntryNotFound
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	return s.repo.DeleteWeight(ctx, userID, entryID)
}

func (s *Service) WorkoutHistory(ctx context.Context, userID string, dateRange DateRange) ([]WorkoutEntry, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	entries, err := s.repo.WorkoutHistory(ctx, userID, dateRange)
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

func (s *Service) AddWorkout(ctx context.Context, userID string, req WorkoutEntryRequest) (*WorkoutEntry, error) {
	entry, err := req.toEntry(userID)
	if err != nil {
		return nil, err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	added, err := s.repo.AddWorkout(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.metricsManager.CounterProgressEntries.WithLabelValues("workout").Inc()
	log.Debugf("workout entry [%s] added for user [%s]", added.ID, userID)
	return added, nil
}

func (s *Service) UpdateWorkout(ctx context.Context, userID, entryID string, req WorkoutEntryRequest) (*WorkoutEntry, error) {
	update, err := req.toUpdate()
	if err != nil {
		return nil, err
	}
	if !validEntryID(entryID) {
		return nil, ErrWorkoutEntryNotFound
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	return s.repo.UpdateWorkout(ctx, userID, entryID, update)
}

func (s *Service) DeleteWorkout(ctx context.Context, userID, entryID string) error {
	if !validEntryID(entryID) {
		return ErrWorkoutEntryNotFound
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	return s.repo.DeleteWorkout(ctx, userID, entryID)
}

// ids are generated as UUIDs, anything else cannot exist in the store
func validEntryID(entryID string) bool {
	return uuid.Validate(entryID) == nil
}

func nonNil[T any](entries []T) []T {
	if entries == nil {
		return []T{}
	}
	return entries
}
