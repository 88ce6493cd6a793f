package plans

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=plans_test

type planRepo interface {
	ToggleCompletion(ctx context.Context, userID string, day time.Time) (*FitnessPlan, bool, error)
}

type Service struct {
	repo           planRepo
	storeTimeout   time.Duration
	metricsManager *metrics.Manager
}

func NewService(repo planRepo, storeTimeout time.Duration, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		storeTimeout:   storeTimeout,
		metricsManager: metricsManager,
	}
}

// ToggleCompletion flips the completion state of date's UTC calendar day.
// Toggling the same day twice restores the original set.
func (s *Service) ToggleCompletion(ctx context.Context, userID string, date time.Time) (_ *ToggleResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.toggle")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if date.IsZero() {
		return nil, pkg.NewValidationError("Date is required")
	}
	day := pkg.Day(date)

	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	plan, completed, err := s.repo.ToggleCompletion(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	state := "unmarked"
	if completed {
		state = "marked"
	}
	s.metricsManager.CounterWorkoutToggles.WithLabelValues(state).Inc()
	log.Debugf("workout day [%s] %s for user [%s]", day.Format(pkg.DateLayout), state, userID)

	return &ToggleResult{
		Plan:      plan,
		Date:      day,
		Completed: completed,
	}, nil
}
