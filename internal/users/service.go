package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cheongchoi112/ai-fitness-api/internal/ai"
	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/plans"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=users_test

type userRepo interface {
	Get(ctx context.Context, userID string) (*User, error)
	Upsert(ctx context.Context, user User) (*User, error)
	DeleteAccount(ctx context.Context, userID string) (*DeleteResult, error)
}

type planStore interface {
	Get(ctx context.Context, userID string) (*plans.FitnessPlan, error)
	Save(ctx context.Context, userID string, plan json.RawMessage) (*plans.FitnessPlan, error)
}

type planGenerator interface {
	GeneratePlan(ctx context.Context, planRequest ai.PlanRequest) (*ai.WeeklyPlan, error)
}

type planDecorator interface {
	Decorate(ctx context.Context, plan *ai.WeeklyPlan) ai.DecorateStats
}

type ServiceParams struct {
	Users          userRepo
	Plans          planStore
	Generator      planGenerator
	Decorator      planDecorator
	StoreTimeout   time.Duration
	MetricsManager *metrics.Manager
}

type Service struct {
	users          userRepo
	plans          planStore
	generator      planGenerator
	decorator      planDecorator
	storeTimeout   time.Duration
	metricsManager *metrics.Manager
}

func NewService(params ServiceParams) *Service {
	return &Service{
		users:          params.Users,
		plans:          params.Plans,
		generator:      params.Generator,
		decorator:      params.Decorator,
		storeTimeout:   params.StoreTimeout,
		metricsManager: params.MetricsManager,
	}
}

type UserWithPlan struct {
	User             *User
	Plan             *plans.FitnessPlan
	AlreadyOnboarded bool
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Onboard stores the survey answers and generates the first plan.
// A user who already has a profile and a plan gets both back without a new plan.
func (s *Service) Onboard(ctx context.Context, identity *auth.Identity, req OnboardingRequest) (_ *UserWithPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.onboard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if req.UserInfo == nil || req.Profile == nil {
		return nil, pkg.NewValidationError("User info and profile data are required")
	}
	if req.UserInfo.Email == "" {
		return nil, pkg.NewValidationError("Email is required in userInfo")
	}
	if req.UserInfo.Email != identity.Email {
		log.Warnf("onboarding email mismatch for user [%s]: provided [%s], token has [%s]", identity.UserID, req.UserInfo.Email, identity.Email)
		return nil, pkg.NewValidationError("Email in request does not match authenticated user")
	}

	existing, err := s.userWithPlan(ctx, identity.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil && existing.Plan != nil {
		log.Debugf("user [%s] already onboarded", identity.UserID)
		existing.AlreadyOnboarded = true
		return existing, nil
	}

	storeCtx, cancel := s.storeCtx(ctx)
	user, err := s.users.Upsert(storeCtx, User{
		UserID:   identity.UserID,
		Email:    identity.Email,
		UserInfo: *req.UserInfo,
		Profile:  *req.Profile,
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("save user profile: %w", err)
	}

	plan, err := s.generateAndSave(ctx, identity.UserID, user.Profile, "onboarding")
	if err != nil {
		return nil, err
	}

	log.Infof("user [%s] onboarded", identity.UserID)
	return &UserWithPlan{User: user, Plan: plan}, nil
}

// RegeneratePlan replaces the plan document; completed workout days are kept.
func (s *Service) RegeneratePlan(ctx context.Context, identity *auth.Identity) (_ *plans.FitnessPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.regenerate-plan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	storeCtx, cancel := s.storeCtx(ctx)
	user, err := s.users.Get(storeCtx, identity.UserID)
	cancel()
	if err != nil {
		return nil, err
	}
	if user.UserInfo.Email != "" && user.UserInfo.Email != identity.Email {
		log.Warnf("email mismatch for user [%s]: stored [%s], token has [%s]", identity.UserID, user.UserInfo.Email, identity.Email)
	}

	return s.generateAndSave(ctx, identity.UserID, user.Profile, "regenerate")
}

// GetProfile returns the profile with its plan, the plan is nil if none was generated yet.
func (s *Service) GetProfile(ctx context.Context, identity *auth.Identity) (_ *UserWithPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.get-profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	result, err := s.userWithPlan(ctx, identity.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrProfileNotFound
	}
	return result, err
}

func (s *Service) DeleteAccount(ctx context.Context, identity *auth.Identity) (*DeleteResult, error) {
	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()

	result, err := s.users.DeleteAccount(storeCtx, identity.UserID)
	if err != nil {
		return nil, err
	}
	log.Infof("user [%s] account data deleted, plan deleted: %t", identity.UserID, result.PlanDeleted)
	return result, nil
}

func (s *Service) userWithPlan(ctx context.Context, userID string) (*UserWithPlan, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.Get(ctx, userID)
	if err != nil && !errors.Is(err, plans.ErrPlanNotFound) {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	return &UserWithPlan{User: user, Plan: plan}, nil
}

func (s *Service) generateAndSave(ctx context.Context, userID string, profile Profile, reason string) (*plans.FitnessPlan, error) {
	start := time.Now()
	weeklyPlan, err := s.generator.GeneratePlan(ctx, FormatForAI(profile))
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	s.metricsManager.HistPlanGenerationDuration.Observe(time.Since(start).Seconds())

	stats := s.decorator.Decorate(ctx, weeklyPlan)
	if stats.Failed > 0 {
		log.Warnf("plan for user [%s]: %d of %d images failed", userID, stats.Failed, stats.Total)
	}

	planJson, err := json.Marshal(weeklyPlan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	saved, err := s.plans.Save(storeCtx, userID, planJson)
	if err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.metricsManager.CounterPlansGenerated.WithLabelValues(reason).Inc()
	return saved, nil
}
