package users

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/cheongchoi112/ai-fitness-api/internal/ai"
	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/plans"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

type UserResponse struct {
	Message     string             `json:"message,omitempty"`
	User        *User              `json:"user"`
	FitnessPlan *plans.FitnessPlan `json:"fitnessPlan"`
}

type RegeneratePlanResponse struct {
	Message     string             `json:"message"`
	FitnessPlan *plans.FitnessPlan `json:"fitnessPlan"`
}

type DeleteAccountResponse struct {
	Message string `json:"message"`
	DeleteResult
}

type UnparsablePlanResponse struct {
	Error       string `json:"error"`
	RawResponse string `json:"rawResponse"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.onboarding")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("onboarding, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "User info and profile data are required", http.StatusBadRequest)
		return
	}

	result, err := handler.service.Onboard(ctx, identity, req)
	if err != nil {
		handler.writePlanErr(w, identity.UserID, err, "Failed to complete user onboarding")
		return
	}

	if result.AlreadyOnboarded {
		pkg.WriteJSON(w, UserResponse{
			Message:     "User already onboarded",
			User:        result.User,
			FitnessPlan: result.Plan,
		}, http.StatusOK)
		return
	}

	pkg.WriteJSON(w, UserResponse{
		Message:     "User onboarded successfully",
		User:        result.User,
		FitnessPlan: result.Plan,
	}, http.StatusCreated)
}

func (handler *Handler) HandleRegeneratePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.regenerate-plan")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plan, err := handler.service.RegeneratePlan(ctx, identity)
	if err != nil {
		handler.writePlanErr(w, identity.UserID, err, "Failed to regenerate fitness plan")
		return
	}

	pkg.WriteJSON(w, RegeneratePlanResponse{
		Message:     "Fitness plan regenerated successfully",
		FitnessPlan: plan,
	}, http.StatusOK)
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get-profile")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := handler.service.GetProfile(ctx, identity)
	if err != nil {
		if !errors.Is(err, pkg.ErrNotFound) {
			log.Errorf("get profile for user [%s]: %s", identity.UserID, err)
		}
		pkg.WriteErr(w, err, "Failed to retrieve user profile")
		return
	}

	pkg.WriteJSON(w, UserResponse{
		User:        result.User,
		FitnessPlan: result.Plan,
	}, http.StatusOK)
}

func (handler *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.delete")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := handler.service.DeleteAccount(ctx, identity)
	if err != nil {
		if !errors.Is(err, pkg.ErrNotFound) {
			log.Errorf("delete account of user [%s]: %s", identity.UserID, err)
		}
		pkg.WriteErr(w, err, "Failed to delete user account data")
		return
	}

	pkg.WriteJSON(w, DeleteAccountResponse{
		Message:      "User account data deleted successfully",
		DeleteResult: *result,
	}, http.StatusOK)
}

// writePlanErr answers generator output that is not a plan with a preview of that output.
func (handler *Handler) writePlanErr(w http.ResponseWriter, userID string, err error, fallback string) {
	var unparsableErr *ai.UnparsablePlanError
	if errors.As(err, &unparsableErr) {
		log.Errorf("plan for user [%s] could not be parsed: %s", userID, err)
		pkg.WriteJSON(w, UnparsablePlanResponse{
			Error:       "Failed to parse generated fitness plan",
			RawResponse: unparsableErr.RawPreview,
		}, http.StatusInternalServerError)
		return
	}

	if !errors.Is(err, pkg.ErrNotFound) && !errors.Is(err, pkg.ErrValidation) {
		log.Errorf("user [%s]: %s", userID, err)
	}
	pkg.WriteErr(w, err, fallback)
}
