package progress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

type EntryResponse[T any] struct {
	Message string `json:"message"`
	Entry   *T     `json:"entry,omitempty"`
}

type WorkoutHistoryResponse struct {
	WorkoutHistory []WorkoutEntry `json:"workoutHistory"`
}

type WeightHistoryResponse struct {
	WeightHistory []WeightEntry `json:"weightHistory"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the progress routes on a router already behind the auth middleware.
func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleGetProgress).Methods("GET", "OPTIONS")
	router.HandleFunc("/workout", handler.HandleAddWorkout).Methods("POST", "OPTIONS")
	router.HandleFunc("/workout/{entryId}", handler.HandleUpdateWorkout).Methods("PUT", "OPTIONS")
	router.HandleFunc("/workout/{entryId}", handler.HandleDeleteWorkout).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/workout-history", handler.HandleWorkoutHistory).Methods("GET", "OPTIONS")
	router.HandleFunc("/weight", handler.HandleAddWeight).Methods("POST", "OPTIONS")
	router.HandleFunc("/weight/{entryId}", handler.HandleUpdateWeight).Methods("PUT", "OPTIONS")
	router.HandleFunc("/weight/{entryId}", handler.HandleDeleteWeight).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/weight-history", handler.HandleWeightHistory).Methods("GET", "OPTIONS")
}

func (handler *Handler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.get")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dateRange, err := dateRangeFromQuery(r)
	if err != nil {
		pkg.WriteErr(w, err, "")
		return
	}

	result, err := handler.service.GetUserProgress(ctx, identity.UserID, dateRange)
	if err != nil {
		if !errors.Is(err, pkg.ErrNotFound) {
			log.Errorf("get progress for user [%s]: %s", identity.UserID, err)
		}
		pkg.WriteErr(w, err, "Failed to retrieve progress data")
		return
	}

	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) HandleAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.workout.add")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req WorkoutEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add workout, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "Workout date is required", http.StatusBadRequest)
		return
	}

	entry, err := handler.service.AddWorkout(ctx, identity.UserID, req)
	if err != nil {
		logUnexpected(err, "add workout entry for user [%s]: %s", identity.UserID)
		pkg.WriteErr(w, err, "Failed to create workout entry")
		return
	}

	pkg.WriteJSON(w, EntryResponse[WorkoutEntry]{
		Message: "Workout entry created successfully",
		Entry:   entry,
	}, http.StatusCreated)
}

func (handler *Handler) HandleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.workout.update")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	entryID := mux.Vars(r)["entryId"]
	span.SetAttributes(attribute.String("entry.id", entryID))

	var req WorkoutEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update workout, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "No update data provided", http.StatusBadRequest)
		return
	}

	entry, err := handler.service.UpdateWorkout(ctx, identity.UserID, entryID, req)
	if err != nil {
		logUnexpected(err, "update workout entry for user [%s]: %s", identity.UserID)
		pkg.WriteErr(w, err, "Failed to update workout entry")
		return
	}

	pkg.WriteJSON(w, EntryResponse[WorkoutEntry]{
		Message: "Workout entry updated successfully",
		Entry:   entry,
	}, http.StatusOK)
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.workout.delete")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	entryID := mux.Vars(r)["entryId"]
	span.SetAttributes(attribute.String("entry.id", entryID))

	if err := handler.service.DeleteWorkout(ctx, identity.UserID, entryID); err != nil {
		logUnexpected(err, "delete workout entry for user [%s]: %s", identity.UserID)
		pkg.WriteErr(w, err, "Failed to delete workout entry")
		return
	}

	pkg.WriteJSON(w, EntryResponse[WorkoutEntry]{
		Message: "Workout entry deleted successfully",
	}, http.StatusOK)
}

func (handler *Handler) HandleWorkoutHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.workout.history")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dateRange, err := dateRangeFromQuery(r)
	if err != nil {
		pkg.WriteErr(w, err, "")
		return
	}

	history, err := handler.service.WorkoutHistory(ctx, identity.UserID, dateRange)
	if err != nil {
		log.Errorf("get workout history for user [%s]: %s", identity.UserID, err)
		pkg.WriteErr(w, err, "Failed to retrieve workout history")
		return
	}

	pkg.WriteJSON(w, WorkoutHistoryResponse{WorkoutHistory: history}, http.StatusOK)
}

func (handler *Handler) HandleAddWeight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.weight.add")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req WeightEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add weight, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "Date and weight are required", http.StatusBadRequest)
		return
	}

	entry, err := handler.service.AddWeight(ctx, identity.UserID, req)
	if err != nil {
		logUnexpected(err, "add weight entry for user [%s]: %s", identity.UserID)
		pkg.WriteErr(w, err, "Failed to create weight entry")
		return
	}

	pkg.WriteJSON(w, EntryResponse[WeightEntry]{
		Message: "Weight entry created successfully",
		Entry:   entry,
	}, http.StatusCreated)
}

func (handler *Handler) HandleUpdateWeight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.weight.update")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	entryID := mux.Vars(r)["entryId"]
	span.SetAttributes(attribute.String("entry.id", entryID))

	var req WeightEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update weight, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "No update data provided", http.StatusBadRequest)
		return
	}

	entry, err := handler.service.UpdateWeight(ctx, identity.UserID, entryID, req)
	if err != nil {
		logUnexpected(err, "update weight entry for user [%s]: %s", identity.UserID)
		pkg.WriteErr(w, err, "Failed to update weight entry")
		return
	}

	pkg.WriteJSON(w, EntryResponse[WeightEntry]{
		Message: "Weight entry updated successfully",
		Entry:   entry,
	}, http.StatusOK)
}

func (handler *Handler) HandleDeleteWeight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.weight.delete")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	entryID := mux.Vars(r)["entryId"]
	span.SetAttributes(attribute.String("entry.id", entryID))

	if err := handler.service.DeleteWeight(ctx, identity.UserID, entryID); err != nil {
		logUnexpected(err, "delete weight entry for user [%s]: %s", identity.UserID)
		pkg.WriteErr(w, err, "Failed to delete weight entry")
		return
	}

	pkg.WriteJSON(w, EntryResponse[WeightEntry]{
		Message: "Weight entry deleted successfully",
	}, http.StatusOK)
}

func (handler *Handler) HandleWeightHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.weight.history")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dateRange, err := dateRangeFromQuery(r)
	if err != nil {
		pkg.WriteErr(w, err, "")
		return
	}

	history, err := handler.service.WeightHistory(ctx, identity.UserID, dateRange)
	if err != nil {
		log.Errorf("get weight history for user [%s]: %s", identity.UserID, err)
		pkg.WriteErr(w, err, "Failed to retrieve weight history")
		return
	}

	pkg.WriteJSON(w, WeightHistoryResponse{WeightHistory: history}, http.StatusOK)
}

func dateRangeFromQuery(r *http.Request) (DateRange, error) {
	query := r.URL.Query()
	return NewDateRange(query.Get("startDate"), query.Get("endDate"))
}

// logUnexpected skips caller errors (validation, not found), those are answered and forgotten.
func logUnexpected(err error, format, userID string) {
	if errors.Is(err, pkg.ErrValidation) || errors.Is(err, pkg.ErrNotFound) {
		log.Tracef(format, userID, err)
		return
	}
	log.Errorf(format, userID, err)
}
