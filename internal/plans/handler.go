package plans

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const maxEchoBodyBytes = 1 << 20

type MarkWorkoutRequest struct {
	Date string `json:"date"`
}

type MarkWorkoutResponse struct {
	Message     string       `json:"message"`
	Date        time.Time    `json:"date"`
	Completed   bool         `json:"completed"`
	FitnessPlan *FitnessPlan `json:"fitnessPlan"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleMarkWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitness.mark-workout")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req MarkWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("mark workout, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "Date is required", http.StatusBadRequest)
		return
	}

	date, _, err := pkg.ParseDate(req.Date)
	if err != nil {
		pkg.WriteErr(w, err, "")
		return
	}

	result, err := handler.service.ToggleCompletion(ctx, identity.UserID, date)
	if err != nil {
		if !errors.Is(err, pkg.ErrNotFound) {
			log.Errorf("toggle workout completion for user [%s]: %s", identity.UserID, err)
		}
		pkg.WriteErr(w, err, "Failed to update workout completion status")
		return
	}

	message := "Workout marked as incomplete"
	if result.Completed {
		message = "Workout marked as complete"
	}
	pkg.WriteJSON(w, MarkWorkoutResponse{
		Message:     message,
		Date:        result.Date,
		Completed:   result.Completed,
		FitnessPlan: result.Plan,
	}, http.StatusOK)
}

// HandleEcho answers with the JSON body it received.
func (handler *Handler) HandleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEchoBodyBytes))
	if err != nil {
		log.Errorf("echo, read body: %s", err)
		pkg.WriteJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		pkg.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, body, http.StatusOK)
}
