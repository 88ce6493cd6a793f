package users_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cheongchoi112/ai-fitness-api/internal/ai"
	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/plans"
	"github.com/cheongchoi112/ai-fitness-api/internal/users"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(auth.WithIdentity(req.Context(), testIdentity))
}

const onboardingBody = `{
	"userInfo": {"email": "jane@example.com", "firstName": "Jane"},
	"profile": {"fitnessGoals": ["Lose weight"], "currentWeight": "200", "desiredWeight": 180}
}`

func TestHandler_HandleOnboarding(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(nil, users.ErrUserNotFound)
	deps.users.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(testUser(), nil)
	deps.expectGeneration(t)

	rec := httptest.NewRecorder()
	handler.HandleOnboarding(rec, authedRequest("POST", "/api/users/onboarding", onboardingBody))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Message     string             `json:"message"`
		User        *users.User        `json:"user"`
		FitnessPlan *plans.FitnessPlan `json:"fitnessPlan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User onboarded successfully", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, testUserID, resp.User.UserID)
	assert.Equal(t, 180.0, resp.User.Profile.DesiredWeight.Value)
	require.NotNil(t, resp.FitnessPlan)
	assert.Contains(t, string(resp.FitnessPlan.Plan), `"general_notes":"stay hydrated"`)
}

func TestHandler_HandleOnboarding_AlreadyOnboarded(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(testUser(), nil)
	deps.plans.EXPECT().Get(gomock.Any(), testUserID).Return(testFitnessPlan(json.RawMessage(`{"weekly_plan":{}}`)), nil)

	rec := httptest.NewRecorder()
	handler.HandleOnboarding(rec, authedRequest("POST", "/api/users/onboarding", onboardingBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"User already onboarded"`)
}

func TestHandler_HandleOnboarding_BadRequests(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	testCases := []struct {
		name          string
		body          string
		expectedError string
	}{
		{"invalid json", `{"userInfo":`, "User info and profile data are required"},
		{"missing profile", `{"userInfo":{"email":"jane@example.com"}}`, "User info and profile data are required"},
		{"missing email", `{"userInfo":{},"profile":{}}`, "Email is required in userInfo"},
		{"email mismatch", `{"userInfo":{"email":"bob@example.com"},"profile":{}}`, "Email in request does not match authenticated user"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.HandleOnboarding(rec, authedRequest("POST", "/api/users/onboarding", tc.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tc.expectedError+`"}`, rec.Body.String())
		})
	}
}

func TestHandler_HandleOnboarding_UnparsablePlan(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(nil, users.ErrUserNotFound)
	deps.users.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(testUser(), nil)
	deps.generator.EXPECT().
		GeneratePlan(gomock.Any(), gomock.Any()).
		Return(nil, &ai.UnparsablePlanError{RawPreview: "Sure! Here is...", Err: errors.New("invalid character 'S'")})

	rec := httptest.NewRecorder()
	handler.HandleOnboarding(rec, authedRequest("POST", "/api/users/onboarding", onboardingBody))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to parse generated fitness plan","rawResponse":"Sure! Here is..."}`, rec.Body.String())
}

func TestHandler_HandleOnboarding_Unauthorized(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	rec := httptest.NewRecorder()
	handler.HandleOnboarding(rec, httptest.NewRequest("POST", "/api/users/onboarding", strings.NewReader(onboardingBody)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_HandleRegeneratePlan(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(testUser(), nil)
	deps.expectGeneration(t)

	rec := httptest.NewRecorder()
	handler.HandleRegeneratePlan(rec, authedRequest("POST", "/api/users/regenerate-plan", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Fitness plan regenerated successfully"`)
	assert.Contains(t, rec.Body.String(), `"fitnessPlan":{`)
}

func TestHandler_HandleRegeneratePlan_Failures(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(nil, users.ErrUserNotFound)
	rec := httptest.NewRecorder()
	handler.HandleRegeneratePlan(rec, authedRequest("POST", "/api/users/regenerate-plan", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(testUser(), nil)
	deps.generator.EXPECT().
		GeneratePlan(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("all models failed: gemini-2.0-flash: model unavailable"))
	rec = httptest.NewRecorder()
	handler.HandleRegeneratePlan(rec, authedRequest("POST", "/api/users/regenerate-plan", ""))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to regenerate fitness plan"}`, rec.Body.String())
}

func TestHandler_HandleGetProfile(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(testUser(), nil)
	deps.plans.EXPECT().Get(gomock.Any(), testUserID).Return(nil, plans.ErrPlanNotFound)

	rec := httptest.NewRecorder()
	handler.HandleGetProfile(rec, authedRequest("GET", "/api/users/profile", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fitnessPlan":null`)
	assert.Contains(t, rec.Body.String(), `"userId":"firebase-uid-1"`)
	assert.NotContains(t, rec.Body.String(), `"message"`)

	deps.users.EXPECT().Get(gomock.Any(), testUserID).Return(nil, users.ErrUserNotFound)
	rec = httptest.NewRecorder()
	handler.HandleGetProfile(rec, authedRequest("GET", "/api/users/profile", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User profile not found"}`, rec.Body.String())
}

func TestHandler_HandleDeleteAccount(t *testing.T) {
	deps := newServiceDeps(t)
	handler := users.NewHandler(deps.service)

	deps.users.EXPECT().
		DeleteAccount(gomock.Any(), testUserID).
		Return(&users.DeleteResult{UserDeleted: true, PlanDeleted: false}, nil)

	rec := httptest.NewRecorder()
	handler.HandleDeleteAccount(rec, authedRequest("DELETE", "/api/users/delete", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User account data deleted successfully","userDeleted":true,"planDeleted":false}`, rec.Body.String())

	deps.users.EXPECT().DeleteAccount(gomock.Any(), testUserID).Return(nil, users.ErrUserNotFound)
	rec = httptest.NewRecorder()
	handler.HandleDeleteAccount(rec, authedRequest("DELETE", "/api/users/delete", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
