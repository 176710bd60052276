package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/handler"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/service"
)

type mockEscalationService struct {
	lastModerator uint
	lastPayload   dto.IssueWarningRequest
	lastActive    bool
	issueResult   dto.IssueWarningResponse
	err           error
}

func (m *mockEscalationService) NextLevel(_ context.Context, userID uint) (dto.NextLevelResponse, error) {
	if m.err != nil {
		return dto.NextLevelResponse{}, m.err
	}
	return dto.NextLevelResponse{UserID: userID, CurrentLevel: models.WarningLevelFirst, NextLevel: models.WarningLevelSecond}, nil
}

func (m *mockEscalationService) IssueWarning(_ context.Context, moderatorID uint, payload dto.IssueWarningRequest) (dto.IssueWarningResponse, error) {
	m.lastModerator = moderatorID
	m.lastPayload = payload
	if m.err != nil {
		return dto.IssueWarningResponse{}, m.err
	}
	return m.issueResult, nil
}

func (m *mockEscalationService) Deactivate(_ context.Context, warningID, moderatorID uint) (dto.WarningResponse, error) {
	m.lastModerator = moderatorID
	if m.err != nil {
		return dto.WarningResponse{}, m.err
	}
	return dto.WarningResponse{ID: warningID}, nil
}

func (m *mockEscalationService) ListForUser(_ context.Context, userID uint, activeOnly bool) ([]dto.WarningResponse, error) {
	m.lastActive = activeOnly
	return []dto.WarningResponse{{ID: 1, UserID: userID, IsActive: true}}, m.err
}

type mockTrustService struct {
	lastReason string
	err        error
}

func (m *mockTrustService) Summary(_ context.Context, userID uint) (dto.TrustSummaryResponse, error) {
	if m.err != nil {
		return dto.TrustSummaryResponse{}, m.err
	}
	return dto.TrustSummaryResponse{UserID: userID, EngagementScore: 42}, nil
}

func (m *mockTrustService) Unban(_ context.Context, userID, _ uint, payload dto.UnbanRequest) (dto.BanStateResponse, error) {
	m.lastReason = payload.Reason
	if m.err != nil {
		return dto.BanStateResponse{}, m.err
	}
	return dto.BanStateResponse{UserID: userID}, nil
}

func newModerationApp(escalation service.EscalationService, trust service.TrustService, userID uint) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/moderation", asUser(userID, models.UserRoleModerator))
	handler.NewModerationHandler(escalation, trust, zerolog.Nop()).Register(group)
	return app
}

func TestModerationHandlerIssueWarning(t *testing.T) {
	expires := time.Now().Add(7 * 24 * time.Hour).UTC()
	svc := &mockEscalationService{issueResult: dto.IssueWarningResponse{
		WarningID: 9,
		UserID:    5,
		Level:     models.WarningLevelTempBan,
		ExpiresAt: &expires,
		IsBanned:  true,
	}}
	app := newModerationApp(svc, &mockTrustService{}, 3)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/moderation/warnings", map[string]interface{}{
		"user_id": 5,
		"reason":  "repeated spam",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)

	var result dto.IssueWarningResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Equal(t, models.WarningLevelTempBan, result.Level)
	require.True(t, result.IsBanned)
	require.Equal(t, uint(3), svc.lastModerator)
	require.Equal(t, uint(5), svc.lastPayload.UserID)
}

func TestModerationHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrUserNotFound, fiber.StatusNotFound},
		{service.ErrNotModerator, fiber.StatusForbidden},
		{service.ErrWarningInactive, fiber.StatusConflict},
		{fmt.Errorf("%w: reason is required", service.ErrValidation), fiber.StatusBadRequest},
		{fmt.Errorf("%w: connection refused", service.ErrStorageUnavailable), fiber.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		app := newModerationApp(&mockEscalationService{err: tc.err}, &mockTrustService{}, 3)
		resp := doJSON(t, app, http.MethodPost, "/api/v1/moderation/warnings/4/deactivate", nil)
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}

func TestModerationHandlerRejectsBadIDs(t *testing.T) {
	app := newModerationApp(&mockEscalationService{}, &mockTrustService{}, 3)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/moderation/users/abc/next-level", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/moderation/users/5/warnings?active=maybe", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestModerationHandlerListsActiveWarnings(t *testing.T) {
	svc := &mockEscalationService{}
	app := newModerationApp(svc, &mockTrustService{}, 3)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/moderation/users/5/warnings?active=true", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.lastActive)
}

func TestModerationHandlerUnban(t *testing.T) {
	trust := &mockTrustService{}
	app := newModerationApp(&mockEscalationService{}, trust, 3)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/moderation/users/5/unban", map[string]string{"reason": "ban issued in error"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "ban issued in error", trust.lastReason)

	trust.err = service.ErrUserNotBanned
	resp = doJSON(t, app, http.MethodPost, "/api/v1/moderation/users/5/unban", map[string]string{"reason": "again"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
