package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/handler"
	"github.com/noah-isme/gema-trust-api/internal/service"
)

type mockBadgeService struct {
	lastEvent string
	awarded   []string
}

func (m *mockBadgeService) OnEvent(_ context.Context, _ uint, event string) ([]string, error) {
	m.lastEvent = event
	if _, ok := service.ParseBadgeEvent(event); !ok {
		return nil, service.ErrUnknownBadgeEvent
	}
	return m.awarded, nil
}

func (m *mockBadgeService) CheckAllRules(context.Context, uint) []string {
	return m.awarded
}

func (m *mockBadgeService) ListUserBadges(context.Context, uint) ([]dto.UserBadgeResponse, error) {
	return []dto.UserBadgeResponse{{BadgeID: "first_post"}}, nil
}

func (m *mockBadgeService) Catalog() []dto.BadgeRuleResponse {
	return []dto.BadgeRuleResponse{{ID: "first_post", Event: "post_created"}}
}

func newBadgeApp(svc service.BadgeService) *fiber.App {
	app := fiber.New()
	h := handler.NewBadgeHandler(svc, validator.New(), zerolog.Nop())
	h.Register(app.Group("/api/v1"))
	h.RegisterInternal(app.Group("/api/v1/internal"))
	return app
}

func TestBadgeHandlerEvent(t *testing.T) {
	svc := &mockBadgeService{awarded: []string{"first_post"}}
	app := newBadgeApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/internal/badges/events", map[string]interface{}{"user_id": 4, "event": "post_created"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	var result dto.BadgeEventResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Equal(t, []string{"first_post"}, result.Awarded)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/internal/badges/events", map[string]interface{}{"user_id": 4, "event": "post_deleted"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/internal/badges/events", map[string]interface{}{"event": "post_created"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBadgeHandlerPublicRoutes(t *testing.T) {
	app := newBadgeApp(&mockBadgeService{awarded: []string{}})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/badges", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/users/4/badges", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/internal/badges/backfill/4", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
