package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/handler"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/service"
)

func compileContract(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func validateContract(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload), string(body))
}

type pagedTrailService struct {
	*mockTrailService
	page dto.ActionTrailListResponse
}

func (s *pagedTrailService) Query(context.Context, dto.ActionTrailQuery) (dto.ActionTrailListResponse, error) {
	return s.page, nil
}

func TestIssueWarningContract(t *testing.T) {
	schema := compileContract(t, "issue_warning.schema.json")

	expires := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	results := []dto.IssueWarningResponse{
		{WarningID: 1, UserID: 5, Level: models.WarningLevelFirst},
		{WarningID: 3, UserID: 5, Level: models.WarningLevelTempBan, ExpiresAt: &expires, IsBanned: true},
		{WarningID: 4, UserID: 5, Level: models.WarningLevelPermBan, IsBanned: true},
	}

	for _, result := range results {
		app := newModerationApp(&mockEscalationService{issueResult: result}, &mockTrustService{}, 3)
		resp := doJSON(t, app, http.MethodPost, "/api/v1/moderation/warnings", map[string]interface{}{
			"user_id": 5,
			"reason":  "repeated spam",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		validateContract(t, schema, resp)
	}
}

func TestResolveAppealContract(t *testing.T) {
	schema := compileContract(t, "appeal_resolution.schema.json")

	app := fiber.New()
	handler.NewAppealHandler(&mockAppealService{}, zerolog.Nop()).RegisterModeration(app.Group("/api/v1/moderation", asUser(2, models.UserRoleAdmin)))

	for _, status := range []string{"approved", "rejected"} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/moderation/appeals/3/resolve", map[string]string{
			"status":         status,
			"admin_response": "reviewed",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		validateContract(t, schema, resp)
	}
}

func TestQueryTrailContract(t *testing.T) {
	schema := compileContract(t, "trail_list.schema.json")

	svc := &pagedTrailService{
		mockTrailService: &mockTrailService{},
		page: dto.ActionTrailListResponse{
			Items: []dto.ActionTrailEntryResponse{
				{
					ID:          12,
					Action:      models.TrailActionBanUser,
					EntityType:  models.TrailEntityUser,
					EntityID:    5,
					ActorUserID: 3,
					Details:     map[string]interface{}{"level": "temp_ban", "warning_id": 3},
					CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				},
				{
					ID:          11,
					Action:      models.TrailActionIssueWarning,
					EntityType:  models.TrailEntityWarning,
					EntityID:    3,
					ActorUserID: 3,
					Details:     map[string]interface{}{},
					CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				},
			},
			Pagination: dto.NewPaginationMeta(1, 25, 2),
		},
	}
	app := newTrailApp(svc)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/moderation/trail?entity_id=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateContract(t, schema, resp)
}

func TestErrorEnvelopeContract(t *testing.T) {
	schema := compileContract(t, "error.schema.json")

	app := newModerationApp(&mockEscalationService{err: service.ErrWarningInactive}, &mockTrustService{}, 3)
	resp := doJSON(t, app, http.MethodPost, "/api/v1/moderation/warnings/4/deactivate", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	validateContract(t, schema, resp)

	resp = doJSON(t, newTrailApp(&mockTrailService{}), http.MethodGet, "/api/v1/moderation/trail?from=yesterday", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	validateContract(t, schema, resp)
}
