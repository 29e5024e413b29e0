package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/api/http/handlers"
	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/documents"
	"github.com/spec-kit/debtor-registry/internal/events"
	"github.com/spec-kit/debtor-registry/internal/observability"
	"github.com/spec-kit/debtor-registry/internal/repository"
	"github.com/spec-kit/debtor-registry/internal/service"
)

type RouterSuite struct {
	suite.Suite
	app    *fiber.App
	stores repository.Stores
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := zap.NewNop()
	stores, tx := repository.NewMemoryStores()
	s.stores = stores

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "router-test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}}

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: stores.Users})
	workflowService := service.NewWorkflowService(
		config.WorkflowConfig{ReopenAdded: true},
		service.WorkflowDependencies{
			RequestRepo: stores.Requests,
			DebtorRepo:  stores.Debtors,
			Transactor:  tx,
			Dispatcher:  events.NewInMemoryDispatcher(),
			Logger:      logger,
		},
	)
	debtorService := service.NewDebtorService(stores.Debtors, nil, 0, logger)

	documentStore, err := documents.NewStore(config.DocumentsConfig{
		Dir: s.T().TempDir(), MaxSizeMB: 1, PublicPath: "/documents",
	}, logger)
	s.Require().NoError(err)

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("debtor-registry", "test", nil, nil),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(workflowService),
		Admin:          handlers.NewAdminHandler(workflowService, debtorService),
		Debtors:        handlers.NewDebtorsHandler(debtorService),
		Documents:      handlers.NewDocumentsHandler(documentStore),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), stores.Users),
	})
}

func (s *RouterSuite) do(method, path, token string, payload any) (*http.Response, map[string]any) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (s *RouterSuite) registerUser(username string) string {
	resp, body := s.do(http.MethodPost, "/auth/register", "", map[string]any{
		"username":        username,
		"name":            "Test",
		"surname":         "User",
		"age":             30,
		"email":           username + "@example.com",
		"password":        "secret-password",
		"repeat_password": "secret-password",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func (s *RouterSuite) registerOperator(username string) string {
	token := s.registerUser(username)
	// Flip the staff flag directly; there is no public endpoint for it.
	user, err := s.stores.Users.GetByUsername(context.Background(), username)
	s.Require().NoError(err)
	user.IsStaff = true
	s.Require().NoError(s.stores.Users.Update(context.Background(), user))
	return token
}

func (s *RouterSuite) submitRequest(token string) string {
	resp, body := s.do(http.MethodPost, "/requests", token, map[string]any{
		"name":    "Ivan",
		"surname": "Petrov",
		"amount":  "1500,50",
		"address": "Lenina 1",
		"region":  "Moscow Oblast",
		"city":    "Moscow",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	data := body["data"].(map[string]any)
	return data["id"].(string)
}

func (s *RouterSuite) TestHealthLive() {
	resp, body := s.do(http.MethodGet, "/health/live", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("alive", body["status"])
}

func (s *RouterSuite) TestAuthRequired() {
	resp, body := s.do(http.MethodGet, "/requests", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("UNAUTHORIZED", body["error"].(map[string]any)["code"])
}

func (s *RouterSuite) TestValidationDetails() {
	token := s.registerUser("valuser")
	resp, body := s.do(http.MethodPost, "/requests", token, map[string]any{"amount": "x"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	errObj := body["error"].(map[string]any)
	s.Equal("VALIDATION_FAILED", errObj["code"])
	s.Contains(errObj["details"].(map[string]any), "name")
}

func (s *RouterSuite) TestAdminRoutesNeedStaff() {
	token := s.registerUser("plainuser")
	resp, body := s.do(http.MethodPost, "/admin/requests/approve", token, map[string]any{
		"ids": []string{"00000000-0000-4000-8000-000000000000"},
	})
	s.Equal(http.StatusForbidden, resp.StatusCode, body)
}

func (s *RouterSuite) TestSubmitApproveAndPublicListing() {
	userToken := s.registerUser("owner")
	opToken := s.registerOperator("operator")
	requestID := s.submitRequest(userToken)

	// Nothing public before approval.
	resp, body := s.do(http.MethodGet, "/debtors", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.EqualValues(0, body["data"].(map[string]any)["count"])

	resp, body = s.do(http.MethodPost, "/admin/requests/approve", opToken, map[string]any{
		"ids": []string{requestID},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)
	result := body["data"].(map[string]any)
	s.EqualValues(1, result["succeeded"])
	s.EqualValues(0, result["failed"])

	resp, body = s.do(http.MethodGet, "/debtors", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	s.EqualValues(1, data["count"])
	debtor := data["debtors"].([]any)[0].(map[string]any)
	s.Equal("Ivan", debtor["name"])
	s.Equal("1500.50", debtor["amount"])

	// The staging row now reports its promotion to the owner.
	resp, body = s.do(http.MethodGet, fmt.Sprintf("/requests/%s", requestID), userToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("added", body["data"].(map[string]any)["status"])
}

func (s *RouterSuite) TestBulkReportsPerRecordFailures() {
	opToken := s.registerOperator("operator2")
	userToken := s.registerUser("owner2")
	goodID := s.submitRequest(userToken)

	resp, body := s.do(http.MethodPost, "/admin/requests/reject", opToken, map[string]any{
		"ids":    []string{goodID, "11111111-1111-4111-8111-111111111111"},
		"reason": "incomplete data",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)

	data := body["data"].(map[string]any)
	s.EqualValues(1, data["succeeded"])
	s.EqualValues(1, data["failed"])

	results := data["results"].([]any)
	s.Len(results, 2)
	s.True(results[0].(map[string]any)["ok"].(bool))
	s.False(results[1].(map[string]any)["ok"].(bool))
	s.NotEmpty(results[1].(map[string]any)["error"])
}

func (s *RouterSuite) TestOwnerCannotTouchForeignRequest() {
	ownerToken := s.registerUser("owner3")
	strangerToken := s.registerUser("stranger")
	requestID := s.submitRequest(ownerToken)

	resp, body := s.do(http.MethodGet, fmt.Sprintf("/requests/%s", requestID), strangerToken, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode, body)
}
