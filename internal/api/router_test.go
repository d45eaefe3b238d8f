package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
	"github.com/smartcity/complaints-api/internal/core/service"
	"github.com/smartcity/complaints-api/internal/infrastructure/http/handlers"
)

// routerIdentity resolves callers from a fixed set of users. Embedded
// interfaces panic when an unexpected method is reached.
type routerIdentity struct {
	ports.IdentityService
	users map[string]*domain.User
}

func (r *routerIdentity) Resolve(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || !u.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

func (r *routerIdentity) ListManagedUsers(_ context.Context, admin *domain.User) ([]*domain.User, error) {
	return []*domain.User{r.users["emp-1"]}, nil
}

type routerCases struct {
	ports.CaseService
}

func (routerCases) ListCases(_ context.Context, caller *domain.User, _ ports.ListCasesInput) (*ports.ListCasesResult, error) {
	return &ports.ListCasesResult{Page: 1, Limit: 20}, nil
}

func (routerCases) GetCase(_ context.Context, _ *domain.User, id string) (*domain.Case, error) {
	if id == "boom" {
		return nil, errors.New("mongo: connection reset")
	}
	return nil, domain.ErrCaseNotFound
}

type routerAuth struct {
	ports.AuthService
}

type routerFixture struct {
	e      *echo.Echo
	tokens *service.TokenService
	users  map[string]*domain.User
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	users := map[string]*domain.User{
		"cit-1": {ID: "cit-1", Role: domain.RoleCitizen, City: "Ahmedabad", IsActive: true},
		"emp-1": {ID: "emp-1", Role: domain.RoleEmployee, AdminID: "adm-1", IsActive: true},
		"adm-1": {ID: "adm-1", Role: domain.RoleAdmin, City: "Ahmedabad", IsActive: true},
	}
	tokens := service.NewTokenService("router-secret", time.Hour)
	e := NewRouter(Dependencies{
		Auth:     routerAuth{},
		Identity: &routerIdentity{users: users},
		Cases:    routerCases{},
		Tokens:   tokens,
		TokenTTL: time.Hour,
		Readiness: map[string]handlers.Check{
			"mongo": func(context.Context) error { return nil },
		},
		Logger:   zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
	return &routerFixture{e: e, tokens: tokens, users: users}
}

func (f *routerFixture) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		token, err := f.tokens.Issue(f.users[userID])
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/api/v1/cases", "/api/v1/user/me", "/api/v1/admin/users"} {
		rec := f.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, errorResponse{Error: "unauthenticated", Kind: domain.KindUnauthenticated}, decodeError(t, rec), path)
		assert.NotContains(t, rec.Body.String(), "items", path)
	}
}

func TestRouter_BadTokenLooksLikeMissingToken(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decodeError(t, rec).Error)
}

func TestRouter_RoleGates(t *testing.T) {
	f := newRouterFixture(t)

	cases := []struct {
		name, method, path, user string
		want                     int
	}{
		{"employee on admin route", http.MethodGet, "/api/v1/admin/users", "emp-1", http.StatusForbidden},
		{"citizen on admin route", http.MethodGet, "/api/v1/admin/users", "cit-1", http.StatusForbidden},
		{"admin on admin route", http.MethodGet, "/api/v1/admin/users", "adm-1", http.StatusOK},
		{"employee filing a case", http.MethodPost, "/api/v1/cases", "emp-1", http.StatusForbidden},
		{"citizen changing status", http.MethodPatch, "/api/v1/cases/x/status", "cit-1", http.StatusForbidden},
		{"citizen listing cases", http.MethodGet, "/api/v1/cases", "cit-1", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, tc.method, tc.path, tc.user, "")
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, domain.KindForbidden, decodeError(t, rec).Kind)
			}
		})
	}
}

func TestRouter_DeactivatedUserIsUnauthenticated(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/user/me", "cit-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f.users["cit-1"].IsActive = false
	rec = f.do(t, http.MethodGet, "/api/v1/user/me", "cit-1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cases/missing", "cit-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.KindNotFound, decodeError(t, rec).Kind)

	rec = f.do(t, http.MethodGet, "/api/v1/cases/boom", "cit-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal server error", body.Error)
	assert.NotContains(t, rec.Body.String(), "mongo")

	rec = f.do(t, http.MethodGet, "/api/v1/cases?status=closed", "cit-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.KindInvalidRequest, decodeError(t, rec).Kind)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/ready", "", "").Code)

	rec := f.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/login", "", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
