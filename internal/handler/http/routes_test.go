package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avetrov/go-idm-core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ProtectedRoutesRequireToken(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{})
	router := h.Init()

	protected := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/users/logout"},
		{http.MethodGet, "/api/user/42"},
		{http.MethodPatch, "/api/user/42"},
	}

	for _, route := range protected {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.target, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestInit_UnknownRoute(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInit_AssignsTraceID(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{
		requestPasswordResetFn: func(_ context.Context, _ string) error { return nil },
	})

	req := httptest.NewRequest(http.MethodPost, "/api/users/reset-password/init", nil)
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}

func TestInit_PropagatesIncomingTraceID(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{
		resendWelcomeEmailFn: func(_ context.Context, _ string) error { return nil },
	})

	req := httptest.NewRequest(http.MethodPost, "/api/users/resend-email/init", nil)
	req.Header.Set(traceIDHeader, "trace-from-gateway")
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, "trace-from-gateway", rec.Header().Get(traceIDHeader))
}

func TestInit_RecoversFromPanic(t *testing.T) {
	h := newHandlerWithAuth(&mockAuthService{
		loginFn: func(_ context.Context, _, _, _ string) (models.Account, models.Token, error) {
			panic("boom")
		},
	})

	body := `{"email":"john.doe@example.com","password":"s3cret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		h.Init().ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
