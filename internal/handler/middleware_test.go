package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventify/eventify/internal/auth"
	"github.com/eventify/eventify/internal/ledger"
	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/repository"
	"github.com/eventify/eventify/internal/service"
)

func okHandler(t *testing.T, wantIdentity *model.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantIdentity != nil {
			identity, ok := IdentityFrom(r.Context())
			require.True(t, ok)
			assert.Equal(t, *wantIdentity, identity)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Generate("u-1", model.RoleOrganizer)
	require.NoError(t, err)

	t.Run("valid token resolves identity", func(t *testing.T) {
		want := model.Identity{ID: "u-1", Role: model.RoleOrganizer}
		mw := Authenticate(tokens)(okHandler(t, &want))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		mw := Authenticate(tokens)(okHandler(t, nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header scheme", func(t *testing.T) {
		mw := Authenticate(tokens)(okHandler(t, nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		mw := Authenticate(tokens)(okHandler(t, nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token from another secret", func(t *testing.T) {
		other, err := auth.NewTokenService("other-secret", time.Hour).Generate("u-1", model.RoleUser)
		require.NoError(t, err)

		mw := Authenticate(tokens)(okHandler(t, nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)

	serve := func(role model.Role, allowed ...model.Role) *httptest.ResponseRecorder {
		token, err := tokens.Generate("u-1", role)
		require.NoError(t, err)

		chain := Authenticate(tokens)(RequireRole(allowed...)(okHandler(t, nil)))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(model.RoleAdmin, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, serve(model.RoleUser, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, serve(model.RoleOrganizer, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusOK, serve(model.RoleOrganizer, model.RoleOrganizer, model.RoleAdmin).Code)

	t.Run("unauthenticated request", func(t *testing.T) {
		mw := RequireRole(model.RoleAdmin)(okHandler(t, nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	mw := CORS(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestDecodeJSON(t *testing.T) {
	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","bogus":1}`))
		var dst model.LoginRequest
		assert.Error(t, decodeJSON(req, &dst))
	})

	t.Run("decodes valid payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"pw"}`))
		var dst model.LoginRequest
		require.NoError(t, decodeJSON(req, &dst))
		assert.Equal(t, "a@b.co", dst.Email)
	})
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		fallback   int
		wantStatus int
		wantMsg    string
	}{
		{"not found", repository.ErrNotFound, http.StatusInternalServerError, http.StatusNotFound, "not found"},
		{"capacity", repository.ErrCapacityExceeded, http.StatusInternalServerError, http.StatusConflict, "not enough tickets available"},
		{"duplicate", repository.ErrDuplicate, http.StatusInternalServerError, http.StatusConflict, "already exists"},
		{"unauthorized", ledger.ErrUnauthorized, http.StatusInternalServerError, http.StatusForbidden, "not authorized"},
		{"invalid quantity", ledger.ErrInvalidQuantity, http.StatusInternalServerError, http.StatusBadRequest, ""},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusBadRequest, http.StatusUnauthorized, ""},
		{"admin secret", service.ErrAdminSecret, http.StatusBadRequest, http.StatusForbidden, ""},
		{"validation fallback", assert.AnError, http.StatusBadRequest, http.StatusBadRequest, ""},
		{"opaque internal", assert.AnError, http.StatusInternalServerError, http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err, tt.fallback)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body model.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			if tt.wantMsg != "" {
				assert.Contains(t, body.Error, tt.wantMsg)
			} else {
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
