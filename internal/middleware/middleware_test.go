package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"petkimlik/internal/platform/logger"
	"petkimlik/internal/ports/auth"
	"petkimlik/internal/session"
)

type fakeLoader struct {
	claims map[string]auth.Claims
}

func (f fakeLoader) LoadClaims(_ context.Context, userID string) (auth.Claims, error) {
	c, ok := f.claims[userID]
	if !ok {
		return auth.Claims{}, errors.New("not found")
	}
	return c, nil
}

type fakeChecker struct {
	complete bool
	err      error
}

func (f fakeChecker) VendorProfileComplete(context.Context, string) (bool, error) {
	return f.complete, f.err
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anon"))
			return
		}
		_, _ = w.Write([]byte(c.UserID + ":" + string(c.Role)))
	})
}

func TestAuthContext_DevHeader(t *testing.T) {
	h := AuthContext(AuthOptions{DevAuth: true})(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("X-Debug-Role", "admin")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-1:admin", rec.Body.String())

	// Rol desconocido => owner por defecto.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-2")
	req.Header.Set("X-Debug-Role", "root")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-2:owner", rec.Body.String())
}

func TestAuthContext_DevHeaderIgnoredWhenDisabled(t *testing.T) {
	h := AuthContext(AuthOptions{DevAuth: false})(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "anon", rec.Body.String())
}

func TestAuthContext_Session(t *testing.T) {
	sm, err := session.NewManager(session.Options{Name: "s", Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	loader := fakeLoader{claims: map[string]auth.Claims{
		"u-9": {UserID: "u-9", Role: auth.RoleVet},
	}}
	h := AuthContext(AuthOptions{Sessions: sm, Loader: loader})(claimsEcho())

	login := httptest.NewRecorder()
	require.NoError(t, sm.Login(login, httptest.NewRequest(http.MethodGet, "/", nil), "u-9"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-9:vet", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), auth.Claims{UserID: "u", Role: auth.RoleOwner}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithClaims(req.Context(), auth.Claims{UserID: "u", Role: auth.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func vendorRequest(method, path string, role auth.Role) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(WithClaims(req.Context(), auth.Claims{UserID: "v-1", Role: role}))
}

func TestVendorProfileRequired(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	incomplete := VendorProfileRequired(fakeChecker{complete: false}, logger.Nop())(ok)

	t.Run("page redirects with next", func(t *testing.T) {
		rec := httptest.NewRecorder()
		incomplete.ServeHTTP(rec, vendorRequest(http.MethodGet, "/magaza?q=mama", auth.RoleVet))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/satici/profil?next=%2Fmagaza%3Fq%3Dmama", rec.Header().Get("Location"))
	})

	t.Run("api gets 409", func(t *testing.T) {
		rec := httptest.NewRecorder()
		incomplete.ServeHTTP(rec, vendorRequest(http.MethodPost, "/api/pets", auth.RolePetshop))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "vendor_profile_incomplete")
	})

	t.Run("exempt paths pass", func(t *testing.T) {
		for _, p := range []string{"/satici/profil", "/api/vendor/profile", "/api/locations/provinces", "/health", "/api/auth/logout"} {
			rec := httptest.NewRecorder()
			incomplete.ServeHTTP(rec, vendorRequest(http.MethodGet, p, auth.RoleVet))
			assert.Equal(t, http.StatusOK, rec.Code, p)
		}
	})

	t.Run("non vendor passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		incomplete.ServeHTTP(rec, vendorRequest(http.MethodGet, "/magaza", auth.RoleOwner))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("complete passes", func(t *testing.T) {
		h := VendorProfileRequired(fakeChecker{complete: true}, logger.Nop())(ok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, vendorRequest(http.MethodGet, "/magaza", auth.RoleVet))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("checker error does not block", func(t *testing.T) {
		h := VendorProfileRequired(fakeChecker{err: errors.New("db down")}, logger.Nop())(ok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, vendorRequest(http.MethodGet, "/magaza", auth.RoleVet))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRecover_LogsAndReturns500(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := Recover(logger.FromZap(zap.New(core)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := RequestLogger(logger.FromZap(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "/missing", entry.ContextMap()["path"])
}
