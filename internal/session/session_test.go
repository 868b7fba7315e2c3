package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Options{Name: "t", Secret: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour})
	require.NoError(t, err)
	return m
}

// roundTrip copia las cookies de la respuesta a un request nuevo.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(Options{})
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestManager_UserIDRoundTrip(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetUserID(rec, httptest.NewRequest(http.MethodGet, "/", nil), "user-1"))

	req := roundTrip(rec)
	assert.Equal(t, "user-1", m.UserID(req))

	rec2 := httptest.NewRecorder()
	require.NoError(t, m.Logout(rec2, req))
	assert.Equal(t, "", m.UserID(roundTrip(rec2)))
}

func TestManager_GuestCartRoundTrip(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SaveGuestCart(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{
		"p-1": 2,
		"p-2": 1,
	}))

	req := roundTrip(rec)
	assert.Equal(t, map[string]int{"p-1": 2, "p-2": 1}, m.GuestCart(req))

	rec2 := httptest.NewRecorder()
	require.NoError(t, m.ClearGuestCart(rec2, req))
	assert.Empty(t, m.GuestCart(roundTrip(rec2)))
}

func TestManager_LoginDropsGuestCart(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SaveGuestCart(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{"p-1": 1}))

	rec2 := httptest.NewRecorder()
	require.NoError(t, m.Login(rec2, roundTrip(rec), "user-9"))

	req := roundTrip(rec2)
	assert.Equal(t, "user-9", m.UserID(req))
	assert.Empty(t, m.GuestCart(req))
}

func TestManager_TamperedCookieIsEmptySession(t *testing.T) {
	m := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "t", Value: "garbage"})

	assert.Equal(t, "", m.UserID(req))
	assert.Empty(t, m.GuestCart(req))
}
