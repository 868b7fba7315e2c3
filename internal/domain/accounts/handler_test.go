package accounts_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petkimlik/internal/domain/accounts"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/session"
)

// brokenStore entrega sesiones vacías pero nunca logra guardarlas.
type brokenStore struct{}

func (s brokenStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return s.New(r, name)
}

func (s brokenStore) New(_ *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	sess.IsNew = true
	return sess, nil
}

func (brokenStore) Save(*http.Request, http.ResponseWriter, *sessions.Session) error {
	return errors.New("cookie store unavailable")
}

func TestAuthHandlers_SessionSaveFailureIs500(t *testing.T) {
	svc, _ := newService(t)
	r := chi.NewRouter()
	accounts.RegisterRoutes(r, svc, accounts.HandlerDeps{
		Sessions: session.NewWithStore(brokenStore{}, "t"),
		Log:      logger.Nop(),
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/api/auth/register", `{"email":"mehmet@example.com","password":"supersecret","full_name":"Mehmet Kaya"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	// La cuenta quedó creada; el login también debe fallar sin cookie.
	rec = post("/api/auth/login", `{"identifier":"mehmet@example.com","password":"supersecret"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}
