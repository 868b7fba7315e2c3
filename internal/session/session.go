package session

import (
	"encoding/gob"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

const (
	keyUserID    = "user_id"
	keyGuestCart = "guest_cart"
)

func init() {
	// El carrito de invitado viaja en la cookie (gob).
	gob.Register(map[string]int{})
}

var ErrNoSecret = errors.New("session: secret required")

type Options struct {
	Name   string
	Secret string
	MaxAge time.Duration
	Secure bool
}

// Manager encapsula la sesión de cookie: user id autenticado y carrito de invitado
// (product id -> cantidad).
type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, ErrNoSecret
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "petkimlik_session"
	}

	cs := sessions.NewCookieStore([]byte(opts.Secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: cs, name: name}, nil
}

// NewWithStore permite inyectar otro sessions.Store (tests).
func NewWithStore(store sessions.Store, name string) *Manager {
	return &Manager{store: store, name: name}
}

func (m *Manager) get(r *http.Request) *sessions.Session {
	// Una cookie inválida (clave rotada, manipulada) devuelve sesión nueva + error;
	// lo tratamos como sesión vacía.
	s, _ := m.store.Get(r, m.name)
	return s
}

func (m *Manager) UserID(r *http.Request) string {
	v, _ := m.get(r).Values[keyUserID].(string)
	return v
}

func (m *Manager) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	s := m.get(r)
	s.Values[keyUserID] = userID
	return s.Save(r, w)
}

// Login guarda el user id y descarta el carrito de invitado en un solo Save
// (dos Set-Cookie con el mismo nombre en la misma respuesta se pisan).
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	s := m.get(r)
	s.Values[keyUserID] = userID
	delete(s.Values, keyGuestCart)
	return s.Save(r, w)
}

// Logout borra el user id pero conserva el resto de la sesión.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, keyUserID)
	return s.Save(r, w)
}

// GuestCart devuelve una copia del carrito de invitado (nunca nil).
func (m *Manager) GuestCart(r *http.Request) map[string]int {
	out := map[string]int{}
	raw, _ := m.get(r).Values[keyGuestCart].(map[string]int)
	for k, v := range raw {
		if strings.TrimSpace(k) == "" || v <= 0 {
			continue
		}
		out[k] = v
	}
	return out
}

func (m *Manager) SaveGuestCart(w http.ResponseWriter, r *http.Request, cart map[string]int) error {
	s := m.get(r)
	if len(cart) == 0 {
		delete(s.Values, keyGuestCart)
	} else {
		s.Values[keyGuestCart] = cart
	}
	return s.Save(r, w)
}

func (m *Manager) ClearGuestCart(w http.ResponseWriter, r *http.Request) error {
	return m.SaveGuestCart(w, r, nil)
}
