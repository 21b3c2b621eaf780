package sessions

import (
	"net/http"
	"sync"
	"time"
)

// SessionCookieName is the key under which the session token is stored.
const SessionCookieName = "session_id"

type CookieOptions struct {
	Path     string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieOptions are HttpOnly cookies scoped to the whole site, living as long as
// the tokens they carry.
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Path:     "/",
		MaxAge:   DefaultMaxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStore exposes the cookies of a single request/response pair as a SessionStore.
// Values written during the request are visible to later Gets on the same store.
type CookieStore struct {
	r       *http.Request
	w       http.ResponseWriter
	opts    CookieOptions
	pending map[string]*string
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	return &CookieStore{
		r:       r,
		w:       w,
		opts:    opts,
		pending: make(map[string]*string),
	}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	c, err := s.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Set(key, value string) {
	s.pending[key] = &value
	http.SetCookie(s.w, s.newCookie(key, value))
}

// Delete instructs the client to drop the cookie.
func (s *CookieStore) Delete(key string) {
	s.pending[key] = nil
	c := s.newCookie(key, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(s.w, c)
}

func (s *CookieStore) newCookie(name, value string) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.opts.Path,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
	if s.opts.MaxAge > 0 {
		c.MaxAge = int(s.opts.MaxAge.Seconds())
		c.Expires = time.Now().Add(s.opts.MaxAge)
	}
	return c
}

// MemoryStore is a SessionStore kept in a map, used outside of an HTTP exchange.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
}
