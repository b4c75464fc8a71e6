// Package session tracks the authenticated identity for one storefront
// instance: a bearer token plus a user descriptor, mirrored into durable
// storage so the session survives restarts.
package session

import (
	"encoding/json"
	"sync"

	"github.com/craftorigin/storefront/pkg/storage"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleArtist Role = "ARTIST"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

const (
	tokenKey = "authToken"
	userKey  = "user"
)

// Store holds the current session. A nil backing storage.Store models a
// rendering context without durable storage (server-side pass), where no
// session can be established.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	token    string
	user     *User
	onLogin  []func()
	onLogout []func()
}

// New restores any persisted session from kv. kv may be nil.
func New(kv storage.Store) *Store {
	s := &Store{kv: kv}
	if kv == nil {
		return s
	}
	if token, ok := kv.Get(tokenKey); ok && token != "" {
		s.token = token
	}
	if raw, ok := kv.Get(userKey); ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.user = &u
		}
	}
	return s
}

// OnLogin registers a hook fired after every successful Login.
func (s *Store) OnLogin(fn func()) {
	s.mu.Lock()
	s.onLogin = append(s.onLogin, fn)
	s.mu.Unlock()
}

// OnLogout registers a hook fired after every Logout.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

// Login stores the credential and user durably and fires the login hooks
// exactly once per call.
func (s *Store) Login(token string, user User) {
	s.mu.Lock()
	s.token = token
	u := user
	s.user = &u
	if s.kv != nil {
		s.kv.Set(tokenKey, token)
		if raw, err := json.Marshal(user); err == nil {
			s.kv.Set(userKey, string(raw))
		}
	}
	hooks := append([]func(){}, s.onLogin...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Logout clears durable and in-memory state and fires the logout hooks.
// A logged-out tab must never show the previous user's data.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	if s.kv != nil {
		s.kv.Delete(tokenKey)
		s.kv.Delete(userKey)
	}
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// GetUser returns the persisted descriptor, or nil when anonymous.
func (s *Store) GetUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Durable reports whether the store is backed by persistent storage.
func (s *Store) Durable() bool {
	return s.kv != nil
}
