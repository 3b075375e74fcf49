package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"little_library/api"
	"little_library/logger"
	"little_library/storage"
)

// Keys under which the session is persisted.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Remote is the part of the API client the holder needs.
type Remote interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Register(ctx context.Context, r api.RegisterRequest) (api.AuthResult, error)
	Logout(ctx context.Context) error
}

// Store persists the session between runs. *storage.Store implements it.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Holder keeps the signed-in user and applies the token to the session.
// Login, Register and Logout are not coordinated; callers serialize them.
type Holder struct {
	remote  Remote
	session *api.Session
	store   Store
	now     func() time.Time

	restore sync.Once

	mu      sync.RWMutex
	user    api.User
	active  bool
	lastErr error
}

func NewHolder(remote Remote, session *api.Session, store Store) *Holder {
	return &Holder{
		remote:  remote,
		session: session,
		store:   store,
		now:     time.Now,
	}
}

// Login signs in and persists the session. It reports failure instead of
// returning it; LastError holds the reason.
func (h *Holder) Login(ctx context.Context, email, password string) bool {
	res, err := h.remote.Login(ctx, email, password)
	return h.accept("login", res, err)
}

func (h *Holder) Register(ctx context.Context, r api.RegisterRequest) bool {
	res, err := h.remote.Register(ctx, r)
	return h.accept("register", res, err)
}

func (h *Holder) accept(op string, res api.AuthResult, err error) bool {
	if err != nil {
		logger.Warn("authentication failed", "op", op, "error", err)
		h.setErr(err)
		return false
	}
	if err := h.persist(res); err != nil {
		logger.Error("persist session", "op", op, "error", err)
		h.setErr(err)
		return false
	}

	h.session.Set(res.Token)
	h.mu.Lock()
	h.user = res.User
	h.active = true
	h.lastErr = nil
	h.mu.Unlock()
	logger.Info("signed in", "user", res.User.Email)
	return true
}

func (h *Holder) persist(res api.AuthResult) error {
	user, err := json.Marshal(res.User)
	if err != nil {
		return err
	}
	if err := h.store.Set(TokenKey, res.Token); err != nil {
		return err
	}
	return h.store.Set(UserKey, string(user))
}

// Logout tells the server and then clears local state whatever the server
// answered.
func (h *Holder) Logout(ctx context.Context) {
	if err := h.remote.Logout(ctx); err != nil {
		logger.Warn("remote logout failed", "error", err)
	}
	h.clear()
}

func (h *Holder) clear() {
	if err := h.store.Delete(TokenKey, UserKey); err != nil {
		logger.Error("clear stored session", "error", err)
	}
	h.session.Clear()
	h.mu.Lock()
	h.user = api.User{}
	h.active = false
	h.mu.Unlock()
}

// Restore loads the stored session once and applies its token.
// An expired JWT is dropped; tokens that are not JWTs are kept as is.
func (h *Holder) Restore() bool {
	h.restore.Do(func() {
		token, err := h.store.Get(TokenKey)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				logger.Error("read stored token", "error", err)
			}
			return
		}
		if token == "" || h.expired(token) {
			logger.Info("stored session expired")
			h.clear()
			return
		}

		var user api.User
		if raw, err := h.store.Get(UserKey); err == nil {
			if err := json.Unmarshal([]byte(raw), &user); err != nil {
				logger.Warn("stored user unreadable", "error", err)
			}
		}

		h.session.Set(token)
		h.mu.Lock()
		h.user = user
		h.active = true
		h.mu.Unlock()
	})
	return h.Active()
}

func (h *Holder) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(h.now())
}

func (h *Holder) Active() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active
}

func (h *Holder) User() (api.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.user, h.active
}

// LastError is the reason the most recent Login or Register failed.
func (h *Holder) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

func (h *Holder) setErr(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()
}
