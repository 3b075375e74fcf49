package auth

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"little_library/api"
	"little_library/api/apitest"
	"little_library/storage"
)

type fixture struct {
	srv     *apitest.Server
	client  *api.Client
	session *api.Session
	store   *storage.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("ada@example.com", "secret", "Ada", "Lovelace")

	store, err := storage.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	session := api.NewSession("")
	return fixture{
		srv:     srv,
		client:  api.NewClient(srv.URL, srv.Client(), session),
		session: session,
		store:   store,
	}
}

func (f fixture) holder() *Holder {
	return NewHolder(f.client, f.session, f.store)
}

func TestLoginPersistsSession(t *testing.T) {
	f := newFixture(t)
	h := f.holder()

	require.True(t, h.Login(context.Background(), "ada@example.com", "secret"))
	assert.True(t, h.Active())
	assert.NoError(t, h.LastError())

	user, ok := h.User()
	assert.True(t, ok)
	assert.Equal(t, "Ada", user.FirstName)

	token, err := f.store.Get(TokenKey)
	require.NoError(t, err)
	assert.Equal(t, token, f.session.Token())
	raw, err := f.store.Get(UserKey)
	require.NoError(t, err)
	assert.Contains(t, raw, "ada@example.com")
}

func TestLoginFailureReturnsFalse(t *testing.T) {
	f := newFixture(t)
	h := f.holder()

	assert.False(t, h.Login(context.Background(), "ada@example.com", "wrong"))
	assert.False(t, h.Active())
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(h.LastError()))
	assert.Empty(t, f.session.Token())

	_, err := f.store.Get(TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	h := f.holder()

	ok := h.Register(context.Background(), api.RegisterRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Password: "cobol",
	})
	require.True(t, ok)
	user, _ := h.User()
	assert.Equal(t, "Grace Hopper", user.DisplayName())

	assert.False(t, h.Register(context.Background(), api.RegisterRequest{Email: "grace@example.com", Password: "x"}))
	assert.Equal(t, http.StatusConflict, api.StatusOf(h.LastError()))
	assert.True(t, h.Active(), "failed register keeps the existing session")
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	f := newFixture(t)
	h := f.holder()
	require.True(t, h.Login(context.Background(), "ada@example.com", "secret"))

	f.srv.Fail("logout", http.StatusInternalServerError, "boom")
	h.Logout(context.Background())

	assert.False(t, h.Active())
	assert.Empty(t, f.session.Token())
	_, err := f.store.Get(TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.store.Get(UserKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestoreAppliesStoredToken(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.holder().Login(context.Background(), "ada@example.com", "secret"))
	stored, _ := f.store.Get(TokenKey)

	session := api.NewSession("")
	h := NewHolder(f.client, session, f.store)
	require.True(t, h.Restore())
	assert.Equal(t, stored, session.Token())
	user, _ := h.User()
	assert.Equal(t, "ada@example.com", user.Email)

	require.NoError(t, f.store.Delete(TokenKey))
	assert.True(t, h.Restore(), "restore runs once")
}

func TestRestoreDropsExpiredJWT(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(TokenKey, f.srv.Token("ada@example.com", -time.Minute)))
	require.NoError(t, f.store.Set(UserKey, `{"email":"ada@example.com"}`))

	h := f.holder()
	assert.False(t, h.Restore())
	assert.Empty(t, f.session.Token())
	_, err := f.store.Get(UserKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestoreKeepsOpaqueToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(TokenKey, "opaque-token"))

	h := f.holder()
	assert.True(t, h.Restore())
	assert.Equal(t, "opaque-token", f.session.Token())
	_, ok := h.User()
	assert.True(t, ok)
}

func TestRestoreWithoutStoredSession(t *testing.T) {
	f := newFixture(t)
	h := f.holder()
	assert.False(t, h.Restore())
	assert.False(t, f.session.Active())
}
