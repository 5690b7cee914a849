package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nexoshop/pkg/cache"
	"github.com/wyfcoding/nexoshop/pkg/response"
)

func newTestManager(store Store) *Manager {
	return NewManager(store, Options{Secret: "test-secret", CookieName: "nexo_session", TTL: time.Hour})
}

func newRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		s := FromContext(c)
		response.Success(c, gin.H{"sid": s.ID(), "uid": s.UserID(), "admin": s.IsAdmin()})
	})
	r.POST("/login", func(c *gin.Context) {
		s := FromContext(c)
		_ = s.SetUser(7, "admin")
		s.AddFlash(FlashSuccess, "bienvenido")
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = FromContext(c).Logout()
		c.Status(http.StatusNoContent)
	})
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var last *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "nexo_session" {
			last = ck
		}
	}
	require.NotNil(t, last, "session cookie issued")
	return last
}

func TestSignAndParse(t *testing.T) {
	m := newTestManager(NewMemoryStore(time.Hour))
	token, err := m.Sign(Claims{SessionID: "abc", UserID: 3, Role: "customer"})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.SessionID)
	assert.Equal(t, uint(3), claims.UserID)

	other := NewManager(nil, Options{Secret: "other"})
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired token")
}

func TestMiddlewareKeepsSessionAcrossRequests(t *testing.T) {
	m := newTestManager(NewMemoryStore(time.Hour))
	r := newRouter(m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)
	first := sessionCookie(t, w)
	claims, err := m.Parse(first.Value)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(first)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	loggedIn := sessionCookie(t, w)
	after, err := m.Parse(loggedIn.Value)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, after.SessionID, "login keeps the session id")
	assert.Equal(t, uint(7), after.UserID)
	assert.Equal(t, "admin", after.Role)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"admin":true`)
	assert.Contains(t, w.Body.String(), `"text":"bienvenido"`)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "bienvenido", "flash consumed once")
}

func TestTamperedCookieStartsNewSession(t *testing.T) {
	m := newTestManager(NewMemoryStore(time.Hour))
	r := newRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "nexo_session", Value: "not-a-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	claims, err := m.Parse(sessionCookie(t, w).Value)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.SessionID)
	assert.Zero(t, claims.UserID)
}

func TestLogoutDropsData(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	m := newTestManager(store)
	r := newRouter(m)
	ctx := context.Background()

	token, err := m.Sign(Claims{SessionID: "s1", UserID: 2, Role: "customer"})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "s1", KeyCart, map[string]int{"1": 2}))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "nexo_session", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	claims, err := m.Parse(sessionCookie(t, w).Value)
	require.NoError(t, err)
	assert.NotEqual(t, "s1", claims.SessionID)
	assert.Zero(t, claims.UserID)

	var cart map[string]int
	found, err := store.Get(ctx, "s1", KeyCart, &cart)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s", "k", "v"))
	var v string
	found, err := store.Get(ctx, "s", "k", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	found, err = store.Get(ctx, "s", "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	store := NewRedisStore(c, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s", KeyCart, map[string]int{"3": 1}))
	require.NoError(t, store.Set(ctx, "s", KeyFlash, []response.Flash{{Level: FlashInfo, Text: "hola"}}))
	assert.True(t, mr.Exists("session:s:cart"))
	assert.Equal(t, time.Minute, mr.TTL("session:s:cart"))

	var cart map[string]int
	found, err := store.Get(ctx, "s", KeyCart, &cart)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, cart["3"])

	require.NoError(t, store.Destroy(ctx, "s"))
	assert.False(t, mr.Exists("session:s:cart"))
	assert.False(t, mr.Exists("session:s:_messages"))
}
