package tokenstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-client/internal/repository"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV { return &memoryKV{data: map[string][]byte{}} }

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.True(t, Expiry(signed(t, exp)).Equal(exp))
	assert.True(t, Expiry("opaque-token").IsZero())
}

func TestResolveExpiry_PrefersReported(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got := ResolveExpiry(signed(t, exp), "2030-01-02T03:04:05Z")
	assert.Equal(t, 2030, got.Year())

	got = ResolveExpiry(signed(t, exp), "")
	assert.True(t, got.Equal(exp))
}

func TestKVStore_RoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore(newMemoryKV())

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetToken(ctx, "abc", time.Time{}))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.ClearToken(ctx))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestKVStore_ExpiredTokenReadsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	s := NewKVStore(kv)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SetToken(ctx, "abc", now.Add(time.Minute)))
	now = now.Add(2 * time.Minute)

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
	_, err = kv.Get(ctx, tokenKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCookieStore_ReadsRequestAndSeesOwnWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "old"})

	s := NewCookieStore(c, false)
	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", tok)

	require.NoError(t, s.SetToken(ctx, "new", time.Now().Add(time.Hour)))
	tok, _ = s.Token(ctx)
	assert.Equal(t, "new", tok)

	require.NoError(t, s.ClearToken(ctx))
	tok, _ = s.Token(ctx)
	assert.Empty(t, tok)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "new", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, -1, cookies[1].MaxAge)
}
