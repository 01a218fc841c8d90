package guard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/notice"
	"blog-client/internal/session"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) SetToken(_ context.Context, t string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = t
	return nil
}

func (m *memTokens) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	calls atomic.Int32
	user  *domain.User
	err   error
}

func (f *fakeUsers) CurrentUser(context.Context) (*domain.User, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, f.err
	}
	u := *f.user
	return &u, f.err
}

func (f *fakeUsers) set(u *domain.User, err error) {
	f.mu.Lock()
	f.user, f.err = u, err
	f.mu.Unlock()
}

type recordingNav struct {
	mu      sync.Mutex
	pushes  []string
	replace []string
}

func (r *recordingNav) Push(target string) {
	r.mu.Lock()
	r.pushes = append(r.pushes, target)
	r.mu.Unlock()
}

func (r *recordingNav) Replace(target string) {
	r.mu.Lock()
	r.replace = append(r.replace, target)
	r.mu.Unlock()
}

type fixture struct {
	tokens   *memTokens
	users    *fakeUsers
	notices  *notice.Recorder
	sessions *session.Store
	guard    *Guard
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	f := &fixture{
		tokens:  &memTokens{token: token},
		users:   &fakeUsers{},
		notices: &notice.Recorder{},
	}
	f.sessions = session.New(context.Background(), f.tokens, nil, log)
	f.guard = New(f.sessions, f.tokens, f.users, f.notices, log)
	return f
}

var budi = domain.User{ID: 7, Name: "Budi", Email: "budi@example.com"}

func TestVerify_NoTokenNoSessionMakesNoCall(t *testing.T) {
	f := newFixture(t, "")

	f.guard.Verify(context.Background())

	assert.Zero(t, f.users.calls.Load())
	assert.False(t, f.sessions.IsLoading())
	assert.False(t, f.sessions.IsAuthenticated())
	assert.Empty(t, f.notices.Notices())
}

func TestVerify_NoTokenButAuthenticatedLogsOut(t *testing.T) {
	f := newFixture(t, "")
	f.sessions.Login(context.Background(), budi, domain.Credentials{Token: "x"})
	require.NoError(t, f.tokens.ClearToken(context.Background()))

	f.guard.Verify(context.Background())

	assert.Zero(t, f.users.calls.Load())
	assert.False(t, f.sessions.IsAuthenticated())
	assert.Nil(t, f.sessions.User())
	assert.False(t, f.sessions.IsLoading())
}

func TestVerify_InvalidTokenClearsSession(t *testing.T) {
	f := newFixture(t, "expired")
	f.users.set(nil, &apiclient.Error{StatusCode: 401, Message: "token expired"})

	f.guard.Verify(context.Background())

	assert.False(t, f.sessions.IsAuthenticated())
	assert.False(t, f.sessions.IsLoading())
	tok, _ := f.tokens.Token(context.Background())
	assert.Empty(t, tok)
	require.Len(t, f.notices.Notices(), 1)
	assert.Equal(t, notice.LevelError, f.notices.Notices()[0].Level)
}

func TestVerify_MalformedPayloadClearsSession(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(&domain.User{}, nil)

	f.guard.Verify(context.Background())

	assert.False(t, f.sessions.IsAuthenticated())
	assert.False(t, f.sessions.IsLoading())
	tok, _ := f.tokens.Token(context.Background())
	assert.Empty(t, tok)
	assert.Len(t, f.notices.Notices(), 1)
}

func TestVerify_ValidTokenRefreshesUser(t *testing.T) {
	f := newFixture(t, "tok")
	f.sessions.Login(context.Background(), domain.User{ID: 7, Name: "Old", Email: "budi@example.com"}, domain.Credentials{Token: "tok"})
	f.users.set(&budi, nil)

	f.guard.Verify(context.Background())

	assert.Equal(t, int32(1), f.users.calls.Load())
	assert.True(t, f.sessions.IsAuthenticated())
	assert.Equal(t, "Budi", f.sessions.User().Name)
	assert.False(t, f.sessions.IsLoading())
	tok, _ := f.tokens.Token(context.Background())
	assert.Equal(t, "tok", tok)
}

func TestVerify_CancelledCallKeepsSession(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(nil, context.Canceled)

	f.guard.Verify(context.Background())

	assert.False(t, f.sessions.IsLoading())
	tok, _ := f.tokens.Token(context.Background())
	assert.Equal(t, "tok", tok)
	assert.Empty(t, f.notices.Notices())
}

func TestVerify_ConcurrentRunsSettleConsistently(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(&budi, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.guard.Verify(context.Background())
		}()
	}
	wg.Wait()

	st := f.sessions.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.NotNil(t, st.User)
	assert.False(t, st.IsLoading)
}

func TestGated_ProtectedUnauthenticatedRedirectsToLogin(t *testing.T) {
	f := newFixture(t, "")
	rendered := false
	page := f.guard.Wrap(func(context.Context, *domain.User) error {
		rendered = true
		return nil
	}, Protected)

	nav := &recordingNav{}
	unmount := page.Mount(context.Background(), ParseLocation("/dashboard"), nav, nil)
	defer unmount()

	assert.Equal(t, []string{"/login?redirect=/dashboard"}, nav.pushes)
	require.Len(t, f.notices.Notices(), 1, "one access denied notice")
	assert.Equal(t, "Access denied", f.notices.Notices()[0].Title)

	d, err := page.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Redirect, d.Kind)
	assert.False(t, rendered)
}

func TestGated_PublicAuthenticatedReplacesToLanding(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(&budi, nil)
	page := f.guard.Wrap(func(context.Context, *domain.User) error { return nil }, Public)

	nav := &recordingNav{}
	unmount := page.Mount(context.Background(), ParseLocation("/login"), nav, nil)
	defer unmount()

	assert.Empty(t, nav.pushes)
	assert.Equal(t, []string{"/"}, nav.replace)
}

func TestGated_PublicAuthenticatedHonoursRedirectParam(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(&budi, nil)
	page := f.guard.Wrap(func(context.Context, *domain.User) error { return nil }, Public)

	nav := &recordingNav{}
	unmount := page.Mount(context.Background(), ParseLocation("/login?redirect=/create"), nav, nil)
	defer unmount()

	assert.Equal(t, []string{"/create"}, nav.replace)
}

func TestGated_RendersWithUser(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(&budi, nil)

	var got *domain.User
	page := f.guard.Wrap(func(_ context.Context, u *domain.User) error {
		got = u
		return nil
	}, Protected)

	assert.Equal(t, ShowLoading, page.View().Kind, "nothing but a placeholder before mount")

	unmount := page.Mount(context.Background(), ParseLocation("/blog/1"), &recordingNav{}, nil)
	defer unmount()

	d, err := page.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Render, d.Kind)
	require.NotNil(t, got)
	assert.Equal(t, budi, *got)
}

func TestGated_FocusReverifiesAndUnmountDeregisters(t *testing.T) {
	f := newFixture(t, "tok")
	f.users.set(&budi, nil)
	bus := NewFocusBus()
	nav := &recordingNav{}

	page := f.guard.Wrap(func(context.Context, *domain.User) error { return nil }, Protected)
	unmount := page.Mount(context.Background(), ParseLocation("/profile"), nav, bus)
	assert.Equal(t, 1, bus.Listeners())
	assert.Equal(t, Render, page.View().Kind)

	// token revoked while the window was in the background
	f.users.set(nil, errors.New("revoked"))
	bus.Focus()

	assert.Equal(t, int32(2), f.users.calls.Load())
	assert.False(t, f.sessions.IsAuthenticated())
	assert.Equal(t, []string{"/login?redirect=/profile"}, nav.pushes)

	unmount()
	assert.Zero(t, bus.Listeners())

	bus.Focus()
	assert.Equal(t, int32(2), f.users.calls.Load())

	f.sessions.Logout(context.Background())
	assert.Len(t, nav.pushes, 1, "unmounted page must not navigate")
}
