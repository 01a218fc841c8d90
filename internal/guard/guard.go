// Package guard decides, per page, whether to render or redirect, and
// keeps the session fresh by re-verifying the token with the backend.
package guard

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"blog-client/internal/domain"
	"blog-client/internal/notice"
	"blog-client/internal/session"
	"blog-client/internal/tokenstore"
)

// UserFetcher calls the backend "who am I" endpoint.
type UserFetcher interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Guard runs the verification procedure against one session store.
type Guard struct {
	sessions *session.Store
	tokens   tokenstore.Store
	users    UserFetcher
	notices  notice.Notifier
	log      logrus.FieldLogger
}

func New(sessions *session.Store, tokens tokenstore.Store, users UserFetcher, notices notice.Notifier, log logrus.FieldLogger) *Guard {
	return &Guard{
		sessions: sessions,
		tokens:   tokens,
		users:    users,
		notices:  notices,
		log:      log,
	}
}

// Sessions exposes the store the guard keeps fresh.
func (g *Guard) Sessions() *session.Store {
	return g.sessions
}

// Verify reconciles the session with the token store and the backend.
// The loading flag is released on every exit path.
func (g *Guard) Verify(ctx context.Context) {
	token, err := g.tokens.Token(ctx)
	if err != nil {
		g.log.WithError(err).Warn("guard: read token")
		token = ""
	}

	if token == "" {
		if g.sessions.IsAuthenticated() {
			// local state claims a user the token store no longer backs
			g.sessions.Logout(ctx)
		}
		g.sessions.StopLoading()
		return
	}

	defer g.sessions.StopLoading()

	user, err := g.users.CurrentUser(ctx)
	if err != nil && errors.Is(err, context.Canceled) {
		g.log.Debug("guard: verification cancelled")
		return
	}
	if err != nil || !validUser(user) {
		entry := g.log.WithField("authenticated", g.sessions.IsAuthenticated())
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Warn("guard: session verification failed")

		g.notices.Notify(notice.Error("Invalid login session", "Please login again"))
		if err := g.tokens.ClearToken(ctx); err != nil {
			g.log.WithError(err).Error("guard: clear token")
		}
		g.sessions.Logout(ctx)
		return
	}

	g.sessions.Login(ctx, *user, domain.Credentials{Token: token})
}

func validUser(u *domain.User) bool {
	return u != nil && (u.ID != 0 || u.Email != "")
}
