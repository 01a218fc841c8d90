package tokenstore

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the bearer token in the server runtime.
const CookieName = "blog_token"

// CookieStore reads the token from the incoming request cookie and writes
// changes to the response. Writes are mirrored into the request's Cookie
// header so later reads in the same request see them.
type CookieStore struct {
	c      *gin.Context
	secure bool
	now    func() time.Time
}

func NewCookieStore(c *gin.Context, secure bool) *CookieStore {
	return &CookieStore{c: c, secure: secure, now: time.Now}
}

func (s *CookieStore) Token(context.Context) (string, error) {
	value, err := s.c.Cookie(CookieName)
	if err != nil {
		return "", nil
	}
	return value, nil
}

func (s *CookieStore) SetToken(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	maxAge := 0
	if !expiresAt.IsZero() {
		maxAge = int(expiresAt.Sub(s.now()).Seconds())
		if maxAge <= 0 {
			return s.ClearToken(ctx)
		}
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(CookieName, token, maxAge, "/", "", s.secure, true)
	rewriteRequestCookie(s.c.Request, token)
	return nil
}

func (s *CookieStore) ClearToken(context.Context) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
	rewriteRequestCookie(s.c.Request, "")
	return nil
}

// rewriteRequestCookie replaces the token cookie in the request header.
// An empty value removes it.
func rewriteRequestCookie(r *http.Request, value string) {
	if r == nil {
		return
	}
	kept := make([]string, 0, 4)
	for _, ck := range r.Cookies() {
		if ck.Name == CookieName {
			continue
		}
		kept = append(kept, ck.String())
	}
	if value != "" {
		kept = append(kept, (&http.Cookie{Name: CookieName, Value: value}).String())
	}
	r.Header.Del("Cookie")
	if len(kept) > 0 {
		r.Header.Set("Cookie", strings.Join(kept, "; "))
	}
}

var _ Store = (*CookieStore)(nil)
