package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/guard"
	"blog-client/internal/notice"
	"blog-client/internal/service"
	"blog-client/internal/session"
	"blog-client/internal/tokenstore"
)

const (
	scopeKey   = "scope"
	flashName  = "blog_flash"
	flashLimit = 8
)

// scope is the per-request session, guard and services. The API context
// binds the incoming request so the client can read its token cookie.
type scope struct {
	ctx      context.Context
	log      logrus.FieldLogger
	tokens   *tokenstore.CookieStore
	sessions *session.Store
	guard    *guard.Guard
	notices  *notice.Recorder
	auth     service.AuthService
	blogs    service.BlogService
}

func (h *Handler) scopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := h.log.WithField("request_id", c.GetString(requestIDKey))
		ctx := apiclient.WithRequest(c.Request.Context(), c.Request)
		ctx = apiclient.WithRequestID(ctx, c.GetString(requestIDKey))

		tokens := tokenstore.NewCookieStore(c, h.secure)
		sessions := session.New(ctx, tokens, session.NopPersister{}, log)
		notices := &notice.Recorder{}

		c.Set(scopeKey, &scope{
			ctx:      ctx,
			log:      log,
			tokens:   tokens,
			sessions: sessions,
			guard:    guard.New(sessions, tokens, h.backend, notices, log),
			notices:  notices,
			auth:     service.NewAuthService(h.backend, sessions, tokens, notices, log),
			blogs:    service.NewBlogService(h.backend, h.thumbnails, notices, log),
		})
		c.Next()
	}
}

func scopeFrom(c *gin.Context) *scope {
	return c.MustGet(scopeKey).(*scope)
}

type pageFunc func(c *gin.Context, rs *scope, user *domain.User)

// navigator turns guard navigations into a single HTTP redirect.
type navigator struct {
	target string
}

func (n *navigator) Push(target string)    { n.target = target }
func (n *navigator) Replace(target string) { n.target = target }

// gate mounts page behind the route guard for the lifetime of the request.
// Redirects chosen by the guard, including ones caused by the page itself
// changing the session, win over an empty page response.
func (h *Handler) gate(class guard.Classification, page pageFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs := scopeFrom(c)
		gated := rs.guard.Wrap(func(_ context.Context, user *domain.User) error {
			page(c, rs, user)
			return nil
		}, class)

		nav := &navigator{}
		unmount := gated.Mount(rs.ctx, guard.ParseLocation(c.Request.URL.RequestURI()), nav, nil)
		defer unmount()

		d, _ := gated.Render(rs.ctx)
		if c.IsAborted() || c.Writer.Written() {
			return
		}

		switch {
		case nav.target != "":
			h.redirect(c, rs, nav.target)
		case d.Kind == guard.Redirect:
			h.redirect(c, rs, d.Target)
		case d.Kind == guard.ShowLoading:
			h.render(c, rs, http.StatusOK, "loading.html", gin.H{"Title": "Loading"})
		default:
			h.redirect(c, rs, guard.LandingRoute)
		}
	}
}

// redirect carries pending notices to the next page in the flash cookie.
func (h *Handler) redirect(c *gin.Context, rs *scope, target string) {
	pending := append(readFlash(c), rs.notices.Drain()...)
	h.writeFlash(c, pending)
	c.Redirect(http.StatusSeeOther, target)
	// a bodyless redirect is not flushed by gin on its own
	c.Writer.WriteHeaderNow()
	c.Abort()
}

func (h *Handler) render(c *gin.Context, rs *scope, status int, name string, data gin.H) {
	shown := append(readFlash(c), rs.notices.Drain()...)
	if _, err := c.Cookie(flashName); err == nil {
		h.writeFlash(c, nil)
	}
	data["Notices"] = shown
	data["User"] = rs.sessions.User()
	c.HTML(status, name, data)
}

func readFlash(c *gin.Context) []notice.Notice {
	raw, err := c.Cookie(flashName)
	if err != nil || raw == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var notices []notice.Notice
	if err := json.Unmarshal(decoded, &notices); err != nil {
		return nil
	}
	return notices
}

func (h *Handler) writeFlash(c *gin.Context, notices []notice.Notice) {
	c.SetSameSite(http.SameSiteLaxMode)
	if len(notices) == 0 {
		c.SetCookie(flashName, "", -1, "/", "", h.secure, true)
		return
	}
	if len(notices) > flashLimit {
		notices = notices[len(notices)-flashLimit:]
	}
	raw, err := json.Marshal(notices)
	if err != nil {
		return
	}
	c.SetCookie(flashName, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", h.secure, true)
}
