package http

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/guard"
	"blog-client/internal/interaction"
	"blog-client/internal/service"
	"blog-client/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend is everything the pages need from the blog API.
type Backend interface {
	service.AuthAPI
	service.BlogAPI
	interaction.LikeAPI
	interaction.CommentAPI
}

type Options struct {
	Backend       Backend
	Thumbnails    storage.ThumbnailResolver
	SecureCookies bool
	Log           logrus.FieldLogger
}

// Handler wires HTML pages to the blog services.
type Handler struct {
	backend    Backend
	thumbnails storage.ThumbnailResolver
	secure     bool
	log        logrus.FieldLogger
	templates  *template.Template
}

func NewHandler(opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		backend:    opts.Backend,
		thumbnails: opts.Thumbnails,
		secure:     opts.SecureCookies,
		log:        log,
		templates:  template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(h.templates)
	router.Use(requestIDMiddleware(), h.logMiddleware(), gin.Recovery(), h.scopeMiddleware())

	router.GET("/", h.gate(guard.Protected, h.dashboard))
	router.GET("/dashboard", h.gate(guard.Protected, h.dashboard))
	router.GET("/blog/:id", h.gate(guard.Protected, h.showBlog))
	router.POST("/blog/:id/like", h.gate(guard.Protected, h.toggleLike))
	router.POST("/blog/:id/comments", h.gate(guard.Protected, h.postComment))
	router.GET("/create", h.gate(guard.Protected, h.createForm))
	router.POST("/create", h.gate(guard.Protected, h.createBlog))
	router.GET("/profile", h.gate(guard.Protected, h.profileForm))
	router.POST("/profile", h.gate(guard.Protected, h.updateProfile))

	router.GET("/login", h.gate(guard.Public, h.loginForm))
	router.POST("/login", h.gate(guard.Public, h.login))
	router.GET("/register", h.gate(guard.Public, h.registerForm))
	router.POST("/register", h.gate(guard.Public, h.register))

	router.POST("/logout", h.logout)

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

const requestIDKey = "request_id"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(apiclient.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(apiclient.RequestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := h.log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": c.GetString(requestIDKey),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	}
}
