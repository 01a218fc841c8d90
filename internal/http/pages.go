package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/guard"
	"blog-client/internal/interaction"
	"blog-client/internal/notice"
)

type blogCard struct {
	ID           int64
	Title        string
	Excerpt      string
	Author       string
	LikeCount    int
	CommentCount int
	ThumbnailURL string
}

type commentView struct {
	Author  string
	Content string
	When    string
}

const excerptRunes = 160

func excerpt(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= excerptRunes {
		return string(r)
	}
	return string(r[:excerptRunes]) + "…"
}

func blogID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func (h *Handler) dashboard(c *gin.Context, rs *scope, _ *domain.User) {
	search := strings.TrimSpace(c.Query("search"))
	filter := c.DefaultQuery("filter", "all")
	sort := c.Query("sort")

	var (
		page domain.BlogPage
		err  error
	)
	if search != "" {
		page, err = rs.blogs.Search(rs.ctx, domain.SearchQuery{Page: queryInt(c, "page"), Search: search, Filter: filter})
	} else {
		page, err = rs.blogs.List(rs.ctx, domain.ListQuery{Page: queryInt(c, "page"), Sort: sort})
	}

	status := http.StatusOK
	if err != nil {
		rs.log.WithError(err).Warn("dashboard: load blogs")
		rs.notices.Notify(notice.Error("Failed to load blogs", apiclient.Message(err)))
		status = http.StatusBadGateway
	}

	cards := make([]blogCard, 0, len(page.Blogs))
	for _, b := range page.Blogs {
		cards = append(cards, blogCard{
			ID:           b.ID,
			Title:        b.Title,
			Excerpt:      excerpt(b.Content),
			Author:       b.User.Name,
			LikeCount:    b.LikeCount,
			CommentCount: b.CommentCount,
			ThumbnailURL: rs.blogs.ThumbnailURL(rs.ctx, b.Thumbnail),
		})
	}

	data := gin.H{
		"Title":  "Dashboard",
		"Blogs":  cards,
		"Search": search,
		"Filter": filter,
		"Sort":   sort,
		"Page":   page.CurrentPage,
		"Last":   page.LastPage,
	}
	if page.CurrentPage > 1 {
		data["PrevPage"] = page.CurrentPage - 1
	}
	if page.CurrentPage < page.LastPage {
		data["NextPage"] = page.CurrentPage + 1
	}
	h.render(c, rs, status, "dashboard.html", data)
}

func (h *Handler) showBlog(c *gin.Context, rs *scope, _ *domain.User) {
	id, ok := blogID(c)
	if !ok {
		h.render(c, rs, http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": "Blog not found"})
		return
	}

	blog, err := rs.blogs.Get(rs.ctx, id)
	if err != nil {
		rs.log.WithError(err).WithField("blog_id", id).Warn("blog: load")
		h.render(c, rs, http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": apiclient.Message(err)})
		return
	}

	likes := interaction.NewLikeController(h.backend, rs.log, rs.notices).Load(rs.ctx, id)
	comments := interaction.NewCommentController(h.backend, rs.log, rs.notices).Load(rs.ctx, id)

	views := make([]commentView, 0, len(comments.Comments))
	for _, cm := range comments.Comments {
		views = append(views, commentView{
			Author:  cm.AuthorName,
			Content: cm.Content,
			When:    interaction.FormatTimestamp(cm.Timestamp, time.Local),
		})
	}

	h.render(c, rs, http.StatusOK, "blog.html", gin.H{
		"Title":        blog.Title,
		"Blog":         blog,
		"ThumbnailURL": rs.blogs.ThumbnailURL(rs.ctx, blog.Thumbnail),
		"LikeLabel":    likes.Label(),
		"LikeCount":    likes.CountLabel(),
		"Comments":     views,
		"CommentError": comments.Error,
	})
}

func (h *Handler) toggleLike(c *gin.Context, rs *scope, _ *domain.User) {
	id, ok := blogID(c)
	if !ok {
		h.redirect(c, rs, guard.LandingRoute)
		return
	}
	likes := interaction.NewLikeController(h.backend, rs.log, rs.notices)
	likes.Load(rs.ctx, id)
	likes.Toggle(rs.ctx)
	h.redirect(c, rs, fmt.Sprintf("/blog/%d", id))
}

func (h *Handler) postComment(c *gin.Context, rs *scope, _ *domain.User) {
	id, ok := blogID(c)
	if !ok {
		h.redirect(c, rs, guard.LandingRoute)
		return
	}
	text := c.PostForm("content")
	if strings.TrimSpace(text) != "" {
		comments := interaction.NewCommentController(h.backend, rs.log, rs.notices)
		comments.Load(rs.ctx, id)
		if err := comments.Submit(rs.ctx, text); err != nil {
			rs.log.WithError(err).WithField("blog_id", id).Debug("comment: not posted")
		}
	}
	h.redirect(c, rs, fmt.Sprintf("/blog/%d#comments", id))
}

func (h *Handler) createForm(c *gin.Context, rs *scope, _ *domain.User) {
	h.render(c, rs, http.StatusOK, "create.html", gin.H{"Title": "Create blog", "FormTitle": "", "Content": ""})
}

func (h *Handler) createBlog(c *gin.Context, rs *scope, _ *domain.User) {
	in := domain.NewBlog{
		Title:   c.PostForm("judul"),
		Content: c.PostForm("content"),
	}
	if fh, err := c.FormFile("thumbnail"); err == nil {
		f, err := fh.Open()
		if err != nil {
			rs.log.WithError(err).Warn("create: open thumbnail")
		} else {
			defer f.Close()
			in.Thumbnail = &domain.Thumbnail{FileName: fh.Filename, Body: f}
		}
	}

	blog, err := rs.blogs.Create(rs.ctx, in)
	if err != nil {
		h.render(c, rs, http.StatusUnprocessableEntity, "create.html", gin.H{
			"Title":     "Create blog",
			"FormTitle": in.Title,
			"Content":   in.Content,
		})
		return
	}
	target := guard.LandingRoute
	if blog.ID > 0 {
		target = fmt.Sprintf("/blog/%d", blog.ID)
	}
	h.redirect(c, rs, target)
}

func (h *Handler) profileForm(c *gin.Context, rs *scope, user *domain.User) {
	h.render(c, rs, http.StatusOK, "profile.html", gin.H{"Title": "Profile", "Profile": user})
}

func (h *Handler) updateProfile(c *gin.Context, rs *scope, _ *domain.User) {
	update := domain.ProfileUpdate{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		DateOfBirth: c.PostForm("tanggal_lahir"),
		Biography:   c.PostForm("biografi"),
	}
	if _, err := rs.auth.UpdateProfile(rs.ctx, update); err != nil {
		h.render(c, rs, http.StatusUnprocessableEntity, "profile.html", gin.H{"Title": "Profile", "Profile": update})
		return
	}
	h.redirect(c, rs, "/profile")
}

func (h *Handler) loginForm(c *gin.Context, rs *scope, _ *domain.User) {
	h.render(c, rs, http.StatusOK, "login.html", gin.H{
		"Title":  "Login",
		"Action": c.Request.URL.RequestURI(),
		"Email":  "",
	})
}

// login leaves the response empty on success; the guard sees the new
// session and redirects away from the public page.
func (h *Handler) login(c *gin.Context, rs *scope, _ *domain.User) {
	email := c.PostForm("email")
	if _, err := rs.auth.Login(rs.ctx, email, c.PostForm("password")); err != nil {
		h.render(c, rs, http.StatusUnauthorized, "login.html", gin.H{
			"Title":  "Login",
			"Action": c.Request.URL.RequestURI(),
			"Email":  email,
		})
	}
}

func (h *Handler) registerForm(c *gin.Context, rs *scope, _ *domain.User) {
	h.render(c, rs, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": domain.Registration{}})
}

func (h *Handler) register(c *gin.Context, rs *scope, _ *domain.User) {
	reg := domain.Registration{
		Name:            c.PostForm("name"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
		DateOfBirth:     c.PostForm("tanggal_lahir"),
		Biography:       c.PostForm("biografi"),
	}
	if _, err := rs.auth.Register(rs.ctx, reg); err != nil {
		reg.Password, reg.ConfirmPassword = "", ""
		h.render(c, rs, http.StatusUnprocessableEntity, "register.html", gin.H{"Title": "Register", "Form": reg})
		return
	}
	h.redirect(c, rs, guard.LoginRoute)
}

func (h *Handler) logout(c *gin.Context) {
	rs := scopeFrom(c)
	rs.auth.Logout(rs.ctx)
	h.redirect(c, rs, guard.LoginRoute)
}
