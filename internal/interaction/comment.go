package interaction

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/notice"
)

var (
	// ErrEmptyComment is returned for blank input; nothing is sent.
	ErrEmptyComment = errors.New("comment is empty")
	// ErrSubmitInFlight is returned while a previous submit is pending.
	ErrSubmitInFlight = errors.New("comment submission in progress")
	// ErrNoBlog is returned when no blog has been loaded.
	ErrNoBlog = errors.New("no blog selected")
)

type CommentAPI interface {
	Comments(ctx context.Context, blogID int64) ([]domain.Comment, error)
	PostComment(ctx context.Context, blogID int64, content string) error
}

type CommentState struct {
	BlogID     int64
	Comments   []domain.Comment
	Loading    bool
	Submitting bool
	Error      string
}

type CommentController struct {
	api     CommentAPI
	log     logrus.FieldLogger
	notices notice.Notifier

	mu     sync.Mutex
	state  CommentState
	gen    uint64
	submit uint64
}

func NewCommentController(api CommentAPI, log logrus.FieldLogger, notices notice.Notifier) *CommentController {
	return &CommentController{api: api, log: log, notices: notices}
}

func (c *CommentController) State() CommentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Load replaces the comment list with the server's list for blogID.
// Switching to another blog drops the previous blog's comments first; a
// failed refetch of the same blog keeps what is already shown.
func (c *CommentController) Load(ctx context.Context, blogID int64) CommentState {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.state.BlogID != blogID {
		c.state = CommentState{BlogID: blogID}
	}
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	comments, err := c.api.Comments(ctx, blogID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return c.copyLocked()
	}
	c.state.Loading = false
	if err != nil {
		c.log.WithError(err).WithField("blog_id", blogID).Warn("comment: fetch list")
		c.state.Error = "Failed to load comments: " + apiclient.Message(err)
		return c.copyLocked()
	}
	c.state.Comments = append([]domain.Comment(nil), comments...)
	return c.copyLocked()
}

// Submit posts text for the current blog and then refetches the list.
// Blank input is rejected without a network call.
func (c *CommentController) Submit(ctx context.Context, text string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return ErrEmptyComment
	}

	c.mu.Lock()
	if c.state.BlogID == 0 {
		c.mu.Unlock()
		return ErrNoBlog
	}
	if c.state.Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.state.Submitting = true
	c.submit++
	submit, blogID := c.submit, c.state.BlogID
	c.mu.Unlock()

	err := c.api.PostComment(ctx, blogID, content)

	c.mu.Lock()
	stillCurrent := c.state.BlogID == blogID
	// a newer submit, possibly for another blog, owns the flag now
	if submit == c.submit && stillCurrent {
		c.state.Submitting = false
	}
	c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).WithField("blog_id", blogID).Warn("comment: submit")
		c.notices.Notify(notice.Error("Comment failed", apiclient.Message(err)))
		return err
	}
	if stillCurrent {
		c.Load(ctx, blogID)
	}
	return nil
}

func (c *CommentController) copyLocked() CommentState {
	st := c.state
	st.Comments = append([]domain.Comment(nil), c.state.Comments...)
	return st
}

// FormatTimestamp renders a comment time in loc for display.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("02 Jan 2006 15:04")
}
