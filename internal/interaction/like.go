// Package interaction holds per-blog controllers for likes and comments.
// Each controller keys in-flight requests to the blog id they were issued
// for and drops responses that arrive after the id changed.
package interaction

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/notice"
)

type LikeAPI interface {
	LikeStatus(ctx context.Context, blogID int64) (domain.LikeStatus, error)
	ToggleLike(ctx context.Context, blogID int64) (domain.LikeToggle, error)
}

type LikeState struct {
	BlogID   int64
	Liked    bool
	Count    uint
	Loading  bool
	Toggling bool
}

// Label is the button text for the current state.
func (s LikeState) Label() string {
	if s.Liked {
		return "Unlike"
	}
	return "Like"
}

func (s LikeState) CountLabel() string {
	if s.Count == 1 {
		return "1 Like"
	}
	return fmt.Sprintf("%d Likes", s.Count)
}

type LikeController struct {
	api     LikeAPI
	log     logrus.FieldLogger
	notices notice.Notifier

	mu    sync.Mutex
	state LikeState
	gen   uint64
}

func NewLikeController(api LikeAPI, log logrus.FieldLogger, notices notice.Notifier) *LikeController {
	return &LikeController{api: api, log: log, notices: notices}
}

func (c *LikeController) State() LikeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches the like status of blogID. A failed fetch falls back to
// unliked with zero count.
func (c *LikeController) Load(ctx context.Context, blogID int64) LikeState {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = LikeState{BlogID: blogID, Loading: true}
	c.mu.Unlock()

	status, err := c.api.LikeStatus(ctx, blogID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return c.state
	}
	c.state.Loading = false
	if err != nil {
		c.log.WithError(err).WithField("blog_id", blogID).Warn("like: fetch status")
		c.state.Liked = false
		c.state.Count = 0
		return c.state
	}
	c.state.Liked = status.Liked
	c.state.Count = clampCount(status.Count)
	return c.state
}

// Toggle asks the backend to flip the like and adopts its answer. The
// count moves by one only when the liked flag actually changes.
func (c *LikeController) Toggle(ctx context.Context) LikeState {
	c.mu.Lock()
	if c.state.BlogID == 0 || c.state.Loading || c.state.Toggling {
		st := c.state
		c.mu.Unlock()
		return st
	}
	c.state.Toggling = true
	gen, blogID := c.gen, c.state.BlogID
	c.mu.Unlock()

	res, err := c.api.ToggleLike(ctx, blogID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return c.state
	}
	c.state.Toggling = false
	if err != nil {
		c.log.WithError(err).WithField("blog_id", blogID).Warn("like: toggle")
		c.notices.Notify(notice.Error("Like failed", apiclient.Message(err)))
		return c.state
	}

	switch {
	case res.Liked && !c.state.Liked:
		c.state.Count++
	case !res.Liked && c.state.Liked && c.state.Count > 0:
		c.state.Count--
	}
	c.state.Liked = res.Liked
	return c.state
}

func clampCount(n int) uint {
	if n < 0 {
		return 0
	}
	return uint(n)
}
