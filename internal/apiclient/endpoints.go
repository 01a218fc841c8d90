package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"blog-client/internal/domain"
)

// CurrentUser returns the profile of the token's owner. A success
// envelope with no data yields a nil user and no error.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user *domain.User
	if err := c.Do(ctx, http.MethodGet, "/api/users/", nil, nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Credentials, error) {
	var creds domain.Credentials
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/api/login", nil, body, &creds); err != nil {
		return domain.Credentials{}, err
	}
	return creds, nil
}

func (c *Client) Signup(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var user *domain.User
	if err := c.Do(ctx, http.MethodPost, "/api/signup", nil, reg, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var user *domain.User
	if err := c.Do(ctx, http.MethodPut, "/api/users/update", nil, update, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) ListBlogs(ctx context.Context, q domain.ListQuery) (domain.BlogPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("perPage", strconv.Itoa(q.PerPage))
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	var page domain.BlogPage
	if err := c.Do(ctx, http.MethodGet, "/api/blogs", params, nil, &page); err != nil {
		return domain.BlogPage{}, err
	}
	return page, nil
}

func (c *Client) SearchBlogs(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("perPage", strconv.Itoa(q.PerPage))
	params.Set("search", q.Search)
	params.Set("filter", q.Filter)
	var page domain.SearchPage
	if err := c.Do(ctx, http.MethodGet, "/api/blogs/search", params, nil, &page); err != nil {
		return domain.SearchPage{}, err
	}
	return page, nil
}

func (c *Client) GetBlog(ctx context.Context, id int64) (*domain.BlogDetail, error) {
	var blog *domain.BlogDetail
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/blog/%d", id), nil, nil, &blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// CreateBlog posts a multipart form with judul, content and an optional
// thumbnail file.
func (c *Client) CreateBlog(ctx context.Context, title, content string, thumb *domain.Thumbnail) (*domain.Blog, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("judul", title); err != nil {
		return nil, fmt.Errorf("write form field: %w", err)
	}
	if err := mw.WriteField("content", content); err != nil {
		return nil, fmt.Errorf("write form field: %w", err)
	}
	if thumb != nil {
		part, err := mw.CreateFormFile("thumbnail", thumb.FileName)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, thumb.Body); err != nil {
			return nil, fmt.Errorf("copy thumbnail: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var blog *domain.Blog
	p := &payload{contentType: mw.FormDataContentType(), body: &buf}
	if err := c.Do(ctx, http.MethodPost, "/api/blogs/", nil, p, &blog); err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, &Error{Message: "failed to create blog"}
	}
	return blog, nil
}

func (c *Client) LikeStatus(ctx context.Context, blogID int64) (domain.LikeStatus, error) {
	var status domain.LikeStatus
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/blogs/like/%d", blogID), nil, nil, &status); err != nil {
		return domain.LikeStatus{}, err
	}
	return status, nil
}

// ToggleLike flips the like of the current user. The route lives outside
// the /api namespace on the backend.
func (c *Client) ToggleLike(ctx context.Context, blogID int64) (domain.LikeToggle, error) {
	var toggle domain.LikeToggle
	body := map[string]int64{"blog_id": blogID}
	if err := c.Do(ctx, http.MethodPost, "/like", nil, body, &toggle); err != nil {
		return domain.LikeToggle{}, err
	}
	return toggle, nil
}

func (c *Client) Comments(ctx context.Context, blogID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/blogs/comment/%d", blogID), nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) PostComment(ctx context.Context, blogID int64, content string) error {
	body := map[string]any{"blog_id": blogID, "content": content}
	return c.Do(ctx, http.MethodPost, "/comment", nil, body, nil)
}
