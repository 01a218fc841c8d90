package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/notice"
	"blog-client/internal/storage"
)

const (
	DefaultPerPage       = 15
	DefaultSearchPerPage = 10
	MaxThumbnailBytes    = 3 << 20
)

var (
	sortKeys    = map[string]bool{"": true, "likes": true, "comments": true}
	filterKeys  = map[string]bool{"all": true, "username": true, "judul": true, "content": true}
	imageSuffix = map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/gif": ".gif"}
)

// BlogAPI is the slice of the backend used for posts.
type BlogAPI interface {
	ListBlogs(ctx context.Context, q domain.ListQuery) (domain.BlogPage, error)
	SearchBlogs(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error)
	GetBlog(ctx context.Context, id int64) (*domain.BlogDetail, error)
	CreateBlog(ctx context.Context, title, content string, thumb *domain.Thumbnail) (*domain.Blog, error)
}

// BlogService describes post browsing and authoring.
type BlogService interface {
	List(ctx context.Context, q domain.ListQuery) (domain.BlogPage, error)
	Search(ctx context.Context, q domain.SearchQuery) (domain.BlogPage, error)
	Get(ctx context.Context, id int64) (*domain.BlogDetail, error)
	Create(ctx context.Context, in domain.NewBlog) (*domain.Blog, error)
	ThumbnailURL(ctx context.Context, name string) string
}

type blogService struct {
	api        BlogAPI
	thumbnails storage.ThumbnailResolver
	notices    notice.Notifier
	log        logrus.FieldLogger
}

func NewBlogService(api BlogAPI, thumbnails storage.ThumbnailResolver, notices notice.Notifier, log logrus.FieldLogger) BlogService {
	return &blogService{
		api:        api,
		thumbnails: thumbnails,
		notices:    notices,
		log:        log,
	}
}

func (s *blogService) List(ctx context.Context, q domain.ListQuery) (domain.BlogPage, error) {
	if !sortKeys[q.Sort] {
		return domain.BlogPage{}, fmt.Errorf("%w: %q", ErrInvalidSort, q.Sort)
	}
	q.Page = atLeastOne(q.Page)
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}

	page, err := s.api.ListBlogs(ctx, q)
	if err != nil {
		return domain.BlogPage{}, fmt.Errorf("list blogs: %w", err)
	}
	if page.CurrentPage == 0 {
		page.CurrentPage = q.Page
	}
	return page, nil
}

// Search runs a filtered search and reports it as a page of the listing.
func (s *blogService) Search(ctx context.Context, q domain.SearchQuery) (domain.BlogPage, error) {
	if q.Filter == "" {
		q.Filter = "all"
	}
	if !filterKeys[q.Filter] {
		return domain.BlogPage{}, fmt.Errorf("%w: %q", ErrInvalidFilter, q.Filter)
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Page = atLeastOne(q.Page)
	if q.PerPage <= 0 {
		q.PerPage = DefaultSearchPerPage
	}

	res, err := s.api.SearchBlogs(ctx, q)
	if err != nil {
		return domain.BlogPage{}, fmt.Errorf("search blogs: %w", err)
	}
	last := (res.Total + q.PerPage - 1) / q.PerPage
	return domain.BlogPage{
		Blogs:       res.Blogs,
		CurrentPage: q.Page,
		LastPage:    atLeastOne(last),
	}, nil
}

func (s *blogService) Get(ctx context.Context, id int64) (*domain.BlogDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid blog id %d", id)
	}
	blog, err := s.api.GetBlog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get blog %d: %w", id, err)
	}
	if blog == nil {
		return nil, fmt.Errorf("blog %d not found", id)
	}
	return blog, nil
}

func (s *blogService) Create(ctx context.Context, in domain.NewBlog) (*domain.Blog, error) {
	blog, err := s.create(ctx, in)
	if err != nil {
		s.notices.Notify(notice.Error("Blog Creation Failed", apiclient.Message(err)))
		return nil, err
	}
	s.notices.Notify(notice.Success("Blog Created Successfully", fmt.Sprintf("Your blog %q has been posted.", blog.Title)))
	return blog, nil
}

func (s *blogService) create(ctx context.Context, in domain.NewBlog) (*domain.Blog, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: title and content", ErrMissingField)
	}

	var thumb *domain.Thumbnail
	if in.Thumbnail != nil {
		var err error
		if thumb, err = prepareThumbnail(in.Thumbnail); err != nil {
			return nil, err
		}
	}

	blog, err := s.api.CreateBlog(ctx, in.Title, in.Content, thumb)
	if err != nil {
		return nil, err
	}
	if blog.Title == "" {
		blog.Title = in.Title
	}
	s.log.WithField("blog_id", blog.ID).Info("blog: created")
	return blog, nil
}

// prepareThumbnail buffers the upload, checks its size and type, and gives
// it a fresh file name.
func prepareThumbnail(t *domain.Thumbnail) (*domain.Thumbnail, error) {
	if t.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(t.Body, MaxThumbnailBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > MaxThumbnailBytes {
		return nil, ErrThumbnailTooLarge
	}
	suffix, ok := imageSuffix[http.DetectContentType(data)]
	if !ok {
		return nil, ErrThumbnailType
	}
	return &domain.Thumbnail{
		FileName: uuid.NewString() + suffix,
		Body:     bytes.NewReader(data),
	}, nil
}

// ThumbnailURL resolves a stored thumbnail name, or returns "" when the
// post has none or it cannot be resolved.
func (s *blogService) ThumbnailURL(ctx context.Context, name string) string {
	if strings.TrimSpace(name) == "" || s.thumbnails == nil {
		return ""
	}
	u, err := s.thumbnails.URL(ctx, name)
	if err != nil {
		s.log.WithError(err).WithField("thumbnail", name).Warn("blog: resolve thumbnail")
		return ""
	}
	return u
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
