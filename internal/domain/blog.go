package domain

import (
	"io"
	"time"
)

// Author is the embedded owner of a blog post.
type Author struct {
	ID          int64  `json:"ID"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"tanggal_lahir"`
	Biography   string `json:"biografi"`
}

// Blog is a post as listed by the backend.
type Blog struct {
	ID           int64      `json:"ID"`
	CreatedAt    time.Time  `json:"CreatedAt"`
	UpdatedAt    time.Time  `json:"UpdatedAt"`
	DeletedAt    *time.Time `json:"DeletedAt,omitempty"`
	Title        string     `json:"judul"`
	Content      string     `json:"content"`
	Thumbnail    string     `json:"thumbnail"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	UserID       int64      `json:"user_id"`
	User         Author     `json:"User"`
}

// BlogPage is one page of the main listing.
type BlogPage struct {
	Blogs       []Blog `json:"data"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Blogs []Blog `json:"data"`
	Total int    `json:"total"`
}

// ListQuery selects a page of the main listing.
type ListQuery struct {
	Page    int
	PerPage int
	Sort    string
}

// SearchQuery selects a page of search results.
type SearchQuery struct {
	Page    int
	PerPage int
	Search  string
	Filter  string
}

// Thumbnail is an image attached to a new post.
type Thumbnail struct {
	FileName string
	Body     io.Reader
}

// NewBlog carries the create form.
type NewBlog struct {
	Title     string
	Content   string
	Thumbnail *Thumbnail
}

// LikeStatus is the like state of one blog for the current user.
type LikeStatus struct {
	Liked bool `json:"liked"`
	Count int  `json:"like_count"`
}

// LikeToggle is the server echo of a toggle.
type LikeToggle struct {
	Liked bool `json:"liked"`
}

// Comment is one entry of a blog's comment list.
type Comment struct {
	ID         int64     `json:"id"`
	AuthorName string    `json:"name"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// BlogDetail is the single-post view served by /api/blog/{id}.
type BlogDetail struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Thumbnail string `json:"thumbnail"`
	Author    struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
}
