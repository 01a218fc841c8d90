package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blog-client/internal/domain"
	"blog-client/internal/interaction"
)

func (a *App) login(ctx context.Context, _ *domain.User, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = a.prompt("Email"); err != nil {
			return err
		}
	}
	pw, err := a.password("Password")
	if err != nil {
		return err
	}
	_, err = a.auth.Login(ctx, email, pw)
	return err
}

func (a *App) register(ctx context.Context, _ *domain.User, _ []string) error {
	var reg domain.Registration
	var err error
	if reg.Name, err = a.prompt("Name"); err != nil {
		return err
	}
	if reg.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if reg.Password, err = a.password("Password"); err != nil {
		return err
	}
	if reg.ConfirmPassword, err = a.password("Confirm password"); err != nil {
		return err
	}
	if reg.DateOfBirth, err = a.prompt("Date of birth (YYYY-MM-DD)"); err != nil {
		return err
	}
	if reg.Biography, err = a.prompt("Biography"); err != nil {
		return err
	}
	_, err = a.auth.Register(ctx, reg)
	return err
}

func (a *App) logout(ctx context.Context, _ *domain.User, _ []string) error {
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami(_ context.Context, user *domain.User, _ []string) error {
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if user.DateOfBirth != "" {
		fmt.Fprintf(a.out, "born %s\n", user.DateOfBirth)
	}
	if user.Biography != "" {
		fmt.Fprintln(a.out, user.Biography)
	}
	return nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) listBlogs(ctx context.Context, _ *domain.User, args []string) error {
	fs := newFlags("blogs")
	page := fs.Int("page", 1, "page number")
	sortBy := fs.String("sort", "", "likes or comments")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	res, err := a.blogs.List(ctx, domain.ListQuery{Page: *page, Sort: *sortBy})
	if err != nil {
		return err
	}
	a.printPage(res)
	return nil
}

func (a *App) search(ctx context.Context, _ *domain.User, args []string) error {
	fs := newFlags("search")
	page := fs.Int("page", 1, "page number")
	filter := fs.String("filter", "all", "all, username, judul or content")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: search text is required", ErrUsage)
	}

	res, err := a.blogs.Search(ctx, domain.SearchQuery{Page: *page, Search: text, Filter: *filter})
	if err != nil {
		return err
	}
	a.printPage(res)
	return nil
}

func (a *App) printPage(page domain.BlogPage) {
	if len(page.Blogs) == 0 {
		fmt.Fprintln(a.out, "No blogs found.")
	}
	for _, b := range page.Blogs {
		fmt.Fprintf(a.out, "#%d  %s  by %s  (%d likes, %d comments)\n", b.ID, b.Title, b.User.Name, b.LikeCount, b.CommentCount)
	}
	fmt.Fprintf(a.out, "page %d of %d\n", page.CurrentPage, page.LastPage)
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: blog id is required", ErrUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid blog id %q", ErrUsage, args[0])
	}
	return id, nil
}

func (a *App) show(ctx context.Context, _ *domain.User, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	blog, err := a.blogs.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\nby %s\n", blog.Title, blog.Author.Name)
	if u := a.blogs.ThumbnailURL(ctx, blog.Thumbnail); u != "" {
		fmt.Fprintf(a.out, "thumbnail: %s\n", u)
	}
	fmt.Fprintf(a.out, "\n%s\n\n", blog.Content)

	likes := interaction.NewLikeController(a.backend, a.log, a.notices).Load(ctx, id)
	fmt.Fprintf(a.out, "%s · %s\n", likes.Label(), likes.CountLabel())

	comments := interaction.NewCommentController(a.backend, a.log, a.notices).Load(ctx, id)
	a.printComments(comments)
	return nil
}

func (a *App) printComments(st interaction.CommentState) {
	if st.Error != "" {
		fmt.Fprintln(a.out, st.Error)
	}
	if len(st.Comments) == 0 {
		fmt.Fprintln(a.out, "No comments yet.")
		return
	}
	fmt.Fprintf(a.out, "%d comments\n", len(st.Comments))
	for _, c := range st.Comments {
		fmt.Fprintf(a.out, "- %s (%s): %s\n", c.AuthorName, interaction.FormatTimestamp(c.Timestamp, time.Local), c.Content)
	}
}

func (a *App) like(ctx context.Context, _ *domain.User, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	likes := interaction.NewLikeController(a.backend, a.log, a.notices)
	likes.Load(ctx, id)
	st := likes.Toggle(ctx)
	fmt.Fprintf(a.out, "%s · %s\n", st.Label(), st.CountLabel())
	return nil
}

func (a *App) comment(ctx context.Context, _ *domain.User, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	comments := interaction.NewCommentController(a.backend, a.log, a.notices)
	comments.Load(ctx, id)
	if err := comments.Submit(ctx, strings.Join(args[1:], " ")); err != nil {
		if errors.Is(err, interaction.ErrEmptyComment) {
			return fmt.Errorf("%w: comment text is required", ErrUsage)
		}
		return err
	}
	a.printComments(comments.State())
	return nil
}

func (a *App) create(ctx context.Context, _ *domain.User, _ []string) error {
	var in domain.NewBlog
	var err error
	if in.Title, err = a.prompt("Title"); err != nil {
		return err
	}
	if in.Content, err = a.promptMultiline("Content"); err != nil {
		return err
	}
	path, err := a.prompt("Thumbnail path (optional)")
	if err != nil {
		return err
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open thumbnail: %w", err)
		}
		defer f.Close()
		in.Thumbnail = &domain.Thumbnail{FileName: filepath.Base(path), Body: f}
	}

	blog, err := a.blogs.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created #%d\n", blog.ID)
	return nil
}
