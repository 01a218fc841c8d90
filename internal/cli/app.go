// Package cli is the terminal front end. Every command is a page behind
// the route guard; the shell keeps the last page open and treats each
// entered line as a focus event.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"blog-client/internal/domain"
	"blog-client/internal/guard"
	"blog-client/internal/interaction"
	"blog-client/internal/notice"
	"blog-client/internal/service"
	"blog-client/internal/session"
	"blog-client/internal/storage"
	"blog-client/internal/tokenstore"
)

var (
	// ErrDenied is returned when a protected command runs without a session.
	ErrDenied = errors.New("login required")
	// ErrUnknownCommand is returned for a command name that does not exist.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned for malformed command arguments.
	ErrUsage = errors.New("usage")
)

// Backend is the blog API as used by the terminal client.
type Backend interface {
	service.AuthAPI
	service.BlogAPI
	interaction.LikeAPI
	interaction.CommentAPI
}

type Deps struct {
	Backend    Backend
	Sessions   *session.Store
	Tokens     tokenstore.Store
	Thumbnails storage.ThumbnailResolver
	In         io.Reader
	Out        io.Writer
	Log        logrus.FieldLogger
}

type command struct {
	class guard.Classification
	usage string
	// whether the command is a page; actions such as logout bypass the guard
	gated bool
	run   func(ctx context.Context, user *domain.User, args []string) error
}

type App struct {
	backend  Backend
	sessions *session.Store
	guard    *guard.Guard
	focus    *guard.FocusBus
	auth     service.AuthService
	blogs    service.BlogService
	notices  notice.Notifier
	in       *bufio.Reader
	out      io.Writer
	log      logrus.FieldLogger

	commands map[string]command
}

func NewApp(d Deps) *App {
	a := &App{
		backend:  d.Backend,
		sessions: d.Sessions,
		focus:    guard.NewFocusBus(),
		in:       bufio.NewReader(d.In),
		out:      d.Out,
		log:      d.Log,
	}
	a.notices = notice.Func(a.printNotice)
	a.guard = guard.New(d.Sessions, d.Tokens, d.Backend, a.notices, d.Log)
	a.auth = service.NewAuthService(d.Backend, d.Sessions, d.Tokens, a.notices, d.Log)
	a.blogs = service.NewBlogService(d.Backend, d.Thumbnails, a.notices, d.Log)

	a.commands = map[string]command{
		"login":    {class: guard.Public, gated: true, usage: "login [email]", run: a.login},
		"register": {class: guard.Public, gated: true, usage: "register", run: a.register},
		"logout":   {usage: "logout", run: a.logout},
		"whoami":   {class: guard.Protected, gated: true, usage: "whoami", run: a.whoami},
		"blogs":    {class: guard.Protected, gated: true, usage: "blogs [-page n] [-sort likes|comments]", run: a.listBlogs},
		"search":   {class: guard.Protected, gated: true, usage: "search [-filter all|username|judul|content] [-page n] <text>", run: a.search},
		"show":     {class: guard.Protected, gated: true, usage: "show <id>", run: a.show},
		"like":     {class: guard.Protected, gated: true, usage: "like <id>", run: a.like},
		"comment":  {class: guard.Protected, gated: true, usage: "comment <id> <text>", run: a.comment},
		"create":   {class: guard.Protected, gated: true, usage: "create", run: a.create},
	}
	return a
}

func (a *App) printNotice(n notice.Notice) {
	fmt.Fprintf(a.out, "[%s] %s: %s\n", n.Level, n.Title, n.Message)
}

// printer shows guard navigations as hints.
type printer struct {
	out io.Writer
}

func (p printer) Push(target string)    { fmt.Fprintf(p.out, "→ %s\n", target) }
func (p printer) Replace(target string) { fmt.Fprintf(p.out, "→ %s\n", target) }

// Run executes a single command. It closes the page before returning.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.help()
		return fmt.Errorf("%w: blogctl <command> [args]", ErrUsage)
	}
	if args[0] == "shell" {
		return a.Shell(ctx)
	}
	closePage, err := a.open(ctx, args[0], args[1:])
	closePage()
	return err
}

// open mounts the named command as a page and renders it. The returned
// func unmounts the page.
func (a *App) open(ctx context.Context, name string, args []string) (func(), error) {
	cmd, ok := a.commands[name]
	if !ok {
		return func() {}, fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}
	if !cmd.gated {
		return func() {}, cmd.run(ctx, a.sessions.User(), args)
	}

	page := a.guard.Wrap(func(ctx context.Context, user *domain.User) error {
		return cmd.run(ctx, user, args)
	}, cmd.class)
	loc := guard.Location{Path: "/" + name, Query: url.Values{}}
	unmount := page.Mount(ctx, loc, printer{out: a.out}, a.focus)

	d, err := page.Render(ctx)
	if d.Kind == guard.Redirect && d.Denied {
		return unmount, ErrDenied
	}
	if errors.Is(err, ErrUsage) {
		fmt.Fprintf(a.out, "usage: %s\n", cmd.usage)
	}
	return unmount, err
}

// Shell reads commands until EOF or exit. A line that does not open a
// new page re-verifies the page left open by the previous command.
func (a *App) Shell(ctx context.Context) error {
	closePage := func() {}
	defer func() { closePage() }()

	for {
		fmt.Fprintf(a.out, "blog %s> ", a.status())
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			a.focus.Focus()
			continue
		}
		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return nil
		case "help":
			a.focus.Focus()
			a.help()
			continue
		}

		// the next page verifies on mount
		closePage()
		next, err := a.open(ctx, parts[0], parts[1:])
		closePage = next
		if err != nil && !errors.Is(err, ErrDenied) && !errors.Is(err, ErrUsage) {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

func (a *App) status() string {
	if u := a.sessions.User(); u != nil {
		return "(" + u.Name + ")"
	}
	return "(guest)"
}

func (a *App) help() {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(a.out, "Available commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", a.commands[name].usage)
	}
	fmt.Fprintln(a.out, "  shell")
}
