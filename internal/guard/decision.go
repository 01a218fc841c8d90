package guard

import (
	"net/url"
	"strings"

	"blog-client/internal/domain"
	"blog-client/internal/session"
)

// Classification says whether a page needs a session or its absence.
type Classification int

const (
	Protected Classification = iota
	Public
)

func (c Classification) String() string {
	if c == Public {
		return "public"
	}
	return "protected"
}

const (
	LandingRoute  = "/"
	LoginRoute    = "/login"
	RedirectParam = "redirect"
)

// Kind is what the host should do with a page.
type Kind int

const (
	ShowLoading Kind = iota
	Redirect
	Render
)

// Decision is the outcome of Decide.
type Decision struct {
	Kind    Kind
	Target  string
	Replace bool
	Denied  bool
	User    *domain.User
}

// Location is the page being shown.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation splits a request URI into a Location.
func ParseLocation(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{Path: raw, Query: url.Values{}}
	}
	return Location{Path: u.Path, Query: u.Query()}
}

var redirectEscaper = strings.NewReplacer("%", "%25", "&", "%26", "#", "%23", "+", "%2B", " ", "%20", "?", "%3F")

// LoginURL is the login route carrying path as the redirect parameter.
func LoginURL(path string) string {
	if path == "" {
		path = LandingRoute
	}
	return LoginRoute + "?" + RedirectParam + "=" + redirectEscaper.Replace(path)
}

// SafeRedirect returns target when it is a local absolute path, else the
// landing route.
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return LandingRoute
	}
	return target
}

// Decide is the render decision for a page. It never yields protected
// content while loading or before the first render pass.
func Decide(st session.State, class Classification, loc Location, mounted bool) Decision {
	if !mounted || st.IsLoading {
		return Decision{Kind: ShowLoading}
	}
	switch {
	case class == Protected && !st.IsAuthenticated:
		return Decision{Kind: Redirect, Target: LoginURL(loc.Path), Denied: true}
	case class == Public && st.IsAuthenticated:
		target := ""
		if loc.Query != nil {
			target = loc.Query.Get(RedirectParam)
		}
		return Decision{Kind: Redirect, Target: SafeRedirect(target), Replace: true}
	}
	return Decision{Kind: Render, User: st.User}
}
