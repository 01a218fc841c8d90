package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blog-client/internal/domain"
	"blog-client/internal/session"
)

func TestDecide(t *testing.T) {
	user := &domain.User{ID: 1, Email: "a@b.c"}
	authed := session.State{User: user, IsAuthenticated: true}
	anon := session.State{}

	tests := []struct {
		name    string
		st      session.State
		class   Classification
		loc     string
		mounted bool
		want    Decision
	}{
		{"loading hides content", session.State{IsLoading: true, User: user, IsAuthenticated: true}, Protected, "/dashboard", true, Decision{Kind: ShowLoading}},
		{"first pass hides content", authed, Protected, "/dashboard", false, Decision{Kind: ShowLoading}},
		{"protected anon", anon, Protected, "/dashboard", true, Decision{Kind: Redirect, Target: "/login?redirect=/dashboard", Denied: true}},
		{"protected authed", authed, Protected, "/dashboard", true, Decision{Kind: Render, User: user}},
		{"public authed", authed, Public, "/login", true, Decision{Kind: Redirect, Target: "/", Replace: true}},
		{"public authed redirect", authed, Public, "/login?redirect=/blog/5", true, Decision{Kind: Redirect, Target: "/blog/5", Replace: true}},
		{"public authed external redirect", authed, Public, "/login?redirect=//evil.example", true, Decision{Kind: Redirect, Target: "/", Replace: true}},
		{"public anon", anon, Public, "/login", true, Decision{Kind: Render}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.st, tt.class, ParseLocation(tt.loc), tt.mounted)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoginURL_EscapesQueryBreakers(t *testing.T) {
	assert.Equal(t, "/login?redirect=/", LoginURL(""))
	assert.Equal(t, "/login?redirect=/a%26b%3Fc", LoginURL("/a&b?c"))
	assert.Equal(t, "/a&b?c", ParseLocation(LoginURL("/a&b?c")).Query.Get(RedirectParam))
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/x", SafeRedirect("/x"))
	assert.Equal(t, "/", SafeRedirect("https://evil.example"))
	assert.Equal(t, "/", SafeRedirect(`/\evil.example`))
	assert.Equal(t, "/", SafeRedirect(""))
}
