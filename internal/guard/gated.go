package guard

import (
	"context"
	"sync"

	"blog-client/internal/domain"
	"blog-client/internal/notice"
	"blog-client/internal/session"
)

// Page renders content for the current user. user is nil on public pages
// without a session.
type Page func(ctx context.Context, user *domain.User) error

// Navigator performs redirects chosen by a gated page.
type Navigator interface {
	Push(target string)
	Replace(target string)
}

// FocusSource delivers window-focus events.
type FocusSource interface {
	OnFocus(fn func()) (remove func())
}

// Gated is a page wrapped with a classification.
type Gated struct {
	guard *Guard
	page  Page
	class Classification

	mu          sync.Mutex
	active      bool
	mounted     bool
	loc         Location
	nav         Navigator
	lastTarget  string
	unsubscribe func()
	removeFocus func()
}

// Wrap gates page behind class.
func (g *Guard) Wrap(page Page, class Classification) *Gated {
	return &Gated{guard: g, page: page, class: class}
}

func (p *Gated) Classification() Classification { return p.class }

// Mount verifies the session, re-verifies on every focus event and
// reacts to session changes until the returned unmount is called.
func (p *Gated) Mount(ctx context.Context, loc Location, nav Navigator, focus FocusSource) (unmount func()) {
	p.mu.Lock()
	p.active = true
	p.mounted = false
	p.loc = loc
	p.nav = nav
	p.lastTarget = ""
	p.mu.Unlock()

	unsubscribe := p.guard.sessions.Subscribe(p.reconcile)
	var removeFocus func()
	if focus != nil {
		removeFocus = focus.OnFocus(func() { p.guard.Verify(ctx) })
	}

	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.removeFocus = removeFocus
	p.mu.Unlock()

	p.guard.Verify(ctx)

	p.mu.Lock()
	p.mounted = p.active
	p.mu.Unlock()
	p.reconcile(p.guard.sessions.Snapshot())

	return p.unmount
}

func (p *Gated) unmount() {
	p.mu.Lock()
	p.active = false
	p.mounted = false
	unsubscribe, removeFocus := p.unsubscribe, p.removeFocus
	p.unsubscribe, p.removeFocus = nil, nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if removeFocus != nil {
		removeFocus()
	}
}

// reconcile performs the redirect side effect for st. The same target is
// not navigated to twice in a row.
func (p *Gated) reconcile(st session.State) {
	if st.IsLoading {
		return
	}

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	d := Decide(st, p.class, p.loc, true)
	if d.Kind != Redirect {
		p.lastTarget = ""
		p.mu.Unlock()
		return
	}
	if d.Target == p.lastTarget {
		p.mu.Unlock()
		return
	}
	p.lastTarget = d.Target
	nav := p.nav
	p.mu.Unlock()

	if d.Denied {
		p.guard.notices.Notify(notice.Error("Access denied", "Please login to continue"))
	}
	if nav == nil {
		return
	}
	if d.Replace {
		nav.Replace(d.Target)
	} else {
		nav.Push(d.Target)
	}
}

// View is the current render decision.
func (p *Gated) View() Decision {
	p.mu.Lock()
	mounted, class, loc := p.mounted && p.active, p.class, p.loc
	p.mu.Unlock()
	return Decide(p.guard.sessions.Snapshot(), class, loc, mounted)
}

// Render runs the wrapped page when the decision allows it and returns
// the decision either way.
func (p *Gated) Render(ctx context.Context) (Decision, error) {
	d := p.View()
	if d.Kind != Render {
		return d, nil
	}
	return d, p.page(ctx, d.User)
}
