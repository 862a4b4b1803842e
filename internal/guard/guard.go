// Package guard implements the decision core of the client-side redirect
// guard: a finite state machine a UI shell drives. The shell renders what
// the guard tells it to and performs redirects the guard emits; the guard
// owns all the ordering rules so the shell cannot get them wrong.
package guard

import (
	"net/url"
	"sync"

	"github.com/wecare-dev/wecare/internal/user"
)

type State int

const (
	// StateInit: the async "who am I" check has not resolved. Nothing but
	// the neutral loading view may render, not even for one frame.
	StateInit State = iota
	StateResolved
	// StateRedirected is terminal: the one redirect this guard will ever
	// emit has been emitted.
	StateRedirected
	// StateAborted: the owner went away before resolution; no redirect may
	// fire afterwards.
	StateAborted
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionRenderLoading
	ActionRenderChildren
	ActionRedirect
)

// Action tells the shell what to do right now. Target is set only for
// ActionRedirect.
type Action struct {
	Kind   ActionKind
	Target string
}

// AuthState is the resolved answer of the async identity check.
type AuthState struct {
	Authenticated bool
	Role          user.Role
}

type Guard struct {
	mu          sync.Mutex
	state       State
	allowed     []user.Role
	currentPath string
	loginPath   string
	defaultPath string
	render      bool
}

const (
	DefaultLoginPath     = "/login"
	DefaultDashboardPath = "/dashboard"
	CallbackParam        = "callback"
)

// New builds a guard for one protected subtree. currentPath is the path the
// user originally asked for; it rides along to login as the callback so the
// user lands back where they were headed.
func New(allowed []user.Role, currentPath string) *Guard {
	return &Guard{
		state:       StateInit,
		allowed:     allowed,
		currentPath: currentPath,
		loginPath:   DefaultLoginPath,
		defaultPath: DefaultDashboardPath,
	}
}

// Current reports what the shell should render for the present state. It
// never emits a redirect; redirects come out of Resolve exactly once.
func (g *Guard) Current() Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateInit:
		return Action{Kind: ActionRenderLoading}
	case StateResolved:
		if g.render {
			return Action{Kind: ActionRenderChildren}
		}
		return Action{Kind: ActionRenderLoading}
	default:
		return Action{Kind: ActionNone}
	}
}

// Resolve feeds the result of the identity check into the machine and
// returns the single resulting action. Calling it again, or after Abort,
// yields ActionNone: the redirect side effect is one-shot.
func (g *Guard) Resolve(auth AuthState) Action {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateInit {
		return Action{Kind: ActionNone}
	}

	if !auth.Authenticated {
		g.state = StateRedirected
		return Action{Kind: ActionRedirect, Target: g.loginTarget()}
	}

	for _, role := range g.allowed {
		if auth.Role == role {
			g.state = StateResolved
			g.render = true
			return Action{Kind: ActionRenderChildren}
		}
	}

	// wrong role: send to the landing page, never to a dead end
	g.state = StateRedirected
	return Action{Kind: ActionRedirect, Target: g.defaultPath}
}

// Abort cancels the guard; a resolution arriving later must not redirect.
// The shell calls this when the protected subtree unmounts.
func (g *Guard) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateInit {
		g.state = StateAborted
	}
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) loginTarget() string {
	if g.currentPath == "" {
		return g.loginPath
	}
	return g.loginPath + "?" + CallbackParam + "=" + url.QueryEscape(g.currentPath)
}
