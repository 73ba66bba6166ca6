package session

import (
	"path"
	"strings"
)

// Action is what the guard asks the router to do.
type Action int

const (
	ActionNone Action = iota
	ActionRedirect
)

// Decision is the outcome of evaluating one navigation.
type Decision struct {
	Action   Action
	Location string
}

// Guard gates non-public paths behind an authenticated session.
type Guard struct {
	loginPath string
	public    map[string]struct{}
}

// NewGuard builds a guard whose allow-list always contains loginPath.
func NewGuard(loginPath string, publicPaths ...string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	g := &Guard{loginPath: loginPath, public: map[string]struct{}{normalize(loginPath): {}}}
	for _, p := range publicPaths {
		g.public[normalize(p)] = struct{}{}
	}
	return g
}

// LoginPath is where unauthenticated visitors are sent.
func (g *Guard) LoginPath() string { return g.loginPath }

// IsPublic reports whether p is on the allow-list.
func (g *Guard) IsPublic(p string) bool {
	_, ok := g.public[normalize(p)]
	return ok
}

// Evaluate decides a navigation. While loading it never redirects; once resolved it
// redirects only unauthenticated visitors of non-public paths.
func (g *Guard) Evaluate(p string, snap Snapshot) Decision {
	if snap.State != StateUnauthenticated {
		return Decision{Action: ActionNone}
	}
	if g.IsPublic(p) {
		return Decision{Action: ActionNone}
	}
	return Decision{Action: ActionRedirect, Location: g.loginPath}
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
