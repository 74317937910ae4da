// Package guard decides whether protected content renders for the current
// session. Decisions are pure: no network, no state, only a navigation signal.
package guard

import (
	"github.com/Joud158/PolyLab/core/session"
	"github.com/Joud158/PolyLab/core/user"
)

type Action int

const (
	// Pending: the session bootstrap has not finished; render nothing so an
	// anonymous-looking instant does not flash a redirect.
	Pending Action = iota
	Redirect
	Allow
)

func (a Action) String() string {
	switch a {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	}
	return "unknown"
}

type Decision struct {
	Action Action
	Target string // set when Action == Redirect
}

const loginPath = "/login"

// Authorize gates a route that requires one of the allowed roles.
// Disallowed roles bounce to their own dashboard rather than a shared
// fallback, so an instructor hitting /admin lands on /instructor.
func Authorize(sess session.Session, allowed ...user.Role) Decision {
	if !sess.Ready {
		return Decision{Action: Pending}
	}
	if sess.Identity == nil {
		return Decision{Action: Redirect, Target: loginPath}
	}
	if !sess.Identity.Role.In(allowed) {
		return Decision{Action: Redirect, Target: sess.Identity.Role.HomePath()}
	}
	return Decision{Action: Allow}
}
