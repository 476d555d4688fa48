// Package guard decides whether a protected view may render for the
// current session. It is a pure function of session state; it performs
// no I/O and grants nothing; the server re-checks every permission.
package guard

import (
	"slices"

	"github.com/ocontest/ocontest-cli/internal/client"
	"github.com/ocontest/ocontest-cli/internal/session"
)

// Action is the guard's verdict for a protected view.
type Action int

const (
	// ActionRender allows the protected view.
	ActionRender Action = iota

	// ActionPlaceholder renders a neutral placeholder because session
	// hydration hasn't finished. Deciding earlier would flash a
	// redirect to login on every cold start.
	ActionPlaceholder

	// ActionRedirectLogin sends an unauthenticated user to login,
	// preserving the attempted path for the post-login return.
	ActionRedirectLogin

	// ActionRedirect sends an authenticated user with the wrong role to
	// their own landing view. Never to login: the user IS logged in.
	ActionRedirect
)

// Well-known view paths.
const (
	LoginPath        = "/login"
	HomePath         = "/"
	BrandDashboard   = "/brand-dashboard"
	CreatorDashboard = "/creator-dashboard"
)

// Decision carries the verdict and, for redirects, where to go.
type Decision struct {
	Action   Action
	Target   string
	ReturnTo string
}

// Evaluate gates a protected view. roles is the set allowed to see it;
// empty means any authenticated user.
func Evaluate(st session.State, path string, roles ...string) Decision {
	if st.Loading {
		return Decision{Action: ActionPlaceholder}
	}

	if !st.Authenticated() {
		return Decision{Action: ActionRedirectLogin, Target: LoginPath, ReturnTo: path}
	}

	if len(roles) > 0 && !slices.Contains(roles, st.User.Role) {
		return Decision{Action: ActionRedirect, Target: LandingFor(st.User.Role)}
	}

	return Decision{Action: ActionRender}
}

// LandingFor maps a role to its single default destination.
func LandingFor(role string) string {
	switch role {
	case client.RoleBrand:
		return BrandDashboard
	case client.RoleCreator:
		return CreatorDashboard
	default:
		return HomePath
	}
}
