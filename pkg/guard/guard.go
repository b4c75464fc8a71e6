// Package guard implements the navigation preconditions for protected
// routes, independent of any routing framework.
package guard

import "github.com/craftorigin/storefront/pkg/session"

const LoginRoute = "/login"

// Decision is either allow or a redirect; a guard never fails any other way.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision             { return Decision{Allow: true} }
func redirect(to string) Decision { return Decision{RedirectTo: to} }

// RequireAuth admits authenticated sessions. Without durable storage (a
// server-side render pass) it admits unconditionally so the client can
// re-validate after hydration instead of blocking the initial paint.
func RequireAuth(s *session.Store) Decision {
	if s == nil || !s.Durable() {
		return allow()
	}
	if s.IsAuthenticated() {
		return allow()
	}
	return redirect(LoginRoute)
}

// RequireAdmin admits authenticated sessions whose user carries the ADMIN
// role, with the same server-side pass-through as RequireAuth.
func RequireAdmin(s *session.Store) Decision {
	if s == nil || !s.Durable() {
		return allow()
	}
	u := s.GetUser()
	if s.IsAuthenticated() && u != nil && u.Role == session.RoleAdmin {
		return allow()
	}
	return redirect(LoginRoute)
}
