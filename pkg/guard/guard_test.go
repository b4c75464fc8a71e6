package guard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftorigin/storefront/pkg/session"
	"github.com/craftorigin/storefront/pkg/storage"
)

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	s := session.New(storage.NewMemoryStore())

	d := RequireAuth(s)
	require.False(t, d.Allow)
	require.Equal(t, LoginRoute, d.RedirectTo)
}

func TestRequireAuthAllowsAuthenticated(t *testing.T) {
	s := session.New(storage.NewMemoryStore())
	s.Login("tok", session.User{ID: "u1", Role: session.RoleBuyer})

	d := RequireAuth(s)
	require.True(t, d.Allow)
	require.Empty(t, d.RedirectTo)
}

func TestGuardsPassThroughWithoutStorage(t *testing.T) {
	// Server-side render pass: no durable storage, never block rendering.
	require.True(t, RequireAuth(nil).Allow)
	require.True(t, RequireAdmin(nil).Allow)

	detached := session.New(nil)
	require.True(t, RequireAuth(detached).Allow)
	require.True(t, RequireAdmin(detached).Allow)
}

func TestRequireAdminChecksRole(t *testing.T) {
	s := session.New(storage.NewMemoryStore())
	s.Login("tok", session.User{ID: "u1", Role: session.RoleBuyer})

	d := RequireAdmin(s)
	require.False(t, d.Allow)
	require.Equal(t, LoginRoute, d.RedirectTo)

	s.Login("tok", session.User{ID: "u2", Role: session.RoleAdmin})
	require.True(t, RequireAdmin(s).Allow)
}
