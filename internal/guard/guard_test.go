package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ocontest/ocontest-cli/internal/session"
)

func creatorState() session.State {
	return session.State{User: &session.UserRecord{ID: 1, Role: "creator"}}
}

func brandState() session.State {
	return session.State{User: &session.UserRecord{ID: 2, Role: "brand"}}
}

func TestEvaluate(t *testing.T) {
	t.Run("placeholder while hydrating", func(t *testing.T) {
		decision := Evaluate(session.State{Loading: true}, "/creator-dashboard", "creator")
		assert.Equal(t, ActionPlaceholder, decision.Action)
		assert.Empty(t, decision.Target, "no redirect decision before hydration")
	})

	t.Run("anonymous users go to login with the return path", func(t *testing.T) {
		decision := Evaluate(session.State{}, "/creator-dashboard", "creator")
		assert.Equal(t, ActionRedirectLogin, decision.Action)
		assert.Equal(t, LoginPath, decision.Target)
		assert.Equal(t, "/creator-dashboard", decision.ReturnTo)
	})

	t.Run("matching role renders", func(t *testing.T) {
		decision := Evaluate(creatorState(), "/creator-dashboard", "creator")
		assert.Equal(t, ActionRender, decision.Action)
	})

	t.Run("no role requirement renders for any authenticated user", func(t *testing.T) {
		assert.Equal(t, ActionRender, Evaluate(creatorState(), "/notifications").Action)
		assert.Equal(t, ActionRender, Evaluate(brandState(), "/notifications").Action)
	})

	t.Run("multiple allowed roles", func(t *testing.T) {
		decision := Evaluate(brandState(), "/contests", "creator", "brand")
		assert.Equal(t, ActionRender, decision.Action)
	})

	t.Run("wrong role lands on its own dashboard, never login", func(t *testing.T) {
		// Deterministic: same input, same destination, every time.
		for range 5 {
			decision := Evaluate(brandState(), "/creator-dashboard", "creator")
			assert.Equal(t, ActionRedirect, decision.Action)
			assert.Equal(t, BrandDashboard, decision.Target)

			decision = Evaluate(creatorState(), "/brand-dashboard", "brand")
			assert.Equal(t, ActionRedirect, decision.Action)
			assert.Equal(t, CreatorDashboard, decision.Target)
		}
	})

	t.Run("unknown role falls back to home", func(t *testing.T) {
		state := session.State{User: &session.UserRecord{ID: 3, Role: "admin"}}
		decision := Evaluate(state, "/creator-dashboard", "creator")
		assert.Equal(t, ActionRedirect, decision.Action)
		assert.Equal(t, HomePath, decision.Target)
	})
}

func TestLandingFor(t *testing.T) {
	assert.Equal(t, BrandDashboard, LandingFor("brand"))
	assert.Equal(t, CreatorDashboard, LandingFor("creator"))
	assert.Equal(t, HomePath, LandingFor(""))
	assert.Equal(t, HomePath, LandingFor("moderator"))
}
