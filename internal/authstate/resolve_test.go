package authstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateFor(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		onboarded     bool
		want          State
	}{
		{"no session", false, false, Anonymous},
		{"no session ignores onboarded flag", false, true, Anonymous},
		{"session without profile", true, false, PendingOnboarding},
		{"session with profile", true, true, Active},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateFor(tt.authenticated, tt.onboarded))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		state State
		path  string
		want  Decision
	}{
		// Home and other protected views
		{"active renders home", Active, "/", Decision{Render: true}},
		{"anonymous home redirects to login", Anonymous, "/", Decision{RedirectTo: PathLogin}},
		{"pending home redirects to onboarding", PendingOnboarding, "/", Decision{RedirectTo: PathOnboarding}},
		{"active renders notifications", Active, "/notifications", Decision{Render: true}},
		{"anonymous notifications redirects to login", Anonymous, "/notifications", Decision{RedirectTo: PathLogin}},
		{"pending notifications redirects to onboarding", PendingOnboarding, "/notifications", Decision{RedirectTo: PathOnboarding}},

		// Parameterized routes match on first segment
		{"active renders chat", Active, "/chat/abc123", Decision{Render: true}},
		{"anonymous chat redirects to login", Anonymous, "/chat/abc123", Decision{RedirectTo: PathLogin}},
		{"pending call redirects to onboarding", PendingOnboarding, "/call/abc123", Decision{RedirectTo: PathOnboarding}},
		{"active renders call", Active, "/call/abc123", Decision{Render: true}},

		// Anonymous-only views
		{"anonymous renders login", Anonymous, "/login", Decision{Render: true}},
		{"anonymous renders signup", Anonymous, "/signup", Decision{Render: true}},
		{"pending login redirects to onboarding", PendingOnboarding, "/login", Decision{RedirectTo: PathOnboarding}},
		{"pending signup redirects to onboarding", PendingOnboarding, "/signup", Decision{RedirectTo: PathOnboarding}},
		{"active login redirects home", Active, "/login", Decision{RedirectTo: PathHome}},
		{"active signup redirects home", Active, "/signup", Decision{RedirectTo: PathHome}},

		// Onboarding view
		{"pending renders onboarding", PendingOnboarding, "/onboarding", Decision{Render: true}},
		{"anonymous onboarding redirects to login", Anonymous, "/onboarding", Decision{RedirectTo: PathLogin}},
		{"active onboarding redirects home", Active, "/onboarding", Decision{RedirectTo: PathHome}},

		// Unknown paths get the protected rule
		{"anonymous unknown path redirects to login", Anonymous, "/friends", Decision{RedirectTo: PathLogin}},
		{"pending unknown path redirects to onboarding", PendingOnboarding, "/friends", Decision{RedirectTo: PathOnboarding}},
		{"active renders unknown path", Active, "/friends", Decision{Render: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.state, tt.path))
		})
	}
}

// A decision never both renders and redirects, and always does one of them.
func TestResolveDecisionsAreExclusive(t *testing.T) {
	states := []State{Anonymous, PendingOnboarding, Active}
	paths := []string{"/", "/login", "/signup", "/onboarding", "/notifications", "/chat/1", "/call/1", "/anything/else", ""}

	for _, state := range states {
		for _, path := range paths {
			d := Resolve(state, path)
			if d.Render {
				assert.Empty(t, d.RedirectTo, "state %v path %q", state, path)
			} else {
				assert.NotEmpty(t, d.RedirectTo, "state %v path %q", state, path)
			}
		}
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "pending_onboarding", PendingOnboarding.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "unknown", State(42).String())
}
