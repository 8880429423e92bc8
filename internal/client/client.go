package client

import (
	"context"

	"github.com/lingo-labs/lingo/internal/authstate"
	"github.com/lingo-labs/lingo/internal/config"
	"github.com/lingo-labs/lingo/internal/user"
)

// Client ties the tier together: API transport, session cache, navigation
// gate, and theme preference. Mutations invalidate the session cache so the
// next identity query refetches; there is no manual cache merging.
type Client struct {
	api     *API
	session *Session
	themes  *ThemeStore
}

func New(cfg config.ClientConfig) (*Client, error) {
	api, err := NewAPI(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	themes, err := NewThemeStore()
	if err != nil {
		return nil, err
	}

	return &Client{
		api:     api,
		session: NewSession(api),
		themes:  themes,
	}, nil
}

// Signup creates an account and refreshes the cached identity.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*user.User, error) {
	u, err := c.api.Signup(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	c.session.Invalidate()
	return u, nil
}

// Login authenticates and refreshes the cached identity.
func (c *Client) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.session.Invalidate()
	return u, nil
}

// Logout ends the session and refreshes the cached identity.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.api.Logout(ctx); err != nil {
		return err
	}
	c.session.Invalidate()
	return nil
}

// Onboard completes the profile and refreshes the cached identity.
func (c *Client) Onboard(ctx context.Context, profile user.Profile) (*user.User, error) {
	u, err := c.api.Onboard(ctx, profile)
	if err != nil {
		return nil, err
	}
	c.session.Invalidate()
	return u, nil
}

// AuthUser returns the cached identity (nil when anonymous).
func (c *Client) AuthUser(ctx context.Context) (*user.User, error) {
	return c.session.Current(ctx)
}

// Route resolves a requested path against the cached authorization state,
// mirroring the server's rules. The caller renders or redirects accordingly.
func (c *Client) Route(ctx context.Context, path string) (authstate.Decision, error) {
	state, err := c.session.State(ctx)
	if err != nil {
		return authstate.Decision{}, err
	}
	return authstate.Resolve(state, path), nil
}

// ChatToken mints a provider token for the chat/video SDK.
func (c *Client) ChatToken(ctx context.Context) (string, error) {
	return c.api.ChatToken(ctx)
}

// Theme returns the persisted UI theme.
func (c *Client) Theme() string {
	return c.themes.Theme()
}

// SetTheme persists the UI theme.
func (c *Client) SetTheme(theme string) error {
	return c.themes.SetTheme(theme)
}
