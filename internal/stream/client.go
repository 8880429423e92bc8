// Package stream wraps the Stream chat/video SaaS. The provider keeps its
// own copy of every user; the application pushes updates to it best-effort
// and accepts skew when an upsert fails.
package stream

import (
	"context"
	"fmt"
	"time"

	stream "github.com/GetStream/stream-chat-go/v6"
)

// Provider is the surface the rest of the application sees. Tests substitute
// an in-memory fake.
type Provider interface {
	// UpsertUser creates or updates the provider's copy of a user.
	UpsertUser(ctx context.Context, userID, name, image string) error
	// CreateToken mints a provider token the client SDK uses to join
	// chat channels and calls.
	CreateToken(userID string) (string, error)
}

// Client is the production Provider backed by the Stream SDK. The underlying
// client is safe for concurrent use and is created once at startup.
type Client struct {
	client *stream.Client
}

func NewClient(apiKey, apiSecret string) (*Client, error) {
	c, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream client: %w", err)
	}

	return &Client{client: c}, nil
}

func (c *Client) UpsertUser(ctx context.Context, userID, name, image string) error {
	_, err := c.client.UpsertUser(ctx, &stream.User{
		ID:    userID,
		Name:  name,
		Image: image,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert stream user: %w", err)
	}

	return nil
}

func (c *Client) CreateToken(userID string) (string, error) {
	// Zero expiry: the token lives until the provider-side user is removed
	token, err := c.client.CreateToken(userID, time.Time{})
	if err != nil {
		return "", fmt.Errorf("failed to create stream token: %w", err)
	}

	return token, nil
}
