package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"quicktrain-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// VerifyToken asks Supabase Auth which user owns the access token. Used when
// no JWT secret is configured for local verification.
func (c *Client) VerifyToken(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user, err := c.Supabase.Auth.WithToken(token).GetUser()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user from token: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("no user for token")
	}

	return user.ID.String(), nil
}

// RefreshSession exchanges a refresh token for a new access and refresh token
// pair. The shared client is not switched to the new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	token, err := c.Supabase.Auth.RefreshToken(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to refresh session: %w", err)
	}
	if token == nil || token.AccessToken == "" {
		return "", "", fmt.Errorf("no session returned for refresh token")
	}

	return token.AccessToken, token.RefreshToken, nil
}
