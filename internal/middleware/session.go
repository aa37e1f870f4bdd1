package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quicktrain-backend/internal/logger"
)

// TokenRefresher exchanges a refresh token for a new token pair. Satisfied by
// supabase.Client.
type TokenRefresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (accessToken string, nextRefreshToken string, err error)
}

// RefreshCookieName is the cookie holding the refresh token that belongs to
// the access token cookie cookieName.
func RefreshCookieName(cookieName string) string {
	return cookieName + "_refresh"
}

// SetSessionCookies stores a browser session. The refresh cookie is left
// untouched when refreshToken is empty.
func SetSessionCookies(c *gin.Context, cookieName, accessToken, refreshToken string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, accessToken, 0, "/", "", secure, true)
	if refreshToken != "" {
		c.SetCookie(RefreshCookieName(cookieName), refreshToken, 0, "/", "", secure, true)
	}
}

func ClearSessionCookies(c *gin.Context, cookieName string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshCookieName(cookieName), "", -1, "/", "", secure, true)
}

// SessionRefresher renews a browser session whose access token has expired,
// using the refresh cookie stored at sign-in.
type SessionRefresher struct {
	tokens TokenRefresher
	secure bool
}

func NewSessionRefresher(tokens TokenRefresher, secure bool) *SessionRefresher {
	return &SessionRefresher{tokens: tokens, secure: secure}
}

// renew returns the user id of the refreshed session and writes the new
// cookies. A nil refresher never renews.
func (r *SessionRefresher) renew(c *gin.Context, verifier TokenVerifier, cookieName string) (string, bool) {
	if r == nil {
		return "", false
	}
	refreshToken, err := c.Cookie(RefreshCookieName(cookieName))
	if err != nil || refreshToken == "" {
		return "", false
	}

	accessToken, nextRefreshToken, err := r.tokens.RefreshSession(c.Request.Context(), refreshToken)
	if err != nil {
		logger.Warn("Failed to refresh session", zap.Error(err))
		return "", false
	}
	userID, err := verifier.Verify(c.Request.Context(), accessToken)
	if err != nil {
		logger.Warn("Refreshed token rejected", zap.Error(err))
		return "", false
	}

	SetSessionCookies(c, cookieName, accessToken, nextRefreshToken, r.secure)
	return userID, true
}
