package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"quicktrain-backend/internal/models"
)

const UserIDKey = "user_id"

var ErrNoToken = errors.New("missing access token")

// TokenVerifier resolves a Supabase access token to the user id it was issued
// for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// HS256Verifier checks the token signature locally with the project JWT
// secret.
type HS256Verifier struct {
	secret []byte
}

func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret)}
}

func (v *HS256Verifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if len(strings.Split(tokenString, ".")) != 3 {
		return "", fmt.Errorf("invalid token format: JWT token must have 3 parts separated by dots")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("token signature is invalid - check JWT secret")
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("token has expired")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("token is malformed - ensure you're using a valid Supabase JWT token")
		default:
			return "", err
		}
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("missing user id in token")
	}
	return sub, nil
}

// SupabaseUserResolver is satisfied by supabase.Client.
type SupabaseUserResolver interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// SupabaseVerifier delegates verification to Supabase Auth. Used when no JWT
// secret is configured.
type SupabaseVerifier struct {
	resolver SupabaseUserResolver
}

func NewSupabaseVerifier(resolver SupabaseUserResolver) *SupabaseVerifier {
	return &SupabaseVerifier{resolver: resolver}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	return v.resolver.VerifyToken(ctx, token)
}

// ExtractToken reads the access token from the Authorization header, falling
// back to the session cookie.
func ExtractToken(c *gin.Context, cookieName string) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", fmt.Errorf("invalid authorization header format")
		}
		return normalizeToken(parts[1])
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return normalizeToken(cookie)
		}
	}
	return "", ErrNoToken
}

func normalizeToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	// tokens copied from URLs arrive percent-encoded
	if decoded, err := url.QueryUnescape(token); err == nil {
		token = decoded
	}
	return token, nil
}

// AuthMiddleware guards the JSON API. Requests without a valid token get 401.
func AuthMiddleware(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractToken(c, cookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token", Message: err.Error()})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// RequireSession guards the pages. An expired session is renewed through
// refresher when one is given; visitors without a valid session are sent to
// the landing page.
func RequireSession(verifier TokenVerifier, cookieName string, refresher *SessionRefresher) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractToken(c, cookieName)
		if err == nil {
			var userID string
			if userID, err = verifier.Verify(c.Request.Context(), token); err == nil {
				c.Set(UserIDKey, userID)
				c.Next()
				return
			}
		}
		if userID, ok := refresher.renew(c, verifier, cookieName); ok {
			c.Set(UserIDKey, userID)
			c.Next()
			return
		}

		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}

// OptionalSession sets the user id when a valid session exists and never
// blocks the request.
func OptionalSession(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := ExtractToken(c, cookieName); err == nil {
			if userID, err := verifier.Verify(c.Request.Context(), token); err == nil {
				c.Set(UserIDKey, userID)
			}
		}
		c.Next()
	}
}
