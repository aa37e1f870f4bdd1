package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quicktrain-backend/internal/middleware"
)

type stubRefresher struct {
	access  string
	refresh string
	err     error
	got     []string
}

func (s *stubRefresher) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	s.got = append(s.got, refreshToken)
	return s.access, s.refresh, s.err
}

func sessionRouter(refresher *middleware.SessionRefresher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequireSession(middleware.NewHS256Verifier(testSecret), "sb-access-token", refresher))
	router.GET("/dashboard", func(c *gin.Context) {
		userID, _ := c.Get(middleware.UserIDKey)
		c.String(http.StatusOK, "%v", userID)
	})
	return router
}

func expiredSessionRequest(t *testing.T, refreshToken string) *http.Request {
	t.Helper()
	req, _ := http.NewRequest("GET", "/dashboard", nil)
	expired := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()})
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: expired})
	if refreshToken != "" {
		req.AddCookie(&http.Cookie{Name: "sb-access-token_refresh", Value: refreshToken})
	}
	return req
}

func TestRequireSession_RenewsExpiredSession(t *testing.T) {
	fresh := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
	tokens := &stubRefresher{access: fresh, refresh: "ref-2"}
	router := sessionRouter(middleware.NewSessionRefresher(tokens, false))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, expiredSessionRequest(t, "ref-1"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
	assert.Equal(t, []string{"ref-1"}, tokens.got)

	cookies := w.Header().Values("Set-Cookie")
	require.Len(t, cookies, 2)
	assert.Contains(t, cookies[0], "sb-access-token="+fresh)
	assert.Contains(t, cookies[1], "sb-access-token_refresh=ref-2")
}

func TestRequireSession_RenewalFailures(t *testing.T) {
	tests := []struct {
		name    string
		tokens  *stubRefresher
		refresh string
	}{
		{"no refresh cookie", &stubRefresher{access: "unused"}, ""},
		{"refresh rejected", &stubRefresher{err: errors.New("invalid refresh token")}, "ref-1"},
		{"refreshed token invalid", &stubRefresher{access: "not-a-jwt"}, "ref-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := sessionRouter(middleware.NewSessionRefresher(tt.tokens, false))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, expiredSessionRequest(t, tt.refresh))

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
			assert.Empty(t, w.Header().Values("Set-Cookie"))
		})
	}
}

func TestRequireSession_NilRefresher(t *testing.T) {
	w := httptest.NewRecorder()
	sessionRouter(nil).ServeHTTP(w, expiredSessionRequest(t, "ref-1"))
	assert.Equal(t, http.StatusFound, w.Code)
}
