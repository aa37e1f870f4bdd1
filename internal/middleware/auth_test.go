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

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tokenString
}

func apiRouter(verifier middleware.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(verifier, "sb-access-token"))
	router.GET("/test", func(c *gin.Context) {
		userID, _ := c.Get(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	router := apiRouter(middleware.NewHS256Verifier(testSecret))

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := apiRouter(middleware.NewHS256Verifier(testSecret))

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "3 parts")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := apiRouter(middleware.NewHS256Verifier(testSecret))
	tokenString := signedToken(t, jwt.MapClaims{"sub": "user-123"})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	router := apiRouter(middleware.NewHS256Verifier(testSecret))
	tokenString := signedToken(t, jwt.MapClaims{"sub": "user-456"})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: tokenString})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-456")
}

func TestHS256Verifier_Rejects(t *testing.T) {
	verifier := middleware.NewHS256Verifier(testSecret)

	expired := signedToken(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err := verifier.Verify(context.Background(), expired)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	noSub := signedToken(t, jwt.MapClaims{"role": "authenticated"})
	_, err = verifier.Verify(context.Background(), noSub)
	assert.Error(t, err)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"})
	wrongKey, _ := other.SignedString([]byte("another-secret"))
	_, err = verifier.Verify(context.Background(), wrongKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

type stubResolver struct {
	userID string
	err    error
}

func (s stubResolver) VerifyToken(ctx context.Context, token string) (string, error) {
	return s.userID, s.err
}

func TestSupabaseVerifier(t *testing.T) {
	router := apiRouter(middleware.NewSupabaseVerifier(stubResolver{userID: "remote-user"}))

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer opaque")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "remote-user")

	router = apiRouter(middleware.NewSupabaseVerifier(stubResolver{err: errors.New("invalid JWT")}))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSession_RedirectsToLanding(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequireSession(middleware.NewHS256Verifier(testSecret), "sb-access-token", nil))
	router.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })

	req, _ := http.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: signedToken(t, jwt.MapClaims{"sub": "u"})})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractToken_BadHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Authorization", "Token abc")

	_, err := middleware.ExtractToken(c, "sb-access-token")
	assert.Error(t, err)

	c.Request.Header.Del("Authorization")
	_, err = middleware.ExtractToken(c, "sb-access-token")
	assert.ErrorIs(t, err, middleware.ErrNoToken)
}
