package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"quicktrain-backend/internal/handlers"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handlers.HealthHandler)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestListModels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/models", handlers.ListModels)

	req, _ := http.NewRequest("GET", "/models", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	for _, id := range []string{"resnet18", "tinybert", "ebm"} {
		assert.Contains(t, w.Body.String(), `"id":"`+id+`"`)
	}
}
