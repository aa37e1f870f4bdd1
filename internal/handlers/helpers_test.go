package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"quicktrain-backend/internal/middleware"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/services"
)

var testUserID = uuid.MustParse("3f1c2a4e-6b7d-4e8f-9a0b-1c2d3e4f5a6b")

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

type fakeRegistry struct {
	ensured []uuid.UUID
	err     error
}

func (f *fakeRegistry) EnsureUser(ctx context.Context, userID uuid.UUID) error {
	f.ensured = append(f.ensured, userID)
	return f.err
}

type fakeSubmitter struct {
	got    *models.TrainingRequest
	result *services.JobResult
	err    error
}

func (f *fakeSubmitter) Submit(ctx context.Context, req *models.TrainingRequest) (*services.JobResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeResolver struct {
	projects []models.Project
	err      error
}

func (f *fakeResolver) Resolve(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return f.projects, f.err
}

func (f *fakeResolver) Find(ctx context.Context, userID uuid.UUID, filename string) (models.Project, error) {
	if f.err != nil {
		return models.Project{}, f.err
	}
	for _, p := range f.projects {
		if p.Filename == filename {
			return p, nil
		}
	}
	return models.Project{}, services.ErrProjectNotFound
}

type formFile struct {
	field    string
	filename string
	data     string
}

func multipartRequest(t *testing.T, target string, values map[string][]string, files []formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, target, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func sampleProjects() []models.Project {
	return []models.Project{
		{Filename: "tinybert_x.zip", ID: "tinybert_x", Name: "TinyBERT", Architecture: "TinyBERT", Status: models.StatusInProgress, DownloadURL: "https://x/models/tinybert_x.zip"},
		{Filename: "resnet18_ab12cd34.pth", ID: "resnet18_ab12cd34", Name: "ResNet-18", Architecture: "ResNet-18", Status: models.StatusComplete, DownloadURL: "https://x/models/resnet18_ab12cd34.pth"},
	}
}
