package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/trainer"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && f.failOn == name {
		return errors.New("bucket unavailable")
	}
	f.objects[name] = data
	f.types[name] = contentType
	return nil
}

type fakeRegistry struct {
	mu       sync.Mutex
	appended []string
	lists    map[uuid.UUID][]string
	err      error
}

func (f *fakeRegistry) AppendProject(ctx context.Context, userID uuid.UUID, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, filename)
	return nil
}

func (f *fakeRegistry) ListProjects(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.lists[userID]...), nil
}

type fakeSubmitter struct {
	calls []trainer.JobDescriptor
	err   error
}

func (f *fakeSubmitter) Submit(ctx context.Context, d trainer.JobDescriptor) error {
	f.calls = append(f.calls, d)
	return f.err
}

type fakePublisher struct {
	mu       sync.Mutex
	statuses []string
	err      error
	// hold, when set, blocks every publish until it is closed
	hold chan struct{}
}

func (f *fakePublisher) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	if f.hold != nil {
		<-f.hold
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, payload["status"].(string))
	return f.err
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statuses...)
}

type fakeProber struct {
	mu       sync.Mutex
	existing map[string]bool
	broken   map[string]bool
	probed   []string
}

func (f *fakeProber) Exists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probed = append(f.probed, name)
	if f.broken[name] {
		return false, errors.New("connection reset")
	}
	return f.existing[name], nil
}

func (f *fakeProber) PublicURL(name string) string {
	return "https://abc.supabase.co/storage/v1/object/public/images-bucket/" + name
}

func imageFolder(files ...string) []models.DatasetFile {
	out := make([]models.DatasetFile, 0, len(files))
	for _, name := range files {
		out = append(out, models.DatasetFile{Path: "pets/" + name, Name: name, Data: []byte("img:" + name)})
	}
	return out
}
