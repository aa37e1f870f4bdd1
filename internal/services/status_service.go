package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"quicktrain-backend/internal/logger"
	"quicktrain-backend/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectLister interface {
	ListProjects(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type ObjectProber interface {
	Exists(ctx context.Context, objectName string) (bool, error)
	PublicURL(objectName string) string
}

type StatusService struct {
	registry     ProjectLister
	prober       ObjectProber
	modelsPrefix string
	probeLimit   int
}

// NewStatusService builds a resolver probing objects under modelsPrefix.
// probeLimit caps concurrent probes; 0 means no cap.
func NewStatusService(registry ProjectLister, prober ObjectProber, modelsPrefix string, probeLimit int) *StatusService {
	return &StatusService{
		registry:     registry,
		prober:       prober,
		modelsPrefix: modelsPrefix,
		probeLimit:   probeLimit,
	}
}

// Resolve returns the user's projects newest first, each with its probed
// status.
func (s *StatusService) Resolve(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	filenames, err := s.registry.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	projects := make([]models.Project, len(filenames))
	var g errgroup.Group
	if s.probeLimit > 0 {
		g.SetLimit(s.probeLimit)
	}
	for i, filename := range filenames {
		g.Go(func() error {
			projects[i] = s.resolveOne(ctx, filename)
			return nil
		})
	}
	_ = g.Wait()

	slices.Reverse(projects)
	return projects, nil
}

// Find returns one registered project without probing its status.
func (s *StatusService) Find(ctx context.Context, userID uuid.UUID, filename string) (models.Project, error) {
	filenames, err := s.registry.ListProjects(ctx, userID)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to load projects: %w", err)
	}
	if !slices.Contains(filenames, filename) {
		return models.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, filename)
	}

	project := s.describe(filename)
	project.Status = models.StatusUnknown
	return project, nil
}

func (s *StatusService) resolveOne(ctx context.Context, filename string) models.Project {
	project := s.describe(filename)

	exists, err := s.prober.Exists(ctx, s.objectName(filename))
	switch {
	case err != nil:
		logger.Warn("Status probe failed", zap.String("filename", filename), zap.Error(err))
		project.Status = models.StatusUnknown
	case exists:
		project.Status = models.StatusComplete
	default:
		project.Status = models.StatusInProgress
	}
	return project
}

func (s *StatusService) describe(filename string) models.Project {
	id := DeriveProjectID(filename)
	project := models.Project{
		Filename:    filename,
		ID:          id,
		Name:        DisplayName(id),
		DownloadURL: s.prober.PublicURL(s.objectName(filename)),
	}
	if arch, ok := LookupProjectArchitecture(id); ok {
		project.Architecture = arch.Label
	}
	return project
}

func (s *StatusService) objectName(filename string) string {
	return s.modelsPrefix + filename
}
