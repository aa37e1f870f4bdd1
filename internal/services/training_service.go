package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"quicktrain-backend/internal/archive"
	"quicktrain-backend/internal/logger"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/supabase"
	"quicktrain-backend/internal/trainer"
)

const (
	broadcastTimeout = 5 * time.Second

	// a job enters at most five states
	broadcastQueueSize = 8
)

var (
	ErrValidation   = errors.New("invalid training request")
	ErrUnknownModel = errors.New("unknown model")
)

type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) error
}

type Registry interface {
	AppendProject(ctx context.Context, userID uuid.UUID, filename string) error
}

type JobSubmitter interface {
	Submit(ctx context.Context, d trainer.JobDescriptor) error
}

type StatusPublisher interface {
	PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error
}

// JobResult is the outcome of one submission. Status is JobStarted or
// JobError; Transitions lists every state entered after Idle.
type JobResult struct {
	JobID           string
	ModelID         string
	Status          models.JobStatus
	Transitions     []models.JobStatus
	ProjectFilename string
	Objects         []string
	Err             error
	RedirectAfter   time.Duration
}

type TrainingService struct {
	store         ObjectStore
	registry      Registry
	submitter     JobSubmitter
	publisher     StatusPublisher
	redirectDelay time.Duration
	newJobID      func() string
}

// NewTrainingService wires the workflow. publisher may be nil.
func NewTrainingService(
	store ObjectStore,
	registry Registry,
	submitter JobSubmitter,
	publisher StatusPublisher,
	redirectDelay time.Duration,
) *TrainingService {
	return &TrainingService{
		store:         store,
		registry:      registry,
		submitter:     submitter,
		publisher:     publisher,
		redirectDelay: redirectDelay,
		newJobID:      NewJobID,
	}
}

type folder struct {
	slot  string
	files []models.DatasetFile
}

type upload struct {
	name        string
	data        []byte
	contentType string
}

// Validate checks a request without touching the network.
func (s *TrainingService) Validate(req *models.TrainingRequest) (models.Architecture, error) {
	arch, ok := models.LookupArchitecture(req.ModelID)
	if !ok {
		return models.Architecture{}, fmt.Errorf("%w: %q", ErrUnknownModel, req.ModelID)
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return arch, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	switch arch.Input {
	case models.InputFolderPair:
		if len(req.TrainA) == 0 || len(req.TrainB) == 0 {
			return arch, fmt.Errorf("%w: please select both training folders", ErrValidation)
		}
		if !req.AutoSplit && (len(req.TestA) == 0 || len(req.TestB) == 0) {
			return arch, fmt.Errorf("%w: please select both test folders or enable auto split", ErrValidation)
		}
	case models.InputSingleFile:
		if req.Dataset == nil {
			return arch, fmt.Errorf("%w: please select a dataset file", ErrValidation)
		}
		if err := archive.ValidateDataset(*req.Dataset); err != nil {
			return arch, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	return arch, nil
}

// Submit validates req and runs the workflow to a terminal state. The returned
// error is only set for validation failures; workflow failures are reported
// through JobResult.Status and JobResult.Err. Once started the workflow is not
// cancelled by ctx.
func (s *TrainingService) Submit(ctx context.Context, req *models.TrainingRequest) (*JobResult, error) {
	arch, err := s.Validate(req)
	if err != nil {
		return nil, err
	}
	userID := uuid.MustParse(req.UserID)
	ctx = context.WithoutCancel(ctx)

	result := &JobResult{ModelID: arch.ID, Status: models.JobIdle}

	result.JobID = s.newJobID()
	b := newBroadcaster(ctx, s.publisher, userID, result.JobID)
	defer b.close()
	s.transition(b, result, models.JobInitializing, nil)

	s.transition(b, result, models.JobUploading, nil)
	uploads, descriptor, err := s.prepare(arch, req, result.JobID)
	if err != nil {
		s.transition(b, result, models.JobError, err)
		return result, nil
	}
	for _, u := range uploads {
		result.Objects = append(result.Objects, u.name)
	}
	if err := s.uploadAll(ctx, uploads); err != nil {
		s.transition(b, result, models.JobError, err)
		return result, nil
	}

	s.transition(b, result, models.JobRegistering, nil)
	result.ProjectFilename = ArtifactName(arch, result.JobID)
	if err := s.registry.AppendProject(ctx, userID, result.ProjectFilename); err != nil {
		logger.Error("Failed to register project",
			zap.String("user_id", req.UserID),
			zap.String("filename", result.ProjectFilename),
			zap.Error(err),
		)
	}

	s.transition(b, result, models.JobSubmitting, nil)
	if err := s.submitter.Submit(ctx, descriptor); err != nil {
		s.transition(b, result, models.JobError, err)
		return result, nil
	}

	result.RedirectAfter = s.redirectDelay
	s.transition(b, result, models.JobStarted, nil)
	return result, nil
}

func (s *TrainingService) prepare(arch models.Architecture, req *models.TrainingRequest, jobID string) ([]upload, trainer.JobDescriptor, error) {
	if arch.Input == models.InputSingleFile {
		name := SingleFileObjectName(arch.ID, req.UserID, jobID, archive.DatasetExtension(*req.Dataset))
		contentType := req.Dataset.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		uploads := []upload{{name: name, data: req.Dataset.Data, contentType: contentType}}
		return uploads, trainer.SingleFileDescriptor(jobID, name, arch.ModelType), nil
	}

	folders := []folder{{"trainA", req.TrainA}, {"trainB", req.TrainB}}
	if !req.AutoSplit {
		folders = append(folders, folder{"testA", req.TestA}, folder{"testB", req.TestB})
	}

	uploads := make([]upload, 0, len(folders))
	for _, f := range folders {
		data, err := archive.Build(f.files)
		if err != nil {
			return nil, trainer.JobDescriptor{}, fmt.Errorf("failed to compress %s: %w", f.slot, err)
		}
		uploads = append(uploads, upload{
			name:        FolderObjectName(arch.ID, f.slot, req.UserID, jobID),
			data:        data,
			contentType: "application/zip",
		})
	}

	var testA, testB string
	if !req.AutoSplit {
		testA, testB = uploads[2].name, uploads[3].name
	}
	descriptor := trainer.FolderPairDescriptor(jobID, uploads[0].name, uploads[1].name, testA, testB, req.AutoSplit)
	return uploads, descriptor, nil
}

// uploadAll starts every upload and waits for all of them. The first error
// wins; uploads already in flight are not cancelled.
func (s *TrainingService) uploadAll(ctx context.Context, uploads []upload) error {
	var g errgroup.Group
	for _, u := range uploads {
		g.Go(func() error {
			if err := s.store.Upload(ctx, u.name, u.data, u.contentType); err != nil {
				return fmt.Errorf("upload of %s failed: %w", u.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *TrainingService) transition(b *broadcaster, result *JobResult, status models.JobStatus, cause error) {
	result.Status = status
	result.Transitions = append(result.Transitions, status)

	message := ""
	if cause != nil {
		result.Err = cause
		message = cause.Error()
		logger.Error("Training job failed",
			zap.String("job_id", result.JobID),
			zap.String("model_id", result.ModelID),
			zap.Error(cause),
		)
	} else {
		logger.Info("Training job status",
			zap.String("job_id", result.JobID),
			zap.String("model_id", result.ModelID),
			zap.String("status", string(status)),
		)
	}

	b.send(supabase.TrainingStatusPayload(result.ModelID, result.JobID, status, message))
}

// broadcaster delivers one job's status events in order on its own
// goroutine, so a slow Realtime endpoint never holds up the workflow.
type broadcaster struct {
	publisher StatusPublisher
	userID    uuid.UUID
	jobID     string
	events    chan map[string]interface{}
}

func newBroadcaster(ctx context.Context, publisher StatusPublisher, userID uuid.UUID, jobID string) *broadcaster {
	if publisher == nil {
		return nil
	}
	b := &broadcaster{
		publisher: publisher,
		userID:    userID,
		jobID:     jobID,
		events:    make(chan map[string]interface{}, broadcastQueueSize),
	}
	go b.run(ctx)
	return b
}

func (b *broadcaster) send(payload map[string]interface{}) {
	if b == nil {
		return
	}
	select {
	case b.events <- payload:
	default:
		logger.Warn("Dropped training status broadcast",
			zap.String("job_id", b.jobID),
			zap.Any("status", payload["status"]),
		)
	}
}

func (b *broadcaster) close() {
	if b != nil {
		close(b.events)
	}
}

func (b *broadcaster) run(ctx context.Context) {
	for payload := range b.events {
		publishCtx, cancel := context.WithTimeout(ctx, broadcastTimeout)
		err := b.publisher.PublishUserEvent(publishCtx, b.userID, supabase.TrainingStatusEvent, payload)
		cancel()
		if err != nil {
			logger.Warn("Failed to broadcast training status",
				zap.String("job_id", b.jobID),
				zap.Error(err),
			)
		}
	}
}
