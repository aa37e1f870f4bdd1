package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/services"
)

const maxFormValue = 1 << 20

var folderFields = []string{"train_a", "train_b", "test_a", "test_b"}

type TrainingHandler struct {
	submitter TrainingSubmitter
}

func NewTrainingHandler(submitter TrainingSubmitter) *TrainingHandler {
	return &TrainingHandler{submitter: submitter}
}

// Submit godoc
// @Summary     Submit a training job
// @Description Uploads the dataset, registers the project and triggers the remote trainer.
// @Description
// @Description **Image models** (resnet18, mobilenet) take two class folders as train_a and train_b.
// @Description Test folders are only used when auto_split is false.
// @Description
// @Description **Text and tabular models** take one dataset file (.csv or .json).
// @Description
// @Description 200 means the remote job was started; workflow failures answer 502 with the job state.
// @Tags        training
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       model_id     path     string true  "Model id from /models"
// @Param       train_a      formData file   false "First class folder (multiple files)"
// @Param       train_b      formData file   false "Second class folder (multiple files)"
// @Param       test_a       formData file   false "First class test folder"
// @Param       test_b       formData file   false "Second class test folder"
// @Param       train_a_path formData string false "Relative path of each train_a file, in order"
// @Param       train_b_path formData string false "Relative path of each train_b file, in order"
// @Param       auto_split   formData bool   false "Let the trainer split off test data (default true)"
// @Param       dataset      formData file   false "Dataset file for text and tabular models"
// @Success     200 {object} models.JobResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.JobResponse
// @Router      /api/v1/train/{model_id} [post]
func (h *TrainingHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	req, err := parseTrainingRequest(c, c.Param("model_id"), userID.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	result, err := h.submitter.Submit(c.Request.Context(), req)
	if err != nil {
		status, body := submitErrorResponse(err)
		c.JSON(status, body)
		return
	}

	status := http.StatusOK
	if result.Status == models.JobError {
		status = http.StatusBadGateway
	}
	c.JSON(status, toJobResponse(result))
}

func submitErrorResponse(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, services.ErrUnknownModel):
		return http.StatusNotFound, models.ErrorResponse{Error: "unknown model", Message: err.Error()}
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Message: err.Error()}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: "failed to submit training job", Message: err.Error()}
	}
}

// parseTrainingRequest streams the trainer form part by part, so a folder of
// any size is accepted. Relative paths come from the parallel <field>_path
// values, or from the raw part filename when the client sent the path there.
func parseTrainingRequest(c *gin.Context, modelID, userID string) (*models.TrainingRequest, error) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		return nil, err
	}

	files := make(map[string][]models.DatasetFile)
	values := make(map[string][]string)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		err = readPart(part, files, values)
		part.Close()
		if err != nil {
			return nil, err
		}
	}

	req := &models.TrainingRequest{
		UserID:    userID,
		ModelID:   modelID,
		AutoSplit: parseAutoSplit(values["auto_split"]),
	}

	folders := make(map[string][]models.DatasetFile, len(folderFields))
	for _, field := range folderFields {
		folders[field] = withPaths(files[field], values[field+"_path"])
	}
	req.TrainA, req.TrainB = folders["train_a"], folders["train_b"]
	req.TestA, req.TestB = folders["test_a"], folders["test_b"]

	if dataset := files["dataset"]; len(dataset) > 0 {
		req.Dataset = &dataset[0]
	}

	return req, nil
}

func readPart(part *multipart.Part, files map[string][]models.DatasetFile, values map[string][]string) error {
	field := part.FormName()
	if field == "" {
		return nil
	}

	if part.FileName() == "" {
		data, err := io.ReadAll(io.LimitReader(part, maxFormValue+1))
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if len(data) > maxFormValue {
			return fmt.Errorf("%s: value too large", field)
		}
		values[field] = append(values[field], string(data))
		return nil
	}

	data, err := io.ReadAll(part)
	if err != nil {
		return fmt.Errorf("%s: failed to read %s: %w", field, part.FileName(), err)
	}
	files[field] = append(files[field], models.DatasetFile{
		Path:        rawFilename(part.Header.Get("Content-Disposition")),
		Name:        part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Data:        data,
	})
	return nil
}

// parseAutoSplit takes the last value so a hidden "false" followed by a
// checked "true" checkbox reads as true. Missing means true.
func parseAutoSplit(values []string) bool {
	if len(values) == 0 {
		return true
	}
	v := strings.TrimSpace(values[len(values)-1])
	if v == "on" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

// withPaths applies the i-th non-empty path value to the i-th file.
func withPaths(files []models.DatasetFile, paths []string) []models.DatasetFile {
	for i := range files {
		if i < len(paths) && paths[i] != "" {
			files[i].Path = paths[i]
		}
	}
	return files
}

// rawFilename returns the filename parameter as sent, which keeps directory
// components that Part.FileName drops. Empty when it has none.
func rawFilename(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if !strings.ContainsAny(name, `/\`) {
		return ""
	}
	return name
}
