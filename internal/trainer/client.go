package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Client struct {
	triggerURL string
	httpClient *http.Client
}

// JobDescriptor is the body of a trigger request. Folder-pair jobs set
// TrainFile1; single-file jobs set TrainFile and ModelType. The remaining
// file fields are always present and encode as null when unset.
type JobDescriptor struct {
	TrainFile1   string  `json:"trainFile1,omitempty"`
	TrainFile    string  `json:"trainFile,omitempty"`
	TrainFile2   *string `json:"trainFile2"`
	TestFile1    *string `json:"testFile1"`
	TestFile2    *string `json:"testFile2"`
	UseAutoSplit bool    `json:"useAutoSplit"`
	JobID        string  `json:"jobId"`
	ModelType    string  `json:"modelType,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewClient(triggerURL string) *Client {
	return &Client{
		triggerURL: triggerURL,
		httpClient: &http.Client{},
	}
}

// Submit posts the descriptor once. It returns when the trigger endpoint has
// answered; the training itself runs remotely.
func (c *Client) Submit(ctx context.Context, d JobDescriptor) error {
	jsonData, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal job descriptor: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.triggerURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var result errorResponse
		if json.Unmarshal(body, &result) == nil && result.Error != "" {
			return fmt.Errorf("training trigger failed: status %d: %s", resp.StatusCode, result.Error)
		}
		return fmt.Errorf("training trigger failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}

// FolderPairDescriptor builds the descriptor for a two-folder image job.
// testA and testB are ignored when autoSplit is set.
func FolderPairDescriptor(jobID, trainA, trainB, testA, testB string, autoSplit bool) JobDescriptor {
	d := JobDescriptor{
		TrainFile1:   trainA,
		TrainFile2:   &trainB,
		UseAutoSplit: autoSplit,
		JobID:        jobID,
	}
	if !autoSplit {
		d.TestFile1 = &testA
		d.TestFile2 = &testB
	}
	return d
}

func SingleFileDescriptor(jobID, trainFile, modelType string) JobDescriptor {
	return JobDescriptor{
		TrainFile:    trainFile,
		UseAutoSplit: true,
		JobID:        jobID,
		ModelType:    modelType,
	}
}
