package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"quicktrain-backend/internal/models"
)

const realtimeTimeout = 10 * time.Second

// RealtimeClient publishes broadcast messages through the Supabase Realtime
// REST endpoint. Pages subscribe to the user's topic to follow a submission.
type RealtimeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRealtimeClient(supabaseURL, apiKey string) *RealtimeClient {
	return &RealtimeClient{
		baseURL:    strings.TrimSuffix(supabaseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: realtimeTimeout},
	}
}

type broadcastMessage struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

type broadcastRequest struct {
	Messages []broadcastMessage `json:"messages"`
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, channel string, event string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(broadcastRequest{
		Messages: []broadcastMessage{{Topic: channel, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/realtime/v1/api/broadcast", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("broadcast failed: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (r *RealtimeClient) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	return r.PublishEvent(ctx, UserChannel(userID), event, payload)
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

const TrainingStatusEvent = "training_status"

func TrainingStatusPayload(modelID, jobID string, status models.JobStatus, message string) map[string]interface{} {
	payload := map[string]interface{}{
		"model_id":     modelID,
		"status":       string(status),
		"status_label": status.Label(),
	}
	if jobID != "" {
		payload["job_id"] = jobID
	}
	if message != "" {
		payload["error"] = message
	}
	return payload
}
