package models

type HealthResponse struct {
	Status string `json:"status"`
}

type SessionResponse struct {
	UserID string `json:"user_id"`
}

type ModelResponse struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Input       string `json:"input"`
	Format      string `json:"format"`
	Requirement string `json:"requirement"`
	Description string `json:"description"`
}

type ModelsResponse struct {
	Models []ModelResponse `json:"models"`
}

type ProjectResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Name         string `json:"name"`
	Architecture string `json:"architecture,omitempty"`
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	DownloadURL  string `json:"download_url"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type JobResponse struct {
	JobID           string   `json:"job_id,omitempty"`
	ModelID         string   `json:"model_id"`
	Status          string   `json:"status"`
	StatusLabel     string   `json:"status_label"`
	Transitions     []string `json:"transitions"`
	ProjectFilename string   `json:"project_filename,omitempty"`
	Objects         []string `json:"objects,omitempty"`
	Error           string   `json:"error,omitempty"`
	Redirect        string   `json:"redirect,omitempty"`
	RedirectAfterMS int64    `json:"redirect_after_ms,omitempty"`
}

type UsageResponse struct {
	ModelID      string   `json:"model_id"`
	ModelType    string   `json:"model_type"`
	Filename     string   `json:"filename"`
	DownloadURL  string   `json:"download_url"`
	Language     string   `json:"language"`
	Snippet      string   `json:"snippet"`
	DownloadNote string   `json:"download_note"`
	Requirements []string `json:"requirements"`
}
