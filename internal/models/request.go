package models

// DatasetFile is one file of an uploaded folder or a single dataset.
type DatasetFile struct {
	// Path is the path relative to the selected folder. May be empty.
	Path        string
	Name        string
	ContentType string
	Data        []byte
}

// TrainingRequest carries everything a trainer form submits.
type TrainingRequest struct {
	UserID    string
	ModelID   string
	AutoSplit bool

	// Folder pair inputs.
	TrainA []DatasetFile
	TrainB []DatasetFile
	TestA  []DatasetFile
	TestB  []DatasetFile

	// Single file input.
	Dataset *DatasetFile
}

type SessionTokenRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
