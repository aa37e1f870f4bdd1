package models

type ProjectStatus string

const (
	StatusComplete   ProjectStatus = "complete"
	StatusInProgress ProjectStatus = "in_progress"
	StatusUnknown    ProjectStatus = "unknown"
)

// Label is the text shown on the dashboard.
func (s ProjectStatus) Label() string {
	switch s {
	case StatusComplete:
		return "Training Complete"
	case StatusInProgress:
		return "Training in Progress"
	default:
		return "Status Unknown"
	}
}

// Project is rebuilt from a registry filename on every read; it is never
// stored as a structured record.
type Project struct {
	Filename     string
	ID           string
	Name         string
	Architecture string
	Status       ProjectStatus
	DownloadURL  string
}

// JobStatus is the state of a single training submission.
type JobStatus string

const (
	JobIdle         JobStatus = "idle"
	JobInitializing JobStatus = "initializing"
	JobUploading    JobStatus = "uploading"
	JobRegistering  JobStatus = "registering"
	JobSubmitting   JobStatus = "submitting"
	JobStarted      JobStatus = "started"
	JobError        JobStatus = "error"
)

func (s JobStatus) Label() string {
	switch s {
	case JobIdle:
		return "Idle"
	case JobInitializing:
		return "Initializing..."
	case JobUploading:
		return "Compressing & Uploading..."
	case JobRegistering:
		return "Registering Project..."
	case JobSubmitting:
		return "Starting Remote Job..."
	case JobStarted:
		return "Training Started Successfully!"
	default:
		return "Error"
	}
}
