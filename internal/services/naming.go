package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"quicktrain-backend/internal/models"
)

const jobIDLength = 8

// NewJobID returns 8 random lowercase alphanumeric characters.
func NewJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:jobIDLength]
}

// FolderObjectName names one zipped folder of a folder-pair job, e.g.
// resnet18-trainA-<user>-<job>.zip. slot is trainA, trainB, testA or testB.
func FolderObjectName(modelID, slot, userID, jobID string) string {
	return fmt.Sprintf("%s-%s-%s-%s.zip", modelID, slot, userID, jobID)
}

func SingleFileObjectName(modelID, userID, jobID, ext string) string {
	return fmt.Sprintf("%s-train-%s-%s.%s", modelID, userID, jobID, ext)
}

// ArtifactName is the registry entry for a job and the name the trainer
// gives its output under the models prefix.
func ArtifactName(arch models.Architecture, jobID string) string {
	return fmt.Sprintf("%s_%s%s", arch.ID, jobID, arch.ArtifactExt)
}

// DeriveProjectID strips everything from the first dot.
func DeriveProjectID(filename string) string {
	if i := strings.Index(filename, "."); i >= 0 {
		return filename[:i]
	}
	return filename
}

func architecturePrefix(projectID string) string {
	if i := strings.Index(projectID, "_"); i >= 0 {
		return projectID[:i]
	}
	return projectID
}

// LookupProjectArchitecture resolves the catalog entry a project id was
// created from, if any.
func LookupProjectArchitecture(projectID string) (models.Architecture, bool) {
	return models.LookupArchitecture(strings.ToLower(architecturePrefix(projectID)))
}

// DisplayName is the catalog label of the id's prefix. Unknown prefixes are
// capitalised and a trailing "net" becomes "Net".
func DisplayName(projectID string) string {
	if arch, ok := LookupProjectArchitecture(projectID); ok {
		return arch.Label
	}

	prefix := architecturePrefix(projectID)
	if prefix == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(prefix)
	name := string(unicode.ToUpper(first)) + prefix[size:]
	if len(name) > 3 && strings.HasSuffix(name, "net") {
		name = strings.TrimSuffix(name, "net") + "Net"
	}
	return name
}
