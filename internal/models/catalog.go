package models

// InputKind describes how a trainer form collects its dataset.
type InputKind string

const (
	// InputFolderPair is two labelled folders, optionally with two test folders.
	InputFolderPair InputKind = "folder_pair"
	// InputSingleFile is one tabular or text file.
	InputSingleFile InputKind = "single_file"
)

type Architecture struct {
	ID          string
	Label       string
	Kind        string
	Input       InputKind
	ArtifactExt string
	// ModelType is sent to the trainer as modelType. Empty for architectures
	// the trainer recognises from the object names alone.
	ModelType   string
	Description string
	Format      string
	Requirement string
}

var Catalog = []Architecture{
	{
		ID:          "resnet18",
		Label:       "ResNet-18",
		Kind:        "image",
		Input:       InputFolderPair,
		ArtifactExt: ".pth",
		Description: "Standard image classification tasks. Fast, efficient, and reliable for small to medium datasets.",
		Format:      "Folder (.zip)",
		Requirement: "Root Folder > Class_A_Images & Class_B_Images",
	},
	{
		ID:          "tinybert",
		Label:       "TinyBERT",
		Kind:        "text",
		Input:       InputSingleFile,
		ArtifactExt: ".zip",
		ModelType:   "tinybert",
		Description: "Compact transformer for text classification.",
		Format:      ".csv / .json",
		Requirement: "Columns: ['text', 'label']",
	},
	{
		ID:          "ebm",
		Label:       "EBM",
		Kind:        "tabular",
		Input:       InputSingleFile,
		ArtifactExt: ".zip",
		ModelType:   "ebm",
		Description: "Explainable boosting machine for tabular data.",
		Format:      ".csv / .json",
		Requirement: "N-1 Features | Last Col: Target",
	},
}

func LookupArchitecture(id string) (Architecture, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Architecture{}, false
}
