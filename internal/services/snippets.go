package services

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"quicktrain-backend/internal/models"
)

type snippetKind struct {
	template     *template.Template
	defaultFile  string
	downloadNote string
	requirements []string
}

var snippetKinds = map[string]snippetKind{
	"image": {
		template:     template.Must(template.New("image").Parse(imageSnippet)),
		defaultFile:  "trained_model.pth",
		downloadNote: "Download the trained .pth file to use with the inference script.",
		requirements: []string{"Python 3.8+", "PyTorch", "Torchvision", "Pillow"},
	},
	"text": {
		template:     template.Must(template.New("text").Parse(textSnippet)),
		defaultFile:  "model.zip",
		downloadNote: "Download the model zip file. This archive contains the config, tokenizer, and safetensors weights.",
		requirements: []string{"Python 3.8+", "Transformers (Hugging Face)", "PyTorch"},
	},
	"tabular": {
		template:     template.Must(template.New("tabular").Parse(tabularSnippet)),
		defaultFile:  "model.zip",
		downloadNote: "Download the model zip file. It holds the fitted EBM saved with joblib.",
		requirements: []string{"Python 3.8+", "interpret", "pandas", "joblib"},
	},
}

// Usage renders the inference snippet for a project. Projects whose prefix is
// not in the catalog get the image snippet.
func Usage(project models.Project) (models.UsageResponse, error) {
	kind := "image"
	modelType := project.Name
	if arch, ok := LookupProjectArchitecture(project.ID); ok {
		kind = arch.Kind
		modelType = arch.Label
	}
	sk, ok := snippetKinds[kind]
	if !ok {
		sk = snippetKinds["image"]
	}

	file := project.Filename
	if file == "" {
		file = sk.defaultFile
	}

	var buf bytes.Buffer
	if err := sk.template.Execute(&buf, struct{ File string }{File: file}); err != nil {
		return models.UsageResponse{}, fmt.Errorf("failed to render snippet: %w", err)
	}

	return models.UsageResponse{
		ModelID:      project.ID,
		ModelType:    modelType,
		Filename:     project.Filename,
		DownloadURL:  project.DownloadURL,
		Language:     "python",
		Snippet:      strings.TrimSpace(buf.String()) + "\n",
		DownloadNote: sk.downloadNote,
		Requirements: sk.requirements,
	}, nil
}

const imageSnippet = `
import torch
import torch.nn as nn
from torchvision import models, transforms
from PIL import Image

MODEL_FILE = "{{.File}}"
IMAGE_TO_TEST = "test_image.jpg"
CLASS_NAMES = ["Class 0", "Class 1"]


def load_model(path, num_classes=2):
    device = torch.device("cuda" if torch.cuda.is_available() else "cpu")
    model = models.resnet18()
    model.fc = nn.Linear(model.fc.in_features, num_classes)
    model.load_state_dict(torch.load(path, map_location=device))
    model.to(device).eval()
    return model, device


def predict(path, model, device):
    transform = transforms.Compose([
        transforms.Resize((224, 224)),
        transforms.ToTensor(),
        transforms.Normalize([0.485, 0.456, 0.406], [0.229, 0.224, 0.225]),
    ])
    image = transform(Image.open(path).convert("RGB")).unsqueeze(0).to(device)
    with torch.no_grad():
        _, predicted = torch.max(model(image), 1)
    return predicted.item()


if __name__ == "__main__":
    model, device = load_model(MODEL_FILE)
    print("Prediction:", CLASS_NAMES[predict(IMAGE_TO_TEST, model, device)])
`

const textSnippet = `
import os
import zipfile

import torch
from transformers import AutoModelForSequenceClassification, AutoTokenizer

MODEL_ZIP_FILE = "{{.File}}"
EXTRACT_DIR = "./extracted_model"


def extract(zip_path, target):
    if os.path.isdir(target) and os.listdir(target):
        return target
    with zipfile.ZipFile(zip_path) as archive:
        archive.extractall(target)
    return target


def classify(text, model_dir):
    tokenizer = AutoTokenizer.from_pretrained(model_dir)
    model = AutoModelForSequenceClassification.from_pretrained(model_dir).eval()
    inputs = tokenizer(text, return_tensors="pt", truncation=True, padding=True, max_length=128)
    with torch.no_grad():
        probs = torch.nn.functional.softmax(model(**inputs).logits, dim=-1)
    label_id = int(torch.argmax(probs, dim=1))
    return model.config.id2label[label_id], float(probs.max())


if __name__ == "__main__":
    model_dir = extract(MODEL_ZIP_FILE, EXTRACT_DIR)
    label, score = classify("I am having trouble logging into my account, please help!", model_dir)
    print(f"Result: {label} ({score:.2%} confidence)")
`

const tabularSnippet = `
import glob
import os
import zipfile

import joblib
import pandas as pd

MODEL_ZIP_FILE = "{{.File}}"
EXTRACT_DIR = "./extracted_ebm"
DATA_TO_SCORE = "new_rows.csv"


def load_model(zip_path, target):
    if not (os.path.isdir(target) and os.listdir(target)):
        with zipfile.ZipFile(zip_path) as archive:
            archive.extractall(target)
    pickles = glob.glob(os.path.join(target, "**", "*.pkl"), recursive=True)
    if not pickles:
        raise FileNotFoundError("no .pkl model found in " + zip_path)
    return joblib.load(pickles[0])


if __name__ == "__main__":
    ebm = load_model(MODEL_ZIP_FILE, EXTRACT_DIR)
    rows = pd.read_csv(DATA_TO_SCORE)
    for row, prediction in zip(rows.itertuples(index=False), ebm.predict(rows)):
        print(row, "->", prediction)
`
