// Package archive bundles uploaded folders into a single zip and checks
// single-file datasets against the accepted formats.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
	"quicktrain-backend/internal/models"
)

var ErrUnsupportedDataset = errors.New("unsupported dataset format")

var (
	datasetExtensions = []string{".json", ".csv"}
	datasetMIMETypes  = []string{"application/json", "text/csv", "application/vnd.ms-excel"}
	mimeExtensions    = map[string]string{
		"application/json":         "json",
		"text/csv":                 "csv",
		"application/vnd.ms-excel": "csv",
	}
)

// EntryName is the name a file gets inside the archive: its relative path when
// one is known, otherwise its bare name. Parent segments are dropped so no
// entry resolves outside the extraction root.
func EntryName(f models.DatasetFile) string {
	if f.Path == "" {
		return f.Name
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(f.Path, "\\", "/"))
	segments := make([]string, 0, strings.Count(cleaned, "/"))
	for _, seg := range strings.Split(cleaned, "/") {
		if seg != "" && seg != "." && seg != ".." {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return f.Name
	}
	return strings.Join(segments, "/")
}

// Build compresses files into one zip archive, in order.
func Build(files []models.DatasetFile) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, f := range files {
		entry, err := w.Create(EntryName(f))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to add %s to archive: %w", EntryName(f), err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to compress %s: %w", EntryName(f), err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Entry is one member of a built archive.
type Entry struct {
	Name string
	Size uint64
}

func List(data []byte) ([]Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, Entry{Name: f.Name, Size: f.UncompressedSize64})
	}
	return entries, nil
}

// ValidateDataset accepts .csv and .json files, by extension or by MIME type.
// When the client sent no usable content type the type is sniffed from data.
func ValidateDataset(f models.DatasetFile) error {
	lower := strings.ToLower(f.Name)
	for _, ext := range datasetExtensions {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}

	contentType := f.ContentType
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(f.Data).String()
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mediaType
		}
	}

	for _, allowed := range datasetMIMETypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (expected .csv or .json)", ErrUnsupportedDataset, f.Name)
}

// DatasetExtension is the extension, without the dot, used to name an
// accepted dataset in the bucket. Files accepted by MIME type alone get the
// extension of that type.
func DatasetExtension(f models.DatasetFile) string {
	if ext := strings.TrimPrefix(path.Ext(f.Name), "."); ext != "" {
		return strings.ToLower(ext)
	}

	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(f.Data).String()
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if ext, ok := mimeExtensions[contentType]; ok {
		return ext
	}
	return "csv"
}
