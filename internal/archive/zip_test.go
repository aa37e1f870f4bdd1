package archive_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quicktrain-backend/internal/archive"
	"quicktrain-backend/internal/models"
)

func TestBuild_RoundTrip(t *testing.T) {
	files := []models.DatasetFile{
		{Path: "cats/one.jpg", Name: "one.jpg", Data: []byte("jpeg-bytes-1")},
		{Path: "cats/nested/two.jpg", Name: "two.jpg", Data: make([]byte, 4096)},
		{Name: "loose.png", Data: []byte{}},
	}

	data, err := archive.Build(files)
	require.NoError(t, err)

	entries, err := archive.List(data)
	require.NoError(t, err)
	require.Len(t, entries, len(files))

	for i, f := range files {
		assert.Equal(t, archive.EntryName(f), entries[i].Name)
		assert.Equal(t, uint64(len(f.Data)), entries[i].Size)
	}
	assert.Equal(t, "cats/one.jpg", entries[0].Name)
	assert.Equal(t, "loose.png", entries[2].Name)
}

func TestBuild_Empty(t *testing.T) {
	data, err := archive.Build(nil)
	require.NoError(t, err)

	entries, err := archive.List(data)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryName_NormalisesSeparators(t *testing.T) {
	assert.Equal(t, "dogs/a.jpg", archive.EntryName(models.DatasetFile{Path: `dogs\a.jpg`, Name: "a.jpg"}))
	assert.Equal(t, "dogs/a.jpg", archive.EntryName(models.DatasetFile{Path: "/dogs/./a.jpg", Name: "a.jpg"}))
}

func TestEntryName_StaysInsideRoot(t *testing.T) {
	tests := map[string]string{
		"../../x.jpg":        "x.jpg",
		`..\..\etc\x.jpg`:    "etc/x.jpg",
		"cats/../../x.jpg":   "x.jpg",
		"cats/../dogs/a.jpg": "dogs/a.jpg",
		"..":                 "fallback.jpg",
	}
	for p, want := range tests {
		got := archive.EntryName(models.DatasetFile{Path: p, Name: "fallback.jpg"})
		assert.Equal(t, want, got, p)
		assert.False(t, strings.HasPrefix(got, ".."), p)
	}
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		name    string
		file    models.DatasetFile
		wantErr bool
	}{
		{"csv extension", models.DatasetFile{Name: "train.CSV"}, false},
		{"json extension", models.DatasetFile{Name: "train.json"}, false},
		{"excel csv mime", models.DatasetFile{Name: "export", ContentType: "application/vnd.ms-excel"}, false},
		{"csv mime with params", models.DatasetFile{Name: "export", ContentType: "text/csv; charset=utf-8"}, false},
		{"sniffed json", models.DatasetFile{Name: "blob", Data: []byte(`{"text": "hi", "label": 1}`)}, false},
		{"image rejected", models.DatasetFile{Name: "cat.jpg", ContentType: "image/jpeg"}, true},
		{"unknown binary rejected", models.DatasetFile{Name: "blob", Data: []byte{0x00, 0x01, 0x02}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := archive.ValidateDataset(tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, archive.ErrUnsupportedDataset)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatasetExtension(t *testing.T) {
	assert.Equal(t, "csv", archive.DatasetExtension(models.DatasetFile{Name: "Train.CSV"}))
	assert.Equal(t, "json", archive.DatasetExtension(models.DatasetFile{Name: "reviews.json"}))
	assert.Equal(t, "csv", archive.DatasetExtension(models.DatasetFile{Name: "export", ContentType: "application/vnd.ms-excel"}))
	assert.Equal(t, "json", archive.DatasetExtension(models.DatasetFile{Name: "blob", Data: []byte(`{"a": 1}`)}))
}
