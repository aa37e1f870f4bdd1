package trainer_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quicktrain-backend/internal/trainer"
)

func TestSubmit_FolderPairAutoSplit(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &raw))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"started"}`))
	}))
	defer server.Close()

	d := trainer.FolderPairDescriptor("ab12cd34",
		"resnet18-trainA-u1-ab12cd34.zip", "resnet18-trainB-u1-ab12cd34.zip",
		"ignored-a", "ignored-b", true)

	require.NoError(t, trainer.NewClient(server.URL).Submit(context.Background(), d))

	assert.Equal(t, "resnet18-trainA-u1-ab12cd34.zip", raw["trainFile1"])
	assert.Equal(t, "resnet18-trainB-u1-ab12cd34.zip", raw["trainFile2"])
	assert.Contains(t, raw, "testFile1")
	assert.Nil(t, raw["testFile1"])
	assert.Nil(t, raw["testFile2"])
	assert.Equal(t, true, raw["useAutoSplit"])
	assert.Equal(t, "ab12cd34", raw["jobId"])
	assert.NotContains(t, raw, "trainFile")
	assert.NotContains(t, raw, "modelType")
	assert.NotContains(t, raw, "file1")
}

func TestFolderPairDescriptor_ManualSplit(t *testing.T) {
	d := trainer.FolderPairDescriptor("j", "a", "b", "ta", "tb", false)

	require.NotNil(t, d.TestFile1)
	require.NotNil(t, d.TestFile2)
	assert.Equal(t, "ta", *d.TestFile1)
	assert.Equal(t, "tb", *d.TestFile2)
	assert.False(t, d.UseAutoSplit)
}

func TestSingleFileDescriptor_JSON(t *testing.T) {
	d := trainer.SingleFileDescriptor("zz99yy88", "tinybert-train-u1-zz99yy88.csv", "tinybert")

	body, err := json.Marshal(d)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"trainFile": "tinybert-train-u1-zz99yy88.csv",
		"trainFile2": null,
		"testFile1": null,
		"testFile2": null,
		"useAutoSplit": true,
		"jobId": "zz99yy88",
		"modelType": "tinybert"
	}`, string(body))
}

func TestSubmit_ErrorFieldSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"trainFile1 missing"}`))
	}))
	defer server.Close()

	err := trainer.NewClient(server.URL).Submit(context.Background(), trainer.JobDescriptor{JobID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "trainFile1 missing")
}

func TestSubmit_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	err := trainer.NewClient(server.URL).Submit(context.Background(), trainer.JobDescriptor{JobID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestSubmit_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := trainer.NewClient(server.URL).Submit(context.Background(), trainer.JobDescriptor{JobID: "x"})
	assert.Error(t, err)
}
