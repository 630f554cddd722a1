package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawk/internal/assets"
	"hawk/internal/registry"
)

func testReplicate(t *testing.T, handler http.Handler) (*replicateBackend, *assets.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := assets.NewStore(t.TempDir())
	return &replicateBackend{
		baseURL:      srv.URL,
		token:        "r8_test",
		pollInterval: time.Millisecond,
		store:        store,
		client:       srv.Client(),
	}, store
}

func testProject() registry.Project {
	return registry.Project{Slug: "wedding-vision", Name: "Wedding Vision", Model: "owner/model"}
}

func TestReplicateGenerateSuccess(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	var serverURL string

	mux.HandleFunc("/v1/models/owner/model/predictions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))

		var body struct {
			Input map[string]any `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a bride", body.Input["prompt"])
		assert.Equal(t, "9:16", body.Input["aspect_ratio"])

		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: predictionStarting})
	})
	mux.HandleFunc("/v1/predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 2 {
			json.NewEncoder(w).Encode(prediction{ID: "p1", Status: predictionProcessing})
			return
		}
		fmt.Fprintf(w, `{"id":"p1","status":"succeeded","output":["%s/out.png"]}`, serverURL)
	})
	mux.HandleFunc("/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})

	backend, store := testReplicate(t, mux)
	serverURL = backend.baseURL

	progress := make(chan Progress, 64)
	path, err := backend.Generate(context.Background(), testProject(), "a bride", progress)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.True(t, strings.HasPrefix(path, store.ImagesDir("wedding-vision")))
	assert.Equal(t, []string{path}, store.Images("wedding-vision"))
}

func TestReplicateGenerateFailedPrediction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/owner/model/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: predictionStarting})
	})
	mux.HandleFunc("/v1/predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: predictionFailed, Error: "NSFW content detected"})
	})

	backend, store := testReplicate(t, mux)
	_, err := backend.Generate(context.Background(), testProject(), "a bride", nil)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "NSFW")
	assert.Empty(t, store.Images("wedding-vision"))
}

func TestReplicateGenerateAuthFailure(t *testing.T) {
	backend, _ := testReplicate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	_, err := backend.Generate(context.Background(), testProject(), "a bride", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "authentication failed")
}

func TestReplicateGenerateRateLimit(t *testing.T) {
	backend, _ := testReplicate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))

	_, err := backend.Generate(context.Background(), testProject(), "a bride", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "rate limit")
}

func TestReplicateGenerateCanceledPrediction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/owner/model/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: predictionCanceled})
	})

	backend, _ := testReplicate(t, mux)
	_, err := backend.Generate(context.Background(), testProject(), "a bride", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "canceled")
}

func TestReplicateNoPartLeftBehindOnDownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/v1/models/owner/model/predictions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"p1","status":"succeeded","output":"%s/gone.png"}`, serverURL)
	})
	mux.HandleFunc("/gone.png", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	backend, store := testReplicate(t, mux)
	serverURL = backend.baseURL

	_, err := backend.Generate(context.Background(), testProject(), "a bride", nil)
	require.Error(t, err)
	assert.Empty(t, store.Images("wedding-vision"))

	entries, err := os.ReadDir(store.ImagesDir("wedding-vision"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
