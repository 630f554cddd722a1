package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawk/internal/assets"
)

func testLocal(t *testing.T, handler http.Handler) (*localBackend, *assets.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := assets.NewStore(t.TempDir())
	return &localBackend{
		baseURL:  srv.URL,
		model:    "sdxl-turbo",
		steps:    4,
		guidance: 7.5,
		store:    store,
		client:   srv.Client(),
	}, store
}

func TestLocalGenerateSuccess(t *testing.T) {
	imageBytes := []byte("raster-bytes")
	mux := http.NewServeMux()
	mux.HandleFunc("/sdapi/v1/txt2img", func(w http.ResponseWriter, r *http.Request) {
		var req txt2imgRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a monk", req.Prompt)
		assert.Equal(t, 4, req.Steps)
		assert.Equal(t, localWidth, req.Width)
		assert.Equal(t, localHeight, req.Height)

		json.NewEncoder(w).Encode(txt2imgResponse{
			Images: []string{base64.StdEncoding.EncodeToString(imageBytes)},
		})
	})
	mux.HandleFunc("/sdapi/v1/progress", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state":{"sampling_step":2,"sampling_steps":4}}`))
	})

	backend, store := testLocal(t, mux)
	path, err := backend.Generate(context.Background(), testProject(), "a monk", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, data)
	assert.Equal(t, []string{path}, store.Images("wedding-vision"))
}

func TestLocalGenerateServerError(t *testing.T) {
	backend, store := testLocal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
	}))

	_, err := backend.Generate(context.Background(), testProject(), "a monk", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "CUDA out of memory")
	assert.Empty(t, store.Images("wedding-vision"))
}

func TestLocalGenerateNoImages(t *testing.T) {
	backend, _ := testLocal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images": [], "detail": "model failed to load"}`))
	}))

	_, err := backend.Generate(context.Background(), testProject(), "a monk", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "model failed to load")
}

func TestLocalGenerateBadBase64(t *testing.T) {
	backend, _ := testLocal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images": ["!!not-base64!!"]}`))
	}))

	_, err := backend.Generate(context.Background(), testProject(), "a monk", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Cause, "decode image data")
}
