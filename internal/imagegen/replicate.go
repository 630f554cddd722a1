package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"hawk/internal/assets"
	"hawk/internal/config"
	"hawk/internal/registry"
)

const replicateAPI = "https://api.replicate.com"

// replicateBackend submits a prediction, polls until it settles, and
// downloads the first output. Nothing is retried; every failure becomes one
// GenerationError.
type replicateBackend struct {
	baseURL      string
	token        string
	pollInterval time.Duration
	store        *assets.Store
	client       *http.Client
}

func newReplicateBackend(cfg config.Config, store *assets.Store, client *http.Client) *replicateBackend {
	return &replicateBackend{
		baseURL:      replicateAPI,
		token:        cfg.ReplicateToken,
		pollInterval: cfg.PollInterval,
		store:        store,
		client:       client,
	}
}

func (b *replicateBackend) Name() string { return "replicate" }

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

const (
	predictionStarting   = "starting"
	predictionProcessing = "processing"
	predictionSucceeded  = "succeeded"
	predictionFailed     = "failed"
	predictionCanceled   = "canceled"
)

func (b *replicateBackend) Generate(ctx context.Context, project registry.Project, prompt string, progress chan<- Progress) (string, error) {
	prompt = buildPrompt(project, prompt)

	if err := b.store.EnsureDirs(project.Slug); err != nil {
		return "", &GenerationError{Backend: b.Name(), Cause: "asset store unavailable", Err: err}
	}

	emit(progress, Progress{Stage: "submitting prediction"})
	pred, err := b.create(ctx, project.Model, prompt)
	if err != nil {
		return "", err
	}

	emit(progress, Progress{Stage: "waiting for " + project.Model})
	for pred.Status == predictionStarting || pred.Status == predictionProcessing {
		select {
		case <-ctx.Done():
			return "", &GenerationError{Backend: b.Name(), Cause: "canceled", Err: ctx.Err()}
		case <-time.After(b.pollInterval):
		}
		pred, err = b.get(ctx, pred.ID)
		if err != nil {
			return "", err
		}
		emit(progress, Progress{Stage: "polling (" + pred.Status + ")"})
	}

	switch pred.Status {
	case predictionSucceeded:
	case predictionFailed:
		cause := pred.Error
		if cause == "" {
			cause = "prediction failed"
		}
		return "", &GenerationError{Backend: b.Name(), Cause: cause}
	default:
		return "", &GenerationError{Backend: b.Name(), Cause: "prediction " + pred.Status}
	}

	url, err := firstOutputURL(pred.Output)
	if err != nil {
		return "", &GenerationError{Backend: b.Name(), Cause: "no image in prediction output", Err: err}
	}

	emit(progress, Progress{Stage: "downloading image"})
	final := b.imagePath(project.Slug, prompt)
	if err := b.download(ctx, url, final); err != nil {
		return "", err
	}

	emit(progress, Progress{Stage: "done"})
	return final, nil
}

func (b *replicateBackend) create(ctx context.Context, model, prompt string) (prediction, error) {
	body, err := json.Marshal(map[string]any{
		"input": map[string]any{
			"prompt":        prompt,
			"aspect_ratio":  "9:16",
			"output_format": "png",
			"num_outputs":   1,
		},
	})
	if err != nil {
		return prediction{}, &GenerationError{Backend: b.Name(), Cause: "encode request", Err: err}
	}

	url := fmt.Sprintf("%s/v1/models/%s/predictions", b.baseURL, model)
	return b.roundTrip(ctx, http.MethodPost, url, bytes.NewReader(body))
}

func (b *replicateBackend) get(ctx context.Context, id string) (prediction, error) {
	url := fmt.Sprintf("%s/v1/predictions/%s", b.baseURL, id)
	return b.roundTrip(ctx, http.MethodGet, url, nil)
}

func (b *replicateBackend) roundTrip(ctx context.Context, method, url string, body io.Reader) (prediction, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return prediction{}, &GenerationError{Backend: b.Name(), Cause: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return prediction{}, &GenerationError{Backend: b.Name(), Cause: "request failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return prediction{}, &GenerationError{Backend: b.Name(), Cause: "authentication failed, check REPLICATE_API_TOKEN"}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired:
		return prediction{}, &GenerationError{Backend: b.Name(), Cause: "rate limit or quota exceeded"}
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return prediction{}, &GenerationError{
			Backend: b.Name(),
			Cause:   fmt.Sprintf("API returned %s: %s", resp.Status, bytes.TrimSpace(detail)),
		}
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return prediction{}, &GenerationError{Backend: b.Name(), Cause: "decode response", Err: err}
	}
	return pred, nil
}

func (b *replicateBackend) download(ctx context.Context, url, final string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &GenerationError{Backend: b.Name(), Cause: "build download request", Err: err}
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return &GenerationError{Backend: b.Name(), Cause: "download failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &GenerationError{Backend: b.Name(), Cause: "download returned " + resp.Status}
	}

	staged, err := os.Create(assets.StagePath(final))
	if err != nil {
		return &GenerationError{Backend: b.Name(), Cause: "stage output file", Err: err}
	}
	if _, err := io.Copy(staged, resp.Body); err != nil {
		staged.Close()
		assets.DiscardStaged(final)
		return &GenerationError{Backend: b.Name(), Cause: "write image", Err: err}
	}
	if err := staged.Close(); err != nil {
		assets.DiscardStaged(final)
		return &GenerationError{Backend: b.Name(), Cause: "close image", Err: err}
	}
	if err := assets.Promote(final); err != nil {
		assets.DiscardStaged(final)
		return &GenerationError{Backend: b.Name(), Cause: "promote image", Err: err}
	}
	return nil
}

func (b *replicateBackend) imagePath(slug, prompt string) string {
	return filepath.Join(b.store.ImagesDir(slug), assets.ImageFilename(prompt, time.Now()))
}

// firstOutputURL handles both output shapes the API uses: a bare string and a
// list of strings.
func firstOutputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty output")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 && many[0] != "" {
		return many[0], nil
	}
	return "", fmt.Errorf("unrecognized output shape: %s", raw)
}
