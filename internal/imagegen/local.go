package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hawk/internal/assets"
	"hawk/internal/config"
	"hawk/internal/registry"
)

// Portrait dimensions the SDXL family is tuned for; exported frames are
// scaled to 1080x1920 at assembly time.
const (
	localWidth  = 768
	localHeight = 1344
)

// localBackend drives a stable-diffusion-webui compatible server on
// localhost. The txt2img call blocks for the whole run, so progress is read
// from the server's progress endpoint once a second while the request is in
// flight.
type localBackend struct {
	baseURL  string
	model    string
	steps    int
	guidance float64
	store    *assets.Store
	client   *http.Client
}

func newLocalBackend(cfg config.Config, store *assets.Store, client *http.Client) *localBackend {
	return &localBackend{
		baseURL:  cfg.SDURL,
		model:    cfg.SDModel,
		steps:    cfg.SDSteps,
		guidance: cfg.SDGuidance,
		store:    store,
		client:   client,
	}
}

func (b *localBackend) Name() string { return "local" }

type txt2imgRequest struct {
	Prompt   string  `json:"prompt"`
	Steps    int     `json:"steps"`
	CFGScale float64 `json:"cfg_scale"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Detail string   `json:"detail"`
}

type progressResponse struct {
	State struct {
		SamplingStep  int `json:"sampling_step"`
		SamplingSteps int `json:"sampling_steps"`
	} `json:"state"`
}

type txt2imgResult struct {
	resp *txt2imgResponse
	err  error
}

func (b *localBackend) Generate(ctx context.Context, project registry.Project, prompt string, progress chan<- Progress) (string, error) {
	prompt = buildPrompt(project, prompt)

	if err := b.store.EnsureDirs(project.Slug); err != nil {
		return "", &GenerationError{Backend: b.Name(), Cause: "asset store unavailable", Err: err}
	}

	emit(progress, Progress{Stage: "loading " + b.model, Total: b.steps})

	done := make(chan txt2imgResult, 1)
	go func() {
		resp, err := b.txt2img(ctx, prompt)
		done <- txt2imgResult{resp: resp, err: err}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var result txt2imgResult
poll:
	for {
		select {
		case <-ctx.Done():
			return "", &GenerationError{Backend: b.Name(), Cause: "canceled", Err: ctx.Err()}
		case result = <-done:
			break poll
		case <-ticker.C:
			if step, total, ok := b.pollProgress(ctx); ok {
				emit(progress, Progress{Stage: "denoising", Step: step, Total: total})
			}
		}
	}
	if result.err != nil {
		return "", result.err
	}

	raw, err := base64.StdEncoding.DecodeString(result.resp.Images[0])
	if err != nil {
		return "", &GenerationError{Backend: b.Name(), Cause: "decode image data", Err: err}
	}

	final := filepath.Join(b.store.ImagesDir(project.Slug), assets.ImageFilename(prompt, time.Now()))
	if err := writeStaged(final, raw); err != nil {
		return "", &GenerationError{Backend: b.Name(), Cause: "write image", Err: err}
	}

	emit(progress, Progress{Stage: "done", Step: b.steps, Total: b.steps})
	return final, nil
}

func (b *localBackend) txt2img(ctx context.Context, prompt string) (*txt2imgResponse, error) {
	body, err := json.Marshal(txt2imgRequest{
		Prompt:   prompt,
		Steps:    b.steps,
		CFGScale: b.guidance,
		Width:    localWidth,
		Height:   localHeight,
	})
	if err != nil {
		return nil, &GenerationError{Backend: b.Name(), Cause: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
	if err != nil {
		return nil, &GenerationError{Backend: b.Name(), Cause: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &GenerationError{Backend: b.Name(), Cause: "inference server unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		cause := fmt.Sprintf("server returned %s", resp.Status)
		if msg := strings.TrimSpace(string(detail)); msg != "" {
			cause += ": " + msg
		}
		// 500 with an OOM/model detail is the usual model-load failure shape.
		return nil, &GenerationError{Backend: b.Name(), Cause: cause}
	}

	var payload txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &GenerationError{Backend: b.Name(), Cause: "decode response", Err: err}
	}
	if len(payload.Images) == 0 {
		cause := "server returned no images"
		if payload.Detail != "" {
			cause = payload.Detail
		}
		return nil, &GenerationError{Backend: b.Name(), Cause: cause}
	}
	return &payload, nil
}

func (b *localBackend) pollProgress(ctx context.Context) (step, total int, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/sdapi/v1/progress", nil)
	if err != nil {
		return 0, 0, false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return 0, 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, false
	}
	var payload progressResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, false
	}
	total = payload.State.SamplingSteps
	if total == 0 {
		total = b.steps
	}
	return payload.State.SamplingStep, total, payload.State.SamplingStep > 0
}

func writeStaged(final string, data []byte) error {
	if err := os.WriteFile(assets.StagePath(final), data, 0o644); err != nil {
		return err
	}
	if err := assets.Promote(final); err != nil {
		assets.DiscardStaged(final)
		return err
	}
	return nil
}
