package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Enhancer rewrites raw prompts through a local Ollama-compatible service.
// Enhancement is best effort: every failure mode falls back to the original
// prompt, and the returned error is advisory only.
type Enhancer struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

func New(baseURL, model string, timeout time.Duration, client *http.Client) *Enhancer {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Enhancer{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		client:  client,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

const systemPrompt = "You improve prompts for text-to-image diffusion models. " +
	"Rewrite the user's prompt with concrete visual detail, lighting, and " +
	"composition. Reply with the rewritten prompt only, no commentary."

// Enhance returns the improved prompt, or the original prompt plus a non-nil
// error when the service was unreachable or answered nonsense. Callers must
// continue with the returned prompt either way.
func (e *Enhancer) Enhance(ctx context.Context, prompt, styleHint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	user := prompt
	if styleHint != "" {
		user = fmt.Sprintf("%s\n\nStyle: %s", prompt, styleHint)
	}
	body, err := json.Marshal(generateRequest{
		Model:  e.model,
		Prompt: user,
		System: systemPrompt,
		Stream: false,
	})
	if err != nil {
		return prompt, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return prompt, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return prompt, fmt.Errorf("enhancer unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return prompt, fmt.Errorf("enhancer returned %s", resp.Status)
	}

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return prompt, fmt.Errorf("enhancer response malformed: %w", err)
	}

	improved := strings.TrimSpace(strings.Trim(strings.TrimSpace(payload.Response), `"`))
	if improved == "" {
		return prompt, fmt.Errorf("enhancer returned empty prompt")
	}
	return improved, nil
}
