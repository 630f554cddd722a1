package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"hawk/internal/assets"
	"hawk/internal/config"
	"hawk/internal/registry"
)

// Progress is one step of a running generation. Remote backends emit coarse
// stages; the local backend emits one event per denoising step.
type Progress struct {
	Stage string
	Step  int
	Total int
}

func (p Progress) String() string {
	if p.Total > 0 {
		return fmt.Sprintf("%s %d/%d", p.Stage, p.Step, p.Total)
	}
	return p.Stage
}

// GenerationError is the single failure type surfaced to the UI. Cause is the
// human-readable summary; Err keeps the underlying error for wrapping.
type GenerationError struct {
	Backend string
	Cause   string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Backend turns a prompt into one image file inside the project's image
// directory. Progress events are optional: a nil channel disables them. The
// channel is never closed by the backend.
type Backend interface {
	Name() string
	Generate(ctx context.Context, project registry.Project, prompt string, progress chan<- Progress) (string, error)
}

// New dispatches the configured backend variant. The set is closed; dispatch
// happens once at startup.
func New(cfg config.Config, store *assets.Store, client *http.Client) Backend {
	switch cfg.Backend {
	case config.BackendReplicate:
		return newReplicateBackend(cfg, store, client)
	case config.BackendLocal:
		return newLocalBackend(cfg, store, client)
	default:
		return disabledBackend{}
	}
}

type disabledBackend struct{}

func (disabledBackend) Name() string { return "none" }

func (disabledBackend) Generate(context.Context, registry.Project, string, chan<- Progress) (string, error) {
	return "", &GenerationError{
		Backend: "none",
		Cause:   "generation disabled (set HAWK_BACKEND=replicate or local)",
	}
}

// CLIP tokenizes to a 77-token window; past roughly 250 characters the tail
// is ignored anyway, so long prompts are cut at a soft boundary instead of
// being rejected.
const maxPromptChars = 250

func truncatePrompt(prompt string) string {
	if len(prompt) <= maxPromptChars {
		return prompt
	}
	limit := maxPromptChars
	for limit > 0 && !utf8.RuneStart(prompt[limit]) {
		limit--
	}
	cut := prompt[:limit]
	boundary := strings.LastIndexAny(cut, ", ")
	if boundary > 150 {
		cut = cut[:boundary]
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(cut), ","))
}

// buildPrompt applies the project trigger keyword and the truncation budget.
func buildPrompt(project registry.Project, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if project.Trigger != "" && !strings.Contains(prompt, project.Trigger) {
		prompt = project.Trigger + " " + prompt
	}
	return truncatePrompt(prompt)
}

func emit(progress chan<- Progress, p Progress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	default:
	}
}
