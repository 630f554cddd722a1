package imagegen

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawk/internal/assets"
	"hawk/internal/config"
	"hawk/internal/registry"
)

func TestTruncatePromptShortUnchanged(t *testing.T) {
	assert.Equal(t, "a bride", truncatePrompt("a bride"))
}

func TestTruncatePromptCutsAtBoundary(t *testing.T) {
	long := strings.Repeat("golden light, ", 30) // well past the budget
	got := truncatePrompt(long)

	assert.LessOrEqual(t, len(got), maxPromptChars)
	assert.False(t, strings.HasSuffix(got, ","))
	assert.False(t, strings.HasSuffix(got, " "))
	// Cut lands on a word boundary, not mid-word.
	assert.True(t, strings.HasSuffix(got, "golden"), "got %q", got)
}

func TestTruncatePromptNoBoundary(t *testing.T) {
	long := strings.Repeat("x", 400)
	got := truncatePrompt(long)
	assert.Equal(t, maxPromptChars, len(got))
}

func TestTruncatePromptKeepsRunesWhole(t *testing.T) {
	// Three-byte runes with no comma or space: the byte budget lands mid-rune.
	long := strings.Repeat("界", 100)
	got := truncatePrompt(long)

	assert.True(t, utf8.ValidString(got), "got %q", got)
	assert.LessOrEqual(t, len(got), maxPromptChars)
	assert.True(t, strings.HasSuffix(got, "界"))
}

func TestBuildPromptAppliesTrigger(t *testing.T) {
	p := registry.Project{Slug: "latin-bible", Name: "Latin Bible", Model: "m", Trigger: "VULGATA"}
	assert.Equal(t, "VULGATA a monk", buildPrompt(p, "a monk"))
	// Trigger already present is not doubled.
	assert.Equal(t, "VULGATA a monk", buildPrompt(p, "VULGATA a monk"))
}

func TestNewDispatch(t *testing.T) {
	store := assets.NewStore(t.TempDir())

	b := New(config.Config{Backend: config.BackendReplicate}, store, nil)
	assert.Equal(t, "replicate", b.Name())

	b = New(config.Config{Backend: config.BackendLocal}, store, nil)
	assert.Equal(t, "local", b.Name())

	b = New(config.Config{Backend: config.BackendNone}, store, nil)
	assert.Equal(t, "none", b.Name())
}

func TestDisabledBackend(t *testing.T) {
	b := disabledBackend{}
	_, err := b.Generate(context.Background(), registry.Project{}, "a bride", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "none", genErr.Backend)
}

func TestFirstOutputURL(t *testing.T) {
	url, err := firstOutputURL(json.RawMessage(`"https://x/img.png"`))
	require.NoError(t, err)
	assert.Equal(t, "https://x/img.png", url)

	url, err = firstOutputURL(json.RawMessage(`["https://x/a.png", "https://x/b.png"]`))
	require.NoError(t, err)
	assert.Equal(t, "https://x/a.png", url)

	_, err = firstOutputURL(json.RawMessage(`{}`))
	require.Error(t, err)

	_, err = firstOutputURL(nil)
	require.Error(t, err)
}
