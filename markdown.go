package main

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownErr      error
	markdownStyle    = markdownThemeAuto
	markdownWordWrap = 72
)

// renderMarkdown returns Glamour-rendered terminal output, falling back to
// the raw text when the renderer cannot be built.
func renderMarkdown(content string) string {
	renderer := ensureMarkdownRenderer()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func ensureMarkdownRenderer() *glamour.TermRenderer {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer != nil && markdownErr == nil {
		return markdownRenderer
	}
	options := []glamour.TermRendererOption{
		glamour.WithWordWrap(markdownWordWrap),
	}
	switch markdownStyle {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}
	markdownRenderer, markdownErr = glamour.NewTermRenderer(options...)
	if markdownErr != nil {
		return nil
	}
	return markdownRenderer
}

func setMarkdownTheme(theme markdownTheme) {
	markdownMu.Lock()
	if theme == "" {
		theme = markdownThemeAuto
	}
	if markdownStyle != theme {
		markdownStyle = theme
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

func setMarkdownWordWrap(width int) {
	markdownMu.Lock()
	if width < 20 {
		width = 20
	}
	if markdownWordWrap != width {
		markdownWordWrap = width
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

const helpDoc = `# hawk

Generate images from prompts, curate them in the gallery, and splice the
selection into a vertical video.

## Projects

| Key | Action |
| --- | ------ |
| 1..9 | Switch to the numbered project |

## Generation

| Key | Action |
| --- | ------ |
| g | Open the prompt overlay (Enter submits, Esc cancels) |
| up | Recall a previous prompt inside the overlay |

## Gallery

| Key | Action |
| --- | ------ |
| j / k, arrows | Move the cursor |
| s | Toggle selection at the cursor |
| a | Select every image |
| esc | Clear the selection |
| d | Delete selected images |
| y | Copy the highlighted image path |

## Video

| Key | Action |
| --- | ------ |
| v | Assemble the selection into a 9:16 video |
| o | Cycle the audio track muxed into the export |
| b | Open the exports folder |

## Misc

| Key | Action |
| --- | ------ |
| ? | Toggle this help |
| ctrl+k | Cancel the running task |
| q, ctrl+c | Quit |
`

func renderHelpDoc() string {
	return renderMarkdown(helpDoc)
}
