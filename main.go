package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"hawk/internal/assets"
	"hawk/internal/config"
	"hawk/internal/enhance"
	"hawk/internal/httpclient"
	"hawk/internal/imagegen"
	"hawk/internal/registry"
	"hawk/internal/video"
)

func main() {
	noSplash := flag.Bool("no-splash", false, "Skip the startup splash screen")
	theme := flag.String("theme", "auto", "Help rendering theme: auto, light, or dark")
	flag.Parse()
	setMarkdownTheme(markdownThemeFromString(*theme))

	if err := run(!*noSplash); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "configuration error:", cfgErr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(splash bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reg, err := registry.Load(projectsConfigPath())
	if err != nil {
		return err
	}

	store := assets.NewStore(cfg.DataDir)
	client := httpclient.New(cfg.HTTPTimeout)
	backend := imagegen.New(cfg, store, client)

	var enhancer *enhance.Enhancer
	if cfg.EnhancerEnabled {
		enhancer = enhance.New(cfg.OllamaURL, cfg.OllamaModel, cfg.EnhanceTimeout, client)
	}

	history, err := openHistoryStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer history.Close()

	telemetry := newTelemetryLogger(cfg.DataDir)
	telemetry.Emit("app_start", "", map[string]string{"backend": string(cfg.Backend)})

	deps := appDeps{
		cfg:       cfg,
		projects:  reg.All(),
		store:     store,
		backend:   backend,
		enhancer:  enhancer,
		assembler: video.New(cfg.ImageSeconds),
		history:   history,
		telemetry: telemetry,
		splash:    splash,
	}

	_, err = tea.NewProgram(
		initialModel(deps),
		tea.WithAltScreen(),
	).Run()
	return err
}

// projectsConfigPath points at the optional registry override under the user
// config dir; a missing file falls back to the builtin set.
func projectsConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hawk", "projects.yaml")
}
