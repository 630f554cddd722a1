package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// partSuffix marks in-flight files. Writers stage under this suffix and
// promote by rename, so listings never see a half-written file.
const partSuffix = ".part"

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

var audioExts = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
	".aac": true,
}

// Store is the on-disk asset convention: one directory per project holding
// images/, audio/, and exports/ subdirectories, created on demand.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Root() string { return s.root }

func (s *Store) ImagesDir(slug string) string {
	return filepath.Join(s.root, slug, "images")
}

func (s *Store) AudioDir(slug string) string {
	return filepath.Join(s.root, slug, "audio")
}

func (s *Store) ExportsDir(slug string) string {
	return filepath.Join(s.root, slug, "exports")
}

// EnsureDirs creates the project's directory layout.
func (s *Store) EnsureDirs(slug string) error {
	for _, dir := range []string{s.ImagesDir(slug), s.AudioDir(slug), s.ExportsDir(slug)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Images lists the project's generated images, newest first.
func (s *Store) Images(slug string) []string {
	return listByExt(s.ImagesDir(slug), imageExts)
}

// Audio lists the project's audio tracks, newest first.
func (s *Store) Audio(slug string) []string {
	return listByExt(s.AudioDir(slug), audioExts)
}

// Exports lists the project's assembled videos, newest first.
func (s *Store) Exports(slug string) []string {
	return listByExt(s.ExportsDir(slug), map[string]bool{".mp4": true, ".mov": true})
}

// Delete removes a single asset file.
func (s *Store) Delete(path string) error {
	return os.Remove(path)
}

// StagePath returns the temp path a writer should use for final.
func StagePath(final string) string {
	return final + partSuffix
}

// Promote moves a staged file into place. Callers write StagePath(final)
// first, then promote; an abandoned task leaves only the staged file behind.
func Promote(final string) error {
	return os.Rename(StagePath(final), final)
}

// DiscardStaged removes a staged file, ignoring absence.
func DiscardStaged(final string) {
	_ = os.Remove(StagePath(final))
}

// ImageFilename builds a timestamped, prompt-derived filename.
func ImageFilename(prompt string, now time.Time) string {
	return fmt.Sprintf("%s_%s.png", now.Format("20060102_150405"), sanitizePrompt(prompt, 30))
}

func sanitizePrompt(prompt string, max int) string {
	if len(prompt) > max {
		prompt = prompt[:max]
	}
	var b strings.Builder
	for _, r := range prompt {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "image"
	}
	return out
}

func listByExt(dir string, exts map[string]bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type fileWithTime struct {
		path string
		mod  time.Time
	}
	var files []fileWithTime
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, partSuffix) {
			continue
		}
		if !exts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileWithTime{path: filepath.Join(dir, name), mod: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.After(files[j].mod)
		}
		return files[i].path > files[j].path
	})

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.path)
	}
	return paths
}
