package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawk/internal/config"
)

func TestBuiltinRoundTrip(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	for _, p := range reg.All() {
		got, err := reg.Lookup(p.Slug)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestLookupUnknown(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	_, err = reg.Lookup("does-not-exist")
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	content := `projects:
  - slug: neon-city
    name: Neon City
    model: stability-ai/sdxl
    trigger: NEON
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	p, err := reg.Lookup("neon-city")
	require.NoError(t, err)
	assert.Equal(t, "Neon City", p.Name)
	assert.Equal(t, "NEON", p.Trigger)
}

func TestLoadOverrideMissingFileFallsBack(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, len(builtinProjects), reg.Len())
}

func TestLoadOverrideInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projects: [::"), 0o644))

	_, err := Load(path)
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewRejectsDuplicatesAndIncomplete(t *testing.T) {
	_, err := New([]Project{
		{Slug: "a", Name: "A", Model: "m"},
		{Slug: "a", Name: "A2", Model: "m"},
	})
	require.Error(t, err)

	_, err = New([]Project{{Slug: "a"}})
	require.Error(t, err)

	_, err = New(nil)
	require.Error(t, err)
}
