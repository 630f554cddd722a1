package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleRequiresImages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "reel.mp4")

	_, err := New(2.5).Assemble(context.Background(), nil, "", out, nil)

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Cause, "no images")
	assert.NoFileExists(t, out)
	assert.NoDirExists(t, filepath.Dir(out))
}

func TestBuildArgsWithAudio(t *testing.T) {
	args := New(2.5).buildArgs("/tmp/list.txt", "/aud/track.mp3", "/out/reel.mp4.part")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f concat -safe 0 -i /tmp/list.txt")
	assert.Contains(t, joined, "-i /aud/track.mp3")
	assert.Contains(t, joined, "scale=1080:1920:force_original_aspect_ratio=decrease")
	assert.Contains(t, joined, "pad=1080:1920:(ow-iw)/2:(oh-ih)/2")
	assert.Contains(t, joined, "-pix_fmt yuv420p")
	assert.Contains(t, joined, "-af apad -shortest")
	assert.Equal(t, "/out/reel.mp4.part", args[len(args)-1])
}

func TestBuildArgsWithoutAudio(t *testing.T) {
	args := New(2.5).buildArgs("/tmp/list.txt", "", "/out/reel.mp4.part")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-an")
	assert.NotContains(t, joined, "-shortest")
	assert.NotContains(t, joined, "aac")
}

func TestWriteConcatList(t *testing.T) {
	path, err := writeConcatList([]string{"/img/a.png", "/img/b.png"}, 2.5)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "file '/img/a.png'\n" +
		"duration 2.500\n" +
		"file '/img/b.png'\n" +
		"duration 2.500\n" +
		"file '/img/b.png'\n"
	assert.Equal(t, want, string(data))
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	path, err := writeConcatList([]string{"/img/o'clock.png"}, 1.0)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `file '/img/o'\''clock.png'`)
}

func TestDuration(t *testing.T) {
	assert.InDelta(t, 12.5, New(2.5).Duration(5), 1e-9)
	// Non-positive per-image seconds falls back to the default.
	assert.InDelta(t, 2.5, New(0).Duration(1), 1e-9)
}

func TestAssemblyErrorMessage(t *testing.T) {
	err := &AssemblyError{Cause: "encoder failed", Stderr: "Invalid data found"}
	assert.Contains(t, err.Error(), "encoder failed")
	assert.Contains(t, err.Error(), "Invalid data found")
}
