package video

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"

	"hawk/internal/assets"
)

// Export frame for vertical video.
const (
	frameWidth  = 1080
	frameHeight = 1920
	frameRate   = 30
)

// AssemblyError carries the encoder's stderr tail so the UI can show why the
// export failed.
type AssemblyError struct {
	Cause  string
	Stderr string
	Err    error
}

func (e *AssemblyError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("assemble: %s: %s", e.Cause, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("assemble: %s: %v", e.Cause, e.Err)
	}
	return "assemble: " + e.Cause
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Assembler splices an ordered image list into one 9:16 slideshow via the
// external encoder. The command template is fixed; only inputs vary.
type Assembler struct {
	ffmpeg       string
	imageSeconds float64
}

func New(imageSeconds float64) *Assembler {
	if imageSeconds <= 0 {
		imageSeconds = 2.5
	}
	return &Assembler{ffmpeg: "ffmpeg", imageSeconds: imageSeconds}
}

// Assemble writes the export to output. Audio is optional; when present it is
// muxed against the visual track and trimmed to the video length. Encoder
// output is streamed line by line to logf when non-nil. On failure no output
// file is left behind.
func (a *Assembler) Assemble(ctx context.Context, images []string, audio, output string, logf func(string)) (string, error) {
	if len(images) == 0 {
		return "", &AssemblyError{Cause: "no images selected"}
	}
	if _, err := exec.LookPath(a.ffmpeg); err != nil {
		return "", &AssemblyError{Cause: "ffmpeg not found in PATH", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", &AssemblyError{Cause: "create exports dir", Err: err}
	}

	listFile, err := writeConcatList(images, a.imageSeconds)
	if err != nil {
		return "", &AssemblyError{Cause: "write concat list", Err: err}
	}
	defer os.Remove(listFile)

	staged := assets.StagePath(output)
	args := a.buildArgs(listFile, audio, staged)

	tail, err := a.run(ctx, args, logf)
	if err != nil {
		assets.DiscardStaged(output)
		return "", &AssemblyError{Cause: "encoder failed", Stderr: tail, Err: err}
	}
	if err := assets.Promote(output); err != nil {
		assets.DiscardStaged(output)
		return "", &AssemblyError{Cause: "promote export", Err: err}
	}
	return output, nil
}

// Duration returns the expected export length in seconds for n images.
func (a *Assembler) Duration(n int) float64 {
	return float64(n) * a.imageSeconds
}

func (a *Assembler) buildArgs(listFile, audio, output string) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
	}
	if audio != "" {
		args = append(args, "-i", audio)
	}
	args = append(args,
		"-vf", fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
			frameWidth, frameHeight, frameWidth, frameHeight,
		),
		"-r", fmt.Sprintf("%d", frameRate),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
	)
	if audio != "" {
		// Short audio is padded with silence, long audio trimmed, so the
		// export always matches the visual track length.
		args = append(args,
			"-c:a", "aac",
			"-b:a", "192k",
			"-af", "apad",
			"-shortest",
		)
	} else {
		args = append(args, "-an")
	}
	args = append(args, "-f", "mp4", output)
	return args
}

// writeConcatList builds the concat demuxer input. The last file is repeated
// without a duration so the final frame holds for its full display time.
func writeConcatList(images []string, seconds float64) (string, error) {
	f, err := os.CreateTemp("", "hawk-concat-*.txt")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, img := range images {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(img))
		fmt.Fprintf(&b, "duration %.3f\n", seconds)
	}
	fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(images[len(images)-1]))

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

const stderrTailLines = 12

// run executes the encoder under a pty so progress lines arrive unbuffered,
// and keeps a stderr tail for error reporting.
func (a *Assembler) run(ctx context.Context, args []string, logf func(string)) (string, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return "", err
	}
	defer ptmx.Close()

	var tail []string
	scanner := bufio.NewScanner(ptmx)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLinesOrCR)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if logf != nil {
			logf(line)
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}

	if err := cmd.Wait(); err != nil {
		return strings.Join(tail, "\n"), err
	}
	return strings.Join(tail, "\n"), nil
}

// scanLinesOrCR splits on \n or bare \r; the encoder rewrites its progress
// line with carriage returns.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, c := range data {
		if c == '\n' || c == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
