package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// transcodeToWAV shells out to ffmpeg to rewrite an unsupported
// container as a temporary WAV file. The caller removes the returned
// file.
func transcodeToWAV(ctx context.Context, ffmpegPath, inPath string) (string, error) {
	resolved, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: no ffmpeg binary for the transcode fallback", ErrUnsupportedFormat, inPath)
	}

	tmp, err := os.CreateTemp("", "loudnorm-*.wav")
	if err != nil {
		return "", fmt.Errorf("pipeline: %w", err)
	}

	tmpPath := tmp.Name()
	tmp.Close()

	cmd := exec.CommandContext(ctx, resolved,
		"-hide_banner",
		"-y",
		"-i", inPath,
		"-vn",
		"-f", "wav",
		tmpPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(tmpPath)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("pipeline: ffmpeg transcode: %w", ctxErr)
		}

		return "", fmt.Errorf("%w: %s: ffmpeg: %s", ErrDecodeFailed, inPath, lastLine(&stderr))
	}

	return tmpPath, nil
}

// lastLine extracts the final non-empty stderr line, which is where
// ffmpeg states its actual complaint.
func lastLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}

	return "no diagnostic output"
}
