package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Transcoder converts the media file at src into dst. Formats are implied
// by the file suffixes.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
}

// FFmpeg transcodes by shelling out to the ffmpeg binary.
type FFmpeg struct {
	bin string
}

func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

func (f *FFmpeg) Transcode(ctx context.Context, src, dst string) error {
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", src}
	args = append(args, outputArgs(filepath.Ext(dst))...)
	args = append(args, dst)

	cmd := exec.CommandContext(ctx, f.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("ffmpeg %s -> %s: %w", filepath.Ext(src), filepath.Ext(dst), err)
		}
		return fmt.Errorf("ffmpeg %s -> %s: %w: %s", filepath.Ext(src), filepath.Ext(dst), err, msg)
	}
	return nil
}

// outputArgs returns the encoder flags for the given output suffix.
func outputArgs(ext string) []string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return []string{"-vn", "-map", "0:a:0", "-c:a", "libmp3lame", "-q:a", "4"}
	case ".wav":
		// mono 16 kHz PCM is what speech recognizers expect
		return []string{"-vn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", "-f", "wav"}
	default:
		return nil
	}
}
