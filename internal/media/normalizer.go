package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultSourceExt   = ".mp4"
	intermediateFormat = ".mp3"
	waveformFormat     = ".wav"
)

// ErrEmptyInput is returned when the upload carries no bytes.
var ErrEmptyInput = errors.New("empty media input")

// Waveform is a transient uncompressed audio file. Close deletes it
// together with its scratch directory.
type Waveform struct {
	Path string
	dir  string
}

// Close removes the waveform's scratch directory. It is safe to call more
// than once.
func (w *Waveform) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	dir := w.dir
	w.dir = ""
	return os.RemoveAll(dir)
}

// Normalizer turns an uploaded media blob into a speech-ready waveform.
type Normalizer struct {
	transcoder Transcoder
	tempDir    string
}

func NewNormalizer(t Transcoder, tempDir string) *Normalizer {
	return &Normalizer{transcoder: t, tempDir: tempDir}
}

// Normalize writes content to a per-job scratch directory and converts it
// container -> mp3 -> wav, deleting each predecessor once it is consumed.
// On failure nothing is left on disk.
func (n *Normalizer) Normalize(ctx context.Context, id uuid.UUID, filename string, content []byte) (wf *Waveform, err error) {
	if len(content) == 0 {
		return nil, ErrEmptyInput
	}

	dir, err := os.MkdirTemp(n.tempDir, "media-"+id.String()+"-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				slog.Warn("failed to remove scratch dir", "dir", dir, "error", rmErr)
			}
		}
	}()

	src := filepath.Join(dir, "input"+sourceExt(filename))
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	compressed, err := n.step(ctx, src, filepath.Join(dir, "audio"+intermediateFormat))
	if err != nil {
		return nil, err
	}

	wav, err := n.step(ctx, compressed, filepath.Join(dir, "audio"+waveformFormat))
	if err != nil {
		return nil, err
	}

	return &Waveform{Path: wav, dir: dir}, nil
}

// step transcodes src into dst and removes src.
func (n *Normalizer) step(ctx context.Context, src, dst string) (string, error) {
	if err := n.transcoder.Transcode(ctx, src, dst); err != nil {
		return "", fmt.Errorf("transcode to %s: %w", filepath.Ext(dst), err)
	}
	if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove intermediate file", "path", src, "error", err)
	}
	return dst, nil
}

// sourceExt keeps the upload's suffix so ffmpeg can probe by name; uploads
// without one are assumed to be mp4.
func sourceExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return defaultSourceExt
	}
	return ext
}
