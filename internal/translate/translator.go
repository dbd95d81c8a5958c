// Package translate maps transcribed text into a target language.
//
// Backends return errors; Service is the boundary that turns any backend
// failure into FallbackMessage so an upload still succeeds with a
// degraded translation.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikhilbhutani/mediatranslator/pkg/chunker"
)

// FallbackMessage replaces the translation when the backend fails.
const FallbackMessage = "Translation failed due to an internal error."

// Translator is a translation backend.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	Name() string
}

// BatchTranslator is implemented by backends that accept several chunks in
// one call. The result has one entry per input, in order.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// Service wraps a Translator with the fallback policy.
type Service struct {
	backend   Translator
	chunkSize int
}

func NewService(backend Translator) *Service {
	return &Service{backend: backend, chunkSize: chunker.DefaultMaxRunes}
}

// WithChunkSize sets the longest transcript piece, in runes, sent to the
// backend in one request.
func (s *Service) WithChunkSize(n int) *Service {
	if n > 0 {
		s.chunkSize = n
	}
	return s
}

// Translate never fails. failed reports whether the fallback was used.
func (s *Service) Translate(ctx context.Context, text, targetLang string) (translation string, failed bool) {
	chunks := chunker.Split(text, s.chunkSize)
	if len(chunks) == 0 {
		return "", false
	}

	start := time.Now()
	out, err := s.translateChunks(ctx, chunks, targetLang)
	if err != nil {
		slog.Error("translation failed, using fallback",
			"backend", s.backend.Name(),
			"target_lang", targetLang,
			"chunks", len(chunks),
			"error", err,
		)
		return FallbackMessage, true
	}

	slog.Debug("translation complete",
		"backend", s.backend.Name(),
		"target_lang", targetLang,
		"chunks", len(chunks),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return out, false
}

func (s *Service) translateChunks(ctx context.Context, chunks []string, targetLang string) (string, error) {
	var parts []string
	if bt, ok := s.backend.(BatchTranslator); ok && len(chunks) > 1 {
		out, err := bt.TranslateBatch(ctx, chunks, targetLang)
		if err != nil {
			return "", err
		}
		if len(out) != len(chunks) {
			return "", fmt.Errorf("backend returned %d translations for %d chunks", len(out), len(chunks))
		}
		parts = out
	} else {
		parts = make([]string, 0, len(chunks))
		for i, c := range chunks {
			out, err := s.backend.Translate(ctx, c, targetLang)
			if err != nil {
				return "", fmt.Errorf("chunk %d: %w", i, err)
			}
			parts = append(parts, out)
		}
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", fmt.Errorf("chunk %d: %w", i, errEmptyTranslation)
		}
	}
	return strings.Join(parts, " "), nil
}
