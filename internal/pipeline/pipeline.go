package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/mediatranslator/internal/media"
	"github.com/nikhilbhutani/mediatranslator/internal/models"
	"github.com/nikhilbhutani/mediatranslator/internal/result"
	"github.com/nikhilbhutani/mediatranslator/internal/stt"
)

// Validation messages are returned to clients verbatim.
const (
	MsgNoFile   = "No file uploaded"
	MsgNoOption = "No option selected"
)

type Normalizer interface {
	Normalize(ctx context.Context, id uuid.UUID, filename string, content []byte) (*media.Waveform, error)
}

// Translator never fails; failed reports a fallback translation.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (translation string, failed bool)
}

// Processor runs upload -> waveform -> transcript -> translation and
// publishes the outcome to the result store.
type Processor struct {
	normalizer Normalizer
	stt        stt.STTProvider
	translator Translator
	store      result.Store
	now        func() time.Time
}

func NewProcessor(n Normalizer, s stt.STTProvider, t Translator, store result.Store) *Processor {
	return &Processor{
		normalizer: n,
		stt:        s,
		translator: t,
		store:      store,
		now:        time.Now,
	}
}

// Validate checks the upload before any work is done.
func Validate(req models.UploadRequest) error {
	if req.Filename == "" {
		return validationError(MsgNoFile)
	}
	if req.Option == "" {
		return validationError(MsgNoOption)
	}
	return nil
}

// Process handles one upload. Every error it returns is a *Error.
func (p *Processor) Process(ctx context.Context, req models.UploadRequest) (*models.ProcessingResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	id := uuid.New()
	log := slog.With("job_id", id, "filename", req.Filename, "option", req.Option)
	log.Info("processing upload", "size_bytes", len(req.Content))
	start := p.now()

	wf, err := p.normalizer.Normalize(ctx, id, req.Filename, req.Content)
	if err != nil {
		return nil, newError(KindTranscoding, "normalize", err)
	}
	defer func() {
		if err := wf.Close(); err != nil {
			log.Warn("failed to remove waveform", "error", err)
		}
	}()

	tr, err := p.stt.Transcribe(ctx, stt.TranscriptionRequest{FilePath: wf.Path})
	if err != nil {
		return nil, newError(KindRecognition, "transcribe", err)
	}

	translation, failed := p.translator.Translate(ctx, tr.Text, req.Option)

	res := &models.ProcessingResult{
		ID:                id,
		Filename:          req.Filename,
		Option:            req.Option,
		Transcription:     tr.Text,
		Translation:       translation,
		TranslationFailed: failed,
		ProcessedAt:       p.now(),
	}

	if err := p.store.Set(ctx, models.LastResultFrom(res)); err != nil {
		return nil, newError(KindInternal, "store result", err)
	}

	log.Info("upload processed",
		"stt", p.stt.Name(),
		"translation_failed", failed,
		"duration_ms", res.ProcessedAt.Sub(start).Milliseconds(),
	)
	return res, nil
}
