package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/mediatranslator/internal/models"
	"github.com/nikhilbhutani/mediatranslator/internal/pipeline"
	"github.com/nikhilbhutani/mediatranslator/internal/result"
)

const (
	msgProcessed     = "File processed successfully"
	msgProcessFailed = "Failed to process file"
	msgTooLarge      = "File too large"
	msgRetrieved     = "Data retrieved successfully"
	msgNoData        = "No data available"

	// multipart parts above this size spill to disk
	multipartMemory = 32 << 20
)

// Processor is the upload pipeline.
type Processor interface {
	Process(ctx context.Context, req models.UploadRequest) (*models.ProcessingResult, error)
}

type MediaHandler struct {
	proc     Processor
	store    result.Store
	maxBytes int64
}

func NewMediaHandler(proc Processor, store result.Store, maxBytes int64) *MediaHandler {
	return &MediaHandler{proc: proc, store: store, maxBytes: maxBytes}
}

type uploadResponse struct {
	Message       string `json:"message"`
	Filename      string `json:"filename"`
	Transcription string `json:"transcription"`
	Translation   string `json:"translation"`
}

type dataResponse struct {
	Message           string `json:"message"`
	Filename          string `json:"filename"`
	Option            string `json:"option"`
	TranslatedMessage string `json:"translated_message"`
}

// Upload accepts a multipart form with "file" and "option", runs the
// pipeline and returns the transcription and translation.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := slog.With("request_id", chimiddleware.GetReqID(r.Context()))

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, messageResponse{Message: msgTooLarge})
			return
		}
		// a body that is not multipart carries neither field
		if !errors.Is(err, http.ErrNotMultipart) && !errors.Is(err, http.ErrMissingBoundary) {
			log.Warn("malformed multipart body", "error", err)
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	// body fields only; a query string must not stand in for the form
	req := models.UploadRequest{Option: r.PostFormValue("option")}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.Filename = header.Filename
	}

	if err := pipeline.Validate(req); err != nil {
		h.writeError(w, log, err)
		return
	}

	req.Content, err = io.ReadAll(file)
	if err != nil {
		log.Error("read upload", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgProcessFailed})
		return
	}

	res, err := h.proc.Process(r.Context(), req)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:       msgProcessed,
		Filename:      res.Filename,
		Transcription: res.Transcription,
		Translation:   res.Translation,
	})
}

// GetData returns the most recently processed result, or a sentinel body
// when nothing has been processed yet.
func (h *MediaHandler) GetData(w http.ResponseWriter, r *http.Request) {
	last, err := h.store.Get(r.Context())
	if err != nil {
		slog.Error("read last result", "request_id", chimiddleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusOK, messageResponse{Message: msgNoData})
		return
	}
	if !last.Complete() {
		writeJSON(w, http.StatusOK, messageResponse{Message: msgNoData})
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{
		Message:           msgRetrieved,
		Filename:          last.Filename,
		Option:            last.Option,
		TranslatedMessage: last.Message,
	})
}

// writeError echoes validation messages and hides everything else.
func (h *MediaHandler) writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var pe *pipeline.Error
	if errors.As(err, &pe) && pe.Kind == pipeline.KindValidation {
		log.Info("upload rejected", "reason", pe.Msg)
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: pe.Msg})
		return
	}

	log.Error("upload processing failed", "kind", pipeline.KindOf(err).String(), "error", err)
	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgProcessFailed})
}
