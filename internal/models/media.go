package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadRequest is a single media upload with its target-language option.
type UploadRequest struct {
	Filename string
	Option   string
	Content  []byte
}

// ProcessingResult is produced once per successful upload.
type ProcessingResult struct {
	ID                uuid.UUID `json:"id"`
	Filename          string    `json:"filename"`
	Option            string    `json:"option"`
	Transcription     string    `json:"transcription"`
	Translation       string    `json:"translation"`
	TranslationFailed bool      `json:"translation_failed"`
	ProcessedAt       time.Time `json:"processed_at"`
}

// LastResult is the single-slot record served by GET /get-data.
// Empty fields mean the value is absent.
type LastResult struct {
	Filename string `json:"filename"`
	Option   string `json:"option"`
	Message  string `json:"message"`
}

// Complete reports whether every field of the slot is populated.
func (r LastResult) Complete() bool {
	return r.Filename != "" && r.Option != "" && r.Message != ""
}

// LastResultFrom projects a processing result into the result slot.
func LastResultFrom(res *ProcessingResult) LastResult {
	return LastResult{
		Filename: res.Filename,
		Option:   res.Option,
		Message:  res.Translation,
	}
}
