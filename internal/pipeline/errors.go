package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. The set is closed.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindTranscoding
	KindRecognition
	// KindTranslation is never returned by Process; translate.Service
	// absorbs translation failures. It keeps the taxonomy closed.
	KindTranslation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTranscoding:
		return "transcoding"
	case KindRecognition:
		return "recognition"
	case KindTranslation:
		return "translation"
	default:
		return "internal"
	}
}

// Error is a classified pipeline failure. Msg is safe to show to clients
// only for KindValidation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Op: "validate", Msg: msg}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
