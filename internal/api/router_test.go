package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/nikhilbhutani/mediatranslator/internal/config"
	"github.com/nikhilbhutani/mediatranslator/internal/media"
	"github.com/nikhilbhutani/mediatranslator/internal/pipeline"
	"github.com/nikhilbhutani/mediatranslator/internal/result"
	"github.com/nikhilbhutani/mediatranslator/internal/stt"
	"github.com/nikhilbhutani/mediatranslator/internal/translate"
)

type copyTranscoder struct{ err error }

func (c copyTranscoder) Transcode(_ context.Context, src, dst string) error {
	if c.err != nil {
		return c.err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

type echoSTT struct{ err error }

func (echoSTT) Name() string { return "echo" }

func (e echoSTT) Transcribe(_ context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	if e.err != nil {
		return nil, e.err
	}
	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, err
	}
	return &stt.TranscriptionResponse{Text: string(data)}, nil
}

type panicSTT struct{}

func (panicSTT) Name() string { return "panic" }

func (panicSTT) Transcribe(context.Context, stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	var m map[string]int
	m["boom"]++
	return nil, nil
}

type dictTranslator struct{ err error }

func (dictTranslator) Name() string { return "dict" }

func (d dictTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	if text == "hello" && lang == "fr" {
		return "bonjour", nil
	}
	return "", errors.New("unknown phrase")
}

type server struct {
	handler http.Handler
	tmp     string
}

func newServer(t *testing.T, tc media.Transcoder, s stt.STTProvider, tr translate.Translator) *server {
	t.Helper()
	tmp := t.TempDir()
	store := result.NewMemoryStore()
	proc := pipeline.NewProcessor(media.NewNormalizer(tc, tmp), s, translate.NewService(tr), store)
	cfg := &config.Config{
		Server: config.ServerConfig{MaxUploadMB: 1},
		CORS:   config.CORSConfig{AllowedOrigin: "http://localhost:3000"},
	}
	return &server{handler: NewRouter(cfg, proc, store, nil).Setup(), tmp: tmp}
}

func (s *server) do(t *testing.T, req *http.Request) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	var body map[string]string
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, body
}

func (s *server) upload(t *testing.T, filename, content, option string) (int, map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write([]byte(content))
	mw.WriteField("option", option)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(t, req)
}

func (s *server) getData(t *testing.T) map[string]string {
	t.Helper()
	code, body := s.do(t, httptest.NewRequest(http.MethodGet, "/get-data", nil))
	if code != http.StatusOK {
		t.Fatalf("GET /get-data status = %d", code)
	}
	return body
}

func (s *server) assertNoTransientFiles(t *testing.T) {
	t.Helper()
	left, err := os.ReadDir(s.tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("%d transient entries left behind", len(left))
	}
}

func assertBody(t *testing.T, got, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("body = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("body[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestRoot(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{})

	code, body := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if code != http.StatusOK {
		t.Errorf("status = %d", code)
	}
	assertBody(t, body, map[string]string{"message": "Hello World"})
}

func TestUploadThenGetData(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{})

	assertBody(t, s.getData(t), map[string]string{"message": "No data available"})

	code, body := s.upload(t, "clip.mp4", "hello", "fr")
	if code != http.StatusOK {
		t.Fatalf("upload status = %d, body %v", code, body)
	}
	assertBody(t, body, map[string]string{
		"message":       "File processed successfully",
		"filename":      "clip.mp4",
		"transcription": "hello",
		"translation":   "bonjour",
	})

	assertBody(t, s.getData(t), map[string]string{
		"message":            "Data retrieved successfully",
		"filename":           "clip.mp4",
		"option":             "fr",
		"translated_message": "bonjour",
	})
	s.assertNoTransientFiles(t)
}

func TestUploadTranslationFailureDegrades(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{err: errors.New("service down")})

	code, body := s.upload(t, "clip.mp4", "hello", "fr")
	if code != http.StatusOK {
		t.Fatalf("upload status = %d, want 200", code)
	}
	if body["translation"] != "Translation failed due to an internal error." {
		t.Errorf("translation = %q", body["translation"])
	}
	if body["transcription"] != "hello" {
		t.Errorf("transcription = %q", body["transcription"])
	}
	s.assertNoTransientFiles(t)
}

func TestUploadStageFailures(t *testing.T) {
	tests := []struct {
		name string
		tc   media.Transcoder
		stt  stt.STTProvider
	}{
		{name: "transcoding", tc: copyTranscoder{err: errors.New("moov atom not found")}, stt: echoSTT{}},
		{name: "recognition", tc: copyTranscoder{}, stt: echoSTT{err: stt.ErrNoSpeech}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.tc, tt.stt, dictTranslator{})

			code, body := s.upload(t, "clip.mp4", "hello", "fr")
			if code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", code)
			}
			assertBody(t, body, map[string]string{"message": "Failed to process file"})
			assertBody(t, s.getData(t), map[string]string{"message": "No data available"})
			s.assertNoTransientFiles(t)
		})
	}
}

func TestUploadValidation(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{})

	code, body := s.upload(t, "clip.mp4", "hello", "")
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	assertBody(t, body, map[string]string{"message": "No option selected"})
	s.assertNoTransientFiles(t)
}

func TestUploadIgnoresQueryOption(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "clip.mp4")
	fw.Write([]byte("hello"))
	mw.WriteField("option", "")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload?option=fr", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, body := s.do(t, req)

	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	assertBody(t, body, map[string]string{"message": "No option selected"})
	assertBody(t, s.getData(t), map[string]string{"message": "No data available"})
}

func TestUploadPanicReturnsGenericFailure(t *testing.T) {
	s := newServer(t, copyTranscoder{}, panicSTT{}, dictTranslator{})

	code, body := s.upload(t, "clip.mp4", "hello", "fr")
	if code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
	assertBody(t, body, map[string]string{"message": "Failed to process file"})
	s.assertNoTransientFiles(t)
}

func TestRateLimitKeysOnPeerAddress(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantSecond int
	}{
		{name: "forwarded header ignored by default", wantSecond: http.StatusTooManyRequests},
		{name: "forwarded header trusted behind a proxy", trustProxy: true, wantSecond: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Server:    config.ServerConfig{MaxUploadMB: 1, TrustProxy: tt.trustProxy},
				CORS:      config.CORSConfig{AllowedOrigin: "http://localhost:3000"},
				RateLimit: config.RateLimitConfig{RPS: 0.001, Burst: 1},
			}
			h := NewRouter(cfg, nil, result.NewMemoryStore(), nil).Setup()

			send := func(forwardedFor string) int {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.RemoteAddr = "203.0.113.7:40000"
				req.Header.Set("X-Forwarded-For", forwardedFor)
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				return rec.Code
			}

			if code := send("198.51.100.1"); code != http.StatusOK {
				t.Fatalf("first request status = %d, want 200", code)
			}
			if code := send("198.51.100.2"); code != tt.wantSecond {
				t.Errorf("second request status = %d, want %d", code, tt.wantSecond)
			}
		})
	}
}

func TestLastWriteWins(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{})

	s.upload(t, "first.mp4", "hello", "fr")
	s.upload(t, "second.mp4", "hello", "fr")

	if got := s.getData(t)["filename"]; got != "second.mp4" {
		t.Errorf("filename = %q, want second.mp4", got)
	}
}

func TestCORSPreflightThroughRouter(t *testing.T) {
	s := newServer(t, copyTranscoder{}, echoSTT{}, dictTranslator{})

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
