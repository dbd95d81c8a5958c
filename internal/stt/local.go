package stt

const defaultLocalBaseURL = "http://localhost:8178/v1"

// NewLocalSTT returns a Whisper client aimed at a local OpenAI-compatible
// server (whisper.cpp, faster-whisper-server). No API key is sent.
//
//	./server -m models/ggml-base.bin --port 8178
func NewLocalSTT(baseURL string) *OpenAISTT {
	if baseURL == "" {
		baseURL = defaultLocalBaseURL
	}
	s := NewOpenAISTT(OpenAISTTConfig{BaseURL: baseURL})
	s.name = "local-whisper"
	return s
}
