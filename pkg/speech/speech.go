// ABOUTME: Speech collaborator boundaries for transcription and synthesis
// ABOUTME: HTTP clients for the whisper.cpp server and Piper TTS sidecars

// Package speech defines the speech-to-text and text-to-speech boundaries.
// Both are external collaborators; the terminology engine never depends on
// them, only the HTTP surface does.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Transcript is the common transcription result from any provider.
type Transcript struct {
	Text     string
	Language string
	Duration float64 // Audio duration in seconds, when the provider reports it
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, lang string) (Transcript, error)
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// WhisperClient talks to a whisper.cpp server sidecar.
type WhisperClient struct {
	baseURL string
	hc      *http.Client
}

// NewWhisperClient creates a transcriber for the sidecar at baseURL.
func NewWhisperClient(baseURL string) *WhisperClient {
	return &WhisperClient{baseURL: baseURL, hc: &http.Client{}}
}

// Transcribe uploads audio as multipart form data, the wire format the
// whisper.cpp server expects.
func (c *WhisperClient) Transcribe(ctx context.Context, audio io.Reader, lang string) (Transcript, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return Transcript{}, fmt.Errorf("transcribe: copy audio: %w", err)
	}
	if lang != "" {
		if err := mw.WriteField("language", lang); err != nil {
			return Transcript{}, fmt.Errorf("transcribe: build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return Transcript{}, fmt.Errorf("transcribe: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inference", &body)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return Transcript{}, fmt.Errorf("transcribe: sidecar returned %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Transcript{}, fmt.Errorf("transcribe: decode response: %w", err)
	}
	return Transcript{Text: out.Text, Language: out.Language, Duration: out.Duration}, nil
}

// PiperClient talks to a Piper TTS sidecar.
type PiperClient struct {
	baseURL string
	hc      *http.Client
}

// NewPiperClient creates a synthesizer for the sidecar at baseURL.
func NewPiperClient(baseURL string) *PiperClient {
	return &PiperClient{baseURL: baseURL, hc: &http.Client{}}
}

// Synthesize returns WAV audio for the given text.
func (c *PiperClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": text, "language": lang})
	if err != nil {
		return nil, fmt.Errorf("synthesize: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("synthesize: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("synthesize: sidecar returned %d: %s", resp.StatusCode, raw)
	}
	return io.ReadAll(resp.Body)
}
