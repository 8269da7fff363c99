// Package server implements the translatord HTTP API
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anubhavsingh2004/lt-audio-translator/internal/logger"
	"github.com/anubhavsingh2004/lt-audio-translator/internal/metrics"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/lang"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/pipeline"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/restore"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/speech"
)

// Server wires the terminology pipeline and the speech collaborators to the
// HTTP API.
type Server struct {
	store         *glossary.Store
	pipe          *pipeline.Pipeline
	transcriber   speech.Transcriber
	synthesizer   speech.Synthesizer // nil disables audio output
	metrics       *metrics.Metrics
	log           *logger.Logger
	maxAudioBytes int64
	startTime     time.Time
}

// Options carries the server dependencies.
type Options struct {
	Store         *glossary.Store
	Pipeline      *pipeline.Pipeline
	Transcriber   speech.Transcriber
	Synthesizer   speech.Synthesizer
	Metrics       *metrics.Metrics
	Log           *logger.Logger
	MaxAudioBytes int64
}

// NewServer creates the API server. Store and Pipeline are mandatory:
// serving without terminology protection is not a supported mode.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Pipeline == nil {
		return nil, errors.New("server: glossary store and pipeline are required")
	}
	if opts.Log == nil {
		opts.Log = logger.GetGlobalLogger()
	}
	if opts.MaxAudioBytes <= 0 {
		opts.MaxAudioBytes = 25 << 20
	}
	return &Server{
		store:         opts.Store,
		pipe:          opts.Pipeline,
		transcriber:   opts.Transcriber,
		synthesizer:   opts.Synthesizer,
		metrics:       opts.Metrics,
		log:           opts.Log,
		maxAudioBytes: opts.MaxAudioBytes,
		startTime:     time.Now(),
	}, nil
}

// Handler builds the API mux with observability middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", s.observe("root", s.handleRoot))
	mux.Handle("GET /api/languages", s.observe("languages", s.handleLanguages))
	mux.Handle("POST /api/translate-text", s.observe("translate_text", s.handleTranslateText))
	mux.Handle("POST /api/translate-audio", s.observe("translate_audio", s.handleTranslateAudio))
	mux.Handle("POST /api/transcribe-only", s.observe("transcribe_only", s.handleTranscribeOnly))
	mux.Handle("GET /api/glossary/stats", s.observe("glossary_stats", s.handleGlossaryStats))
	mux.Handle("POST /admin/glossary/reload", s.observe("glossary_reload", s.handleGlossaryReload))
	return mux
}

// ========== Service Info ==========

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	idx := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"service":          "lt-audio-translator",
		"mode":             "STT + protected translation",
		"glossary_entries": idx.Len(),
		"protection":       "always-on",
		"tts_enabled":      s.synthesizer != nil,
		"uptime_seconds":   int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": lang.Supported()})
}

// ========== Translation ==========

type translateTextRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	Success         bool                 `json:"success"`
	RequestID       string               `json:"request_id"`
	TranscribedText string               `json:"transcribed_text,omitempty"`
	ProtectedText   string               `json:"protected_text"`
	TranslatedText  string               `json:"translated_text"`
	FinalText       string               `json:"final_text"`
	SourceLanguage  string               `json:"source_language"`
	TargetLanguage  string               `json:"target_language"`
	TermsProtected  int                  `json:"terms_protected"`
	Diagnostics     []restore.Diagnostic `json:"diagnostics"`
	Audio           *string              `json:"audio,omitempty"` // Base64 WAV when TTS is enabled
}

func (s *Server) handleTranslateText(w http.ResponseWriter, r *http.Request) {
	var req translateTextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), false)
		return
	}
	src, tgt, ok := s.resolveLangs(w, req.SourceLang, req.TargetLang)
	if !ok {
		return
	}
	s.runPipeline(w, r, req.Text, src, tgt, "")
}

func (s *Server) handleTranslateAudio(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured", false)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxAudioBytes)
	src, tgt, ok := s.resolveLangs(w, r.FormValue("source_lang"), r.FormValue("target_lang"))
	if !ok {
		return
	}
	audio, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required", false)
		return
	}
	defer audio.Close()

	start := time.Now()
	transcript, err := s.transcriber.Transcribe(r.Context(), audio, src)
	if s.metrics != nil {
		s.metrics.TranscribeDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("transcription failed: %v", err), true)
		return
	}
	if transcript.Text == "" {
		writeError(w, http.StatusBadRequest, "no speech detected in audio", false)
		return
	}

	s.runPipeline(w, r, transcript.Text, src, tgt, transcript.Text)
}

// runPipeline runs the protected translation and writes the response.
// transcribed is non-empty on the audio path and echoed back to the caller.
func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request, text, src, tgt, transcribed string) {
	requestID := requestIDFrom(r.Context())
	start := time.Now()
	res, err := s.pipe.Run(r.Context(), text, src, tgt)
	duration := time.Since(start)

	if err != nil {
		status := "error"
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, pipeline.ErrEmptyText):
			status, code = "invalid", http.StatusBadRequest
		case errors.Is(err, pipeline.ErrTranslationTimeout):
			status, code = "timeout", http.StatusGatewayTimeout
		}
		if s.metrics != nil {
			s.metrics.RecordPipelineRun(status, 0, 0, 0)
		}
		s.log.LogPipelineRun(requestID, src, tgt, 0, 0, duration, err)
		writeError(w, code, err.Error(), code != http.StatusBadRequest)
		return
	}

	gaps, unresolvedCount := countDiagnostics(res.Diagnostics)
	if s.metrics != nil {
		s.metrics.RecordPipelineRun("success", res.TermsProtected, gaps, unresolvedCount)
		s.metrics.TranslateDuration.Observe(duration.Seconds())
	}
	s.log.LogPipelineRun(requestID, src, tgt, res.TermsProtected, unresolvedCount, duration, nil)

	resp := translateResponse{
		Success:         true,
		RequestID:       requestID,
		TranscribedText: transcribed,
		ProtectedText:   res.ProtectedText,
		TranslatedText:  res.TranslatedText,
		FinalText:       res.FinalText,
		SourceLanguage:  src,
		TargetLanguage:  tgt,
		TermsProtected:  res.TermsProtected,
		Diagnostics:     res.Diagnostics,
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []restore.Diagnostic{}
	}

	if s.synthesizer != nil {
		wav, err := s.synthesizer.Synthesize(r.Context(), res.FinalText, tgt)
		if err != nil {
			// Audio output is best-effort; the text result still stands.
			s.log.Warn("speech synthesis failed").Err(err).Str("request_id", requestID).Send()
		} else {
			encoded := base64.StdEncoding.EncodeToString(wav)
			resp.Audio = &encoded
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ========== Transcription ==========

func (s *Server) handleTranscribeOnly(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured", false)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxAudioBytes)
	code, err := lang.Normalize(r.FormValue("language"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	audio, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required", false)
		return
	}
	defer audio.Close()

	start := time.Now()
	transcript, err := s.transcriber.Transcribe(r.Context(), audio, code)
	if s.metrics != nil {
		s.metrics.TranscribeDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("transcription failed: %v", err), true)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":     transcript.Text,
		"language": code,
	})
}

// ========== Glossary Administration ==========

func (s *Server) handleGlossaryStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Stats())
}

func (s *Server) handleGlossaryReload(w http.ResponseWriter, r *http.Request) {
	idx, err := s.store.Reload()
	if err != nil {
		// The previous snapshot stays active; protection never degrades.
		if s.metrics != nil {
			s.metrics.RecordGlossaryReload("error", 0)
		}
		s.log.LogGlossaryLoad("", 0, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("reload rejected: %v", err), false)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordGlossaryReload("success", idx.Len())
	}
	s.log.LogGlossaryLoad("", idx.Len(), nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"entries": idx.Len(),
	})
}

// ========== Helpers ==========

func (s *Server) resolveLangs(w http.ResponseWriter, source, target string) (string, string, bool) {
	src, err := lang.Normalize(source)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("source_lang: %v", err), false)
		return "", "", false
	}
	tgt, err := lang.Normalize(target)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("target_lang: %v", err), false)
		return "", "", false
	}
	return src, tgt, true
}

func countDiagnostics(diags []restore.Diagnostic) (gaps, unresolvedCount int) {
	for _, d := range diags {
		switch d.Kind {
		case restore.CoverageGap:
			gaps++
		case restore.UnresolvedPlaceholder:
			unresolvedCount++
		}
	}
	return gaps, unresolvedCount
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Retryable: retryable})
}

type ctxKey int

const requestIDKey ctxKey = iota

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
