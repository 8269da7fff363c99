// HTTP API tests with stub speech and translation collaborators
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anubhavsingh2004/lt-audio-translator/internal/logger"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/pipeline"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/speech"
)

type echoTranslator struct{ err error }

func (e *echoTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return text, nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio io.Reader, lang string) (speech.Transcript, error) {
	if s.err != nil {
		return speech.Transcript{}, s.err
	}
	io.Copy(io.Discard, audio)
	return speech.Transcript{Text: s.text, Language: lang}, nil
}

type stubSynthesizer struct{ wav []byte }

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	return s.wav, nil
}

type testEnv struct {
	server *Server
	store  *glossary.Store
	path   string
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glossary.json")
	writeGlossary(t, path, &glossary.Resource{Entries: []*glossary.Entry{
		{ID: "dg_major_general", Term: "Major General", Renderings: map[string]string{"hi": "मेजर जनरल"}},
		{ID: "dg_roger", Term: "roger", Renderings: map[string]string{"hi": "समझ गया"}},
	}})
	store := glossary.NewStore(path, []string{"hi"})
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if opts.Pipeline == nil {
		p, err := pipeline.New(store, &echoTranslator{}, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		opts.Pipeline = p
	}
	opts.Store = store
	opts.Log = logger.NewLogger(logger.Config{Level: "error", Output: io.Discard})

	srv, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEnv{server: srv, store: store, path: path}
}

func writeGlossary(t *testing.T, path string, res *glossary.Resource) {
	t.Helper()
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, path string, v any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestTranslateText(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, postJSON(t, "/api/translate-text", translateTextRequest{
		Text: "Major General, report to base", SourceLang: "en", TargetLang: "hi",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[translateResponse](t, rec)
	if !resp.Success {
		t.Error("Success = false")
	}
	if resp.ProtectedText != "<PH0001>, report to base" {
		t.Errorf("ProtectedText = %q", resp.ProtectedText)
	}
	// The echo translator returns the protected text untouched, so restore
	// substitutes the Hindi rendering straight back in.
	if resp.FinalText != "मेजर जनरल, report to base" {
		t.Errorf("FinalText = %q", resp.FinalText)
	}
	if resp.TermsProtected != 1 || resp.Diagnostics == nil {
		t.Errorf("TermsProtected = %d, Diagnostics = %v", resp.TermsProtected, resp.Diagnostics)
	}
	if resp.RequestID == "" {
		t.Error("RequestID missing")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header missing")
	}
}

func TestTranslateTextValidation(t *testing.T) {
	env := newTestEnv(t, Options{})
	cases := []struct {
		name string
		body translateTextRequest
		want int
	}{
		{"empty text", translateTextRequest{SourceLang: "en", TargetLang: "hi"}, http.StatusBadRequest},
		{"bad source", translateTextRequest{Text: "x", SourceLang: "klingon", TargetLang: "hi"}, http.StatusBadRequest},
		{"bad target", translateTextRequest{Text: "x", SourceLang: "en", TargetLang: "xx"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := env.do(t, postJSON(t, "/api/translate-text", tc.body))
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
		resp := decode[errorResponse](t, rec)
		if resp.Retryable {
			t.Errorf("%s: validation errors must not be retryable", tc.name)
		}
	}
}

func TestTranslateTextMalformedBody(t *testing.T) {
	env := newTestEnv(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/translate-text", strings.NewReader("{nope"))
	if rec := env.do(t, req); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTranslateTextLanguageNames(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, postJSON(t, "/api/translate-text", translateTextRequest{
		Text: "roger", SourceLang: "English", TargetLang: "Hindi",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[translateResponse](t, rec)
	if resp.SourceLanguage != "en" || resp.TargetLanguage != "hi" {
		t.Errorf("languages = %q -> %q", resp.SourceLanguage, resp.TargetLanguage)
	}
}

func TestTranslateTextCollaboratorFailure(t *testing.T) {
	env := newTestEnv(t, Options{})
	p, err := pipeline.New(env.store, &echoTranslator{err: errors.New("connection refused")}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	env.server.pipe = p

	rec := env.do(t, postJSON(t, "/api/translate-text", translateTextRequest{
		Text: "roger", SourceLang: "en", TargetLang: "hi",
	}))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode[errorResponse](t, rec); !resp.Retryable {
		t.Error("collaborator failures must be retryable")
	}
}

func audioRequest(t *testing.T, path string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("RIFF fake wav data"))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTranslateAudio(t *testing.T) {
	env := newTestEnv(t, Options{
		Transcriber: &stubTranscriber{text: "roger, moving out"},
		Synthesizer: &stubSynthesizer{wav: []byte("RIFF output")},
	})
	rec := env.do(t, audioRequest(t, "/api/translate-audio",
		map[string]string{"source_lang": "en", "target_lang": "hi"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[translateResponse](t, rec)
	if resp.TranscribedText != "roger, moving out" {
		t.Errorf("TranscribedText = %q", resp.TranscribedText)
	}
	if resp.TermsProtected != 1 {
		t.Errorf("TermsProtected = %d", resp.TermsProtected)
	}
	if resp.Audio == nil {
		t.Error("Audio missing with synthesizer configured")
	}
}

func TestTranslateAudioWithoutTranscriber(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, audioRequest(t, "/api/translate-audio",
		map[string]string{"source_lang": "en", "target_lang": "hi"}))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTranslateAudioNoSpeech(t *testing.T) {
	env := newTestEnv(t, Options{Transcriber: &stubTranscriber{text: ""}})
	rec := env.do(t, audioRequest(t, "/api/translate-audio",
		map[string]string{"source_lang": "en", "target_lang": "hi"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTranslateAudioTranscriberFailure(t *testing.T) {
	env := newTestEnv(t, Options{Transcriber: &stubTranscriber{err: errors.New("sidecar down")}})
	rec := env.do(t, audioRequest(t, "/api/translate-audio",
		map[string]string{"source_lang": "en", "target_lang": "hi"}))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode[errorResponse](t, rec); !resp.Retryable {
		t.Error("transcription failures must be retryable")
	}
}

func TestTranscribeOnly(t *testing.T) {
	env := newTestEnv(t, Options{Transcriber: &stubTranscriber{text: "say again all after rally point"}})
	rec := env.do(t, audioRequest(t, "/api/transcribe-only", map[string]string{"language": "en"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]any](t, rec)
	if out["text"] != "say again all after rally point" || out["language"] != "en" {
		t.Errorf("response = %v", out)
	}
}

func TestLanguages(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := decode[map[string][]map[string]string](t, rec)
	if len(out["languages"]) == 0 {
		t.Fatal("no languages returned")
	}
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := decode[map[string]any](t, rec)
	if out["protection"] != "always-on" {
		t.Errorf("response = %v", out)
	}
	if out["glossary_entries"].(float64) != 2 {
		t.Errorf("glossary_entries = %v", out["glossary_entries"])
	}
}

func TestGlossaryStats(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/glossary/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	st := decode[glossary.Stats](t, rec)
	if st.TotalEntries != 2 || st.MultiWordPhrases != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestGlossaryReload(t *testing.T) {
	env := newTestEnv(t, Options{})
	writeGlossary(t, env.path, &glossary.Resource{Entries: []*glossary.Entry{
		{ID: "dg_roger", Term: "roger", Renderings: map[string]string{"hi": "समझ गया"}},
		{ID: "dg_wilco", Term: "wilco", Renderings: map[string]string{"hi": "अवश्य करूंगा"}},
		{ID: "dg_out", Term: "out", Renderings: map[string]string{"hi": "आउट"}},
	}})

	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/admin/glossary/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]any](t, rec)
	if out["entries"].(float64) != 3 {
		t.Errorf("entries = %v", out["entries"])
	}
	if env.store.Snapshot().Len() != 3 {
		t.Errorf("snapshot has %d entries", env.store.Snapshot().Len())
	}
}

func TestGlossaryReloadRejectsBadResource(t *testing.T) {
	env := newTestEnv(t, Options{})
	before := env.store.Snapshot()
	writeGlossary(t, env.path, &glossary.Resource{Entries: []*glossary.Entry{
		{ID: "dup", Term: "roger", Renderings: map[string]string{"hi": "x"}},
		{ID: "dup", Term: "wilco", Renderings: map[string]string{"hi": "y"}},
	}})

	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/admin/glossary/reload", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.store.Snapshot() != before {
		t.Error("failed reload must keep the previous snapshot serving")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/translate-text", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestNewServerRequiresStoreAndPipeline(t *testing.T) {
	if _, err := NewServer(Options{}); err == nil {
		t.Error("NewServer without dependencies should fail")
	}
}
