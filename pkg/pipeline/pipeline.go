// ABOUTME: Per-request protect -> translate -> restore orchestration
// ABOUTME: Bounds the external translate call and never caches partial state

// Package pipeline runs the terminology-protected translation path. The
// three local stages are synchronous, lock-free computations over one
// request's text; the only suspension point is the external translate call,
// bounded by a timeout. The only shared state is the immutable glossary
// snapshot taken at the start of each request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/match"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/protect"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/restore"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/translate"
)

var (
	// ErrTranslation indicates the translation collaborator failed; the
	// request may be retried, nothing was cached.
	ErrTranslation = errors.New("pipeline: translation failed")

	// ErrTranslationTimeout indicates the collaborator exceeded the bound.
	ErrTranslationTimeout = errors.New("pipeline: translation timed out")

	// ErrEmptyText indicates there was nothing to translate.
	ErrEmptyText = errors.New("pipeline: empty text")
)

// Pipeline wires the glossary store to a translation collaborator.
// Protection is always-on: construction fails without a store, and a failed
// glossary load upstream must prevent serving entirely rather than run with
// protection silently disabled.
type Pipeline struct {
	store      *glossary.Store
	translator translate.Translator
	timeout    time.Duration
}

// Result carries every intermediate stage for logging and diagnostics.
type Result struct {
	SourceText     string
	ProtectedText  string
	TranslatedText string
	FinalText      string
	SourceLang     string
	TargetLang     string
	TermsProtected int
	Diagnostics    []restore.Diagnostic
}

// New creates a pipeline. timeout bounds each translate call.
func New(store *glossary.Store, translator translate.Translator, timeout time.Duration) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("pipeline: glossary store is required")
	}
	if translator == nil {
		return nil, errors.New("pipeline: translator is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Pipeline{store: store, translator: translator, timeout: timeout}, nil
}

// Run translates one text with terminology protection. Coverage gaps and
// unresolved placeholders are reported in Result.Diagnostics, not as errors;
// a collaborator failure aborts the whole request and discards all
// placeholder state.
func (p *Pipeline) Run(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	idx := p.store.Snapshot()
	spans := match.Find(text, idx)
	prot := protect.Apply(text, spans, idx)

	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	translated, err := p.translator.Translate(tctx, prot.Text, sourceLang, targetLang)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTranslationTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	final, diags := restore.Restore(translated, prot, targetLang)

	return &Result{
		SourceText:     text,
		ProtectedText:  prot.Text,
		TranslatedText: translated,
		FinalText:      final,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		TermsProtected: len(prot.Bindings),
		Diagnostics:    diags,
	}, nil
}
