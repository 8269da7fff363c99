// ABOUTME: Language code normalization and display names
// ABOUTME: Accepts English names ("Hindi") or BCP-47 codes ("hi")

package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownLanguage indicates a language the deployment does not serve.
var ErrUnknownLanguage = errors.New("lang: unknown language")

// Language pairs a code with its English display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// supported lists the languages the deployment serves, in UI order. The set
// mirrors the model coverage provisioned alongside the service.
var supported = []string{"en", "hi", "fr", "es", "de", "ar", "ru", "zh"}

// byName maps lowercase English names to codes, built from display data so
// the two can never drift apart.
var byName = func() map[string]string {
	m := make(map[string]string, len(supported))
	for _, code := range supported {
		tag := language.MustParse(code)
		m[strings.ToLower(display.English.Languages().Name(tag))] = code
	}
	return m
}()

// Normalize resolves a user-supplied language, either an English name
// ("Hindi") or a code ("hi", "hi-IN"), to a supported base code.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownLanguage)
	}
	if code, ok := byName[strings.ToLower(s)]; ok {
		return code, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	base, _ := tag.Base()
	code := base.String()
	for _, c := range supported {
		if c == code {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// Supported returns the serving languages with display names, in UI order.
func Supported() []Language {
	out := make([]Language, len(supported))
	for i, code := range supported {
		out[i] = Language{
			Code: code,
			Name: display.English.Languages().Name(language.MustParse(code)),
		}
	}
	return out
}
