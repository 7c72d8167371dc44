package provider

import (
	"context"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/ZaguanLabs/polyglot"
)

// localLanguages maps detector results to the supported ISO 639-1 codes.
var localLanguages = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Ita: "it",
	whatlanggo.Por: "pt",
	whatlanggo.Rus: "ru",
	whatlanggo.Cmn: "zh",
	whatlanggo.Jpn: "ja",
	whatlanggo.Kor: "ko",
	whatlanggo.Arb: "ar",
	whatlanggo.Hin: "hi",
	whatlanggo.Ben: "bn",
	whatlanggo.Nld: "nl",
	whatlanggo.Tur: "tr",
	whatlanggo.Pol: "pl",
	whatlanggo.Vie: "vi",
	whatlanggo.Tha: "th",
	whatlanggo.Swe: "sv",
	whatlanggo.Ukr: "uk",
}

// LocalDetector detects languages offline with trigram statistics.
// It only reports languages from the supported language table.
type LocalDetector struct {
	options whatlanggo.Options
}

// NewLocalDetector creates a detector restricted to the supported languages.
func NewLocalDetector() *LocalDetector {
	whitelist := make(map[whatlanggo.Lang]bool, len(localLanguages))
	for lang := range localLanguages {
		whitelist[lang] = true
	}
	return &LocalDetector{options: whatlanggo.Options{Whitelist: whitelist}}
}

// DetectLanguage returns the ISO 639-1 code for text.
func (d *LocalDetector) DetectLanguage(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &polyglot.ValidationError{Field: "text", Message: "is required"}
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	code, ok := localLanguages[info.Lang]
	if !ok {
		return "", &polyglot.ProviderError{Message: "could not detect language"}
	}
	return code, nil
}

var _ LanguageDetector = (*LocalDetector)(nil)
