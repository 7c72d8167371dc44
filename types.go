package polyglot

import "time"

// AutoDetect is the source language sentinel meaning "detect the language
// from the text".
const AutoDetect = "auto"

// AutoDetectLabel is the display label used for the AutoDetect sentinel.
const AutoDetectLabel = "Auto Detect"

// TranslationRecord is one completed translation event.
// The JSON layout matches what browser clients persist locally.
type TranslationRecord struct {
	InputText      string `json:"inputText"`
	OutputText     string `json:"outputText"`
	InputLanguage  string `json:"inputLanguage"`  // ISO 639-1 code or "auto"
	OutputLanguage string `json:"outputLanguage"` // ISO 639-1 code
	Timestamp      string `json:"timestamp"`      // RFC 3339
}

// NewTranslationRecord creates a record stamped with the given time.
func NewTranslationRecord(input, output, from, to string, at time.Time) TranslationRecord {
	return TranslationRecord{
		InputText:      input,
		OutputText:     output,
		InputLanguage:  from,
		OutputLanguage: to,
		Timestamp:      at.UTC().Format(TimestampLayout),
	}
}

// TimestampLayout is the layout used when stamping new records.
// It matches JavaScript's Date.toISOString output.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Time parses the record timestamp.
func (r TranslationRecord) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.Timestamp)
}

// Validate checks the fields a record must carry to be stored.
func (r TranslationRecord) Validate() error {
	if r.InputLanguage == "" {
		return &ValidationError{Field: "inputLanguage", Message: "is required"}
	}
	if r.OutputLanguage == "" {
		return &ValidationError{Field: "outputLanguage", Message: "is required"}
	}
	if _, err := r.Time(); err != nil {
		return &ValidationError{Field: "timestamp", Message: "must be an RFC 3339 timestamp", Cause: err}
	}
	return nil
}

// LanguagePair is an ordered (source, target) language pair.
type LanguagePair struct {
	From string
	To   string
}

// LanguageCount is a language code with its occurrence count.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// PairCount is a language pair with its occurrence count.
type PairCount struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// UsageSnapshot is a read-only view of the usage counters.
type UsageSnapshot struct {
	TotalTranslations int             `json:"totalTranslations"`
	TopLanguages      []LanguageCount `json:"topLanguages"`
	TopPairs          []PairCount     `json:"topPairs"`
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // language code or AutoDetect
	TargetLang string
}

// TranslateResult is the result of a translation.
type TranslateResult struct {
	TranslatedText string
	SourceLang     string
	TargetLang     string
	Direction      string // "ltr" or "rtl" for the target language
	Cached         bool
}
