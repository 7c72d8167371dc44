package polyglot

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/polyglot/metrics"
)

// Translator forwards requests to an AI provider, caches results and
// records usage for every successful translation.
type Translator struct {
	provider Provider
	detector LanguageDetector
	cache    TranslationCache
	usage    *UsageCounter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time

	stampMu   sync.Mutex
	lastStamp time.Time
}

// LanguageDetector detects the language of a text and returns its ISO 639-1 code.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Provider is the interface for AI translation backends.
type Provider interface {
	LanguageDetector
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// ModelNamer is implemented by providers that can report the model they use.
// The model name becomes part of the cache key.
type ModelNamer interface {
	Model() string
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithUsageCounter sets the counter that successful translations are recorded in.
func WithUsageCounter(usage *UsageCounter) TranslatorOption {
	return func(t *Translator) {
		t.usage = usage
	}
}

// WithDetector overrides the provider for language detection.
func WithDetector(detector LanguageDetector) TranslatorOption {
	return func(t *Translator) {
		t.detector = detector
	}
}

// WithMetrics sets the Prometheus metrics to update.
func WithMetrics(m *metrics.Metrics) TranslatorOption {
	return func(t *Translator) {
		t.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) TranslatorOption {
	return func(t *Translator) {
		t.now = now
	}
}

// NewTranslator creates a new Translator backed by provider.
func NewTranslator(provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider: provider,
		detector: provider,
		logger:   zap.NewNop(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Usage returns the usage counter, or nil if none was configured.
func (t *Translator) Usage() *UsageCounter {
	return t.usage
}

// Translate translates req.Text. An empty source language means AutoDetect.
func (t *Translator) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &ValidationError{Field: "text", Message: "is required"}
	}
	if req.TargetLang == "" {
		return nil, &ValidationError{Field: "to", Message: "is required"}
	}
	if req.SourceLang == "" {
		req.SourceLang = AutoDetect
	}

	result := &TranslateResult{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Direction:  GetDirection(req.TargetLang),
	}

	key := CacheKey(HashText(req.Text), req.SourceLang, req.TargetLang, t.model())
	if t.cache != nil {
		if cached, ok := t.cache.Get(key); ok {
			t.metrics.CacheHit()
			result.TranslatedText = cached
			result.Cached = true
			t.record(req)
			return result, nil
		}
		t.metrics.CacheMiss()
	}

	start := time.Now()
	translated, err := t.provider.Translate(ctx, req)
	t.metrics.ObserveProvider("translate", time.Since(start), err)
	if err != nil {
		t.logger.Error("translation failed",
			zap.String("from", req.SourceLang),
			zap.String("to", req.TargetLang),
			zap.Error(err))
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.Set(key, translated); err != nil {
			t.logger.Warn("translation cache write failed", zap.Error(err))
		}
	}

	result.TranslatedText = translated
	t.record(req)
	return result, nil
}

// record counts a successful translation.
func (t *Translator) record(req TranslateRequest) {
	t.metrics.Translation(req.SourceLang, req.TargetLang)
	if t.usage == nil {
		return
	}
	if err := t.usage.RecordTranslation(req.SourceLang, req.TargetLang); err != nil {
		t.logger.Warn("usage not recorded", zap.Error(err))
	}
}

// DetectLanguage returns the ISO 639-1 code of the text's language.
func (t *Translator) DetectLanguage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &ValidationError{Field: "text", Message: "is required"}
	}

	start := time.Now()
	code, err := t.detector.DetectLanguage(ctx, text)
	t.metrics.ObserveProvider("detect", time.Since(start), err)
	if err != nil {
		t.logger.Error("language detection failed", zap.Error(err))
		return "", err
	}
	return code, nil
}

// Record builds the history record for a completed translation. Records
// built by one Translator carry strictly increasing timestamps, so a
// history restore never matches more than one of them.
func (t *Translator) Record(text string, res *TranslateResult) TranslationRecord {
	return NewTranslationRecord(text, res.TranslatedText, res.SourceLang, res.TargetLang, t.stamp())
}

// stamp returns the clock at millisecond precision, moved past the
// previous stamp when the clock has not advanced.
func (t *Translator) stamp() time.Time {
	t.stampMu.Lock()
	defer t.stampMu.Unlock()

	at := t.now().UTC().Truncate(time.Millisecond)
	if !at.After(t.lastStamp) {
		at = t.lastStamp.Add(time.Millisecond)
	}
	t.lastStamp = at
	return at
}

func (t *Translator) model() string {
	if m, ok := t.provider.(ModelNamer); ok {
		return m.Model()
	}
	return "default"
}

// NormalizeLanguageCode trims and lowercases a detected code and checks
// that it is a two-letter ISO 639-1 code.
func NormalizeLanguageCode(raw string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	code = strings.Trim(code, `"'.`)
	if len(code) != 2 || code[0] < 'a' || code[0] > 'z' || code[1] < 'a' || code[1] > 'z' {
		return "", &ProviderError{
			Message:   "invalid language code received: " + raw,
			Retryable: false,
		}
	}
	return code, nil
}
