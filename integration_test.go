package polyglot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/cache"
	"github.com/ZaguanLabs/polyglot/history"
	"github.com/ZaguanLabs/polyglot/provider"
	"github.com/ZaguanLabs/polyglot/stats"
)

// Integration tests using all real components

func TestIntegration_TranslateRecordAndDerive(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	usage := polyglot.NewUsageCounter()

	translator := polyglot.NewTranslator(provider.NewMockProvider(),
		polyglot.WithCache(cache.NewInMemoryCache(3600)),
		polyglot.WithUsageCounter(usage),
		polyglot.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
	)

	store, err := history.Open(ctx, history.NewMemoryBlobStore())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	requests := []polyglot.TranslateRequest{
		{Text: "Hello", SourceLang: "en", TargetLang: "es"},
		{Text: "World", SourceLang: "en", TargetLang: "es"},
		{Text: "Good night", SourceLang: polyglot.AutoDetect, TargetLang: "fr"},
	}
	for _, req := range requests {
		res, err := translator.Translate(ctx, req)
		if err != nil {
			t.Fatalf("Translate(%q) failed: %v", req.Text, err)
		}
		if err := store.Append(ctx, translator.Record(req.Text, res)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if usage.Total() != 3 {
		t.Errorf("usage total = %d, want 3", usage.Total())
	}
	if usage.PairCount("en", "es") != 2 {
		t.Errorf("en->es count = %d, want 2", usage.PairCount("en", "es"))
	}

	entries := store.Entries()
	if len(entries) != 3 {
		t.Fatalf("history length = %d, want 3", len(entries))
	}
	if entries[0].InputText != "Good night" || entries[0].OutputText != "Buenas noches" {
		t.Errorf("newest entry = %+v", entries[0])
	}

	summary := stats.Derive(entries, clock, time.UTC)
	if summary.TotalTranslations != 3 {
		t.Errorf("TotalTranslations = %d, want 3", summary.TotalTranslations)
	}
	if len(summary.TopLanguages) == 0 || summary.TopLanguages[0].Code != "en" || summary.TopLanguages[0].Count != 2 {
		t.Errorf("TopLanguages = %+v", summary.TopLanguages)
	}
	if len(summary.TopLanguagePairs) == 0 || summary.TopLanguagePairs[0].FromCode != "en" || summary.TopLanguagePairs[0].ToCode != "es" {
		t.Errorf("TopLanguagePairs = %+v", summary.TopLanguagePairs)
	}

	today := summary.WeekActivity[stats.WeekDays-1]
	if today.Count != 3 || today.Height != 45 {
		t.Errorf("today = %+v, want count 3 height 45", today)
	}
}

func TestIntegration_CacheHitCountsUsage(t *testing.T) {
	ctx := context.Background()
	p := provider.NewMockProvider()
	usage := polyglot.NewUsageCounter()
	translator := polyglot.NewTranslator(p,
		polyglot.WithCache(cache.NewInMemoryCache(3600)),
		polyglot.WithUsageCounter(usage),
	)

	req := polyglot.TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "es"}
	first, err := translator.Translate(ctx, req)
	if err != nil {
		t.Fatalf("first Translate failed: %v", err)
	}
	second, err := translator.Translate(ctx, req)
	if err != nil {
		t.Fatalf("second Translate failed: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if calls, _ := p.Calls(); calls != 1 {
		t.Errorf("provider calls = %d, want 1", calls)
	}
	if usage.Total() != 2 {
		t.Errorf("usage total = %d, want 2", usage.Total())
	}
}

func TestIntegration_RTLLanguage(t *testing.T) {
	translator := polyglot.NewTranslator(provider.NewMockProvider())

	res, err := translator.Translate(context.Background(), polyglot.TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "ar",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if res.Direction != "rtl" {
		t.Errorf("Direction = %q, want rtl", res.Direction)
	}
}

func TestIntegration_ProviderFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	p := provider.NewMockProvider()
	p.Err = &polyglot.ProviderError{Message: "upstream unavailable"}
	usage := polyglot.NewUsageCounter()
	translator := polyglot.NewTranslator(p, polyglot.WithUsageCounter(usage))

	_, err := translator.Translate(ctx, polyglot.TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "es"})
	var perr *polyglot.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if usage.Total() != 0 {
		t.Errorf("usage total = %d, want 0", usage.Total())
	}
}

func TestIntegration_HistoryPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	blobs := history.NewMemoryBlobStore()

	store, err := history.Open(ctx, blobs)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	at := time.Date(2024, 3, 13, 8, 30, 0, 0, time.UTC)
	for i := 0; i < history.MaxEntries+5; i++ {
		rec := polyglot.NewTranslationRecord("Hello", "Hola", "en", "es", at.Add(time.Duration(i)*time.Second))
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	reopened, err := history.Open(ctx, blobs)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Len() != history.MaxEntries {
		t.Errorf("reopened length = %d, want %d", reopened.Len(), history.MaxEntries)
	}
	if got, want := reopened.Entries()[0], store.Entries()[0]; got != want {
		t.Errorf("newest entry = %+v, want %+v", got, want)
	}
}

func TestIntegration_RetryableProvider(t *testing.T) {
	// Fails twice, then succeeds
	inner := &flakyProvider{failCount: 2}
	retryable := polyglot.NewRetryableProvider(inner, polyglot.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1, // 1 nanosecond for fast tests
		MaxDelay:   10,
	})
	translator := polyglot.NewTranslator(retryable)

	res, err := translator.Translate(context.Background(), polyglot.TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "es",
	})
	if err != nil {
		t.Fatalf("Translate failed after retries: %v", err)
	}
	if res.TranslatedText != "translated" {
		t.Errorf("TranslatedText = %q", res.TranslatedText)
	}
	if inner.calls() != 3 {
		t.Errorf("Expected 3 calls (2 failures + 1 success), got %d", inner.calls())
	}
}

// flakyProvider returns a retryable error for the first failCount calls.
type flakyProvider struct {
	mu        sync.Mutex
	failCount int
	callCount int
}

func (p *flakyProvider) Translate(ctx context.Context, req polyglot.TranslateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callCount++
	if p.callCount <= p.failCount {
		return "", &polyglot.ProviderError{Message: "temporary failure", Retryable: true}
	}
	return "translated", nil
}

func (p *flakyProvider) DetectLanguage(ctx context.Context, text string) (string, error) {
	return "en", nil
}

func (p *flakyProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}
