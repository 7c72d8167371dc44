package polyglot

import (
	"sort"
	"sync"
)

// TopUsageEntries is the number of languages and pairs reported in a snapshot.
const TopUsageEntries = 5

// UsageCounter tallies translations per language and per language pair.
// State lives for the lifetime of the instance; nothing is persisted.
type UsageCounter struct {
	mu          sync.Mutex
	total       int
	perLanguage map[string]int
	perPair     map[LanguagePair]int

	// first-seen order, used to break count ties
	languageOrder []string
	pairOrder     []LanguagePair
}

// NewUsageCounter creates an empty usage counter.
func NewUsageCounter() *UsageCounter {
	return &UsageCounter{
		perLanguage: make(map[string]int),
		perPair:     make(map[LanguagePair]int),
	}
}

// RecordTranslation counts one translation from source to target.
// Both codes are counted as languages; "auto" is counted like any other code.
func (u *UsageCounter) RecordTranslation(source, target string) error {
	if source == "" {
		return &ValidationError{Field: "source", Message: "is required"}
	}
	if target == "" {
		return &ValidationError{Field: "target", Message: "is required"}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.total++
	u.incLanguage(source)
	u.incLanguage(target)

	pair := LanguagePair{From: source, To: target}
	if _, ok := u.perPair[pair]; !ok {
		u.pairOrder = append(u.pairOrder, pair)
	}
	u.perPair[pair]++

	return nil
}

// incLanguage must be called with the lock held.
func (u *UsageCounter) incLanguage(code string) {
	if _, ok := u.perLanguage[code]; !ok {
		u.languageOrder = append(u.languageOrder, code)
	}
	u.perLanguage[code]++
}

// Total returns the number of recorded translations.
func (u *UsageCounter) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.total
}

// LanguageCount returns how many times code appeared as source or target.
func (u *UsageCounter) LanguageCount(code string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.perLanguage[code]
}

// PairCount returns how many translations went from source to target.
func (u *UsageCounter) PairCount(source, target string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.perPair[LanguagePair{From: source, To: target}]
}

// Snapshot returns the total and the top languages and pairs by count.
// Entries with equal counts keep first-seen order.
func (u *UsageCounter) Snapshot() UsageSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	languages := make([]LanguageCount, 0, len(u.languageOrder))
	for _, code := range u.languageOrder {
		languages = append(languages, LanguageCount{Language: code, Count: u.perLanguage[code]})
	}
	sort.SliceStable(languages, func(i, j int) bool {
		return languages[i].Count > languages[j].Count
	})

	pairs := make([]PairCount, 0, len(u.pairOrder))
	for _, p := range u.pairOrder {
		pairs = append(pairs, PairCount{From: p.From, To: p.To, Count: u.perPair[p]})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})

	return UsageSnapshot{
		TotalTranslations: u.total,
		TopLanguages:      truncate(languages, TopUsageEntries),
		TopPairs:          truncate(pairs, TopUsageEntries),
	}
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
