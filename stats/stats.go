// Package stats derives display-ready aggregates from a translation history log.
//
// All functions are pure: they read the log and never mutate it. Ties in
// the rankings keep first-seen order, but callers should not depend on it.
package stats

import (
	"sort"
	"time"

	"github.com/ZaguanLabs/polyglot"
)

const (
	// DefaultTop is the number of languages and pairs reported by Derive.
	DefaultTop = 3

	// WeekDays is the number of buckets in the activity histogram.
	WeekDays = 7

	emptyBarHeight = 5
	minBarHeight   = 10
	maxBarHeight   = 60
	barHeightUnit  = 15
)

// LanguageStat is a language with the number of times it appears in the log.
type LanguageStat struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PairStat is an ordered language pair with its number of translations.
// From and To hold display names.
type PairStat struct {
	FromCode string `json:"fromCode"`
	ToCode   string `json:"toCode"`
	From     string `json:"from"`
	To       string `json:"to"`
	Count    int    `json:"count"`
}

// DayActivity is one bar of the weekly histogram.
type DayActivity struct {
	Label  string `json:"label"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Height int    `json:"height"`
}

// Summary is the derived statistics bundle for a log.
type Summary struct {
	TotalTranslations int            `json:"totalTranslations"`
	TopLanguages      []LanguageStat `json:"topLanguages"`
	TopLanguagePairs  []PairStat     `json:"topLanguagePairs"`
	WeekActivity      []DayActivity  `json:"weekActivity"`
}

// TopLanguages counts the input and output language of every record and
// returns the n most frequent. n <= 0 means DefaultTop.
func TopLanguages(log []polyglot.TranslationRecord, n int) []LanguageStat {
	counts := make(map[string]int)
	var order []string
	add := func(code string) {
		if _, ok := counts[code]; !ok {
			order = append(order, code)
		}
		counts[code]++
	}
	for _, rec := range log {
		add(rec.InputLanguage)
		add(rec.OutputLanguage)
	}

	out := make([]LanguageStat, 0, len(order))
	for _, code := range order {
		out = append(out, LanguageStat{
			Code:  code,
			Name:  polyglot.DisplayName(code),
			Count: counts[code],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return limit(out, n)
}

// TopPairs counts each ordered (input, output) pair and returns the n most
// frequent. "en→es" and "es→en" are distinct. n <= 0 means DefaultTop.
func TopPairs(log []polyglot.TranslationRecord, n int) []PairStat {
	counts := make(map[polyglot.LanguagePair]int)
	var order []polyglot.LanguagePair
	for _, rec := range log {
		pair := polyglot.LanguagePair{From: rec.InputLanguage, To: rec.OutputLanguage}
		if _, ok := counts[pair]; !ok {
			order = append(order, pair)
		}
		counts[pair]++
	}

	out := make([]PairStat, 0, len(order))
	for _, pair := range order {
		out = append(out, PairStat{
			FromCode: pair.From,
			ToCode:   pair.To,
			From:     polyglot.DisplayName(pair.From),
			To:       polyglot.DisplayName(pair.To),
			Count:    counts[pair],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return limit(out, n)
}

// WeekActivity buckets the log into the seven calendar days ending on
// now's day in loc, oldest first. Records with unparseable timestamps
// are skipped.
func WeekActivity(log []polyglot.TranslationRecord, now time.Time, loc *time.Location) []DayActivity {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	type day struct{ y, m, d int }
	dayOf := func(t time.Time) day {
		y, m, d := t.Date()
		return day{y, int(m), d}
	}

	counts := make(map[day]int)
	for _, rec := range log {
		ts, err := rec.Time()
		if err != nil {
			continue
		}
		counts[dayOf(ts.In(loc))]++
	}

	out := make([]DayActivity, 0, WeekDays)
	for i := WeekDays - 1; i >= 0; i-- {
		date := time.Date(now.Year(), now.Month(), now.Day()-i, 0, 0, 0, 0, loc)
		count := counts[dayOf(date)]
		out = append(out, DayActivity{
			Label:  date.Weekday().String()[:3],
			Date:   date.Format(time.DateOnly),
			Count:  count,
			Height: BarHeight(count),
		})
	}
	return out
}

// BarHeight maps a day's count to a histogram bar height.
func BarHeight(count int) int {
	if count <= 0 {
		return emptyBarHeight
	}
	return max(minBarHeight, min(maxBarHeight, count*barHeightUnit))
}

// Derive computes the full statistics bundle for log.
func Derive(log []polyglot.TranslationRecord, now time.Time, loc *time.Location) Summary {
	return Summary{
		TotalTranslations: len(log),
		TopLanguages:      TopLanguages(log, DefaultTop),
		TopLanguagePairs:  TopPairs(log, DefaultTop),
		WeekActivity:      WeekActivity(log, now, loc),
	}
}

// Deriver computes summaries against a fixed clock and location.
type Deriver struct {
	now func() time.Time
	loc *time.Location
}

// DeriverOption configures a Deriver.
type DeriverOption func(*Deriver)

// WithClock sets the function used to determine "today".
func WithClock(now func() time.Time) DeriverOption {
	return func(d *Deriver) {
		d.now = now
	}
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) DeriverOption {
	return func(d *Deriver) {
		d.loc = loc
	}
}

// NewDeriver creates a Deriver using the wall clock and local time by default.
func NewDeriver(opts ...DeriverOption) *Deriver {
	d := &Deriver{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive computes the statistics bundle for log as of now.
func (d *Deriver) Derive(log []polyglot.TranslationRecord) Summary {
	return Derive(log, d.now(), d.loc)
}

func limit[T any](items []T, n int) []T {
	if n <= 0 {
		n = DefaultTop
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
