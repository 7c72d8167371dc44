package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/config"
	"github.com/ZaguanLabs/polyglot/history"
	"github.com/ZaguanLabs/polyglot/metrics"
	"github.com/ZaguanLabs/polyglot/provider"
	"github.com/ZaguanLabs/polyglot/server"
	"github.com/ZaguanLabs/polyglot/stats"
)

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("polyglot serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	addr := fs.String("addr", "", "Listen address (default: POLYGLOT_ADDR env or :5000)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := newLogger(cfg, stdout, zapcore.DebugLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	translator, err := newTranslator(cfg, logger, polyglot.NewUsageCounter(), m)
	if err != nil {
		return err
	}

	blobs, closeBlobs, err := newBlobStore(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer closeBlobs()

	srv := server.New(server.Config{
		Translator:  translator,
		Histories:   history.NewRegistry(blobs, cfg.History.MaxClients, history.WithMetrics(m), history.WithLogger(logger)),
		Metrics:     m,
		Gatherer:    registry,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	logger.Info("starting polyglot",
		zap.String("version", polyglot.FullVersion()),
		zap.String("history_backend", cfg.History.Backend),
		zap.String("cache_backend", cfg.Cache.Backend))
	return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}

func runTranslate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("polyglot translate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	to := fs.String("to", "", "Target language code, or a comma-separated list (e.g., es or es,fr,ja)")
	from := fs.String("from", polyglot.AutoDetect, "Source language code, or auto")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	noHistory := fs.Bool("no-history", false, "Do not record the translation in the history")
	parallel := fs.Int("parallel", polyglot.DefaultParallelism, "Maximum concurrent translations for multiple targets")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(splitList(*to)) == 0 {
		fs.Usage()
		return fmt.Errorf("--to is required")
	}

	text, err := readText(fs)
	if err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	translator, err := newTranslator(cfg, logger, nil, nil)
	if err != nil {
		return err
	}

	ctx := context.Background()
	targets := splitList(*to)
	start := time.Now()
	results := translator.TranslateMany(ctx, text, *from, targets, *parallel)
	elapsed := time.Since(start)

	var store *history.Store
	if !*noHistory {
		s, closeStore, err := openLocalHistory(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		store = s
	}

	var outputs []TranslateOutput
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("translation to %s failed: %w", r.TargetLang, r.Err))
			continue
		}
		if store != nil {
			if err := store.Append(ctx, translator.Record(text, r.Result)); err != nil {
				return fmt.Errorf("saving history: %w", err)
			}
		}
		outputs = append(outputs, TranslateOutput{
			TranslatedText: r.Result.TranslatedText,
			From:           r.Result.SourceLang,
			To:             r.Result.TargetLang,
			Direction:      r.Result.Direction,
			Cached:         r.Result.Cached,
			ElapsedMs:      elapsed.Milliseconds(),
		})
	}

	switch {
	case *jsonOutput && len(targets) == 1 && len(outputs) == 1:
		if err := writeJSON(stdout, outputs[0]); err != nil {
			return err
		}
	case *jsonOutput && len(outputs) > 0:
		if err := writeJSON(stdout, outputs); err != nil {
			return err
		}
	case len(targets) == 1:
		for _, o := range outputs {
			fmt.Fprintln(stdout, o.TranslatedText)
		}
	default:
		for _, o := range outputs {
			fmt.Fprintf(stdout, "%s\t%s\n", o.To, o.TranslatedText)
		}
	}

	return errors.Join(errs...)
}

// TranslateOutput is the JSON output of the translate command.
type TranslateOutput struct {
	TranslatedText string `json:"translatedText"`
	From           string `json:"from"`
	To             string `json:"to"`
	Direction      string `json:"direction"`
	Cached         bool   `json:"cached"`
	ElapsedMs      int64  `json:"elapsed_ms"`
}

func runDetect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("polyglot detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	local := fs.Bool("local", false, "Detect offline instead of calling the provider")

	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := readText(fs)
	if err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}

	var detector polyglot.LanguageDetector
	if *local || cfg.Provider.Detector == config.DetectorLocal {
		detector = provider.NewLocalDetector()
	} else {
		logger, err := newLogger(cfg, stderr, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		translator, err := newTranslator(cfg, logger, nil, nil)
		if err != nil {
			return err
		}
		detector = translator
	}

	code, err := detector.DetectLanguage(context.Background(), text)
	if err != nil {
		return fmt.Errorf("language detection failed: %w", err)
	}
	fmt.Fprintf(stdout, "%s\t%s\n", code, polyglot.LanguageName(code))
	return nil
}

func runHistory(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("polyglot history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	jsonOutput := fs.Bool("json", false, "Output entries as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	action := "list"
	rest := fs.Args()
	if len(rest) > 0 {
		action, rest = rest[0], rest[1:]
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	store, closeStore, err := openLocalHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	switch action {
	case "list":
		if *jsonOutput {
			return writeJSON(stdout, store.Entries())
		}
		printHistory(stdout, store.Entries())
		return nil

	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "History cleared.")
		return nil

	case "remove":
		index, err := indexArg(rest)
		if err != nil {
			return err
		}
		removed, err := store.Remove(ctx, index)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(stdout, "No entry at index %d.\n", index)
			return nil
		}
		fmt.Fprintf(stdout, "Removed entry %d.\n", index)
		return nil

	case "restore":
		index, err := indexArg(rest)
		if err != nil {
			return err
		}
		entries := store.Entries()
		if index < 0 || index >= len(entries) {
			return fmt.Errorf("no entry at index %d", index)
		}
		rec, err := store.Restore(ctx, entries[index])
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, rec.InputText)
		return nil

	case "export":
		if len(rest) != 1 {
			return fmt.Errorf("usage: polyglot history export FILE")
		}
		if err := history.ExportToFile(rest[0], store, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d entries to %s.\n", store.Len(), rest[0])
		return nil

	case "import":
		if len(rest) != 1 {
			return fmt.Errorf("usage: polyglot history import FILE")
		}
		result, err := history.ImportFromFile(ctx, rest[0], store)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported %d entries (%d skipped).\n", result.Imported, result.Skipped)
		return nil

	default:
		return fmt.Errorf("unknown history action %q", action)
	}
}

func runStats(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("polyglot stats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	jsonOutput := fs.Bool("json", false, "Output statistics as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, closeStore, err := openLocalHistory(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	summary := stats.NewDeriver().Derive(store.Entries())
	if *jsonOutput {
		return writeJSON(stdout, summary)
	}
	printSummary(stdout, summary)
	return nil
}

// readText returns the remaining arguments joined by spaces, or stdin.
func readText(fs *flag.FlagSet) (string, error) {
	if fs.NArg() > 0 {
		return strings.Join(fs.Args(), " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no text given")
	}
	return text, nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func indexArg(rest []string) (int, error) {
	if len(rest) != 1 {
		return 0, fmt.Errorf("an entry index is required")
	}
	index, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", rest[0])
	}
	return index, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHistory(w io.Writer, entries []polyglot.TranslationRecord) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No translations yet.")
		return
	}
	for i, e := range entries {
		input := e.InputText
		if r := []rune(input); len(r) > 40 {
			input = string(r[:37]) + "..."
		}
		fmt.Fprintf(w, "%3d. [%s -> %s] %q -> %q  (%s)\n",
			i, polyglot.DisplayName(e.InputLanguage), polyglot.DisplayName(e.OutputLanguage),
			input, e.OutputText, e.Timestamp)
	}
}

func printSummary(w io.Writer, s stats.Summary) {
	fmt.Fprintf(w, "Total translations: %d\n\n", s.TotalTranslations)

	fmt.Fprintln(w, "Most used languages:")
	for _, l := range s.TopLanguages {
		fmt.Fprintf(w, "  %-14s %d\n", l.Name, l.Count)
	}

	fmt.Fprintln(w, "\nCommon language pairs:")
	for _, p := range s.TopLanguagePairs {
		fmt.Fprintf(w, "  %s -> %s  %d\n", p.From, p.To, p.Count)
	}

	fmt.Fprintln(w, "\nThis week:")
	for _, d := range s.WeekActivity {
		fmt.Fprintf(w, "  %s %s %d\n", d.Label, strings.Repeat("#", d.Height/5), d.Count)
	}
}
