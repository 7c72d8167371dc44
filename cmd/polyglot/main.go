// Command polyglot translates text with an AI backend, keeps a local
// translation history and serves the polyglot HTTP API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/polyglot"
)


const usage = `Usage: polyglot <command> [flags] [args]

Commands:
  serve       Run the HTTP API
  translate   Translate text (args or stdin) and record it in the history
  detect      Detect the language of text
  history     Manage the local history: list, clear, remove N, restore N,
              export FILE, import FILE
  stats       Show statistics derived from the local history

Run "polyglot <command> -h" for command flags.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("command required")
	}

	switch args[0] {
	case "--version", "-version", "version":
		printVersion(stdout)
		return nil
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	case "serve":
		return runServe(args[1:], stdout, stderr)
	case "translate":
		return runTranslate(args[1:], stdout, stderr)
	case "detect":
		return runDetect(args[1:], stdout, stderr)
	case "history":
		return runHistory(args[1:], stdout, stderr)
	case "stats":
		return runStats(args[1:], stdout, stderr)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printVersion(stdout io.Writer) {
	info := polyglot.Info()
	fmt.Fprintf(stdout, "%s %s\n", polyglot.Name, polyglot.FullVersion())
	if info.BuildDate != "" {
		fmt.Fprintf(stdout, "  built:   %s\n", info.BuildDate)
	}
	fmt.Fprintf(stdout, "  go:      %s\n", info.GoVersion)
}
