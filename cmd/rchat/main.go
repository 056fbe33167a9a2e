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
	"strings"

	"github.com/gdamore/tcell/v2"
	apppkg "github.com/kk-code-lab/rchat/internal/app"
	"github.com/kk-code-lab/rchat/internal/config"
	searchpkg "github.com/kk-code-lab/rchat/internal/search"
	"github.com/kk-code-lab/rchat/internal/textutil"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"golang.org/x/term"
)

const usage = `rchat - terminal viewer for exported chat transcripts

USAGE:
    rchat [OPTIONS] FILE
    rchat --search QUERY [--color auto|always|never] FILE

OPTIONS:
`

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

type options struct {
	configPath  string
	perspective string
	watch       bool
	query       string
	color       string
	file        string
}

func main() {
	// Set UTF-8 as fallback encoding so names and emoji display everywhere.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "rchat: %v\n", err)
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "rchat: %v\n", err)
		return 1
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintf(stderr, "rchat: config: %s\n", w)
	}

	thread, err := transcript.Load(opts.file)
	if err != nil {
		fmt.Fprintf(stderr, "rchat: %v\n", err)
		return 1
	}
	if opts.perspective != "" {
		if !thread.HasParticipant(opts.perspective) {
			fmt.Fprintf(stderr, "rchat: %q is not a participant (have: %s)\n", opts.perspective, strings.Join(thread.Participants, ", "))
			return 1
		}
		cfg.Display.Perspective = opts.perspective
	}

	if opts.query != "" {
		if err := runSearch(thread, *cfg, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "rchat: %v\n", err)
			return 1
		}
		return 0
	}

	app, err := apppkg.NewApplication(thread, apppkg.Options{
		Config: *cfg,
		Path:   opts.file,
		Watch:  opts.watch,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error initializing application: %v\n", err)
		return 1
	}
	defer func() {
		_ = app.Close()
	}()

	app.Run()
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("rchat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/rchat/config.toml)")
	fs.StringVar(&opts.perspective, "perspective", "", "participant whose messages are shown as sent by you")
	fs.BoolVar(&opts.watch, "watch", false, "reload the transcript when the file changes")
	fs.StringVar(&opts.query, "search", "", "print ranked matches for `QUERY` and exit")
	fs.StringVar(&opts.color, "color", "auto", "highlight matches with bold text: auto, always or never")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	switch opts.color {
	case "auto", "always", "never":
	default:
		return opts, fmt.Errorf("invalid --color %q (want auto, always or never)", opts.color)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("expected exactly one transcript file")
	}
	opts.file = fs.Arg(0)
	return opts, nil
}

// searchLine is one result of non-interactive search.
type searchLine struct {
	Score     int    `json:"score"`
	Index     int    `json:"index"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp_ms,omitempty"`
	Snippet   string `json:"snippet"`
}

func runSearch(thread *transcript.Thread, cfg config.Config, opts options, stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	records := searchpkg.BuildRecords(thread.Messages, nil)
	searcher := searchpkg.NewSearcher(records, searchpkg.Scheduler{BatchSize: cfg.Search.BatchSize})
	defer searcher.Close()

	matches, err := searcher.Search(ctx, opts.query, nil)
	if err != nil {
		return err
	}
	if k := cfg.Search.TopK; k > 0 && len(matches) > k {
		matches = matches[:k]
	}

	if useColor(opts.color, stdout) {
		return writeColored(stdout, thread, matches, opts.query, cfg.Search.SnippetLength)
	}
	return writeJSONLines(stdout, thread, matches, opts.query, cfg.Search.SnippetLength)
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSONLines(w io.Writer, thread *transcript.Thread, matches []searchpkg.Match, query string, snippetLen int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, m := range matches {
		msg, _ := thread.Message(m.Record.Index)
		line := searchLine{
			Score:     m.Score,
			Index:     m.Record.Index,
			Sender:    m.Record.Sender,
			Timestamp: m.Record.Timestamp,
			Snippet:   searchpkg.RenderHighlighted(searchpkg.Snippet(msg.Text, snippetLen), query),
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func writeColored(w io.Writer, thread *transcript.Thread, matches []searchpkg.Match, query string, snippetLen int) error {
	for _, m := range matches {
		msg, _ := thread.Message(m.Record.Index)
		snippet := strings.Join(strings.Fields(searchpkg.Snippet(msg.Text, snippetLen)), " ")

		var b strings.Builder
		for _, seg := range searchpkg.Segments(snippet, searchpkg.FindRanges(snippet, query)) {
			text := textutil.SanitizeTerminalText(seg.Text)
			if seg.Match {
				b.WriteString(ansiBold + text + ansiReset)
				continue
			}
			b.WriteString(text)
		}

		stamp := ""
		if m.Record.Timestamp > 0 {
			stamp = msg.Time().Format("2006-01-02 15:04") + "  "
		}
		if _, err := fmt.Fprintf(w, "%3d  #%-5d %s%s: %s\n", m.Score, m.Record.Index, stamp, textutil.SanitizeTerminalText(m.Record.Sender), b.String()); err != nil {
			return err
		}
	}
	return nil
}
