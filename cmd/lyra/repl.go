package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/interpreter"
	"github.com/tonirenner/lyrascript-sub001/pkg/parser"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

const (
	promptMain  = "lyra> "
	promptCont  = "...   "
	historyFile = "repl_history"
)

func runRepl(args []string, logger *slog.Logger) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "lyra repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	var proj *project
	if manifest, err := loadManifestFrom("."); err == nil {
		if proj, err = openProject(manifest); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	engine, err := newEngine(proj, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize engine: %v\n", err)
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if cacheRoot, err := driver.DefaultCacheRoot(); err == nil {
		histPath = filepath.Join(cacheRoot, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(os.Stdout, "%s (type :quit to exit)\n", cliToolVersion)
	readLine := func(prompt string) (string, error) {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errInputAborted
		}
		return line, err
	}
	replLoop(engine.NewSession(), readLine, ln.AppendHistory, os.Stdout)
	return 0
}

var errInputAborted = errors.New("input aborted")

// replLoop reads inputs until EOF or :quit. Evaluation errors were already
// reported by the session; non-null results are echoed to out.
func replLoop(session *interpreter.Session, readLine func(prompt string) (string, error), remember func(string), out io.Writer) {
	for {
		src, ok := readInput(readLine)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":exit", ":q":
				return
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}
		remember(strings.ReplaceAll(src, "\n", " "))

		val, err := session.Eval(src)
		if err != nil || runtime.IsNull(val) {
			continue
		}
		fmt.Fprintln(out, session.Interpreter().Stringify(val))
	}
}

// readInput keeps prompting while the buffered source stops short of a complete
// program. It reports false at EOF.
func readInput(readLine func(prompt string) (string, error)) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := readLine(prompt)
		if errors.Is(err, errInputAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

func incomplete(src string) bool {
	_, err := parser.ParseProgram("<repl>", src)
	if err == nil {
		return false
	}
	var diag *diagnostics.Error
	if !errors.As(err, &diag) {
		return false
	}
	if strings.Contains(diag.Message, "unterminated block comment") {
		return true
	}
	return diag.Span.Start >= len(strings.TrimRightFunc(src, unicode.IsSpace))
}
