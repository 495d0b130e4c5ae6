package interpreter

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// EngineOptions configures the load, check and run pipeline.
type EngineOptions struct {
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	MaxCallDepth int
	Loader       driver.LoaderOptions
	// SkipTypecheck runs programs without the static checker.
	SkipTypecheck bool
}

// Engine is the entry point used by the CLI and by embedders: it loads a program,
// checks it, evaluates it and reports every failure uniformly on Stderr.
type Engine struct {
	opts   EngineOptions
	loader *driver.Loader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewEngine builds an engine. A manifest in opts.Loader supplies the call-depth
// limit unless MaxCallDepth is set explicitly.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Loader.Logger == nil {
		opts.Loader.Logger = opts.Logger
	}
	if opts.MaxCallDepth == 0 && opts.Loader.Manifest != nil {
		opts.MaxCallDepth = opts.Loader.Manifest.Settings.MaxCallDepth
	}
	loader, err := driver.NewLoader(opts.Loader)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:   opts,
		loader: loader,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		logger: opts.Logger,
	}, nil
}

// Loader exposes the engine's module loader.
func (e *Engine) Loader() *driver.Loader { return e.loader }

// Run loads, checks and evaluates the file at path.
func (e *Engine) Run(path string) (runtime.Value, error) {
	program, err := e.loader.Load(path)
	if err != nil {
		return nil, e.report(err, nil)
	}
	return e.execute(program)
}

// RunSource is Run for in-memory source; relative imports resolve against the
// working directory.
func (e *Engine) RunSource(name, source string) (runtime.Value, error) {
	program, err := e.loader.LoadSource(name, source)
	if err != nil {
		return nil, e.report(err, diagnostics.Sources{name: source})
	}
	return e.execute(program)
}

// Check loads and type checks the file at path without running it.
func (e *Engine) Check(path string) error {
	program, err := e.loader.Load(path)
	if err != nil {
		return e.report(err, nil)
	}
	if err := e.typecheck(program); err != nil {
		return e.report(err, program.Sources)
	}
	return nil
}

func (e *Engine) execute(program *driver.Program) (runtime.Value, error) {
	if !e.opts.SkipTypecheck {
		if err := e.typecheck(program); err != nil {
			return nil, e.report(err, program.Sources)
		}
	}
	interp := e.newInterpreter()
	val, err := interp.EvaluateProgram(program)
	if err != nil {
		return nil, e.report(err, program.Sources)
	}
	return val, nil
}

func (e *Engine) typecheck(program *driver.Program, predeclared ...string) error {
	_, err := guard(func() (runtime.Value, error) {
		return nil, checkProgram(program, predeclared...)
	})
	return err
}

func (e *Engine) newInterpreter() *Interpreter {
	return New(Options{
		Stdout:       e.stdout,
		Stderr:       e.stderr,
		Logger:       e.logger,
		MaxCallDepth: e.opts.MaxCallDepth,
	})
}

// report prints every error carried by err to Stderr and returns it normalized
// to the diagnostics taxonomy.
func (e *Engine) report(err error, sources diagnostics.Sources) error {
	errs := diagnostics.Flatten(err)
	if sources == nil {
		sources = make(diagnostics.Sources)
	}
	for _, diag := range errs {
		if name := diag.Span.Source; name != "" {
			if _, ok := sources[name]; !ok {
				if data, readErr := os.ReadFile(name); readErr == nil {
					sources[name] = string(data)
				}
			}
		}
		fmt.Fprintln(e.stderr, diagnostics.Format(diag, sources))
		e.logger.Debug("reported error", "kind", diag.Kind, "message", diag.Message)
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return diagnostics.List(errs)
}
