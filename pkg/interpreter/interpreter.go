package interpreter

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested method and lambda invocations.
const DefaultMaxCallDepth = 1024

// Options configures an Interpreter. Zero values select os.Stdout, os.Stderr, a
// discarding logger and DefaultMaxCallDepth.
type Options struct {
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	MaxCallDepth int
}

// Interpreter evaluates linked Lyra programs.
type Interpreter struct {
	classes   *runtime.ClassRegistry
	functions map[string]*native.Function
	global    *runtime.Environment
	ctx       *native.CallContext
	logger    *slog.Logger
	maxDepth  int
	depth     int
}

// frame is the receiver context of the code being evaluated: the current instance
// (nil in static code and at top level) and the class whose body declared the code,
// which is what `super` resolves against.
type frame struct {
	this  *runtime.Instance
	class *runtime.ClassDefinition
}

var topFrame = &frame{}

// returnValue unwinds a `return` through enclosing statements.
type returnValue struct {
	value runtime.Value
}

// New returns an interpreter with an empty global environment.
func New(opts Options) *Interpreter {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	depth := opts.MaxCallDepth
	if depth <= 0 {
		depth = DefaultMaxCallDepth
	}
	return &Interpreter{
		classes:   runtime.NewClassRegistry(),
		functions: make(map[string]*native.Function),
		global:    runtime.NewEnvironment(nil),
		ctx:       &native.CallContext{Stdout: stdout, Stderr: stderr},
		logger:    logger,
		maxDepth:  depth,
	}
}

// GlobalEnvironment returns the environment top-level statements run in.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Classes exposes the class registry built by Load.
func (i *Interpreter) Classes() *runtime.ClassRegistry {
	return i.classes
}

// Load registers the program's classes and native functions. Loading a program
// that shares declarations with an earlier one keeps the earlier definitions,
// including their static state.
func (i *Interpreter) Load(program *driver.Program) error {
	if program == nil {
		return fmt.Errorf("interpreter: program is nil")
	}
	for _, decl := range program.Classes {
		def := runtime.NewClassDefinition(decl, program.NativeClass(decl))
		if _, err := i.classes.Register(def); err != nil {
			return diagnostics.Runtime(decl.ID, "%s", err.Error())
		}
	}
	if err := i.classes.Resolve(); err != nil {
		return diagnostics.New(diagnostics.KindRuntime, ast.Span{}, "%s", err.Error())
	}
	for _, fn := range program.Functions {
		i.functions[fn.Function.Name] = fn.Function
	}
	i.logger.Debug("program loaded", "entry", program.Entry.Path, "classes", len(program.Classes))
	return nil
}

// EvaluateProgram loads program and runs its entry statements in the global
// environment. The result is the value of the last top-level expression
// statement, or null.
func (i *Interpreter) EvaluateProgram(program *driver.Program) (runtime.Value, error) {
	if err := i.Load(program); err != nil {
		return nil, err
	}
	return i.EvaluateStatements(program.Statements())
}

// EvaluateStatements runs top-level statements in the global environment.
func (i *Interpreter) EvaluateStatements(statements []ast.Statement) (runtime.Value, error) {
	return guard(func() (runtime.Value, error) {
		var last runtime.Value = runtime.Null
		for _, stmt := range statements {
			if expr, ok := stmt.(ast.Expression); ok {
				val, err := i.evaluateExpression(expr, i.global, topFrame)
				if err != nil {
					return nil, err
				}
				last = val
				continue
			}
			ret, err := i.evaluateStatement(stmt, i.global, topFrame)
			if err != nil {
				return nil, err
			}
			if ret != nil {
				return ret.value, nil
			}
			last = runtime.Null
		}
		return last, nil
	})
}

// Class returns the runtime definition of a loaded class.
func (i *Interpreter) Class(name string) (*runtime.ClassDefinition, bool) {
	return i.classes.Lookup(name)
}

// Instantiate runs `new name(args...)` from host code.
func (i *Interpreter) Instantiate(name string, args ...runtime.Value) (*runtime.Instance, error) {
	def, ok := i.classes.Lookup(name)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindRuntime, ast.Span{}, "unknown class '%s'", name)
	}
	var inst *runtime.Instance
	_, err := guard(func() (runtime.Value, error) {
		created, err := i.instantiate(def, args, def.Declaration)
		inst = created
		return created, err
	})
	return inst, err
}

// CallMethod invokes a method on a receiver from host code.
func (i *Interpreter) CallMethod(receiver runtime.Value, name string, args ...runtime.Value) (runtime.Value, error) {
	return guard(func() (runtime.Value, error) {
		return i.invokeMember(receiver, name, args, nil)
	})
}
