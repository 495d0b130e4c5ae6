package interpreter

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// Session evaluates a sequence of inputs against one interpreter, as the REPL
// does. Declarations, imports and top-level bindings of accepted inputs stay
// visible to later ones.
type Session struct {
	engine  *Engine
	interp  *Interpreter
	modules []*driver.Module
	inputs  int
}

func (e *Engine) NewSession() *Session {
	return &Session{engine: e, interp: e.newInterpreter()}
}

// Interpreter returns the interpreter inputs run in.
func (s *Session) Interpreter() *Interpreter { return s.interp }

// Eval runs one input. The result is the value of its last top-level expression
// statement. An input rejected before evaluation leaves the session unchanged.
func (s *Session) Eval(source string) (runtime.Value, error) {
	s.inputs++
	name := fmt.Sprintf("<repl:%d>", s.inputs)
	program, err := s.engine.loader.LoadSource(name, source, s.modules...)
	if err != nil {
		return nil, s.engine.report(err, diagnostics.Sources{name: source})
	}
	if !s.engine.opts.SkipTypecheck {
		if err := s.engine.typecheck(program, s.interp.GlobalEnvironment().Keys()...); err != nil {
			return nil, s.engine.report(err, program.Sources)
		}
	}
	if err := s.interp.Load(program); err != nil {
		return nil, s.engine.report(err, program.Sources)
	}
	// Classes are registered now, so the modules stay linked even if running fails.
	s.modules = s.modules[:0:0]
	for _, mod := range program.Modules {
		if !mod.Native {
			s.modules = append(s.modules, mod)
		}
	}
	val, err := s.interp.EvaluateStatements(program.Statements())
	if err != nil {
		return nil, s.engine.report(err, program.Sources)
	}
	return val, nil
}
