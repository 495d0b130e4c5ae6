package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// evaluateForeachStatement drives the iterator protocol: iterator() and rewind()
// once, then hasNext()/current()/next() per element. The loop variable is bound
// in a fresh scope for every pass.
func (i *Interpreter) evaluateForeachStatement(stmt *ast.ForeachStatement, env *runtime.Environment, fr *frame) (*returnValue, error) {
	iterable, err := i.evaluateExpression(stmt.Iterable, env, fr)
	if err != nil {
		return nil, err
	}
	if !i.respondsTo(iterable, "iterator") {
		return nil, diagnostics.Runtime(stmt.Iterable, "foreach requires an Iterable, got %s", runtime.TypeName(iterable))
	}
	iterator, err := i.invokeMember(iterable, "iterator", nil, stmt.Iterable)
	if err != nil {
		return nil, err
	}
	if _, err := i.invokeMember(iterator, "rewind", nil, stmt.Iterable); err != nil {
		return nil, err
	}
	for {
		more, err := i.invokeMember(iterator, "hasNext", nil, stmt.Iterable)
		if err != nil {
			return nil, err
		}
		ok, err := conditionValue(more, stmt.Iterable, "hasNext()")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		current, err := i.invokeMember(iterator, "current", nil, stmt.Iterable)
		if err != nil {
			return nil, err
		}
		passEnv := env.Extend()
		passEnv.Define(stmt.Variable.Name, current)
		ret, err := i.evaluateBlock(stmt.Body.Body, passEnv, fr)
		if err != nil || ret != nil {
			return ret, err
		}
		if _, err := i.invokeMember(iterator, "next", nil, stmt.Iterable); err != nil {
			return nil, err
		}
	}
}

func (i *Interpreter) respondsTo(val runtime.Value, name string) bool {
	inst, ok := val.(*runtime.Instance)
	if !ok {
		return false
	}
	_, ok = inst.Class.FindMethod(name)
	return ok
}
