package interpreter

import (
	"errors"
	"fmt"
	goruntime "runtime"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// task is a unit of evaluation run behind a recovery boundary.
type task func() (runtime.Value, error)

// guard runs fn and turns a host panic into an InternalError. Go runtime errors
// such as nil dereferences keep their message so the failure stays diagnosable.
func guard(fn task) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			var cause error
			switch v := r.(type) {
			case goruntime.Error:
				cause = v
			case error:
				cause = v
			default:
				cause = fmt.Errorf("%v", v)
			}
			result = nil
			err = &diagnostics.Error{
				Kind:    diagnostics.KindInternal,
				Message: fmt.Sprintf("panic: %v", r),
				Cause:   cause,
			}
		}
	}()
	return fn()
}

// enter accounts for one nested invocation; the returned func undoes it.
func (i *Interpreter) enter(node ast.Node) (func(), error) {
	if i.depth >= i.maxDepth {
		return nil, diagnostics.Runtime(node, "maximum call depth of %d exceeded", i.maxDepth)
	}
	i.depth++
	return func() { i.depth-- }, nil
}

// hostError attributes an error raised by host code to the node that invoked it.
// Errors that already carry a diagnostic kind pass through unchanged.
func hostError(node ast.Node, err error) error {
	if err == nil {
		return nil
	}
	if diag := asDiagnostic(err); diag != nil {
		return diag
	}
	wrapped := diagnostics.Runtime(node, "%s", err.Error())
	wrapped.Cause = err
	return wrapped
}

func asDiagnostic(err error) *diagnostics.Error {
	var diag *diagnostics.Error
	if errors.As(err, &diag) {
		return diag
	}
	return nil
}
