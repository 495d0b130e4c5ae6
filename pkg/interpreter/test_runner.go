package interpreter

import (
	"fmt"
	"time"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// TestAnnotation marks a zero-argument method as a test case. Optional arguments:
// name (display name) and skip (any value that casts to true).
const TestAnnotation = "test"

type TestStatus string

const (
	TestPassed  TestStatus = "PASS"
	TestFailed  TestStatus = "FAIL"
	TestSkipped TestStatus = "SKIP"
)

// TestResult is the outcome of one @test method.
type TestResult struct {
	Class    string
	Method   string
	Name     string
	Status   TestStatus
	Err      error
	Duration time.Duration
}

// TestReport collects the results of one test file in declaration order.
type TestReport struct {
	Results []TestResult
}

func (r *TestReport) count(status TestStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

func (r *TestReport) Passed() int  { return r.count(TestPassed) }
func (r *TestReport) Failed() int  { return r.count(TestFailed) }
func (r *TestReport) Skipped() int { return r.count(TestSkipped) }

// Test loads and checks the file at path, then runs every @test method declared in
// it. Each instance test gets a fresh instance of its class; static state is
// shared across the run. A test fails when it raises an error or returns false.
func (e *Engine) Test(path string) (*TestReport, error) {
	program, err := e.loader.Load(path)
	if err != nil {
		return nil, e.report(err, nil)
	}
	if !e.opts.SkipTypecheck {
		if err := e.typecheck(program); err != nil {
			return nil, e.report(err, program.Sources)
		}
	}
	interp := e.newInterpreter()
	if err := interp.Load(program); err != nil {
		return nil, e.report(err, program.Sources)
	}
	report := &TestReport{}
	for _, decl := range program.Entry.AST.Classes() {
		def, ok := interp.Class(decl.ID.Name)
		if !ok {
			continue
		}
		for _, method := range decl.Methods {
			ann := method.Annotations.Find(TestAnnotation)
			if ann == nil {
				continue
			}
			result := e.runTest(interp, def, method, ann)
			if result.Err != nil {
				fmt.Fprintln(e.stderr, diagnostics.Format(diagnostics.Wrap(result.Err), program.Sources))
			}
			report.Results = append(report.Results, result)
		}
	}
	e.logger.Debug("tests finished", "path", path, "passed", report.Passed(), "failed", report.Failed())
	return report, nil
}

func (e *Engine) runTest(interp *Interpreter, def *runtime.ClassDefinition, method *ast.MethodDeclaration, ann *ast.Annotation) TestResult {
	result := TestResult{Class: def.Name, Method: method.Name.Name, Name: def.Name + "." + method.Name.Name}
	if name, ok := ann.Argument("name"); ok && name != "" {
		result.Name = name
	}
	if skip, ok := ann.Argument("skip"); ok {
		if b, isBool := runtime.Cast(skip).(runtime.BoolValue); isBool && b.Val {
			result.Status = TestSkipped
			return result
		}
	}
	if len(method.Parameters) > 0 {
		result.Status = TestFailed
		result.Err = diagnostics.Runtime(method.Name, "test method '%s' must not take parameters", method.Name.Name)
		return result
	}

	start := time.Now()
	val, err := guard(func() (runtime.Value, error) {
		var receiver runtime.Value = runtime.ClassReference{Class: def}
		if !method.Modifiers.IsStatic() {
			inst, err := interp.instantiate(def, nil, method)
			if err != nil {
				return nil, err
			}
			receiver = inst
		}
		return interp.invokeMember(receiver, method.Name.Name, nil, method)
	})
	result.Duration = time.Since(start)
	switch {
	case err != nil:
		result.Status = TestFailed
		result.Err = err
	case runtime.Equal(val, runtime.Bool(false)):
		result.Status = TestFailed
		result.Err = diagnostics.Runtime(method.Name, "test '%s' returned false", result.Name)
	default:
		result.Status = TestPassed
	}
	return result
}
