package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/typechecker"
)

// ProgramCheckResult aggregates the diagnostics and symbols of a program check.
type ProgramCheckResult = typechecker.CheckResult

// TypecheckProgram runs the type checker across every module of program. Names in
// predeclared are visible to top-level statements as mixed variables.
func TypecheckProgram(program *driver.Program, predeclared ...string) (ProgramCheckResult, error) {
	checker := typechecker.New()
	checker.Predeclare(predeclared...)
	return checker.CheckProgram(program)
}

// checkProgram reduces TypecheckProgram to an error: nil for a clean program,
// otherwise a diagnostics.List of TypeErrors.
func checkProgram(program *driver.Program, predeclared ...string) error {
	result, err := TypecheckProgram(program, predeclared...)
	if err != nil {
		return err
	}
	return typechecker.ToErrors(result.Diagnostics)
}
