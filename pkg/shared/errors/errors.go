package errors

import (
	"fmt"
)

// NotImplementedError is returned when a requested variant does not exist,
// e.g. an unknown report format.
type NotImplementedError struct {
	MethodName string
	PluginName string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("method %q is not implemented for %q", e.MethodName, e.PluginName)
}

// NewNotImplementedError constructs a NotImplementedError.
func NewNotImplementedError(methodName, pluginName string) error {
	return &NotImplementedError{
		MethodName: methodName,
		PluginName: pluginName,
	}
}

// FunctionBoundaryError reports that no function declaration was found at or after
// the requested line. Callers pass lines they already located, so this is a caller
// bug rather than a heuristic miss.
type FunctionBoundaryError struct {
	StartLine int
	Reason    string
}

func (e *FunctionBoundaryError) Error() string {
	return fmt.Sprintf("no function boundary found from line %d: %s", e.StartLine, e.Reason)
}

// NewFunctionBoundaryError constructs a FunctionBoundaryError.
func NewFunctionBoundaryError(startLine int, reason string) error {
	return &FunctionBoundaryError{
		StartLine: startLine,
		Reason:    reason,
	}
}

// Exit codes returned by the CLI.
const (
	ExitCodeScanFailed = 1
	ExitCodeGateFailed = 2
)

// CommandError carries the exit code a command wants the process to terminate with.
type CommandError struct {
	ExitCode    int
	CommonError string
}

func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError wraps err with an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}
