package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const environmentVariableTemplateConstant = "%s=%s"

// OSCommandRunner executes shell commands against the operating system.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an operating-system backed command runner.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run executes the command synchronously and captures its observable results.
// Commands flagged with UseStandardStreams run attached to the process
// terminal so interactive tools can prompt the operator directly.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(command.Details.EnvironmentVariables)

	if command.Details.UseStandardStreams {
		executable.Stdin = os.Stdin
		executable.Stdout = os.Stdout
		executable.Stderr = os.Stderr
		return runner.collectResult(executable.Run())
	}

	standardOutputBuffer := &bytes.Buffer{}
	standardErrorBuffer := &bytes.Buffer{}
	executable.Stdout = standardOutputBuffer
	executable.Stderr = standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	result, collectError := runner.collectResult(runError)
	result.StandardOutput = standardOutputBuffer.String()
	result.StandardError = standardErrorBuffer.String()
	return result, collectError
}

func (runner OSCommandRunner) collectResult(runError error) (ExecutionResult, error) {
	if runError == nil {
		return ExecutionResult{ExitCode: 0}, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		return ExecutionResult{ExitCode: exitError.ExitCode()}, nil
	}
	return ExecutionResult{}, runError
}

func mergeEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}

	merged := os.Environ()
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)
	for _, overrideKey := range overrideKeys {
		merged = append(merged, fmt.Sprintf(environmentVariableTemplateConstant, overrideKey, overrides[overrideKey]))
	}
	return merged
}

// ToolLocator reports whether external executables are available.
type ToolLocator interface {
	IsToolAvailable(toolName CommandName) bool
}

// OSToolLocator resolves executables through the process PATH.
type OSToolLocator struct{}

// NewOSToolLocator constructs a PATH-backed tool locator.
func NewOSToolLocator() OSToolLocator {
	return OSToolLocator{}
}

// IsToolAvailable reports whether the named executable resolves on PATH.
func (OSToolLocator) IsToolAvailable(toolName CommandName) bool {
	_, lookupError := exec.LookPath(string(toolName))
	return lookupError == nil
}
