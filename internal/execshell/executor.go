package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	homebrewCommandNameStringConstant         = "brew"
	onePasswordCommandNameStringConstant      = "op"
	gitCommandNameStringConstant              = "git"
	awsCommandNameStringConstant              = "aws"
	gitLabCLICommandNameStringConstant        = "glab"
	defaultsCommandNameStringConstant         = "defaults"
	dockutilCommandNameStringConstant         = "dockutil"
	openCommandNameStringConstant             = "open"
	spotlightCommandNameStringConstant        = "mdfind"
	curlCommandNameStringConstant             = "curl"
	killallCommandNameStringConstant          = "killall"
	chflagsCommandNameStringConstant          = "chflags"
	launchctlCommandNameStringConstant        = "launchctl"
	xattrCommandNameStringConstant            = "xattr"
	shellCommandNameStringConstant            = "sh"
	sudoCommandNameStringConstant             = "sudo"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandNameMissingMessageConstant         = "shell command name not provided"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandRunnerErrorMessageConstant         = "command execution error"
	commandNameFieldNameConstant              = "command"
	commandArgumentsFieldNameConstant         = "arguments"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	standardErrorFieldNameConstant            = "stderr"
)

// CommandName identifies a supported executable name.
type CommandName string

// Supported command names.
const (
	CommandHomebrew    CommandName = CommandName(homebrewCommandNameStringConstant)
	CommandOnePassword CommandName = CommandName(onePasswordCommandNameStringConstant)
	CommandGit         CommandName = CommandName(gitCommandNameStringConstant)
	CommandAWS         CommandName = CommandName(awsCommandNameStringConstant)
	CommandGitLabCLI   CommandName = CommandName(gitLabCLICommandNameStringConstant)
	CommandDefaults    CommandName = CommandName(defaultsCommandNameStringConstant)
	CommandDockutil    CommandName = CommandName(dockutilCommandNameStringConstant)
	CommandOpen        CommandName = CommandName(openCommandNameStringConstant)
	CommandSpotlight   CommandName = CommandName(spotlightCommandNameStringConstant)
	CommandCurl        CommandName = CommandName(curlCommandNameStringConstant)
	CommandKillall     CommandName = CommandName(killallCommandNameStringConstant)
	CommandChflags     CommandName = CommandName(chflagsCommandNameStringConstant)
	CommandLaunchctl   CommandName = CommandName(launchctlCommandNameStringConstant)
	CommandXattr       CommandName = CommandName(xattrCommandNameStringConstant)
	CommandShell       CommandName = CommandName(shellCommandNameStringConstant)
	CommandSudo        CommandName = CommandName(sudoCommandNameStringConstant)
)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// UseStandardStreams attaches the process standard streams instead of
	// capturing output. Interactive sub-processes such as `op signin` need
	// a real terminal to complete.
	UseStandardStreams bool
}

// ShellCommand represents a fully qualified command invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner CommandRunner
	logger        *zap.Logger
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandNameMissing indicates the command name was not provided.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// CommandFailedError provides details about commands exiting with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

const commandFailureErrorMessageTemplateConstant = "%s command exited with code %d"

// Error describes the failure in a readable format.
func (commandError CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(commandFailureErrorMessageTemplateConstant, commandError.Command.Name, commandError.Result.ExitCode)

	if len(commandError.Command.Details.Arguments) > 0 {
		baseMessage = fmt.Sprintf("%s (%s)", baseMessage, strings.Join(commandError.Command.Details.Arguments, " "))
	}

	detail := strings.TrimSpace(commandError.Result.StandardError)
	if len(detail) == 0 {
		detail = strings.TrimSpace(commandError.Result.StandardOutput)
	}
	if len(detail) > 0 {
		lines := strings.Split(detail, "\n")
		maxLines := 3
		if len(lines) > maxLines {
			lines = lines[:maxLines]
		}
		normalized := make([]string, 0, len(lines))
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			normalized = append(normalized, trimmed)
		}
		if len(normalized) > 0 {
			baseMessage = fmt.Sprintf("%s: %s", baseMessage, strings.Join(normalized, " | "))
		}
	}

	return baseMessage
}

// CommandExecutionError wraps unexpected execution failures from the runner.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "%s command execution failed"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Name)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{commandRunner: commandRunner, logger: logger}, nil
}

// Execute runs the provided shell command and logs lifecycle events.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	executor.logger.Debug(commandStartMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Strings(commandArgumentsFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
	)

	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	if runnerError != nil {
		executor.logger.Debug(commandRunnerErrorMessageConstant,
			zap.String(commandNameFieldNameConstant, string(command.Name)),
			zap.Error(runnerError),
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	}

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(commandFailureMessageConstant,
			zap.String(commandNameFieldNameConstant, string(command.Name)),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
			zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
		)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandSuccessMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
	)
	return executionResult, nil
}

// ExecuteHomebrew runs the brew executable with the provided details.
func (executor *ShellExecutor) ExecuteHomebrew(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandHomebrew, Details: details})
}

// ExecuteOnePassword runs the 1Password CLI with the provided details.
func (executor *ShellExecutor) ExecuteOnePassword(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandOnePassword, Details: details})
}

// ExecuteGit runs the git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteAWS runs the AWS CLI with the provided details.
func (executor *ShellExecutor) ExecuteAWS(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandAWS, Details: details})
}

// ExecuteGitLabCLI runs the GitLab CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitLabCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitLabCLI, Details: details})
}

// ExecuteDefaults runs the macOS defaults utility with the provided details.
func (executor *ShellExecutor) ExecuteDefaults(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandDefaults, Details: details})
}

// ExecuteCurl runs the curl executable with the provided details.
func (executor *ShellExecutor) ExecuteCurl(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandCurl, Details: details})
}
