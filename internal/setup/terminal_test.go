package setup_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/internal/setup"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

func terminalDependencies() (setup.Dependencies, *stubCommandExecutor, *stubFileSystem) {
	dependencies, executor, fileSystem, prompter, _ := newTestDependencies()
	prompter.interactive = false
	fileSystem.files[stubHomeDirectoryConstant+"/.zshrc"] = []byte("export PATH=$PATH\nZSH_THEME=\"robbyrussell\"\nplugins=(git)\n")
	return dependencies, executor, fileSystem
}

func TestTerminalTaskInstallsShellTooling(testInstance *testing.T) {
	dependencies, executor, fileSystem := terminalDependencies()

	task, creationError := setup.NewTerminalTask(dependencies)
	require.NoError(testInstance, creationError)

	outcome := task.Run(context.Background())

	require.Equal(testInstance, steprunner.OutcomeStatusSuccess, outcome.Status)

	installCommand := executor.recordedCommands[0]
	require.Equal(testInstance, execshell.CommandShell, installCommand.Name)
	require.Equal(testInstance, "no", installCommand.Details.EnvironmentVariables["RUNZSH"])
	require.Equal(testInstance, "no", installCommand.Details.EnvironmentVariables["CHSH"])

	cloneCommand := executor.recordedCommands[1]
	require.Equal(testInstance, execshell.CommandGit, cloneCommand.Name)
	require.Contains(testInstance, cloneCommand.Details.Arguments, "--depth=1")
	require.Contains(testInstance, cloneCommand.Details.Arguments, "https://github.com/romkatv/powerlevel10k.git")

	updatedZshrc := string(fileSystem.files[stubHomeDirectoryConstant+"/.zshrc"])
	require.Contains(testInstance, updatedZshrc, `ZSH_THEME="powerlevel10k/powerlevel10k"`)
	require.NotContains(testInstance, updatedZshrc, "robbyrussell")
}

func TestTerminalTaskSkipsInstalledTooling(testInstance *testing.T) {
	dependencies, executor, fileSystem := terminalDependencies()
	fileSystem.directories[stubHomeDirectoryConstant+"/.oh-my-zsh"] = true
	fileSystem.directories[stubHomeDirectoryConstant+"/.oh-my-zsh/custom/themes/powerlevel10k"] = true

	task, creationError := setup.NewTerminalTask(dependencies)
	require.NoError(testInstance, creationError)

	outcome := task.Run(context.Background())

	require.Equal(testInstance, steprunner.OutcomeStatusSuccess, outcome.Status)
	for _, commandLine := range executor.commandLines() {
		require.False(testInstance, strings.HasPrefix(commandLine, "sh "))
		require.False(testInstance, strings.HasPrefix(commandLine, "git clone"))
	}
}

func TestTerminalTaskAppendsThemeWhenAssignmentMissing(testInstance *testing.T) {
	dependencies, _, fileSystem := terminalDependencies()
	fileSystem.files[stubHomeDirectoryConstant+"/.zshrc"] = []byte("export PATH=$PATH\n")
	fileSystem.directories[stubHomeDirectoryConstant+"/.oh-my-zsh"] = true
	fileSystem.directories[stubHomeDirectoryConstant+"/.oh-my-zsh/custom/themes/powerlevel10k"] = true

	task, creationError := setup.NewTerminalTask(dependencies)
	require.NoError(testInstance, creationError)

	task.Run(context.Background())

	updatedZshrc := string(fileSystem.files[stubHomeDirectoryConstant+"/.zshrc"])
	require.Contains(testInstance, updatedZshrc, "export PATH=$PATH")
	require.True(testInstance, strings.HasSuffix(updatedZshrc, `ZSH_THEME="powerlevel10k/powerlevel10k"`+"\n"))
}

func TestTerminalTaskMissingZshrcWarns(testInstance *testing.T) {
	dependencies, _, fileSystem := terminalDependencies()
	delete(fileSystem.files, stubHomeDirectoryConstant+"/.zshrc")
	fileSystem.directories[stubHomeDirectoryConstant+"/.oh-my-zsh"] = true
	fileSystem.directories[stubHomeDirectoryConstant+"/.oh-my-zsh/custom/themes/powerlevel10k"] = true

	task, creationError := setup.NewTerminalTask(dependencies)
	require.NoError(testInstance, creationError)

	outcome := task.Run(context.Background())
	require.Equal(testInstance, steprunner.OutcomeStatusWarning, outcome.Status)
}

func TestTerminalTaskFailedOhMyZshInstallIsFatal(testInstance *testing.T) {
	dependencies, executor, _ := terminalDependencies()
	executor.respond = func(command execshell.ShellCommand) (execshell.ExecutionResult, error) {
		if command.Name == execshell.CommandShell {
			return execshell.ExecutionResult{ExitCode: 1}, errors.New("network down")
		}
		return execshell.ExecutionResult{}, nil
	}

	task, creationError := setup.NewTerminalTask(dependencies)
	require.NoError(testInstance, creationError)

	outcome := task.Run(context.Background())
	require.Equal(testInstance, steprunner.OutcomeStatusFatal, outcome.Status)
}
