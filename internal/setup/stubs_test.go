package setup_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/tyemirov/workstation/internal/catalog"
	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/internal/onepassword"
	"github.com/tyemirov/workstation/internal/setup"
)

const stubHomeDirectoryConstant = "/home/operator"

// stubCommandExecutor records every command and answers through the respond
// callback (success with empty output when unset).
type stubCommandExecutor struct {
	recordedCommands    []execshell.ShellCommand
	genericExecuteNames []execshell.CommandName
	defaultsInvocations int
	respond             func(command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

func (executor *stubCommandExecutor) run(command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, command)
	if executor.respond != nil {
		return executor.respond(command)
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *stubCommandExecutor) commandLines() []string {
	lines := make([]string, 0, len(executor.recordedCommands))
	for _, recordedCommand := range executor.recordedCommands {
		lines = append(lines, strings.TrimSpace(string(recordedCommand.Name)+" "+strings.Join(recordedCommand.Details.Arguments, " ")))
	}
	return lines
}

func (executor *stubCommandExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.genericExecuteNames = append(executor.genericExecuteNames, command.Name)
	return executor.run(command)
}

func (executor *stubCommandExecutor) ExecuteHomebrew(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.ShellCommand{Name: execshell.CommandHomebrew, Details: details})
}

func (executor *stubCommandExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.ShellCommand{Name: execshell.CommandGit, Details: details})
}

func (executor *stubCommandExecutor) ExecuteAWS(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.ShellCommand{Name: execshell.CommandAWS, Details: details})
}

func (executor *stubCommandExecutor) ExecuteGitLabCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.ShellCommand{Name: execshell.CommandGitLabCLI, Details: details})
}

func (executor *stubCommandExecutor) ExecuteDefaults(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.defaultsInvocations++
	return executor.run(execshell.ShellCommand{Name: execshell.CommandDefaults, Details: details})
}

func (executor *stubCommandExecutor) ExecuteCurl(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.ShellCommand{Name: execshell.CommandCurl, Details: details})
}

// stubToolLocator reports availability from a fixed set.
type stubToolLocator struct {
	availableTools map[execshell.CommandName]bool
}

func (locator stubToolLocator) IsToolAvailable(toolName execshell.CommandName) bool {
	return locator.availableTools[toolName]
}

func allToolsAvailable() stubToolLocator {
	return stubToolLocator{availableTools: map[execshell.CommandName]bool{
		execshell.CommandHomebrew:    true,
		execshell.CommandOnePassword: true,
		execshell.CommandGit:         true,
		execshell.CommandAWS:         true,
		execshell.CommandGitLabCLI:   true,
		execshell.CommandDockutil:    true,
	}}
}

// stubCatalogLoader returns fixed catalogs.
type stubCatalogLoader struct {
	applications      catalog.ApplicationCatalog
	applicationsError error
	folders           catalog.FolderCatalog
	foldersError      error
	integrations      catalog.IntegrationCatalog
	integrationsError error
}

func (loader stubCatalogLoader) LoadApplications() (catalog.ApplicationCatalog, error) {
	return loader.applications, loader.applicationsError
}

func (loader stubCatalogLoader) LoadFolders() (catalog.FolderCatalog, error) {
	return loader.folders, loader.foldersError
}

func (loader stubCatalogLoader) LoadIntegrations() (catalog.IntegrationCatalog, error) {
	return loader.integrations, loader.integrationsError
}

// stubCredentialClient scripts the 1Password interactions.
type stubCredentialClient struct {
	installed           bool
	activeSessions      []bool
	sessionCallCount    int
	hasAccounts         bool
	signInError         error
	signInCalled        bool
	addAccountError     error
	addedAddresses      []string
	items               map[string]onepassword.Item
	itemsByCategory     []onepassword.Item
	listError           error
	fetchedIdentifiers  []string
	categoriesRequested []string
}

func (client *stubCredentialClient) IsInstalled() bool { return client.installed }

func (client *stubCredentialClient) HasActiveSession(context.Context) bool {
	if client.sessionCallCount < len(client.activeSessions) {
		answer := client.activeSessions[client.sessionCallCount]
		client.sessionCallCount++
		return answer
	}
	if len(client.activeSessions) == 0 {
		return false
	}
	return client.activeSessions[len(client.activeSessions)-1]
}

func (client *stubCredentialClient) HasAccounts(context.Context) bool { return client.hasAccounts }

func (client *stubCredentialClient) SignIn(context.Context) error {
	client.signInCalled = true
	return client.signInError
}

func (client *stubCredentialClient) AddAccount(_ context.Context, signInAddress string) error {
	client.addedAddresses = append(client.addedAddresses, signInAddress)
	return client.addAccountError
}

func (client *stubCredentialClient) GetItem(_ context.Context, itemIdentifier string) (onepassword.Item, error) {
	client.fetchedIdentifiers = append(client.fetchedIdentifiers, itemIdentifier)
	storedItem, itemFound := client.items[itemIdentifier]
	if !itemFound {
		return onepassword.Item{}, errors.New("item not found")
	}
	return storedItem, nil
}

func (client *stubCredentialClient) ListItemsByCategory(_ context.Context, categoryName string) ([]onepassword.Item, error) {
	client.categoriesRequested = append(client.categoriesRequested, categoryName)
	return client.itemsByCategory, client.listError
}

// stubFileInfo satisfies fs.FileInfo for stubbed entries.
type stubFileInfo struct {
	name      string
	size      int64
	directory bool
}

func (info stubFileInfo) Name() string       { return info.name }
func (info stubFileInfo) Size() int64        { return info.size }
func (info stubFileInfo) Mode() fs.FileMode  { return 0o644 }
func (info stubFileInfo) ModTime() time.Time { return time.Time{} }
func (info stubFileInfo) IsDir() bool        { return info.directory }
func (info stubFileInfo) Sys() any           { return nil }

// stubFileSystem keeps files and directories in maps.
type stubFileSystem struct {
	files            map[string][]byte
	directories      map[string]bool
	homeDirectory    string
	writeError       error
	recordedWrites   map[string]fs.FileMode
	recordedChmods   map[string]fs.FileMode
	createdDirsOrder []string
}

func newStubFileSystem() *stubFileSystem {
	return &stubFileSystem{
		files:          map[string][]byte{},
		directories:    map[string]bool{},
		homeDirectory:  stubHomeDirectoryConstant,
		recordedWrites: map[string]fs.FileMode{},
		recordedChmods: map[string]fs.FileMode{},
	}
}

func (fileSystem *stubFileSystem) Stat(path string) (fs.FileInfo, error) {
	if fileSystem.directories[path] {
		return stubFileInfo{name: path, directory: true}, nil
	}
	if content, fileFound := fileSystem.files[path]; fileFound {
		return stubFileInfo{name: path, size: int64(len(content))}, nil
	}
	return nil, fs.ErrNotExist
}

func (fileSystem *stubFileSystem) MkdirAll(path string, _ fs.FileMode) error {
	fileSystem.directories[path] = true
	fileSystem.createdDirsOrder = append(fileSystem.createdDirsOrder, path)
	return nil
}

func (fileSystem *stubFileSystem) ReadFile(path string) ([]byte, error) {
	content, fileFound := fileSystem.files[path]
	if !fileFound {
		return nil, fs.ErrNotExist
	}
	return content, nil
}

func (fileSystem *stubFileSystem) WriteFile(path string, content []byte, permissions fs.FileMode) error {
	if fileSystem.writeError != nil {
		return fileSystem.writeError
	}
	fileSystem.files[path] = content
	fileSystem.recordedWrites[path] = permissions
	return nil
}

func (fileSystem *stubFileSystem) Chmod(path string, permissions fs.FileMode) error {
	fileSystem.recordedChmods[path] = permissions
	return nil
}

func (fileSystem *stubFileSystem) UserHomeDir() (string, error) {
	return fileSystem.homeDirectory, nil
}

// stubPrompter scripts operator input.
type stubPrompter struct {
	interactive     bool
	textResponses   []string
	textCallCount   int
	confirmResponse bool
	confirmError    error
	waitError       error
	recordedPrompts []string
}

func (prompter *stubPrompter) PromptText(promptMessage string, defaultValue string) (string, error) {
	prompter.recordedPrompts = append(prompter.recordedPrompts, promptMessage)
	if prompter.textCallCount < len(prompter.textResponses) {
		response := prompter.textResponses[prompter.textCallCount]
		prompter.textCallCount++
		if len(response) == 0 {
			return defaultValue, nil
		}
		return response, nil
	}
	return defaultValue, nil
}

func (prompter *stubPrompter) Confirm(promptMessage string) (bool, error) {
	prompter.recordedPrompts = append(prompter.recordedPrompts, promptMessage)
	return prompter.confirmResponse, prompter.confirmError
}

func (prompter *stubPrompter) WaitForEnter(promptMessage string) error {
	prompter.recordedPrompts = append(prompter.recordedPrompts, promptMessage)
	return prompter.waitError
}

func (prompter *stubPrompter) IsInteractive() bool { return prompter.interactive }

// stubReporter records emitted messages by class.
type stubReporter struct {
	infoMessages    []string
	successMessages []string
	warningMessages []string
	errorMessages   []string
	plainMessages   []string
}

func (reporter *stubReporter) Info(message string) {
	reporter.infoMessages = append(reporter.infoMessages, message)
}

func (reporter *stubReporter) Infof(format string, arguments ...any) {
	reporter.infoMessages = append(reporter.infoMessages, sprintf(format, arguments...))
}

func (reporter *stubReporter) Success(message string) {
	reporter.successMessages = append(reporter.successMessages, message)
}

func (reporter *stubReporter) Successf(format string, arguments ...any) {
	reporter.successMessages = append(reporter.successMessages, sprintf(format, arguments...))
}

func (reporter *stubReporter) Warning(message string) {
	reporter.warningMessages = append(reporter.warningMessages, message)
}

func (reporter *stubReporter) Warningf(format string, arguments ...any) {
	reporter.warningMessages = append(reporter.warningMessages, sprintf(format, arguments...))
}

func (reporter *stubReporter) Error(message string) {
	reporter.errorMessages = append(reporter.errorMessages, message)
}

func (reporter *stubReporter) Errorf(format string, arguments ...any) {
	reporter.errorMessages = append(reporter.errorMessages, sprintf(format, arguments...))
}

func (reporter *stubReporter) Plain(message string) {
	reporter.plainMessages = append(reporter.plainMessages, message)
}

func sprintf(format string, arguments ...any) string {
	return fmt.Sprintf(format, arguments...)
}

// stubClock returns a fixed time.
type stubClock struct {
	currentTime time.Time
}

func (clock stubClock) Now() time.Time { return clock.currentTime }

func newTestDependencies() (setup.Dependencies, *stubCommandExecutor, *stubFileSystem, *stubPrompter, *stubReporter) {
	executor := &stubCommandExecutor{}
	fileSystem := newStubFileSystem()
	prompter := &stubPrompter{interactive: true}
	reporter := &stubReporter{}

	dependencies := setup.Dependencies{
		Executor:    executor,
		ToolLocator: allToolsAvailable(),
		Catalogs:    stubCatalogLoader{},
		Credentials: &stubCredentialClient{installed: true, activeSessions: []bool{true}},
		FileSystem:  fileSystem,
		Prompter:    prompter,
		Reporter:    reporter,
		Clock:       stubClock{currentTime: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)},
		Settings:    setup.DefaultSettings(),
	}
	return dependencies, executor, fileSystem, prompter, reporter
}
