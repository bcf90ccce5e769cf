// Package setup implements the provisioning task units executed by the
// workstation pipeline. Each task converges one concern of the machine and
// reports a steprunner outcome.
package setup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tyemirov/workstation/internal/catalog"
	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/internal/onepassword"
)

const (
	executorNotConfiguredMessageConstant   = "setup task executor not configured"
	locatorNotConfiguredMessageConstant    = "setup task tool locator not configured"
	catalogsNotConfiguredMessageConstant   = "setup task catalog loader not configured"
	credentialsNotConfiguredMessageConst   = "setup task credential client not configured"
	fileSystemNotConfiguredMessageConstant = "setup task file system not configured"
	prompterNotConfiguredMessageConstant   = "setup task prompter not configured"
	reporterNotConfiguredMessageConstant   = "setup task reporter not configured"
	clockNotConfiguredMessageConstant      = "setup task clock not configured"
	homePathPrefixConstant                 = "~"
	defaultAWSRegionConstant               = "eu-west-1"
	defaultCloneRetentionConstant          = 2 * 365 * 24 * time.Hour
)

// Validation errors for task dependencies.
var (
	ErrExecutorNotConfigured    = errors.New(executorNotConfiguredMessageConstant)
	ErrToolLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)
	ErrCatalogsNotConfigured    = errors.New(catalogsNotConfiguredMessageConstant)
	ErrCredentialsNotConfigured = errors.New(credentialsNotConfiguredMessageConst)
	ErrFileSystemNotConfigured  = errors.New(fileSystemNotConfiguredMessageConstant)
	ErrPrompterNotConfigured    = errors.New(prompterNotConfiguredMessageConstant)
	ErrReporterNotConfigured    = errors.New(reporterNotConfiguredMessageConstant)
	ErrClockNotConfigured       = errors.New(clockNotConfiguredMessageConstant)
)

// CommandExecutor runs the external command-line tools the tasks shell out to.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	ExecuteHomebrew(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteAWS(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitLabCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteDefaults(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CatalogLoader loads the declared workstation catalogs.
type CatalogLoader interface {
	LoadApplications() (catalog.ApplicationCatalog, error)
	LoadFolders() (catalog.FolderCatalog, error)
	LoadIntegrations() (catalog.IntegrationCatalog, error)
}

// CredentialClient provides access to the 1Password CLI.
type CredentialClient interface {
	IsInstalled() bool
	HasActiveSession(executionContext context.Context) bool
	HasAccounts(executionContext context.Context) bool
	SignIn(executionContext context.Context) error
	AddAccount(executionContext context.Context, signInAddress string) error
	GetItem(executionContext context.Context, itemIdentifier string) (onepassword.Item, error)
	ListItemsByCategory(executionContext context.Context, categoryName string) ([]onepassword.Item, error)
}

// Prompter gathers operator input during interactive runs.
type Prompter interface {
	PromptText(promptMessage string, defaultValue string) (string, error)
	Confirm(promptMessage string) (bool, error)
	WaitForEnter(promptMessage string) error
	IsInteractive() bool
}

// MessageReporter emits operator-facing progress messages.
type MessageReporter interface {
	Info(message string)
	Infof(format string, arguments ...any)
	Success(message string)
	Successf(format string, arguments ...any)
	Warning(message string)
	Warningf(format string, arguments ...any)
	Error(message string)
	Errorf(format string, arguments ...any)
	Plain(message string)
}

// FileSystem abstracts the file operations tasks perform.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte, permissions fs.FileMode) error
	Chmod(path string, permissions fs.FileMode) error
	UserHomeDir() (string, error)
}

// OSFileSystem implements FileSystem against the operating system.
type OSFileSystem struct{}

// NewOSFileSystem constructs an operating-system backed FileSystem.
func NewOSFileSystem() OSFileSystem {
	return OSFileSystem{}
}

// Stat reports file information for the path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// MkdirAll creates the directory and any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// ReadFile reads the file content.
func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// WriteFile writes the file content with the given permissions.
func (OSFileSystem) WriteFile(path string, content []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, content, permissions)
}

// Chmod updates the file permissions.
func (OSFileSystem) Chmod(path string, permissions fs.FileMode) error {
	return os.Chmod(path, permissions)
}

// UserHomeDir returns the current user's home directory.
func (OSFileSystem) UserHomeDir() (string, error) { return os.UserHomeDir() }

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock against the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Settings carries the configurable values tasks consume.
type Settings struct {
	DotfilesDirectory string
	ProjectsDirectory string
	CloneRetention    time.Duration
	DefaultAWSRegion  string
	RepositoryGroup   string
	DockItems         []string
}

// DefaultSettings returns the built-in settings values.
func DefaultSettings() Settings {
	return Settings{
		DefaultAWSRegion: defaultAWSRegionConstant,
		CloneRetention:   defaultCloneRetentionConstant,
	}
}

// Dependencies bundles the collaborators shared by all tasks.
type Dependencies struct {
	Executor    CommandExecutor
	ToolLocator execshell.ToolLocator
	Catalogs    CatalogLoader
	Credentials CredentialClient
	FileSystem  FileSystem
	Prompter    Prompter
	Reporter    MessageReporter
	Clock       Clock
	Settings    Settings
}

// Validate reports the first missing collaborator.
func (dependencies Dependencies) Validate() error {
	switch {
	case dependencies.Executor == nil:
		return ErrExecutorNotConfigured
	case dependencies.ToolLocator == nil:
		return ErrToolLocatorNotConfigured
	case dependencies.Catalogs == nil:
		return ErrCatalogsNotConfigured
	case dependencies.Credentials == nil:
		return ErrCredentialsNotConfigured
	case dependencies.FileSystem == nil:
		return ErrFileSystemNotConfigured
	case dependencies.Prompter == nil:
		return ErrPrompterNotConfigured
	case dependencies.Reporter == nil:
		return ErrReporterNotConfigured
	case dependencies.Clock == nil:
		return ErrClockNotConfigured
	}
	return nil
}

// ExpandHomePath replaces a leading "~" with the user's home directory.
func ExpandHomePath(fileSystem FileSystem, path string) (string, error) {
	if !strings.HasPrefix(path, homePathPrefixConstant) {
		return path, nil
	}
	homeDirectory, homeError := fileSystem.UserHomeDir()
	if homeError != nil {
		return "", homeError
	}
	if path == homePathPrefixConstant {
		return homeDirectory, nil
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, homePathPrefixConstant)), nil
}
