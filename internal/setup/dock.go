package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	dockTaskNameConstant               = "Arrange the Dock"
	dockutilMissingMessageConstant     = "dockutil is not installed. Install it with: brew install dockutil"
	dockItemsEmptyMessageConstant      = "no dock items configured"
	dockClearFailureTemplateConstant   = "unable to clear the Dock: %v"
	dockAddFailureTemplateConstant     = "unable to add %s to the Dock: %v"
	dockArrangedTemplateConstant       = "Dock arranged with %d item(s)"
	dockWarningsTemplateConstant       = "Dock arranged with %d failure(s)"
	dockutilRemoveFlagConstant         = "--remove"
	dockutilRemoveAllTargetConstant    = "all"
	dockutilAddFlagConstant            = "--add"
	dockutilNoRestartFlagConstant      = "--no-restart"
	dockutilViewFlagConstant           = "--view"
	dockutilViewFanValueConstant       = "fan"
	dockutilDisplayFlagConstant        = "--display"
	dockutilDisplayFolderValueConstant = "folder"
	dockProcessNameConstant            = "Dock"
	downloadsFolderNameConstant        = "Downloads"
)

// DockTask rebuilds the Dock from the configured application list and adds
// the Downloads folder tile.
type DockTask struct {
	dependencies Dependencies
}

// NewDockTask constructs the task after validating dependencies.
func NewDockTask(dependencies Dependencies) (*DockTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &DockTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *DockTask) Name() string {
	return dockTaskNameConstant
}

// Run clears the Dock, adds the configured items in order, appends the
// Downloads folder, and restarts the Dock once at the end.
func (task *DockTask) Run(executionContext context.Context) steprunner.Outcome {
	if !task.dependencies.ToolLocator.IsToolAvailable(execshell.CommandDockutil) {
		return steprunner.WarningOutcome(dockutilMissingMessageConstant)
	}
	if len(task.dependencies.Settings.DockItems) == 0 {
		return steprunner.WarningOutcome(dockItemsEmptyMessageConstant)
	}

	if _, clearError := task.runDockutil(executionContext, dockutilRemoveFlagConstant, dockutilRemoveAllTargetConstant, dockutilNoRestartFlagConstant); clearError != nil {
		return steprunner.FatalOutcomef(dockClearFailureTemplateConstant, clearError)
	}

	failureCount := 0
	for _, dockItem := range task.dependencies.Settings.DockItems {
		if _, addError := task.runDockutil(executionContext, dockutilAddFlagConstant, dockItem, dockutilNoRestartFlagConstant); addError != nil {
			task.dependencies.Reporter.Warningf(dockAddFailureTemplateConstant, dockItem, addError)
			failureCount++
		}
	}

	if homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir(); homeError == nil {
		downloadsPath := filepath.Join(homeDirectory, downloadsFolderNameConstant)
		_, addError := task.runDockutil(executionContext,
			dockutilAddFlagConstant, downloadsPath,
			dockutilViewFlagConstant, dockutilViewFanValueConstant,
			dockutilDisplayFlagConstant, dockutilDisplayFolderValueConstant,
			dockutilNoRestartFlagConstant,
		)
		if addError != nil {
			task.dependencies.Reporter.Warningf(dockAddFailureTemplateConstant, downloadsPath, addError)
			failureCount++
		}
	}

	_, _ = task.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name:    execshell.CommandKillall,
		Details: execshell.CommandDetails{Arguments: []string{dockProcessNameConstant}},
	})

	if failureCount > 0 {
		return steprunner.WarningOutcomef(dockWarningsTemplateConstant, failureCount)
	}
	return steprunner.SuccessOutcome(fmt.Sprintf(dockArrangedTemplateConstant, len(task.dependencies.Settings.DockItems)))
}

func (task *DockTask) runDockutil(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return task.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name:    execshell.CommandDockutil,
		Details: execshell.CommandDetails{Arguments: arguments},
	})
}
