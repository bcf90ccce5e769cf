package setup

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	gitConfigurationTaskNameConstant     = "Configure git"
	gitConfigSubcommandConstant          = "config"
	gitConfigGlobalFlagConstant          = "--global"
	gitUserNameKeyConstant               = "user.name"
	gitUserEmailKeyConstant              = "user.email"
	gitUserNamePromptConstant            = "Enter your git user.name: "
	gitUserEmailPromptConstant           = "Enter your git user.email: "
	gitIdentitySkippedTemplateConstant   = "git %s is not set; configure it manually with: git config --global %s <value>"
	gitIdentitySetTemplateConstant       = "git %s set"
	gitIdentityPresentTemplateConstant   = "git %s already configured"
	gitConfigureFailureTemplateConstant  = "unable to set git %s: %v"
	gitDotfileInstalledTemplateConstant  = "installed %s"
	gitDotfileAppendedTemplateConstant   = "appended %s to %s"
	gitDotfilePresentTemplateConstant    = "%s already present, leaving as-is"
	gitDotfileMissingTemplateConstant    = "dotfile source %s is missing: %v"
	gitConfigurationDoneMessageConstant  = "git configuration converged"
	gitConfigurationWarnTemplateConstant = "git configuration finished with %d warning(s)"
	gitConfigFileNameConstant            = ".gitconfig"
	gitGlobalIgnoreFileNameConstant      = ".global-gitignore"
	dotfileDelimiterCommentConstant      = "# Added by workstation-setup"
	dotfilePermissionsConstant           = fs.FileMode(0o644)
	emptyPromptResponseLimitConstant     = 3
)

var errIdentityNotProvided = errors.New("identity value not provided")

// GitConfigurationTask ensures the global git identity is set and installs the
// shipped dotfiles.
type GitConfigurationTask struct {
	dependencies Dependencies
}

// NewGitConfigurationTask constructs the task after validating dependencies.
func NewGitConfigurationTask(dependencies Dependencies) (*GitConfigurationTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &GitConfigurationTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *GitConfigurationTask) Name() string {
	return gitConfigurationTaskNameConstant
}

// Run converges the git identity and dotfiles. Appending to an existing
// ~/.gitconfig is not idempotent; repeated runs add the block again.
func (task *GitConfigurationTask) Run(executionContext context.Context) steprunner.Outcome {
	warningCount := 0

	warningCount += task.ensureIdentity(executionContext, gitUserNameKeyConstant, gitUserNamePromptConstant)
	warningCount += task.ensureIdentity(executionContext, gitUserEmailKeyConstant, gitUserEmailPromptConstant)

	homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir()
	if homeError != nil {
		return steprunner.FatalOutcome(homeError.Error())
	}

	gitconfigOutcome := task.installGitconfig(homeDirectory)
	if gitconfigOutcome.Status == steprunner.OutcomeStatusFatal {
		return gitconfigOutcome
	}
	if gitconfigOutcome.Status == steprunner.OutcomeStatusWarning {
		warningCount++
	}

	gitignoreOutcome := task.installGlobalGitignore(homeDirectory)
	if gitignoreOutcome.Status == steprunner.OutcomeStatusFatal {
		return gitignoreOutcome
	}
	if gitignoreOutcome.Status == steprunner.OutcomeStatusWarning {
		warningCount++
	}

	if warningCount > 0 {
		return steprunner.WarningOutcomef(gitConfigurationWarnTemplateConstant, warningCount)
	}
	return steprunner.SuccessOutcome(gitConfigurationDoneMessageConstant)
}

func (task *GitConfigurationTask) ensureIdentity(executionContext context.Context, configurationKey string, promptMessage string) int {
	currentValue := task.readGlobalValue(executionContext, configurationKey)
	if len(currentValue) > 0 {
		task.dependencies.Reporter.Infof(gitIdentityPresentTemplateConstant, configurationKey)
		return 0
	}

	if !task.dependencies.Prompter.IsInteractive() {
		task.dependencies.Reporter.Warningf(gitIdentitySkippedTemplateConstant, configurationKey, configurationKey)
		return 1
	}

	providedValue, promptError := task.promptForValue(promptMessage)
	if promptError != nil {
		task.dependencies.Reporter.Warningf(gitIdentitySkippedTemplateConstant, configurationKey, configurationKey)
		return 1
	}

	_, configureError := task.dependencies.Executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitConfigSubcommandConstant, gitConfigGlobalFlagConstant, configurationKey, providedValue},
	})
	if configureError != nil {
		task.dependencies.Reporter.Warningf(gitConfigureFailureTemplateConstant, configurationKey, configureError)
		return 1
	}

	task.dependencies.Reporter.Successf(gitIdentitySetTemplateConstant, configurationKey)
	return 0
}

func (task *GitConfigurationTask) readGlobalValue(executionContext context.Context, configurationKey string) string {
	executionResult, executionError := task.dependencies.Executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitConfigSubcommandConstant, gitConfigGlobalFlagConstant, configurationKey},
	})
	if executionError != nil {
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}

func (task *GitConfigurationTask) promptForValue(promptMessage string) (string, error) {
	for attempt := 0; attempt < emptyPromptResponseLimitConstant; attempt++ {
		providedValue, promptError := task.dependencies.Prompter.PromptText(promptMessage, "")
		if promptError != nil {
			return "", promptError
		}
		if len(providedValue) > 0 {
			return providedValue, nil
		}
	}
	return "", errIdentityNotProvided
}

func (task *GitConfigurationTask) installGitconfig(homeDirectory string) steprunner.Outcome {
	sourcePath := filepath.Join(task.dependencies.Settings.DotfilesDirectory, gitConfigFileNameConstant)
	sourceContent, readError := task.dependencies.FileSystem.ReadFile(sourcePath)
	if readError != nil {
		return steprunner.FatalOutcomef(gitDotfileMissingTemplateConstant, sourcePath, readError)
	}

	targetPath := filepath.Join(homeDirectory, gitConfigFileNameConstant)
	existingContent, statError := task.dependencies.FileSystem.ReadFile(targetPath)
	if statError != nil {
		if writeError := task.dependencies.FileSystem.WriteFile(targetPath, sourceContent, dotfilePermissionsConstant); writeError != nil {
			return steprunner.FatalOutcome(writeError.Error())
		}
		task.dependencies.Reporter.Successf(gitDotfileInstalledTemplateConstant, targetPath)
		return steprunner.SuccessOutcome("")
	}

	mergedContent := append([]byte{}, existingContent...)
	mergedContent = append(mergedContent, []byte("\n"+dotfileDelimiterCommentConstant+"\n")...)
	mergedContent = append(mergedContent, sourceContent...)
	if writeError := task.dependencies.FileSystem.WriteFile(targetPath, mergedContent, dotfilePermissionsConstant); writeError != nil {
		return steprunner.FatalOutcome(writeError.Error())
	}
	task.dependencies.Reporter.Successf(gitDotfileAppendedTemplateConstant, gitConfigFileNameConstant, targetPath)
	return steprunner.SuccessOutcome("")
}

func (task *GitConfigurationTask) installGlobalGitignore(homeDirectory string) steprunner.Outcome {
	sourcePath := filepath.Join(task.dependencies.Settings.DotfilesDirectory, gitGlobalIgnoreFileNameConstant)
	sourceContent, readError := task.dependencies.FileSystem.ReadFile(sourcePath)
	if readError != nil {
		return steprunner.FatalOutcomef(gitDotfileMissingTemplateConstant, sourcePath, readError)
	}

	targetPath := filepath.Join(homeDirectory, gitGlobalIgnoreFileNameConstant)
	if _, statError := task.dependencies.FileSystem.Stat(targetPath); statError == nil {
		task.dependencies.Reporter.Infof(gitDotfilePresentTemplateConstant, targetPath)
		return steprunner.SuccessOutcome("")
	}

	if writeError := task.dependencies.FileSystem.WriteFile(targetPath, sourceContent, dotfilePermissionsConstant); writeError != nil {
		return steprunner.FatalOutcome(writeError.Error())
	}
	task.dependencies.Reporter.Successf(gitDotfileInstalledTemplateConstant, targetPath)
	return steprunner.SuccessOutcome("")
}
