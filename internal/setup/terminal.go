package setup

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	terminalTaskNameConstant              = "Configure the terminal"
	ohMyZshRelativePathConstant           = ".oh-my-zsh"
	ohMyZshInstallCommandConstant         = `sh -c "$(curl -fsSL https://raw.githubusercontent.com/ohmyzsh/ohmyzsh/master/tools/install.sh)"`
	ohMyZshInstallFailureTemplateConstant = "Oh My Zsh installation failed: %v"
	ohMyZshPresentMessageConstant         = "Oh My Zsh already installed"
	powerlevelThemeRelativePathConstant   = ".oh-my-zsh/custom/themes/powerlevel10k"
	powerlevelRepositoryURLConstant       = "https://github.com/romkatv/powerlevel10k.git"
	powerlevelCloneFailureTemplateConst   = "unable to clone powerlevel10k: %v"
	powerlevelPresentMessageConstant      = "powerlevel10k already present"
	zshrcFileNameConstant                 = ".zshrc"
	zshrcThemeAssignmentConstant          = `ZSH_THEME="powerlevel10k/powerlevel10k"`
	zshrcMissingTemplateConstant          = "unable to read %s: %v"
	zshrcUpdatedTemplateConstant          = "set the zsh theme in %s"
	itermColorsURLConstant                = "https://raw.githubusercontent.com/sindresorhus/iterm2-snazzy/main/Snazzy.itermcolors"
	itermColorsFileNameConstant           = "Snazzy.itermcolors"
	itermColorsFailureTemplateConstant    = "unable to download the iTerm2 color scheme: %v"
	itermColorsSavedTemplateConstant      = "iTerm2 color scheme saved to %s"
	terminalFinalizePromptConstant        = "Open a new terminal and run `p10k configure` to finish. Press Enter to continue... "
	terminalConfiguredMessageConstant     = "terminal configuration converged"
	terminalWarningsTemplateConstant      = "terminal configuration finished with %d warning(s)"
	zshrcPermissionsConstant              = dotfilePermissionsConstant
	shellCommandFlagConstant              = "-c"
	runZshEnvironmentVariableConstant     = "RUNZSH"
	changeShellEnvironmentVariableConst   = "CHSH"
	environmentDisabledValueConstant      = "no"
)

var zshrcThemeAssignmentPattern = regexp.MustCompile(`(?m)^ZSH_THEME=".*"$`)

// TerminalTask installs Oh My Zsh with the powerlevel10k theme and fetches
// the team's iTerm2 color scheme.
type TerminalTask struct {
	dependencies Dependencies
}

// NewTerminalTask constructs the task after validating dependencies.
func NewTerminalTask(dependencies Dependencies) (*TerminalTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &TerminalTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *TerminalTask) Name() string {
	return terminalTaskNameConstant
}

// Run installs the shell tooling that is missing and rewrites the ZSH_THEME
// assignment in ~/.zshrc.
func (task *TerminalTask) Run(executionContext context.Context) steprunner.Outcome {
	homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir()
	if homeError != nil {
		return steprunner.FatalOutcome(homeError.Error())
	}

	warningCount := 0

	ohMyZshPath := filepath.Join(homeDirectory, ohMyZshRelativePathConstant)
	if _, statError := task.dependencies.FileSystem.Stat(ohMyZshPath); statError != nil {
		_, installError := task.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
			Name: execshell.CommandShell,
			Details: execshell.CommandDetails{
				Arguments: []string{shellCommandFlagConstant, ohMyZshInstallCommandConstant},
				EnvironmentVariables: map[string]string{
					runZshEnvironmentVariableConstant:   environmentDisabledValueConstant,
					changeShellEnvironmentVariableConst: environmentDisabledValueConstant,
				},
			},
		})
		if installError != nil {
			return steprunner.FatalOutcomef(ohMyZshInstallFailureTemplateConstant, installError)
		}
	} else {
		task.dependencies.Reporter.Info(ohMyZshPresentMessageConstant)
	}

	themePath := filepath.Join(homeDirectory, powerlevelThemeRelativePathConstant)
	if _, statError := task.dependencies.FileSystem.Stat(themePath); statError != nil {
		_, cloneError := task.dependencies.Executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments: []string{"clone", "--depth=1", powerlevelRepositoryURLConstant, themePath},
		})
		if cloneError != nil {
			return steprunner.FatalOutcomef(powerlevelCloneFailureTemplateConst, cloneError)
		}
	} else {
		task.dependencies.Reporter.Info(powerlevelPresentMessageConstant)
	}

	zshrcPath := filepath.Join(homeDirectory, zshrcFileNameConstant)
	if themeError := task.setZshTheme(zshrcPath); themeError != nil {
		task.dependencies.Reporter.Warningf(zshrcMissingTemplateConstant, zshrcPath, themeError)
		warningCount++
	} else {
		task.dependencies.Reporter.Successf(zshrcUpdatedTemplateConstant, zshrcPath)
	}

	colorsPath := filepath.Join(homeDirectory, downloadsFolderNameConstant, itermColorsFileNameConstant)
	_, downloadError := task.dependencies.Executor.ExecuteCurl(executionContext, execshell.CommandDetails{
		Arguments: []string{curlSilentFailFlagConstant, curlOutputFlagConstant, colorsPath, itermColorsURLConstant},
	})
	if downloadError != nil {
		task.dependencies.Reporter.Warningf(itermColorsFailureTemplateConstant, downloadError)
		warningCount++
	} else {
		task.dependencies.Reporter.Successf(itermColorsSavedTemplateConstant, colorsPath)
	}

	if task.dependencies.Prompter.IsInteractive() {
		_ = task.dependencies.Prompter.WaitForEnter(terminalFinalizePromptConstant)
	}

	if warningCount > 0 {
		return steprunner.WarningOutcomef(terminalWarningsTemplateConstant, warningCount)
	}
	return steprunner.SuccessOutcome(terminalConfiguredMessageConstant)
}

func (task *TerminalTask) setZshTheme(zshrcPath string) error {
	existingContent, readError := task.dependencies.FileSystem.ReadFile(zshrcPath)
	if readError != nil {
		return readError
	}

	updatedContent := ""
	if zshrcThemeAssignmentPattern.Match(existingContent) {
		updatedContent = zshrcThemeAssignmentPattern.ReplaceAllString(string(existingContent), zshrcThemeAssignmentConstant)
	} else {
		updatedContent = string(existingContent) + "\n" + zshrcThemeAssignmentConstant + "\n"
	}
	return task.dependencies.FileSystem.WriteFile(zshrcPath, []byte(updatedContent), zshrcPermissionsConstant)
}
