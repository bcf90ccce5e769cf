package setup

import (
	"context"

	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	environmentsTaskNameConstant            = "Set up development environments"
	environmentsNonInteractiveMessageConst  = "development environment setup skipped: no terminal attached"
	environmentsCompletedMessageConstant    = "development environment checklist acknowledged"
	environmentsChecklistHeaderConstant     = "Set up the language toolchains you need:"
	environmentsWaitPromptConstant          = "Press Enter when you are done... "
	environmentsInterruptedMessageConstant  = "development environment checklist was not acknowledged"
	environmentsChecklistIndentationConst   = "  - "
	environmentsChecklistNodeEntryConstant  = "Node.js: install nvm, then `nvm install --lts`"
	environmentsChecklistGoEntryConstant    = "Go: `brew install go`"
	environmentsChecklistPyenvEntryConstant = "Python: install pyenv, then `pyenv install` the versions you need"
	environmentsChecklistJavaEntryConstant  = "Java: `brew install --cask temurin`"
)

// DevelopmentEnvironmentsTask walks the operator through the manual toolchain
// checklist. Nothing here can be scripted reliably across teams, so the task
// only presents instructions.
type DevelopmentEnvironmentsTask struct {
	dependencies Dependencies
}

// NewDevelopmentEnvironmentsTask constructs the task after validating dependencies.
func NewDevelopmentEnvironmentsTask(dependencies Dependencies) (*DevelopmentEnvironmentsTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &DevelopmentEnvironmentsTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *DevelopmentEnvironmentsTask) Name() string {
	return environmentsTaskNameConstant
}

// Run prints the checklist and blocks until the operator acknowledges it.
func (task *DevelopmentEnvironmentsTask) Run(executionContext context.Context) steprunner.Outcome {
	if !task.dependencies.Prompter.IsInteractive() {
		return steprunner.WarningOutcome(environmentsNonInteractiveMessageConst)
	}

	task.dependencies.Reporter.Info(environmentsChecklistHeaderConstant)
	for _, checklistEntry := range []string{
		environmentsChecklistNodeEntryConstant,
		environmentsChecklistGoEntryConstant,
		environmentsChecklistPyenvEntryConstant,
		environmentsChecklistJavaEntryConstant,
	} {
		task.dependencies.Reporter.Plain(environmentsChecklistIndentationConst + checklistEntry)
	}

	if waitError := task.dependencies.Prompter.WaitForEnter(environmentsWaitPromptConstant); waitError != nil {
		return steprunner.WarningOutcome(environmentsInterruptedMessageConstant)
	}
	return steprunner.SuccessOutcome(environmentsCompletedMessageConstant)
}
