package setup

import (
	"context"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	homebrewTaskNameConstant                 = "Install Homebrew applications"
	brewListSubcommandConstant               = "list"
	brewInstallSubcommandConstant            = "install"
	brewCaskFlagConstant                     = "--cask"
	brewFormulaFlagConstant                  = "--formula"
	homebrewMissingMessageConstant           = "Homebrew is not installed. Install it from https://brew.sh and re-run the setup."
	homebrewCatalogEmptyMessageConstant      = "no applications declared in the catalog"
	homebrewInstallFailureTemplateConstant   = "%d application(s) failed to install"
	homebrewAllInstalledMessageConstant      = "all declared applications are installed"
	homebrewAlreadyInstalledTemplateConstant = "%s already installed"
	homebrewInstallingTemplateConstant       = "installing %s"
	homebrewInstallFailedTemplateConstant    = "unable to install %s: %v"
)

// HomebrewApplicationsTask converges the declared casks and formulae through
// the brew CLI.
type HomebrewApplicationsTask struct {
	dependencies Dependencies
}

// NewHomebrewApplicationsTask constructs the task after validating dependencies.
func NewHomebrewApplicationsTask(dependencies Dependencies) (*HomebrewApplicationsTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &HomebrewApplicationsTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *HomebrewApplicationsTask) Name() string {
	return homebrewTaskNameConstant
}

// Run installs every declared application that is not already present. A
// failing entry is reported and skipped; the remaining entries still run.
func (task *HomebrewApplicationsTask) Run(executionContext context.Context) steprunner.Outcome {
	if !task.dependencies.ToolLocator.IsToolAvailable(execshell.CommandHomebrew) {
		return steprunner.FatalOutcome(homebrewMissingMessageConstant)
	}

	applicationCatalog, catalogError := task.dependencies.Catalogs.LoadApplications()
	if catalogError != nil {
		return steprunner.FatalOutcome(catalogError.Error())
	}
	if len(applicationCatalog.Casks) == 0 && len(applicationCatalog.Formulae) == 0 {
		return steprunner.WarningOutcome(homebrewCatalogEmptyMessageConstant)
	}

	failureCount := 0
	failureCount += task.ensureApplications(executionContext, applicationCatalog.Casks, brewCaskFlagConstant)
	failureCount += task.ensureApplications(executionContext, applicationCatalog.Formulae, brewFormulaFlagConstant)

	if failureCount > 0 {
		return steprunner.WarningOutcomef(homebrewInstallFailureTemplateConstant, failureCount)
	}
	return steprunner.SuccessOutcome(homebrewAllInstalledMessageConstant)
}

func (task *HomebrewApplicationsTask) ensureApplications(executionContext context.Context, applicationNames []string, typeFlag string) int {
	failureCount := 0
	for _, applicationName := range applicationNames {
		if task.isApplicationInstalled(executionContext, applicationName, typeFlag) {
			task.dependencies.Reporter.Infof(homebrewAlreadyInstalledTemplateConstant, applicationName)
			continue
		}

		task.dependencies.Reporter.Infof(homebrewInstallingTemplateConstant, applicationName)
		_, installError := task.dependencies.Executor.ExecuteHomebrew(executionContext, execshell.CommandDetails{
			Arguments: []string{brewInstallSubcommandConstant, typeFlag, applicationName},
		})
		if installError != nil {
			task.dependencies.Reporter.Warningf(homebrewInstallFailedTemplateConstant, applicationName, installError)
			failureCount++
			continue
		}
		task.dependencies.Reporter.Successf("%s installed", applicationName)
	}
	return failureCount
}

func (task *HomebrewApplicationsTask) isApplicationInstalled(executionContext context.Context, applicationName string, typeFlag string) bool {
	_, listError := task.dependencies.Executor.ExecuteHomebrew(executionContext, execshell.CommandDetails{
		Arguments: []string{brewListSubcommandConstant, typeFlag, applicationName},
	})
	return listError == nil
}
