package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/tyemirov/workstation/internal/catalog"
	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	interactiveApplicationsTaskNameConstant  = "Configure interactive applications"
	interactiveNonInteractiveMessageConstant = "interactive application setup skipped: no terminal attached. Re-run the setup from a terminal to configure these applications."
	interactiveNoneConfiguredMessageConstant = "no interactive applications declared"
	interactiveSummaryTemplateConstant       = "%d application(s) configured, %d skipped"
	interactiveNotFoundTemplateConstant      = "%s does not appear to be installed (bundle %s not found), skipping"
	interactiveSkipPromptTemplateConstant    = "Press Enter to open %s, or type 's' to skip: "
	interactiveFinishPromptTemplateConstant  = "Press Enter when you are done configuring %s... "
	interactiveOpenFailureTemplateConstant   = "unable to open %s: %v"
	interactiveSkipSentinelConstant          = "s"
	openApplicationFlagConstant              = "-a"
)

// InteractiveApplicationsTask walks the operator through applications that
// need manual sign-in or configuration.
type InteractiveApplicationsTask struct {
	dependencies Dependencies
}

// NewInteractiveApplicationsTask constructs the task after validating dependencies.
func NewInteractiveApplicationsTask(dependencies Dependencies) (*InteractiveApplicationsTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &InteractiveApplicationsTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *InteractiveApplicationsTask) Name() string {
	return interactiveApplicationsTaskNameConstant
}

// Run opens each interactive application in turn and blocks until the
// operator confirms. Automated descriptors are never processed here.
func (task *InteractiveApplicationsTask) Run(executionContext context.Context) steprunner.Outcome {
	if !task.dependencies.Prompter.IsInteractive() {
		return steprunner.WarningOutcome(interactiveNonInteractiveMessageConstant)
	}

	integrationCatalog, catalogError := task.dependencies.Catalogs.LoadIntegrations()
	if catalogError != nil {
		return steprunner.FatalOutcome(catalogError.Error())
	}

	configuredCount := 0
	skippedCount := 0
	sawInteractive := false
	for _, descriptor := range integrationCatalog.InteractiveApplications {
		if descriptor.IsAutomated() {
			continue
		}
		sawInteractive = true

		if task.configureApplication(executionContext, descriptor) {
			configuredCount++
		} else {
			skippedCount++
		}
	}

	if !sawInteractive {
		return steprunner.WarningOutcome(interactiveNoneConfiguredMessageConstant)
	}
	return steprunner.SuccessOutcome(fmt.Sprintf(interactiveSummaryTemplateConstant, configuredCount, skippedCount))
}

func (task *InteractiveApplicationsTask) configureApplication(executionContext context.Context, descriptor catalog.IntegrationDescriptor) bool {
	if len(descriptor.BundleIdentifier) > 0 && !isApplicationPresent(executionContext, task.dependencies, descriptor.BundleIdentifier) {
		task.dependencies.Reporter.Warningf(interactiveNotFoundTemplateConstant, descriptor.DisplayName, descriptor.BundleIdentifier)
		return false
	}

	task.dependencies.Reporter.Infof("Configuring %s", descriptor.DisplayName)
	for _, instructionLine := range descriptor.Instructions {
		task.dependencies.Reporter.Plain("  " + instructionLine)
	}

	response, promptError := task.dependencies.Prompter.PromptText(fmt.Sprintf(interactiveSkipPromptTemplateConstant, descriptor.DisplayName), "")
	if promptError != nil || strings.EqualFold(response, interactiveSkipSentinelConstant) {
		task.dependencies.Reporter.Infof("skipping %s", descriptor.DisplayName)
		return false
	}

	_, openError := task.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name:    execshell.CommandOpen,
		Details: execshell.CommandDetails{Arguments: []string{openApplicationFlagConstant, descriptor.DisplayName}},
	})
	if openError != nil {
		task.dependencies.Reporter.Warningf(interactiveOpenFailureTemplateConstant, descriptor.DisplayName, openError)
		return false
	}

	if waitError := task.dependencies.Prompter.WaitForEnter(fmt.Sprintf(interactiveFinishPromptTemplateConstant, descriptor.DisplayName)); waitError != nil {
		return false
	}
	return true
}
