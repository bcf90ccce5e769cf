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
	descriptorMissingTemplateConstant     = "no %q entry in the application setup catalog, skipping"
	credentialSessionMessageConstant      = "no active 1Password session. Run the sign-in step first."
	requiredFieldMissingTemplateConstant  = "the 1Password item does not carry a %q field"
	credentialFetchFailureTemplateConst   = "unable to fetch the 1Password item: %v"
	descriptorWithoutItemTemplateConstant = "the %q entry does not reference a 1Password item"
	spotlightBundleQueryTemplateConstant  = "kMDItemCFBundleIdentifier == '%s'"
)

// resolveAutomatedDescriptor loads the integrations catalog and returns the
// named descriptor. The second return value carries the outcome to report when
// the descriptor is unusable.
func resolveAutomatedDescriptor(dependencies Dependencies, descriptorName string) (catalog.IntegrationDescriptor, *steprunner.Outcome) {
	integrationCatalog, catalogError := dependencies.Catalogs.LoadIntegrations()
	if catalogError != nil {
		outcome := steprunner.FatalOutcome(catalogError.Error())
		return catalog.IntegrationDescriptor{}, &outcome
	}

	descriptor, descriptorFound := integrationCatalog.FindByName(descriptorName)
	if !descriptorFound {
		outcome := steprunner.WarningOutcomef(descriptorMissingTemplateConstant, descriptorName)
		return catalog.IntegrationDescriptor{}, &outcome
	}
	if len(descriptor.OnePasswordItemIdentifier) == 0 {
		outcome := steprunner.WarningOutcomef(descriptorWithoutItemTemplateConstant, descriptorName)
		return catalog.IntegrationDescriptor{}, &outcome
	}
	return descriptor, nil
}

// requireCredentialSession checks the 1Password CLI is present with an active
// session. It returns the outcome to report when the guard fails.
func requireCredentialSession(executionContext context.Context, dependencies Dependencies) *steprunner.Outcome {
	if !dependencies.Credentials.IsInstalled() {
		outcome := steprunner.FatalOutcome(onePasswordMissingMessageConstant)
		return &outcome
	}
	if !dependencies.Credentials.HasActiveSession(executionContext) {
		outcome := steprunner.WarningOutcome(credentialSessionMessageConstant)
		return &outcome
	}
	return nil
}

// requiredFieldError formats the outcome for a credential item missing a field
// the task cannot proceed without.
func requiredFieldError(fieldName string) steprunner.Outcome {
	return steprunner.FatalOutcome(fmt.Sprintf(requiredFieldMissingTemplateConstant, fieldName))
}

// isApplicationPresent asks Spotlight whether an application with the given
// bundle identifier is installed.
func isApplicationPresent(executionContext context.Context, dependencies Dependencies, bundleIdentifier string) bool {
	executionResult, executionError := dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandSpotlight,
		Details: execshell.CommandDetails{
			Arguments: []string{fmt.Sprintf(spotlightBundleQueryTemplateConstant, bundleIdentifier)},
		},
	})
	if executionError != nil {
		return false
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0
}
