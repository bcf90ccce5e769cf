package setup

import (
	"context"

	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	onePasswordSignInTaskNameConstant      = "Sign in to 1Password"
	onePasswordMissingMessageConstant      = "the 1Password CLI (op) is not installed. Install it with: brew install --cask 1password-cli"
	onePasswordSignedInMessageConstant     = "1Password session is active"
	onePasswordSignInAddressPromptConstant = "Enter your 1Password sign-in address (default: https://my.1password.com): "
	onePasswordDefaultAddressConstant      = "https://my.1password.com"
	onePasswordManualMessageConstant       = "no active 1Password session. Sign in manually with: op signin"
	onePasswordUnverifiedMessageConstant   = "1Password account added but the session could not be verified. Run `op signin` and re-run the setup."
)

// OnePasswordSignInTask walks the CLI from unauthenticated to an active
// session, preferring the desktop-app integration and falling back to an
// interactive account registration.
type OnePasswordSignInTask struct {
	dependencies Dependencies
}

// NewOnePasswordSignInTask constructs the task after validating dependencies.
func NewOnePasswordSignInTask(dependencies Dependencies) (*OnePasswordSignInTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &OnePasswordSignInTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *OnePasswordSignInTask) Name() string {
	return onePasswordSignInTaskNameConstant
}

// Run short-circuits when a session is already active, otherwise attempts the
// app-integrated signin and finally the interactive account-add flow.
func (task *OnePasswordSignInTask) Run(executionContext context.Context) steprunner.Outcome {
	credentials := task.dependencies.Credentials
	if !credentials.IsInstalled() {
		return steprunner.FatalOutcome(onePasswordMissingMessageConstant)
	}

	if credentials.HasActiveSession(executionContext) {
		return steprunner.SuccessOutcome(onePasswordSignedInMessageConstant)
	}

	if credentials.HasAccounts(executionContext) || task.dependencies.Prompter.IsInteractive() {
		if signInError := credentials.SignIn(executionContext); signInError != nil {
			task.dependencies.Reporter.Warningf("op signin did not complete: %v", signInError)
		}
		if credentials.HasActiveSession(executionContext) {
			return steprunner.SuccessOutcome(onePasswordSignedInMessageConstant)
		}
	}

	if !task.dependencies.Prompter.IsInteractive() {
		return steprunner.WarningOutcome(onePasswordManualMessageConstant)
	}

	signInAddress, promptError := task.dependencies.Prompter.PromptText(onePasswordSignInAddressPromptConstant, onePasswordDefaultAddressConstant)
	if promptError != nil {
		return steprunner.WarningOutcome(onePasswordManualMessageConstant)
	}
	if addError := credentials.AddAccount(executionContext, signInAddress); addError != nil {
		return steprunner.FatalOutcomef("unable to add 1Password account: %v", addError)
	}

	if credentials.HasActiveSession(executionContext) {
		return steprunner.SuccessOutcome(onePasswordSignedInMessageConstant)
	}
	return steprunner.WarningOutcome(onePasswordUnverifiedMessageConstant)
}
