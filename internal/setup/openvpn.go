package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	openVPNTaskNameConstant               = "Configure OpenVPN"
	openVPNDescriptorNameConstant         = "openvpn-connect"
	openVPNUsernameFieldConstant          = "username"
	openVPNPasswordFieldConstant          = "password"
	openVPNProfileFieldConstant           = "profile-download"
	openVPNProfileTimestampLayoutConstant = "20060102-150405"
	openVPNProfileNameTemplateConstant    = "openvpn-profile-%s.ovpn"
	openVPNDownloadsDirectoryConstant     = "Downloads"
	openVPNClientMissingTemplateConstant  = "%s is not installed (bundle %s not found); install it with Homebrew first"
	openVPNDownloadFailureTemplateConst   = "unable to download the OpenVPN profile: %v"
	openVPNEmptyProfileMessageConstant    = "the downloaded OpenVPN profile is empty"
	openVPNImportPromptTemplateConstant   = "Press Enter after importing the profile into %s... "
	openVPNManualImportTemplateConstant   = "profile saved to %s; import it into the OpenVPN client manually"
	openVPNConfiguredTemplateConstant     = "OpenVPN profile downloaded to %s"
	curlSilentFailFlagConstant            = "-fsSL"
	curlBasicAuthFlagConstant             = "-u"
	curlOutputFlagConstant                = "-o"
)

// OpenVPNTask downloads the operator's VPN profile using credentials held in
// 1Password and hands it to the OpenVPN client.
type OpenVPNTask struct {
	dependencies Dependencies
}

// NewOpenVPNTask constructs the task after validating dependencies.
func NewOpenVPNTask(dependencies Dependencies) (*OpenVPNTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &OpenVPNTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *OpenVPNTask) Name() string {
	return openVPNTaskNameConstant
}

// Run verifies the client is installed, fetches the credential item, downloads
// the profile with basic auth, and opens the client for the manual import. No
// mutation happens before every required field is present.
func (task *OpenVPNTask) Run(executionContext context.Context) steprunner.Outcome {
	descriptor, descriptorOutcome := resolveAutomatedDescriptor(task.dependencies, openVPNDescriptorNameConstant)
	if descriptorOutcome != nil {
		return *descriptorOutcome
	}
	if len(descriptor.BundleIdentifier) > 0 && !isApplicationPresent(executionContext, task.dependencies, descriptor.BundleIdentifier) {
		return steprunner.WarningOutcomef(openVPNClientMissingTemplateConstant, descriptor.DisplayName, descriptor.BundleIdentifier)
	}
	if guardOutcome := requireCredentialSession(executionContext, task.dependencies); guardOutcome != nil {
		return *guardOutcome
	}

	credentialItem, fetchError := task.dependencies.Credentials.GetItem(executionContext, descriptor.OnePasswordItemIdentifier)
	if fetchError != nil {
		return steprunner.FatalOutcomef(credentialFetchFailureTemplateConst, fetchError)
	}

	vpnUsername, usernameFound := credentialItem.FieldValue(openVPNUsernameFieldConstant)
	if !usernameFound {
		return requiredFieldError(openVPNUsernameFieldConstant)
	}
	vpnPassword, passwordFound := credentialItem.FieldValue(openVPNPasswordFieldConstant)
	if !passwordFound {
		return requiredFieldError(openVPNPasswordFieldConstant)
	}
	profileURL, profileFound := credentialItem.FieldValue(openVPNProfileFieldConstant)
	if !profileFound {
		return requiredFieldError(openVPNProfileFieldConstant)
	}

	homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir()
	if homeError != nil {
		return steprunner.FatalOutcome(homeError.Error())
	}
	profileTimestamp := task.dependencies.Clock.Now().Format(openVPNProfileTimestampLayoutConstant)
	profilePath := filepath.Join(homeDirectory, openVPNDownloadsDirectoryConstant, fmt.Sprintf(openVPNProfileNameTemplateConstant, profileTimestamp))

	_, downloadError := task.dependencies.Executor.ExecuteCurl(executionContext, execshell.CommandDetails{
		Arguments: []string{
			curlSilentFailFlagConstant,
			curlBasicAuthFlagConstant, vpnUsername + ":" + vpnPassword,
			curlOutputFlagConstant, profilePath,
			profileURL,
		},
	})
	if downloadError != nil {
		return steprunner.FatalOutcomef(openVPNDownloadFailureTemplateConst, downloadError)
	}

	profileInfo, statError := task.dependencies.FileSystem.Stat(profilePath)
	if statError != nil || profileInfo.Size() == 0 {
		return steprunner.FatalOutcome(openVPNEmptyProfileMessageConstant)
	}

	if task.dependencies.Prompter.IsInteractive() {
		_, openError := task.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
			Name:    execshell.CommandOpen,
			Details: execshell.CommandDetails{Arguments: []string{openApplicationFlagConstant, descriptor.DisplayName}},
		})
		if openError != nil {
			task.dependencies.Reporter.Warningf(interactiveOpenFailureTemplateConstant, descriptor.DisplayName, openError)
		} else if waitError := task.dependencies.Prompter.WaitForEnter(fmt.Sprintf(openVPNImportPromptTemplateConstant, descriptor.DisplayName)); waitError != nil {
			task.dependencies.Reporter.Warningf(openVPNManualImportTemplateConstant, profilePath)
		}
	} else {
		task.dependencies.Reporter.Warningf(openVPNManualImportTemplateConstant, profilePath)
	}

	return steprunner.SuccessOutcome(fmt.Sprintf(openVPNConfiguredTemplateConstant, profilePath))
}
