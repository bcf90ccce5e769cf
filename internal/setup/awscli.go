package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	awsTaskNameConstant                 = "Configure the AWS CLI"
	awsDescriptorNameConstant           = "awscli"
	awsAccessKeyFieldConstant           = "access key"
	awsAccessSecretFieldConstant        = "access secret"
	awsEKSClusterFieldConstant          = "eks"
	awsMissingMessageConstant           = "the AWS CLI is not installed. Install it with: brew install awscli"
	awsCredentialsRelativePathConstant  = ".aws/credentials"
	awsReconfigurePromptConstant        = "AWS credentials already exist. Reconfigure? [y/N]: "
	awsLeftUnchangedMessageConstant     = "existing AWS configuration left unchanged"
	awsRegionPromptTemplateConstant     = "Enter AWS region (default: %s): "
	awsConfigureSubcommandConstant      = "configure"
	awsConfigureSetSubcommandConstant   = "set"
	awsAccessKeyIdentifierConstant      = "aws_access_key_id"
	awsSecretAccessKeyConstant          = "aws_secret_access_key"
	awsRegionKeyConstant                = "region"
	awsOutputKeyConstant                = "output"
	awsOutputFormatConstant             = "json"
	awsConfigureFailureTemplateConstant = "aws configure set %s failed: %v"
	awsVerifyFailureTemplateConstant    = "aws sts get-caller-identity failed: %v"
	awsConfiguredMessageConstant        = "AWS CLI configured and verified"
	awsKubeconfigUpdatedMessageConstant = "AWS CLI configured; EKS kubeconfig updated"
	awsKubeconfigFailureTemplateConst   = "unable to update the EKS kubeconfig: %v"
	kubectlCommandNameConstant          = execshell.CommandName("kubectl")
)

// AWSTask configures the AWS CLI from credentials held in 1Password and
// verifies the resulting identity.
type AWSTask struct {
	dependencies Dependencies
}

// NewAWSTask constructs the task after validating dependencies.
func NewAWSTask(dependencies Dependencies) (*AWSTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &AWSTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *AWSTask) Name() string {
	return awsTaskNameConstant
}

// Run fetches the credential item and applies it through `aws configure set`.
// Any failing sub-command ends the task; partially applied values are left in
// place for the operator to inspect.
func (task *AWSTask) Run(executionContext context.Context) steprunner.Outcome {
	if !task.dependencies.ToolLocator.IsToolAvailable(execshell.CommandAWS) {
		return steprunner.FatalOutcome(awsMissingMessageConstant)
	}

	descriptor, descriptorOutcome := resolveAutomatedDescriptor(task.dependencies, awsDescriptorNameConstant)
	if descriptorOutcome != nil {
		return *descriptorOutcome
	}
	if guardOutcome := requireCredentialSession(executionContext, task.dependencies); guardOutcome != nil {
		return *guardOutcome
	}

	if task.hasExistingCredentials() && task.dependencies.Prompter.IsInteractive() {
		confirmed, confirmError := task.dependencies.Prompter.Confirm(awsReconfigurePromptConstant)
		if confirmError != nil || !confirmed {
			return steprunner.SuccessOutcome(awsLeftUnchangedMessageConstant)
		}
	}

	credentialItem, fetchError := task.dependencies.Credentials.GetItem(executionContext, descriptor.OnePasswordItemIdentifier)
	if fetchError != nil {
		return steprunner.FatalOutcomef(credentialFetchFailureTemplateConst, fetchError)
	}

	accessKey, accessKeyFound := credentialItem.FieldValue(awsAccessKeyFieldConstant)
	if !accessKeyFound {
		return requiredFieldError(awsAccessKeyFieldConstant)
	}
	accessSecret, accessSecretFound := credentialItem.FieldValue(awsAccessSecretFieldConstant)
	if !accessSecretFound {
		return requiredFieldError(awsAccessSecretFieldConstant)
	}

	selectedRegion := task.dependencies.Settings.DefaultAWSRegion
	if task.dependencies.Prompter.IsInteractive() {
		promptedRegion, promptError := task.dependencies.Prompter.PromptText(fmt.Sprintf(awsRegionPromptTemplateConstant, selectedRegion), selectedRegion)
		if promptError == nil {
			selectedRegion = promptedRegion
		}
	}

	configurationValues := []struct {
		key   string
		value string
	}{
		{key: awsAccessKeyIdentifierConstant, value: accessKey},
		{key: awsSecretAccessKeyConstant, value: accessSecret},
		{key: awsRegionKeyConstant, value: selectedRegion},
		{key: awsOutputKeyConstant, value: awsOutputFormatConstant},
	}
	for _, configurationValue := range configurationValues {
		_, configureError := task.dependencies.Executor.ExecuteAWS(executionContext, execshell.CommandDetails{
			Arguments: []string{awsConfigureSubcommandConstant, awsConfigureSetSubcommandConstant, configurationValue.key, configurationValue.value},
		})
		if configureError != nil {
			return steprunner.FatalOutcomef(awsConfigureFailureTemplateConstant, configurationValue.key, configureError)
		}
	}

	_, verifyError := task.dependencies.Executor.ExecuteAWS(executionContext, execshell.CommandDetails{
		Arguments: []string{"sts", "get-caller-identity"},
	})
	if verifyError != nil {
		return steprunner.FatalOutcomef(awsVerifyFailureTemplateConstant, verifyError)
	}

	eksCluster, eksClusterFound := credentialItem.FieldValue(awsEKSClusterFieldConstant)
	if eksClusterFound && len(eksCluster) > 0 && task.dependencies.ToolLocator.IsToolAvailable(kubectlCommandNameConstant) {
		_, kubeconfigError := task.dependencies.Executor.ExecuteAWS(executionContext, execshell.CommandDetails{
			Arguments: []string{"eks", "update-kubeconfig", "--name", eksCluster, "--region", selectedRegion},
		})
		if kubeconfigError != nil {
			task.dependencies.Reporter.Warningf(awsKubeconfigFailureTemplateConst, kubeconfigError)
			return steprunner.WarningOutcomef(awsKubeconfigFailureTemplateConst, kubeconfigError)
		}
		return steprunner.SuccessOutcome(awsKubeconfigUpdatedMessageConstant)
	}

	return steprunner.SuccessOutcome(awsConfiguredMessageConstant)
}

func (task *AWSTask) hasExistingCredentials() bool {
	homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir()
	if homeError != nil {
		return false
	}
	credentialsInfo, statError := task.dependencies.FileSystem.Stat(filepath.Join(homeDirectory, awsCredentialsRelativePathConstant))
	if statError != nil {
		return false
	}
	return credentialsInfo.Size() > 0
}
