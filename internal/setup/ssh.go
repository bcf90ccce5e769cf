package setup

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	sshTaskNameConstant                   = "Configure SSH"
	sshDescriptorNameConstant             = "ssh"
	sshConfigNotesFieldConstant           = "notesPlain"
	sshPublicKeyFieldConstant             = "public key"
	sshKeyCategoryNameConstant            = "SSH Key"
	sshDirectoryRelativePathConstant      = ".ssh"
	sshConfigFileNameConstant             = "config"
	sshAgentConfigRelativePathConstant    = ".config/1password/ssh"
	sshAgentConfigFileNameConstant        = "agent.toml"
	sshDirectoryPermissionsConstant       = fs.FileMode(0o700)
	sshConfigPermissionsConstant          = fs.FileMode(0o600)
	sshPublicKeyPermissionsConstant       = fs.FileMode(0o644)
	sshConfigWrittenTemplateConstant      = "wrote %s"
	sshAgentConfigWrittenTemplateConstant = "wrote %s with %d key(s)"
	sshPublicKeySavedTemplateConstant     = "saved public key %s"
	sshKeyListFailureTemplateConstant     = "unable to list SSH keys: %v"
	sshAgentPromptConstant                = "Enable the SSH agent in 1Password (Settings > Developer), then press Enter... "
	sshConfiguredMessageConstant          = "SSH configuration converged"
	sshEmptyConfigMessageConstant         = "the notesPlain field is empty; the SSH client configuration was not written"
	sshWarningsTemplateConstant           = "SSH configuration finished with %d warning(s)"
	sshPublicKeyExtensionConstant         = ".pub"
)

type sshAgentKeyEntry struct {
	Item  string `toml:"item"`
	Vault string `toml:"vault"`
}

type sshAgentConfiguration struct {
	SSHKeys []sshAgentKeyEntry `toml:"ssh-keys"`
}

// SSHTask writes the SSH client configuration from 1Password and points the
// 1Password SSH agent at every stored key.
type SSHTask struct {
	dependencies Dependencies
}

// NewSSHTask constructs the task after validating dependencies.
func NewSSHTask(dependencies Dependencies) (*SSHTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &SSHTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *SSHTask) Name() string {
	return sshTaskNameConstant
}

// Run installs ~/.ssh/config from the credential item notes, generates the
// agent configuration, and saves the stored public keys.
func (task *SSHTask) Run(executionContext context.Context) steprunner.Outcome {
	descriptor, descriptorOutcome := resolveAutomatedDescriptor(task.dependencies, sshDescriptorNameConstant)
	if descriptorOutcome != nil {
		return *descriptorOutcome
	}
	if guardOutcome := requireCredentialSession(executionContext, task.dependencies); guardOutcome != nil {
		return *guardOutcome
	}

	credentialItem, fetchError := task.dependencies.Credentials.GetItem(executionContext, descriptor.OnePasswordItemIdentifier)
	if fetchError != nil {
		return steprunner.FatalOutcomef(credentialFetchFailureTemplateConst, fetchError)
	}
	configContent, notesFound := credentialItem.FieldValue(sshConfigNotesFieldConstant)
	if !notesFound {
		return requiredFieldError(sshConfigNotesFieldConstant)
	}

	homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir()
	if homeError != nil {
		return steprunner.FatalOutcome(homeError.Error())
	}

	sshDirectory := filepath.Join(homeDirectory, sshDirectoryRelativePathConstant)
	if directoryError := task.ensurePrivateDirectory(sshDirectory); directoryError != nil {
		return steprunner.FatalOutcome(directoryError.Error())
	}

	warningCount := 0
	if len(strings.TrimSpace(configContent)) == 0 {
		task.dependencies.Reporter.Warning(sshEmptyConfigMessageConstant)
		warningCount++
	} else {
		configPath := filepath.Join(sshDirectory, sshConfigFileNameConstant)
		if writeError := task.dependencies.FileSystem.WriteFile(configPath, []byte(configContent), sshConfigPermissionsConstant); writeError != nil {
			return steprunner.FatalOutcome(writeError.Error())
		}
		task.dependencies.Reporter.Successf(sshConfigWrittenTemplateConstant, configPath)
	}

	storedKeys, listError := task.dependencies.Credentials.ListItemsByCategory(executionContext, sshKeyCategoryNameConstant)
	if listError != nil {
		return steprunner.WarningOutcomef(sshKeyListFailureTemplateConstant, listError)
	}

	agentEntries := make([]sshAgentKeyEntry, 0, len(storedKeys))
	for _, storedKey := range storedKeys {
		agentEntries = append(agentEntries, sshAgentKeyEntry{Item: storedKey.Identifier, Vault: storedKey.Vault.Identifier})
		if !task.savePublicKey(executionContext, sshDirectory, storedKey.Identifier, storedKey.Title) {
			warningCount++
		}
	}

	if len(agentEntries) > 0 {
		agentDirectory := filepath.Join(homeDirectory, sshAgentConfigRelativePathConstant)
		if directoryError := task.dependencies.FileSystem.MkdirAll(agentDirectory, sshDirectoryPermissionsConstant); directoryError != nil {
			return steprunner.FatalOutcome(directoryError.Error())
		}

		encodedConfiguration := &bytes.Buffer{}
		if encodeError := toml.NewEncoder(encodedConfiguration).Encode(sshAgentConfiguration{SSHKeys: agentEntries}); encodeError != nil {
			return steprunner.FatalOutcome(encodeError.Error())
		}

		agentConfigPath := filepath.Join(agentDirectory, sshAgentConfigFileNameConstant)
		if writeError := task.dependencies.FileSystem.WriteFile(agentConfigPath, encodedConfiguration.Bytes(), sshConfigPermissionsConstant); writeError != nil {
			return steprunner.FatalOutcome(writeError.Error())
		}
		task.dependencies.Reporter.Successf(sshAgentConfigWrittenTemplateConstant, agentConfigPath, len(agentEntries))
	}

	if task.dependencies.Prompter.IsInteractive() {
		_ = task.dependencies.Prompter.WaitForEnter(sshAgentPromptConstant)
	}

	if warningCount > 0 {
		return steprunner.WarningOutcomef(sshWarningsTemplateConstant, warningCount)
	}
	return steprunner.SuccessOutcome(sshConfiguredMessageConstant)
}

func (task *SSHTask) ensurePrivateDirectory(directoryPath string) error {
	if directoryError := task.dependencies.FileSystem.MkdirAll(directoryPath, sshDirectoryPermissionsConstant); directoryError != nil {
		return directoryError
	}
	return task.dependencies.FileSystem.Chmod(directoryPath, sshDirectoryPermissionsConstant)
}

func (task *SSHTask) savePublicKey(executionContext context.Context, sshDirectory string, keyIdentifier string, keyTitle string) bool {
	keyItem, fetchError := task.dependencies.Credentials.GetItem(executionContext, keyIdentifier)
	if fetchError != nil {
		task.dependencies.Reporter.Warningf("unable to fetch SSH key %q: %v", keyTitle, fetchError)
		return false
	}
	publicKey, publicKeyFound := keyItem.FieldValue(sshPublicKeyFieldConstant)
	if !publicKeyFound {
		task.dependencies.Reporter.Warningf("SSH key %q has no public key field", keyTitle)
		return false
	}

	publicKeyPath := filepath.Join(sshDirectory, sanitizeFileName(keyTitle)+sshPublicKeyExtensionConstant)
	if writeError := task.dependencies.FileSystem.WriteFile(publicKeyPath, []byte(strings.TrimSpace(publicKey)+"\n"), sshPublicKeyPermissionsConstant); writeError != nil {
		task.dependencies.Reporter.Warningf("unable to write %s: %v", publicKeyPath, writeError)
		return false
	}
	task.dependencies.Reporter.Successf(sshPublicKeySavedTemplateConstant, publicKeyPath)
	return true
}

// sanitizeFileName maps a key title to a safe file name.
func sanitizeFileName(title string) string {
	sanitized := strings.Builder{}
	for _, character := range strings.TrimSpace(title) {
		switch {
		case character >= 'a' && character <= 'z', character >= 'A' && character <= 'Z', character >= '0' && character <= '9', character == '-', character == '_', character == '.':
			sanitized.WriteRune(character)
		default:
			sanitized.WriteRune('_')
		}
	}
	if sanitized.Len() == 0 {
		return "key"
	}
	return sanitized.String()
}
