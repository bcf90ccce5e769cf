package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestApplication(testInstance *testing.T) *Application {
	testInstance.Helper()
	testInstance.Setenv(configurationSearchPathEnvironmentVariableConstant, testInstance.TempDir())
	return NewApplication()
}

func TestApplicationDefaultsFromEmbeddedConfiguration(testInstance *testing.T) {
	application := newTestApplication(testInstance)

	require.NoError(testInstance, application.InitializeForCommand(setupCommandUseNameConstant))

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, defaultCatalogDirectoryConstant, application.configuration.Setup.CatalogDirectory)
	require.Equal(testInstance, 730, application.configuration.Setup.CloneRetentionDays)
	require.Equal(testInstance, "eu-west-1", application.configuration.Setup.AWSRegion)
	require.NotEmpty(testInstance, application.configuration.Setup.DockItems)
	require.Empty(testInstance, application.ConfigFileUsed())
}

func TestApplicationLoadsConfigurationFileFromSearchPath(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(searchDirectory, "config.yaml")
	configurationContent := []byte("common:\n  log_level: debug\nsetup:\n  projects_directory: /src\n")
	require.NoError(testInstance, os.WriteFile(configurationFilePath, configurationContent, 0o600))
	testInstance.Setenv(configurationSearchPathEnvironmentVariableConstant, searchDirectory)

	application := NewApplication()
	require.NoError(testInstance, application.InitializeForCommand(setupCommandUseNameConstant))

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "/src", application.configuration.Setup.ProjectsDirectory)
	require.Equal(testInstance, configurationFilePath, application.ConfigFileUsed())
}

func TestApplicationExplicitConfigurationFileMissingFails(testInstance *testing.T) {
	application := newTestApplication(testInstance)
	application.configurationFilePath = filepath.Join(testInstance.TempDir(), "absent.yaml")

	require.Error(testInstance, application.InitializeForCommand(setupCommandUseNameConstant))
}

func TestApplicationFlagOverridesConfiguredLogLevel(testInstance *testing.T) {
	application := newTestApplication(testInstance)
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "error"))

	require.NoError(testInstance, application.InitializeForCommand(setupCommandUseNameConstant))

	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
}

func TestApplicationEnvironmentOverridesLogLevel(testInstance *testing.T) {
	testInstance.Setenv("WORKSTATION_COMMON_LOG_LEVEL", "warn")
	application := newTestApplication(testInstance)

	require.NoError(testInstance, application.InitializeForCommand(setupCommandUseNameConstant))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	testInstance.Setenv("WORKSTATION_COMMON_LOG_LEVEL", "verbose")
	application := newTestApplication(testInstance)

	require.Error(testInstance, application.InitializeForCommand(setupCommandUseNameConstant))
}

func TestSetupCommandRegistersEverySubcommand(testInstance *testing.T) {
	application := newTestApplication(testInstance)

	var setupCommand *cobra.Command
	for _, registeredCommand := range application.rootCommand.Commands() {
		if registeredCommand.Use == setupCommandUseNameConstant {
			setupCommand = registeredCommand
			break
		}
	}

	require.NotNil(testInstance, setupCommand)
	require.Len(testInstance, setupCommand.Commands(), len(setupSubcommandDefinitions))
	require.Len(testInstance, setupSubcommandDefinitions, 13)
}

func TestApplicationNonInteractiveFlagReachesCommandContext(testInstance *testing.T) {
	application := newTestApplication(testInstance)
	application.nonInteractiveFlagValue = true

	command := &cobra.Command{Use: setupCommandUseNameConstant}
	command.SetContext(context.Background())
	require.NoError(testInstance, application.initializeConfiguration(command))

	nonInteractive, present := application.commandContextAccessor.NonInteractive(command.Context())
	require.True(testInstance, present)
	require.True(testInstance, nonInteractive)
	require.True(testInstance, application.nonInteractiveSessionRequested(command))
}
