package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	documentationFileNameConstant    = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeApplicationConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Setup struct {
		CatalogDirectory   string   `yaml:"catalog_directory"`
		DotfilesDirectory  string   `yaml:"dotfiles_directory"`
		ProjectsDirectory  string   `yaml:"projects_directory"`
		CloneRetentionDays int      `yaml:"clone_retention_days"`
		AWSRegion          string   `yaml:"aws_region"`
		RepositoryGroup    string   `yaml:"repository_group"`
		DockItems          []string `yaml:"dock_items"`
	} `yaml:"setup"`
}

func TestReadmeConfigurationExampleParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	documentationPath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, documentationFileNameConstant)
	contentBytes, readError := os.ReadFile(documentationPath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var applicationConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &applicationConfiguration))

	require.Equal(testInstance, "info", applicationConfiguration.Common.LogLevel)
	require.Equal(testInstance, "console", applicationConfiguration.Common.LogFormat)
	require.Equal(testInstance, "config", applicationConfiguration.Setup.CatalogDirectory)
	require.Equal(testInstance, "dotfiles", applicationConfiguration.Setup.DotfilesDirectory)
	require.Greater(testInstance, applicationConfiguration.Setup.CloneRetentionDays, 0)
	require.NotEmpty(testInstance, applicationConfiguration.Setup.AWSRegion)
	require.NotEmpty(testInstance, applicationConfiguration.Setup.DockItems)
}
