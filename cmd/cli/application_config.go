package cli

import (
	_ "embed"
	"strings"
	"time"

	"github.com/tyemirov/workstation/internal/setup"
)

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the built-in configuration document and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return embeddedDefaultConfiguration, configurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Setup  ApplicationSetupConfiguration  `mapstructure:"setup"`
}

// ApplicationCommonConfiguration stores the logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationSetupConfiguration captures the provisioning defaults consumed by setup tasks.
type ApplicationSetupConfiguration struct {
	CatalogDirectory   string   `mapstructure:"catalog_directory"`
	DotfilesDirectory  string   `mapstructure:"dotfiles_directory"`
	ProjectsDirectory  string   `mapstructure:"projects_directory"`
	CloneRetentionDays int      `mapstructure:"clone_retention_days"`
	AWSRegion          string   `mapstructure:"aws_region"`
	RepositoryGroup    string   `mapstructure:"repository_group"`
	DockItems          []string `mapstructure:"dock_items"`
}

// SetupSettings converts the persisted setup configuration into task settings,
// falling back to built-in values for blank entries.
func (configuration ApplicationSetupConfiguration) SetupSettings() setup.Settings {
	settings := setup.DefaultSettings()

	if trimmedDirectory := strings.TrimSpace(configuration.DotfilesDirectory); len(trimmedDirectory) > 0 {
		settings.DotfilesDirectory = trimmedDirectory
	}
	if trimmedDirectory := strings.TrimSpace(configuration.ProjectsDirectory); len(trimmedDirectory) > 0 {
		settings.ProjectsDirectory = trimmedDirectory
	}
	if configuration.CloneRetentionDays > 0 {
		settings.CloneRetention = time.Duration(configuration.CloneRetentionDays) * 24 * time.Hour
	}
	if trimmedRegion := strings.TrimSpace(configuration.AWSRegion); len(trimmedRegion) > 0 {
		settings.DefaultAWSRegion = trimmedRegion
	}
	settings.RepositoryGroup = strings.TrimSpace(configuration.RepositoryGroup)

	dockItems := make([]string, 0, len(configuration.DockItems))
	for _, dockItem := range configuration.DockItems {
		trimmedItem := strings.TrimSpace(dockItem)
		if len(trimmedItem) == 0 {
			continue
		}
		dockItems = append(dockItems, trimmedItem)
	}
	settings.DockItems = dockItems

	return settings
}

// CatalogDirectoryOrDefault returns the configured catalog directory or the built-in default.
func (configuration ApplicationSetupConfiguration) CatalogDirectoryOrDefault() string {
	trimmedDirectory := strings.TrimSpace(configuration.CatalogDirectory)
	if len(trimmedDirectory) == 0 {
		return defaultCatalogDirectoryConstant
	}
	return trimmedDirectory
}
