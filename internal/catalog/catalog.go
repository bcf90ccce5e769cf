// Package catalog loads the YAML catalogs describing the desired workstation
// state: applications to install, folders to create, and third-party
// integrations to configure.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	applicationsCatalogFileNameConstant     = "applications.yaml"
	foldersCatalogFileNameConstant          = "folders.yaml"
	integrationsCatalogFileNameConstant     = "application-setup.yaml"
	catalogDirectoryMissingMessageConstant  = "catalog directory not configured"
	catalogReadErrorMessageTemplateConstant = "unable to read catalog %s: %w"
	catalogParseErrorMessageTemplate        = "unable to parse catalog %s: %w"
)

// IntegrationType distinguishes operator-driven integrations from fully
// scripted ones.
type IntegrationType string

// Supported integration types.
const (
	IntegrationTypeInteractive IntegrationType = "interactive"
	IntegrationTypeAutomated   IntegrationType = "automated"
)

// ApplicationCatalog lists Homebrew casks and formulae to install.
type ApplicationCatalog struct {
	Casks    []string `yaml:"casks"`
	Formulae []string `yaml:"formulae"`
}

// FolderCatalog lists directories to ensure on the machine.
type FolderCatalog struct {
	Folders []string `yaml:"folders"`
}

// IntegrationDescriptor describes one application integration.
type IntegrationDescriptor struct {
	Name                      string          `yaml:"name"`
	DisplayName               string          `yaml:"display_name"`
	BundleIdentifier          string          `yaml:"bundle_id"`
	Type                      IntegrationType `yaml:"type"`
	OnePasswordItemIdentifier string          `yaml:"onepassword_item_id"`
	Instructions              []string        `yaml:"instructions"`
}

// IsAutomated reports whether the integration is configured without operator
// involvement.
func (descriptor IntegrationDescriptor) IsAutomated() bool {
	return descriptor.Type == IntegrationTypeAutomated
}

// IntegrationCatalog lists the configured application integrations.
type IntegrationCatalog struct {
	InteractiveApplications []IntegrationDescriptor `yaml:"interactive_apps"`
}

// FindByName returns the descriptor with the given name.
func (integrationCatalog IntegrationCatalog) FindByName(descriptorName string) (IntegrationDescriptor, bool) {
	for _, descriptor := range integrationCatalog.InteractiveApplications {
		if descriptor.Name == descriptorName {
			return descriptor, true
		}
	}
	return IntegrationDescriptor{}, false
}

// ErrCatalogDirectoryMissing indicates the loader was built without a catalog directory.
var ErrCatalogDirectoryMissing = errors.New(catalogDirectoryMissingMessageConstant)

// Loader reads catalogs from a configured directory.
type Loader struct {
	catalogDirectory string
}

// NewLoader constructs a Loader rooted at the provided directory.
func NewLoader(catalogDirectory string) (*Loader, error) {
	if len(catalogDirectory) == 0 {
		return nil, ErrCatalogDirectoryMissing
	}
	return &Loader{catalogDirectory: catalogDirectory}, nil
}

// LoadApplications reads the applications catalog.
func (loader *Loader) LoadApplications() (ApplicationCatalog, error) {
	applicationCatalog := ApplicationCatalog{}
	loadError := loader.loadCatalogFile(applicationsCatalogFileNameConstant, &applicationCatalog)
	return applicationCatalog, loadError
}

// LoadFolders reads the folders catalog.
func (loader *Loader) LoadFolders() (FolderCatalog, error) {
	folderCatalog := FolderCatalog{}
	loadError := loader.loadCatalogFile(foldersCatalogFileNameConstant, &folderCatalog)
	return folderCatalog, loadError
}

// LoadIntegrations reads the application integrations catalog.
func (loader *Loader) LoadIntegrations() (IntegrationCatalog, error) {
	integrationCatalog := IntegrationCatalog{}
	loadError := loader.loadCatalogFile(integrationsCatalogFileNameConstant, &integrationCatalog)
	return integrationCatalog, loadError
}

func (loader *Loader) loadCatalogFile(catalogFileName string, target any) error {
	catalogPath := filepath.Join(loader.catalogDirectory, catalogFileName)
	catalogContent, readError := os.ReadFile(catalogPath)
	if readError != nil {
		return fmt.Errorf(catalogReadErrorMessageTemplateConstant, catalogFileName, readError)
	}
	if unmarshalError := yaml.Unmarshal(catalogContent, target); unmarshalError != nil {
		return fmt.Errorf(catalogParseErrorMessageTemplate, catalogFileName, unmarshalError)
	}
	return nil
}
