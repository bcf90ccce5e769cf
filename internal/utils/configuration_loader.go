// Package utils provides shared application plumbing: logger construction,
// configuration loading, and command-context accessors.
package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant          = "_"
	configurationKeySeparatorConstant        = "."
	embeddedConfigurationErrorTemplateConst  = "unable to read embedded configuration: %w"
	configurationFileErrorTemplateConstant   = "unable to read configuration file: %w"
	configurationDecodeErrorTemplateConstant = "unable to decode configuration: %w"
)

// ConfigurationMetadata describes where the loaded configuration came from.
type ConfigurationMetadata struct {
	ConfigFileUsed string
}

// ConfigurationLoader loads layered application configuration: defaults,
// embedded content, configuration file, environment overrides.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedContent   []byte
	embeddedType      string
}

// NewConfigurationLoader constructs a loader for the given configuration name,
// type, environment prefix, and ordered search paths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       searchPaths,
	}
}

// SetEmbeddedConfiguration registers embedded configuration content merged
// beneath any configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, configurationType string) {
	loader.embeddedContent = content
	loader.embeddedType = configurationType
}

// LoadConfiguration resolves configuration into the provided target. An
// explicit file path bypasses the search paths; otherwise the first
// configuration file found along the search paths is used.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, target any) (ConfigurationMetadata, error) {
	viperInstance := viper.New()
	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedContent) > 0 {
		viperInstance.SetConfigType(loader.embeddedType)
		if readError := viperInstance.ReadConfig(bytes.NewReader(loader.embeddedContent)); readError != nil {
			return ConfigurationMetadata{}, fmt.Errorf(embeddedConfigurationErrorTemplateConst, readError)
		}
	}

	if len(explicitFilePath) > 0 {
		viperInstance.SetConfigFile(explicitFilePath)
		if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
			return ConfigurationMetadata{}, fmt.Errorf(configurationFileErrorTemplateConstant, mergeError)
		}
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		viperInstance.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
		if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(mergeError, &configFileNotFoundError) {
				return ConfigurationMetadata{}, fmt.Errorf(configurationFileErrorTemplateConstant, mergeError)
			}
		}
	}

	weaklyTypedDecoding := func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.WeaklyTypedInput = true
	}
	if decodeError := viperInstance.Unmarshal(target, weaklyTypedDecoding); decodeError != nil {
		return ConfigurationMetadata{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return ConfigurationMetadata{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
