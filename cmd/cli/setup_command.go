package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/workstation/internal/catalog"
	"github.com/tyemirov/workstation/internal/console"
	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/internal/onepassword"
	"github.com/tyemirov/workstation/internal/setup"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	setupCommandUseNameConstant          = "setup"
	setupCommandShortDescriptionConstant = "Run the workstation provisioning pipeline"
	setupCommandLongDescriptionConstant  = "setup executes every provisioning step in order. Steps never abort the pipeline; failures are collected and reported at the end. Subcommands run a single step."

	catalogLoadErrorTemplateConstant = "unable to load catalogs from %s: %w"
)

type setupTaskConstructor func(setup.Dependencies) (setup.Task, error)

type setupSubcommandDefinition struct {
	use       string
	short     string
	aliases   []string
	construct setupTaskConstructor
}

func adaptSetupTaskConstructor[TaskType setup.Task](construct func(setup.Dependencies) (TaskType, error)) setupTaskConstructor {
	return func(dependencies setup.Dependencies) (setup.Task, error) {
		return construct(dependencies)
	}
}

var setupSubcommandDefinitions = []setupSubcommandDefinition{
	{use: "apps", short: "Install Homebrew applications", construct: adaptSetupTaskConstructor(setup.NewHomebrewApplicationsTask)},
	{use: "folders", short: "Create standard folders", construct: adaptSetupTaskConstructor(setup.NewFoldersTask)},
	{use: "git", short: "Configure git identity and dotfiles", construct: adaptSetupTaskConstructor(setup.NewGitConfigurationTask)},
	{use: "onepassword", short: "Sign in to 1Password", aliases: []string{"op"}, construct: adaptSetupTaskConstructor(setup.NewOnePasswordSignInTask)},
	{use: "interactive", short: "Configure interactive applications", construct: adaptSetupTaskConstructor(setup.NewInteractiveApplicationsTask)},
	{use: "openvpn", short: "Configure OpenVPN", aliases: []string{"vpn"}, construct: adaptSetupTaskConstructor(setup.NewOpenVPNTask)},
	{use: "aws", short: "Configure the AWS CLI", construct: adaptSetupTaskConstructor(setup.NewAWSTask)},
	{use: "ssh", short: "Configure SSH keys and agent", construct: adaptSetupTaskConstructor(setup.NewSSHTask)},
	{use: "projects", short: "Clone development projects", construct: adaptSetupTaskConstructor(setup.NewProjectsTask)},
	{use: "environments", short: "Set up development environments", aliases: []string{"envs"}, construct: adaptSetupTaskConstructor(setup.NewDevelopmentEnvironmentsTask)},
	{use: "macos", short: "Apply macOS settings", construct: adaptSetupTaskConstructor(setup.NewMacOSSettingsTask)},
	{use: "dock", short: "Arrange the Dock", construct: adaptSetupTaskConstructor(setup.NewDockTask)},
	{use: "terminal", short: "Configure the terminal", construct: adaptSetupTaskConstructor(setup.NewTerminalTask)},
}

func (application *Application) buildSetupCommand() *cobra.Command {
	setupCommand := &cobra.Command{
		Use:           setupCommandUseNameConstant,
		Short:         setupCommandShortDescriptionConstant,
		Long:          setupCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runSetupPipeline(command)
		},
	}

	for _, definition := range setupSubcommandDefinitions {
		subcommandDefinition := definition
		setupCommand.AddCommand(&cobra.Command{
			Use:           subcommandDefinition.use,
			Short:         subcommandDefinition.short,
			Aliases:       subcommandDefinition.aliases,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(command *cobra.Command, arguments []string) error {
				return application.runSetupTask(command, subcommandDefinition.construct)
			},
		})
	}

	return setupCommand
}

func (application *Application) runSetupPipeline(command *cobra.Command) error {
	dependencies, reporter, dependenciesError := application.assembleSetupDependencies(command)
	if dependenciesError != nil {
		return dependenciesError
	}

	pipelineSteps, buildError := setup.BuildPipeline(dependencies)
	if buildError != nil {
		return buildError
	}

	return application.executeSteps(command, reporter, pipelineSteps)
}

func (application *Application) runSetupTask(command *cobra.Command, construct setupTaskConstructor) error {
	dependencies, reporter, dependenciesError := application.assembleSetupDependencies(command)
	if dependenciesError != nil {
		return dependenciesError
	}

	constructedTask, constructionError := construct(dependencies)
	if constructionError != nil {
		return constructionError
	}

	return application.executeSteps(command, reporter, []steprunner.Step{setup.StepForTask(constructedTask)})
}

func (application *Application) executeSteps(command *cobra.Command, reporter *console.Reporter, steps []steprunner.Step) error {
	pipelineRunner, runnerError := steprunner.NewRunner(reporter, application.logger)
	if runnerError != nil {
		return runnerError
	}

	report := pipelineRunner.Execute(command.Context(), steps)
	if report.HasFailures() {
		return ErrSetupIncomplete
	}
	return nil
}

func (application *Application) assembleSetupDependencies(command *cobra.Command) (setup.Dependencies, *console.Reporter, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return setup.Dependencies{}, nil, executorError
	}

	toolLocator := execshell.NewOSToolLocator()

	catalogDirectory := application.configuration.Setup.CatalogDirectoryOrDefault()
	catalogLoader, catalogError := catalog.NewLoader(catalogDirectory)
	if catalogError != nil {
		return setup.Dependencies{}, nil, fmt.Errorf(catalogLoadErrorTemplateConstant, catalogDirectory, catalogError)
	}

	credentialClient, clientError := onepassword.NewClient(shellExecutor, toolLocator)
	if clientError != nil {
		return setup.Dependencies{}, nil, clientError
	}

	reporter := console.NewReporter(command.OutOrStdout())

	var prompter console.Prompter
	if application.nonInteractiveSessionRequested(command) {
		prompter = console.NewIOPrompter(command.InOrStdin(), command.OutOrStdout(), false)
	} else {
		prompter = console.NewTerminalPrompter()
	}

	dependencies := setup.Dependencies{
		Executor:    shellExecutor,
		ToolLocator: toolLocator,
		Catalogs:    catalogLoader,
		Credentials: credentialClient,
		FileSystem:  setup.NewOSFileSystem(),
		Prompter:    prompter,
		Reporter:    reporter,
		Clock:       setup.SystemClock{},
		Settings:    application.configuration.Setup.SetupSettings(),
	}

	if validationError := dependencies.Validate(); validationError != nil {
		return setup.Dependencies{}, nil, validationError
	}

	return dependencies, reporter, nil
}

func (application *Application) nonInteractiveSessionRequested(command *cobra.Command) bool {
	if application.nonInteractiveFlagValue {
		return true
	}
	if command == nil {
		return false
	}
	nonInteractive, present := application.commandContextAccessor.NonInteractive(command.Context())
	return present && nonInteractive
}
