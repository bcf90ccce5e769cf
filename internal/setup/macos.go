package setup

import (
	"context"
	"path/filepath"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	macOSTaskNameConstant                = "Apply macOS settings"
	macOSSettingFailureTemplateConstant  = "could not apply %q: %v"
	macOSSummaryTemplateConstant         = "%d of %d settings applied"
	macOSAllAppliedMessageConstant       = "all macOS settings applied"
	macOSRestartNotePromptConstant       = "Some settings take effect after logging out. Press Enter to continue... "
	finderProcessNameConstant            = "Finder"
	systemUIServerProcessNameConstant    = "SystemUIServer"
	userLibraryRelativePathConstant      = "Library"
	volumesDirectoryPathConstant         = "/Volumes"
	chflagsNoHiddenFlagConstant          = "nohidden"
	defaultsWriteSubcommandConstant      = "write"
	powerManagementUtilityConstant       = "pmset"
	systemSetupUtilityConstant           = "systemsetup"
	pmsetAllScopeFlagConstant            = "-a"
	pmsetChargerScopeFlagConstant        = "-c"
	pmsetBatteryScopeFlagConstant        = "-b"
	launchctlUnloadSubcommandConstant    = "unload"
	launchctlPersistFlagConstant         = "-w"
	rcdLaunchAgentPathConstant           = "/System/Library/LaunchAgents/com.apple.rcd.plist"
	xattrDeleteFlagConstant              = "-d"
	finderInfoAttributeNameConstant      = "com.apple.FinderInfo"
	booleanTypeFlagConstant              = "-bool"
	integerTypeFlagConstant              = "-int"
	floatTypeFlagConstant                = "-float"
	stringTypeFlagConstant               = "-string"
	globalDomainConstant                 = "NSGlobalDomain"
	finderDomainConstant                 = "com.apple.finder"
	dockDomainConstant                   = "com.apple.dock"
	desktopServicesDomainConstant        = "com.apple.desktopservices"
	screenCaptureDomainConstant          = "com.apple.screencapture"
	trackpadDomainConstant               = "com.apple.AppleMultitouchTrackpad"
)

type macOSSetting struct {
	description string
	command     execshell.ShellCommand
}

// MacOSSettingsTask applies the opinionated defaults the team runs on every
// machine. Each setting is applied independently; a failing one is reported
// and the rest still run.
type MacOSSettingsTask struct {
	dependencies Dependencies
}

// NewMacOSSettingsTask constructs the task after validating dependencies.
func NewMacOSSettingsTask(dependencies Dependencies) (*MacOSSettingsTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &MacOSSettingsTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *MacOSSettingsTask) Name() string {
	return macOSTaskNameConstant
}

// Run applies every setting, restarts the affected system processes, and
// summarizes the failures by description.
func (task *MacOSSettingsTask) Run(executionContext context.Context) steprunner.Outcome {
	homeDirectory, homeError := task.dependencies.FileSystem.UserHomeDir()
	if homeError != nil {
		return steprunner.FatalOutcome(homeError.Error())
	}

	settings := buildMacOSSettings(homeDirectory)
	failedDescriptions := []string{}
	for _, setting := range settings {
		if applyError := task.applySetting(executionContext, setting); applyError != nil {
			task.dependencies.Reporter.Warningf(macOSSettingFailureTemplateConstant, setting.description, applyError)
			failedDescriptions = append(failedDescriptions, setting.description)
		}
	}

	for _, processName := range []string{finderProcessNameConstant, systemUIServerProcessNameConstant} {
		_, _ = task.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
			Name:    execshell.CommandKillall,
			Details: execshell.CommandDetails{Arguments: []string{processName}},
		})
	}

	if task.dependencies.Prompter.IsInteractive() {
		_ = task.dependencies.Prompter.WaitForEnter(macOSRestartNotePromptConstant)
	}

	if len(failedDescriptions) > 0 {
		return steprunner.WarningOutcomef(macOSSummaryTemplateConstant, len(settings)-len(failedDescriptions), len(settings))
	}
	return steprunner.SuccessOutcome(macOSAllAppliedMessageConstant)
}

func (task *MacOSSettingsTask) applySetting(executionContext context.Context, setting macOSSetting) error {
	if setting.command.Name == execshell.CommandDefaults {
		_, applyError := task.dependencies.Executor.ExecuteDefaults(executionContext, setting.command.Details)
		return applyError
	}
	_, applyError := task.dependencies.Executor.Execute(executionContext, setting.command)
	return applyError
}

func defaultsSetting(description string, arguments ...string) macOSSetting {
	return macOSSetting{
		description: description,
		command: execshell.ShellCommand{
			Name:    execshell.CommandDefaults,
			Details: execshell.CommandDetails{Arguments: append([]string{defaultsWriteSubcommandConstant}, arguments...)},
		},
	}
}

func buildMacOSSettings(homeDirectory string) []macOSSetting {
	return []macOSSetting{
		defaultsSetting("show hidden files in Finder", finderDomainConstant, "AppleShowAllFiles", booleanTypeFlagConstant, "true"),
		defaultsSetting("show all filename extensions", globalDomainConstant, "AppleShowAllExtensions", booleanTypeFlagConstant, "true"),
		defaultsSetting("show the Finder path bar", finderDomainConstant, "ShowPathbar", booleanTypeFlagConstant, "true"),
		defaultsSetting("show the Finder status bar", finderDomainConstant, "ShowStatusBar", booleanTypeFlagConstant, "true"),
		defaultsSetting("disable the extension change warning", finderDomainConstant, "FXEnableExtensionChangeWarning", booleanTypeFlagConstant, "false"),
		defaultsSetting("search the current folder by default", finderDomainConstant, "FXDefaultSearchScope", stringTypeFlagConstant, "SCcf"),
		defaultsSetting("keep folders on top when sorting", finderDomainConstant, "_FXSortFoldersFirst", booleanTypeFlagConstant, "true"),
		defaultsSetting("skip .DS_Store files on network volumes", desktopServicesDomainConstant, "DSDontWriteNetworkStores", booleanTypeFlagConstant, "true"),
		defaultsSetting("skip .DS_Store files on USB volumes", desktopServicesDomainConstant, "DSDontWriteUSBStores", booleanTypeFlagConstant, "true"),
		defaultsSetting("use a fast keyboard repeat rate", globalDomainConstant, "KeyRepeat", integerTypeFlagConstant, "2"),
		defaultsSetting("use a short delay until key repeat", globalDomainConstant, "InitialKeyRepeat", integerTypeFlagConstant, "15"),
		defaultsSetting("disable press-and-hold for accented keys", globalDomainConstant, "ApplePressAndHoldEnabled", booleanTypeFlagConstant, "false"),
		defaultsSetting("disable automatic capitalization", globalDomainConstant, "NSAutomaticCapitalizationEnabled", booleanTypeFlagConstant, "false"),
		defaultsSetting("disable smart quotes", globalDomainConstant, "NSAutomaticQuoteSubstitutionEnabled", booleanTypeFlagConstant, "false"),
		defaultsSetting("disable smart dashes", globalDomainConstant, "NSAutomaticDashSubstitutionEnabled", booleanTypeFlagConstant, "false"),
		defaultsSetting("disable automatic spelling correction", globalDomainConstant, "NSAutomaticSpellingCorrectionEnabled", booleanTypeFlagConstant, "false"),
		defaultsSetting("enable tap to click", trackpadDomainConstant, "Clicking", booleanTypeFlagConstant, "true"),
		defaultsSetting("expand the save panel by default", globalDomainConstant, "NSNavPanelExpandedStateForSaveMode", booleanTypeFlagConstant, "true"),
		defaultsSetting("expand the print panel by default", globalDomainConstant, "PMPrintingExpandedStateForPrint", booleanTypeFlagConstant, "true"),
		defaultsSetting("save new documents to disk, not iCloud", globalDomainConstant, "NSDocumentSaveNewDocumentsToCloud", booleanTypeFlagConstant, "false"),
		defaultsSetting("save screenshots as PNG", screenCaptureDomainConstant, "type", stringTypeFlagConstant, "png"),
		defaultsSetting("drop the shadow from window screenshots", screenCaptureDomainConstant, "disable-shadow", booleanTypeFlagConstant, "true"),
		defaultsSetting("automatically hide the Dock", dockDomainConstant, "autohide", booleanTypeFlagConstant, "true"),
		defaultsSetting("remove the Dock auto-hide delay", dockDomainConstant, "autohide-delay", floatTypeFlagConstant, "0"),
		defaultsSetting("keep Spaces in a fixed order", dockDomainConstant, "mru-spaces", booleanTypeFlagConstant, "false"),
		defaultsSetting("speed up Mission Control animations", dockDomainConstant, "expose-animation-duration", floatTypeFlagConstant, "0.1"),
		{
			description: "stop iTunes from responding to media keys",
			command: execshell.ShellCommand{
				Name: execshell.CommandLaunchctl,
				Details: execshell.CommandDetails{
					Arguments: []string{launchctlUnloadSubcommandConstant, launchctlPersistFlagConstant, rcdLaunchAgentPathConstant},
				},
			},
		},
		sudoSetting("wake the machine when the lid opens", powerManagementUtilityConstant, pmsetAllScopeFlagConstant, "lidwake", "1"),
		sudoSetting("sleep the display after 15 minutes", powerManagementUtilityConstant, pmsetAllScopeFlagConstant, "displaysleep", "15"),
		sudoSetting("never sleep while charging", powerManagementUtilityConstant, pmsetChargerScopeFlagConstant, "sleep", "0"),
		sudoSetting("sleep after 5 minutes on battery", powerManagementUtilityConstant, pmsetBatteryScopeFlagConstant, "sleep", "5"),
		sudoSetting("stand by after 24 hours", powerManagementUtilityConstant, pmsetAllScopeFlagConstant, "standbydelay", "86400"),
		sudoSetting("never enter computer sleep mode", systemSetupUtilityConstant, "-setcomputersleep", "Off"),
		sudoSetting("disable hibernation", powerManagementUtilityConstant, pmsetAllScopeFlagConstant, "hibernatemode", "0"),
		{
			description: "show the user Library folder",
			command: execshell.ShellCommand{
				Name: execshell.CommandChflags,
				Details: execshell.CommandDetails{
					Arguments: []string{chflagsNoHiddenFlagConstant, filepath.Join(homeDirectory, userLibraryRelativePathConstant)},
				},
			},
		},
		{
			description: "clear the Finder metadata hiding the user Library folder",
			command: execshell.ShellCommand{
				Name: execshell.CommandXattr,
				Details: execshell.CommandDetails{
					Arguments: []string{xattrDeleteFlagConstant, finderInfoAttributeNameConstant, filepath.Join(homeDirectory, userLibraryRelativePathConstant)},
				},
			},
		},
		sudoSetting("show the Volumes folder", string(execshell.CommandChflags), chflagsNoHiddenFlagConstant, volumesDirectoryPathConstant),
	}
}

func sudoSetting(description string, arguments ...string) macOSSetting {
	return macOSSetting{
		description: description,
		command: execshell.ShellCommand{
			Name:    execshell.CommandSudo,
			Details: execshell.CommandDetails{Arguments: arguments},
		},
	}
}
