package setup

import (
	"context"
	"io/fs"

	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	foldersTaskNameConstant                = "Create standard folders"
	foldersCatalogEmptyMessageConstant     = "no folders declared in the catalog"
	foldersConvergedMessageConstant        = "all declared folders exist"
	foldersFailureTemplateConstant         = "%d folder(s) could not be created"
	folderExistsTemplateConstant           = "%s already exists"
	folderCreatedTemplateConstant          = "created %s"
	folderNotDirectoryTemplateConstant     = "%s exists but is not a directory"
	folderCreationFailureTemplateConstant  = "unable to create %s: %v"
	folderExpansionFailureTemplateConstant = "unable to resolve %s: %v"
	folderPermissionsConstant              = fs.FileMode(0o755)
)

// FoldersTask ensures the declared directory layout exists under the
// operator's home directory.
type FoldersTask struct {
	dependencies Dependencies
}

// NewFoldersTask constructs the task after validating dependencies.
func NewFoldersTask(dependencies Dependencies) (*FoldersTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &FoldersTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *FoldersTask) Name() string {
	return foldersTaskNameConstant
}

// Run creates each missing folder. The task is idempotent: existing
// directories are left untouched.
func (task *FoldersTask) Run(executionContext context.Context) steprunner.Outcome {
	folderCatalog, catalogError := task.dependencies.Catalogs.LoadFolders()
	if catalogError != nil {
		return steprunner.FatalOutcome(catalogError.Error())
	}
	if len(folderCatalog.Folders) == 0 {
		return steprunner.WarningOutcome(foldersCatalogEmptyMessageConstant)
	}

	failureCount := 0
	for _, declaredFolder := range folderCatalog.Folders {
		expandedPath, expansionError := ExpandHomePath(task.dependencies.FileSystem, declaredFolder)
		if expansionError != nil {
			task.dependencies.Reporter.Warningf(folderExpansionFailureTemplateConstant, declaredFolder, expansionError)
			failureCount++
			continue
		}

		existingInfo, statError := task.dependencies.FileSystem.Stat(expandedPath)
		if statError == nil {
			if existingInfo.IsDir() {
				task.dependencies.Reporter.Infof(folderExistsTemplateConstant, expandedPath)
				continue
			}
			task.dependencies.Reporter.Warningf(folderNotDirectoryTemplateConstant, expandedPath)
			failureCount++
			continue
		}

		if creationError := task.dependencies.FileSystem.MkdirAll(expandedPath, folderPermissionsConstant); creationError != nil {
			task.dependencies.Reporter.Warningf(folderCreationFailureTemplateConstant, expandedPath, creationError)
			failureCount++
			continue
		}
		task.dependencies.Reporter.Successf(folderCreatedTemplateConstant, expandedPath)
	}

	if failureCount > 0 {
		return steprunner.WarningOutcomef(foldersFailureTemplateConstant, failureCount)
	}
	return steprunner.SuccessOutcome(foldersConvergedMessageConstant)
}
