package setup_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/workstation/internal/catalog"
	"github.com/tyemirov/workstation/internal/setup"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

func TestFoldersTask(testInstance *testing.T) {
	testCases := []struct {
		name               string
		folders            []string
		existingDirs       []string
		existingFiles      []string
		expectedStatus     steprunner.OutcomeStatus
		expectedCreated    []string
		expectedNotCreated []string
	}{
		{
			name:           "empty_catalog_warns",
			expectedStatus: steprunner.OutcomeStatusWarning,
		},
		{
			name:            "missing_folders_are_created",
			folders:         []string{"~/Projects", "~/Sandbox"},
			expectedStatus:  steprunner.OutcomeStatusSuccess,
			expectedCreated: []string{stubHomeDirectoryConstant + "/Projects", stubHomeDirectoryConstant + "/Sandbox"},
		},
		{
			name:               "existing_directories_are_left_alone",
			folders:            []string{"~/Projects"},
			existingDirs:       []string{stubHomeDirectoryConstant + "/Projects"},
			expectedStatus:     steprunner.OutcomeStatusSuccess,
			expectedNotCreated: []string{stubHomeDirectoryConstant + "/Projects"},
		},
		{
			name:           "existing_file_in_the_way_warns",
			folders:        []string{"~/Projects"},
			existingFiles:  []string{stubHomeDirectoryConstant + "/Projects"},
			expectedStatus: steprunner.OutcomeStatusWarning,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(setupSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			dependencies, _, fileSystem, _, _ := newTestDependencies()
			dependencies.Catalogs = stubCatalogLoader{folders: catalog.FolderCatalog{Folders: testCase.folders}}
			for _, existingDir := range testCase.existingDirs {
				fileSystem.directories[existingDir] = true
			}
			for _, existingFile := range testCase.existingFiles {
				fileSystem.files[existingFile] = []byte("occupied")
			}

			task, creationError := setup.NewFoldersTask(dependencies)
			require.NoError(testInstance, creationError)

			outcome := task.Run(context.Background())

			require.Equal(testInstance, testCase.expectedStatus, outcome.Status)
			for _, createdPath := range testCase.expectedCreated {
				require.Contains(testInstance, fileSystem.createdDirsOrder, createdPath)
			}
			for _, untouchedPath := range testCase.expectedNotCreated {
				require.NotContains(testInstance, fileSystem.createdDirsOrder, untouchedPath)
			}
		})
	}
}
