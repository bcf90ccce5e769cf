package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	projectsTaskNameConstant              = "Clone development projects"
	gitLabDescriptorNameConstant          = "gitlab"
	gitLabHostnameFieldConstant           = "hostname"
	gitLabAccessTokenFieldConstant        = "access_token"
	gitLabCLIMissingMessageConstant       = "the GitLab CLI (glab) is not installed. Install it with: brew install glab"
	gitLabAuthFailureTemplateConstant     = "glab auth login failed: %v"
	gitLabHostConfigFailureTemplateConst  = "glab config set host failed: %v"
	gitLabListFailureTemplateConstant     = "glab repo list failed: %v"
	gitLabListDecodeFailureTemplateConst  = "unable to decode the repository list: %v"
	projectsDirectoryMissingMessageConst  = "projects directory not configured"
	projectsSummaryTemplateConstant       = "%d cloned, %d already present, %d inactive"
	projectsCloneFailureTemplateConstant  = "unable to clone %s: %v"
	projectsTimestampFailureTemplateConst = "unparseable last_activity_at for %s: %v"
	repositoryListPageSizeConstant        = "100"
)

type gitLabRepository struct {
	Name           string `json:"name"`
	SSHURLToRepo   string `json:"ssh_url_to_repo"`
	LastActivityAt string `json:"last_activity_at"`
}

// ProjectsTask authenticates the GitLab CLI from 1Password and clones every
// recently active repository of the configured group.
type ProjectsTask struct {
	dependencies Dependencies
}

// NewProjectsTask constructs the task after validating dependencies.
func NewProjectsTask(dependencies Dependencies) (*ProjectsTask, error) {
	if validationError := dependencies.Validate(); validationError != nil {
		return nil, validationError
	}
	return &ProjectsTask{dependencies: dependencies}, nil
}

// Name returns the human-readable task name.
func (task *ProjectsTask) Name() string {
	return projectsTaskNameConstant
}

// Run clones every group repository with activity inside the retention
// window. Existing clone targets are skipped.
func (task *ProjectsTask) Run(executionContext context.Context) steprunner.Outcome {
	if !task.dependencies.ToolLocator.IsToolAvailable(execshell.CommandGitLabCLI) {
		return steprunner.FatalOutcome(gitLabCLIMissingMessageConstant)
	}
	if len(task.dependencies.Settings.ProjectsDirectory) == 0 {
		return steprunner.FatalOutcome(projectsDirectoryMissingMessageConst)
	}

	descriptor, descriptorOutcome := resolveAutomatedDescriptor(task.dependencies, gitLabDescriptorNameConstant)
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
	gitLabHostname, hostnameFound := credentialItem.FieldValue(gitLabHostnameFieldConstant)
	if !hostnameFound {
		return requiredFieldError(gitLabHostnameFieldConstant)
	}
	accessToken, accessTokenFound := credentialItem.FieldValue(gitLabAccessTokenFieldConstant)
	if !accessTokenFound {
		return requiredFieldError(gitLabAccessTokenFieldConstant)
	}

	_, authError := task.dependencies.Executor.ExecuteGitLabCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{
			"auth", "login",
			"--hostname", gitLabHostname,
			"--token", accessToken,
			"-a", gitLabHostname,
			"-p", "http",
			"-g", "ssh",
		},
	})
	if authError != nil {
		return steprunner.FatalOutcomef(gitLabAuthFailureTemplateConstant, authError)
	}

	_, hostConfigError := task.dependencies.Executor.ExecuteGitLabCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{"config", "-g", "set", "host", gitLabHostname},
	})
	if hostConfigError != nil {
		return steprunner.FatalOutcomef(gitLabHostConfigFailureTemplateConst, hostConfigError)
	}

	listResult, listError := task.dependencies.Executor.ExecuteGitLabCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{
			"repo", "list",
			"-a",
			"-g", task.dependencies.Settings.RepositoryGroup,
			"-P", repositoryListPageSizeConstant,
			"-F", "json",
		},
	})
	if listError != nil {
		return steprunner.FatalOutcomef(gitLabListFailureTemplateConstant, listError)
	}

	repositories := []gitLabRepository{}
	if decodeError := json.Unmarshal([]byte(listResult.StandardOutput), &repositories); decodeError != nil {
		return steprunner.FatalOutcomef(gitLabListDecodeFailureTemplateConst, decodeError)
	}

	projectsDirectory, expansionError := ExpandHomePath(task.dependencies.FileSystem, task.dependencies.Settings.ProjectsDirectory)
	if expansionError != nil {
		return steprunner.FatalOutcome(expansionError.Error())
	}

	activityCutoff := task.dependencies.Clock.Now().Add(-task.dependencies.Settings.CloneRetention)
	clonedCount := 0
	skippedCount := 0
	inactiveCount := 0
	warningCount := 0
	for _, repository := range repositories {
		lastActivity, parseError := time.Parse(time.RFC3339, repository.LastActivityAt)
		if parseError != nil {
			task.dependencies.Reporter.Warningf(projectsTimestampFailureTemplateConst, repository.Name, parseError)
			warningCount++
			continue
		}
		if lastActivity.Before(activityCutoff) {
			inactiveCount++
			continue
		}

		targetDirectory := filepath.Join(projectsDirectory, repository.Name)
		if _, statError := task.dependencies.FileSystem.Stat(targetDirectory); statError == nil {
			skippedCount++
			continue
		}

		_, cloneError := task.dependencies.Executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments: []string{"clone", repository.SSHURLToRepo, targetDirectory},
		})
		if cloneError != nil {
			task.dependencies.Reporter.Warningf(projectsCloneFailureTemplateConstant, repository.Name, cloneError)
			warningCount++
			continue
		}
		clonedCount++
	}

	summary := fmt.Sprintf(projectsSummaryTemplateConstant, clonedCount, skippedCount, inactiveCount)
	if warningCount > 0 {
		return steprunner.WarningOutcome(summary)
	}
	return steprunner.SuccessOutcome(summary)
}
