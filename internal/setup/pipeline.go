package setup

import (
	"context"

	"github.com/tyemirov/workstation/pkg/steprunner"
)

// Task is implemented by every setup task unit.
type Task interface {
	Name() string
	Run(executionContext context.Context) steprunner.Outcome
}

type taskConstructor func(Dependencies) (Task, error)

func adaptConstructor[TaskType Task](construct func(Dependencies) (TaskType, error)) taskConstructor {
	return func(dependencies Dependencies) (Task, error) {
		return construct(dependencies)
	}
}

var pipelineConstructors = []taskConstructor{
	adaptConstructor(NewHomebrewApplicationsTask),
	adaptConstructor(NewFoldersTask),
	adaptConstructor(NewGitConfigurationTask),
	adaptConstructor(NewOnePasswordSignInTask),
	adaptConstructor(NewInteractiveApplicationsTask),
	adaptConstructor(NewOpenVPNTask),
	adaptConstructor(NewAWSTask),
	adaptConstructor(NewSSHTask),
	adaptConstructor(NewProjectsTask),
	adaptConstructor(NewDevelopmentEnvironmentsTask),
	adaptConstructor(NewMacOSSettingsTask),
	adaptConstructor(NewDockTask),
	adaptConstructor(NewTerminalTask),
}

// BuildPipeline constructs every task in the fixed pipeline order and adapts
// them into runner steps.
func BuildPipeline(dependencies Dependencies) ([]steprunner.Step, error) {
	pipelineSteps := make([]steprunner.Step, 0, len(pipelineConstructors))
	for _, construct := range pipelineConstructors {
		constructedTask, constructionError := construct(dependencies)
		if constructionError != nil {
			return nil, constructionError
		}
		pipelineSteps = append(pipelineSteps, StepForTask(constructedTask))
	}
	return pipelineSteps, nil
}

// StepForTask adapts a task into a runner step.
func StepForTask(adaptedTask Task) steprunner.Step {
	return steprunner.Step{Name: adaptedTask.Name(), Run: adaptedTask.Run}
}
