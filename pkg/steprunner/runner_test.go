package steprunner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/workstation/pkg/steprunner"
)

const (
	testFirstStepNameConstant   = "Homebrew applications"
	testSecondStepNameConstant  = "Folders"
	testThirdStepNameConstant   = "Git configuration"
	testFatalStepMessageConstant = "catalog file missing"
	runnerSubtestNameTemplate    = "%d_%s"
)

type recordingMessageSink struct {
	infoMessages    []string
	successMessages []string
	warningMessages []string
	errorMessages   []string
}

func (sink *recordingMessageSink) Info(message string)    { sink.infoMessages = append(sink.infoMessages, message) }
func (sink *recordingMessageSink) Success(message string) { sink.successMessages = append(sink.successMessages, message) }
func (sink *recordingMessageSink) Warning(message string) { sink.warningMessages = append(sink.warningMessages, message) }
func (sink *recordingMessageSink) Error(message string)   { sink.errorMessages = append(sink.errorMessages, message) }

func TestNewRunnerRequiresMessageSink(testInstance *testing.T) {
	_, creationError := steprunner.NewRunner(nil, zap.NewNop())
	require.Error(testInstance, creationError)
}

func TestExecuteIsolatesFatalSteps(testInstance *testing.T) {
	sink := &recordingMessageSink{}
	runner, creationError := steprunner.NewRunner(sink, zap.NewNop())
	require.NoError(testInstance, creationError)

	executedStepNames := []string{}
	steps := []steprunner.Step{
		{
			Name: testFirstStepNameConstant,
			Run: func(context.Context) steprunner.Outcome {
				executedStepNames = append(executedStepNames, testFirstStepNameConstant)
				return steprunner.FatalOutcome(testFatalStepMessageConstant)
			},
		},
		{
			Name: testSecondStepNameConstant,
			Run: func(context.Context) steprunner.Outcome {
				executedStepNames = append(executedStepNames, testSecondStepNameConstant)
				return steprunner.SuccessOutcome("folders processed")
			},
		},
		{
			Name: testThirdStepNameConstant,
			Run: func(context.Context) steprunner.Outcome {
				executedStepNames = append(executedStepNames, testThirdStepNameConstant)
				return steprunner.WarningOutcome("user.name left unset")
			},
		},
	}

	report := runner.Execute(context.Background(), steps)

	require.Equal(testInstance, []string{testFirstStepNameConstant, testSecondStepNameConstant, testThirdStepNameConstant}, executedStepNames)
	require.Equal(testInstance, []string{testFirstStepNameConstant}, report.FailedStepNames())
	require.True(testInstance, report.HasFailures())
	require.Len(testInstance, report.Results, 3)
	require.Equal(testInstance, steprunner.OutcomeStatusWarning, report.Results[2].Outcome.Status)
}

func TestExecuteRecoversPanickingSteps(testInstance *testing.T) {
	sink := &recordingMessageSink{}
	runner, creationError := steprunner.NewRunner(sink, zap.NewNop())
	require.NoError(testInstance, creationError)

	steps := []steprunner.Step{
		{
			Name: testFirstStepNameConstant,
			Run: func(context.Context) steprunner.Outcome {
				panic("unexpected condition")
			},
		},
		{
			Name: testSecondStepNameConstant,
			Run: func(context.Context) steprunner.Outcome {
				return steprunner.SuccessOutcome("")
			},
		},
	}

	report := runner.Execute(context.Background(), steps)

	require.Equal(testInstance, []string{testFirstStepNameConstant}, report.FailedStepNames())
	require.Equal(testInstance, steprunner.OutcomeStatusFatal, report.Results[0].Outcome.Status)
	require.Contains(testInstance, report.Results[0].Outcome.Message, "unexpected condition")
}

func TestExecuteSummaryMessages(testInstance *testing.T) {
	testCases := []struct {
		name                string
		outcome             steprunner.Outcome
		expectFailureNotice bool
	}{
		{
			name:                "all_steps_succeed",
			outcome:             steprunner.SuccessOutcome(""),
			expectFailureNotice: false,
		},
		{
			name:                "warnings_do_not_fail_the_run",
			outcome:             steprunner.WarningOutcome("partial install"),
			expectFailureNotice: false,
		},
		{
			name:                "fatal_steps_are_summarized",
			outcome:             steprunner.FatalOutcome(testFatalStepMessageConstant),
			expectFailureNotice: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sink := &recordingMessageSink{}
			runner, creationError := steprunner.NewRunner(sink, zap.NewNop())
			require.NoError(testInstance, creationError)

			report := runner.Execute(context.Background(), []steprunner.Step{
				{
					Name: testFirstStepNameConstant,
					Run:  func(context.Context) steprunner.Outcome { return testCase.outcome },
				},
			})

			if testCase.expectFailureNotice {
				require.True(testInstance, report.HasFailures())
				require.NotEmpty(testInstance, sink.warningMessages)
				lastWarning := sink.warningMessages[len(sink.warningMessages)-1]
				require.Contains(testInstance, lastWarning, testFirstStepNameConstant)
				require.Contains(testInstance, lastWarning, "re-run")
				return
			}

			require.False(testInstance, report.HasFailures())
			require.NotEmpty(testInstance, sink.successMessages)
			require.True(testInstance, strings.Contains(sink.successMessages[len(sink.successMessages)-1], "completed successfully"))
		})
	}
}
