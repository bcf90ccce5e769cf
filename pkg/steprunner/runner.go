package steprunner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	stepStartTemplateConstant          = "Step %d/%d: %s"
	stepWarningTemplateConstant        = "%s finished with a warning: %s"
	stepFatalTemplateConstant          = "%s failed: %s"
	stepPanicTemplateConstant          = "step panicked: %v"
	runSummarySuccessMessageConstant   = "All setup steps completed successfully!"
	runSummaryFailureTemplateConstant  = "%d step(s) did not complete: %s. Review the messages above and re-run the setup."
	stepNameLogFieldConstant           = "step_name"
	stepStatusLogFieldConstant         = "step_status"
	stepMessageLogFieldConstant        = "step_message"
	stepCompletedLogMessageConstant    = "setup step completed"
	failedStepNamesSeparatorConstant   = ", "
	runnerMissingSinkMessageConstant   = "step runner message sink not configured"
	defaultOutcomeFallbackEmptyMessage = ""
)

// MessageSink receives the operator-facing commentary emitted by the runner.
type MessageSink interface {
	Info(message string)
	Success(message string)
	Warning(message string)
	Error(message string)
}

// Step pairs a human-readable name with the action executed for it.
type Step struct {
	Name string
	Run  func(executionContext context.Context) Outcome
}

// StepResult records the outcome observed for a named step.
type StepResult struct {
	Name    string
	Outcome Outcome
}

// RunReport aggregates every step result for a single pipeline execution.
type RunReport struct {
	Results []StepResult
}

// FailedStepNames returns the names of steps that ended with a fatal outcome, in execution order.
func (report RunReport) FailedStepNames() []string {
	failedNames := make([]string, 0, len(report.Results))
	for _, result := range report.Results {
		if result.Outcome.IsFailure() {
			failedNames = append(failedNames, result.Name)
		}
	}
	return failedNames
}

// HasFailures reports whether any step ended with a fatal outcome.
func (report RunReport) HasFailures() bool {
	return len(report.FailedStepNames()) > 0
}

// Runner executes setup steps sequentially while isolating their failures.
type Runner struct {
	messageSink MessageSink
	logger      *zap.Logger
}

// NewRunner constructs a Runner writing commentary to the provided sink.
func NewRunner(messageSink MessageSink, logger *zap.Logger) (*Runner, error) {
	if messageSink == nil {
		return nil, fmt.Errorf(runnerMissingSinkMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{messageSink: messageSink, logger: logger}, nil
}

// Execute runs every step exactly once, in order, and never aborts the pipeline.
// Fatal outcomes and panics are absorbed into the returned report so later
// steps always execute.
func (runner *Runner) Execute(executionContext context.Context, steps []Step) RunReport {
	report := RunReport{Results: make([]StepResult, 0, len(steps))}

	for stepIndex, step := range steps {
		runner.messageSink.Info(fmt.Sprintf(stepStartTemplateConstant, stepIndex+1, len(steps), step.Name))

		outcome := runner.runIsolated(executionContext, step)
		report.Results = append(report.Results, StepResult{Name: step.Name, Outcome: outcome})

		runner.logger.Info(stepCompletedLogMessageConstant,
			zap.String(stepNameLogFieldConstant, step.Name),
			zap.String(stepStatusLogFieldConstant, string(outcome.Status)),
			zap.String(stepMessageLogFieldConstant, outcome.Message),
		)

		switch outcome.Status {
		case OutcomeStatusWarning:
			runner.messageSink.Warning(fmt.Sprintf(stepWarningTemplateConstant, step.Name, outcome.Message))
		case OutcomeStatusFatal:
			runner.messageSink.Error(fmt.Sprintf(stepFatalTemplateConstant, step.Name, outcome.Message))
		default:
			if len(outcome.Message) > 0 {
				runner.messageSink.Success(outcome.Message)
			}
		}
	}

	runner.emitSummary(report)
	return report
}

func (runner *Runner) runIsolated(executionContext context.Context, step Step) (outcome Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = FatalOutcomef(stepPanicTemplateConstant, recovered)
		}
	}()

	if step.Run == nil {
		return SuccessOutcome(defaultOutcomeFallbackEmptyMessage)
	}
	return step.Run(executionContext)
}

func (runner *Runner) emitSummary(report RunReport) {
	failedNames := report.FailedStepNames()
	if len(failedNames) == 0 {
		runner.messageSink.Success(runSummarySuccessMessageConstant)
		return
	}

	runner.messageSink.Warning(fmt.Sprintf(
		runSummaryFailureTemplateConstant,
		len(failedNames),
		strings.Join(failedNames, failedStepNamesSeparatorConstant),
	))
}
