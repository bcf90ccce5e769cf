package steprunner

import (
	"fmt"
	"strings"
)

// OutcomeStatus discriminates the terminal severity of a setup step.
type OutcomeStatus string

// Supported outcome statuses.
const (
	OutcomeStatusSuccess OutcomeStatus = "success"
	OutcomeStatusWarning OutcomeStatus = "warning"
	OutcomeStatusFatal   OutcomeStatus = "fatal"
)

// Outcome captures the result a step reports back to the runner.
type Outcome struct {
	Status  OutcomeStatus
	Message string
}

// SuccessOutcome builds a success outcome with the provided message.
func SuccessOutcome(message string) Outcome {
	return Outcome{Status: OutcomeStatusSuccess, Message: strings.TrimSpace(message)}
}

// WarningOutcome builds a warning outcome with the provided message.
func WarningOutcome(message string) Outcome {
	return Outcome{Status: OutcomeStatusWarning, Message: strings.TrimSpace(message)}
}

// WarningOutcomef builds a warning outcome from the provided template.
func WarningOutcomef(template string, arguments ...any) Outcome {
	return WarningOutcome(fmt.Sprintf(template, arguments...))
}

// FatalOutcome builds a fatal outcome with the provided message.
func FatalOutcome(message string) Outcome {
	return Outcome{Status: OutcomeStatusFatal, Message: strings.TrimSpace(message)}
}

// FatalOutcomef builds a fatal outcome from the provided template.
func FatalOutcomef(template string, arguments ...any) Outcome {
	return FatalOutcome(fmt.Sprintf(template, arguments...))
}

// IsFailure reports whether the outcome terminates the step unsuccessfully.
func (outcome Outcome) IsFailure() bool {
	return outcome.Status == OutcomeStatusFatal
}
