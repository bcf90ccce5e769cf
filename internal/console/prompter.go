package console

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter abstracts operator interaction so tasks remain testable without a
// real terminal. Non-interactive sessions report IsInteractive false and tasks
// degrade to warnings with manual-completion instructions.
type Prompter interface {
	PromptText(prompt string, defaultValue string) (string, error)
	Confirm(prompt string) (bool, error)
	WaitForEnter(prompt string) error
	IsInteractive() bool
}

const (
	affirmativeShortResponseConstant = "y"
	affirmativeLongResponseConstant  = "yes"
)

// IOPrompter reads operator responses from an io.Reader and echoes prompts to
// an io.Writer.
type IOPrompter struct {
	reader      *bufio.Reader
	writer      io.Writer
	interactive bool
}

// NewIOPrompter constructs a prompter over the provided streams.
func NewIOPrompter(input io.Reader, output io.Writer, interactive bool) *IOPrompter {
	return &IOPrompter{reader: bufio.NewReader(input), writer: output, interactive: interactive}
}

// NewTerminalPrompter constructs a prompter over the process standard streams,
// detecting interactivity from the standard input device.
func NewTerminalPrompter() *IOPrompter {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	return NewIOPrompter(os.Stdin, os.Stdout, interactive)
}

// IsInteractive reports whether an interactive input stream is attached.
func (prompter *IOPrompter) IsInteractive() bool {
	return prompter.interactive
}

// PromptText writes the prompt and returns the trimmed response, or the
// default value when the response is empty.
func (prompter *IOPrompter) PromptText(prompt string, defaultValue string) (string, error) {
	response, readError := prompter.readResponse(prompt)
	if readError != nil {
		return "", readError
	}
	if len(response) == 0 {
		return defaultValue, nil
	}
	return response, nil
}

// Confirm writes the prompt and interprets y/yes answers as affirmative.
func (prompter *IOPrompter) Confirm(prompt string) (bool, error) {
	response, readError := prompter.readResponse(prompt)
	if readError != nil {
		return false, readError
	}
	normalizedResponse := strings.ToLower(response)
	return normalizedResponse == affirmativeShortResponseConstant || normalizedResponse == affirmativeLongResponseConstant, nil
}

// WaitForEnter blocks until the operator presses enter.
func (prompter *IOPrompter) WaitForEnter(prompt string) error {
	_, readError := prompter.readResponse(prompt)
	return readError
}

func (prompter *IOPrompter) readResponse(prompt string) (string, error) {
	if prompter.writer != nil && len(prompt) > 0 {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return "", readError
	}
	return strings.TrimSpace(response), nil
}
