package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

const (
	infoPrefixConstant    = "[INFO]"
	successPrefixConstant = "[DONE]"
	warningPrefixConstant = "[WARN]"
	errorPrefixConstant   = "[ERROR]"
)

var (
	infoPrefixPainter    = color.New(color.FgBlue, color.Bold)
	successPrefixPainter = color.New(color.FgGreen, color.Bold)
	warningPrefixPainter = color.New(color.FgYellow, color.Bold)
	errorPrefixPainter   = color.New(color.FgRed, color.Bold)
)

// Reporter writes the four-class, color-prefixed console commentary used by
// every setup task: info, success, warning, and error messages.
type Reporter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewReporter constructs a Reporter writing to the provided destination.
// A nil writer falls back to standard output.
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

// Info emits an informational progress message.
func (reporter *Reporter) Info(message string) {
	reporter.emit(infoPrefixPainter, infoPrefixConstant, message)
}

// Infof emits an informational message built from the template.
func (reporter *Reporter) Infof(template string, arguments ...any) {
	reporter.Info(fmt.Sprintf(template, arguments...))
}

// Success emits a completion message.
func (reporter *Reporter) Success(message string) {
	reporter.emit(successPrefixPainter, successPrefixConstant, message)
}

// Successf emits a completion message built from the template.
func (reporter *Reporter) Successf(template string, arguments ...any) {
	reporter.Success(fmt.Sprintf(template, arguments...))
}

// Warning emits a non-fatal problem message.
func (reporter *Reporter) Warning(message string) {
	reporter.emit(warningPrefixPainter, warningPrefixConstant, message)
}

// Warningf emits a non-fatal problem message built from the template.
func (reporter *Reporter) Warningf(template string, arguments ...any) {
	reporter.Warning(fmt.Sprintf(template, arguments...))
}

// Error emits a task-fatal problem message.
func (reporter *Reporter) Error(message string) {
	reporter.emit(errorPrefixPainter, errorPrefixConstant, message)
}

// Errorf emits a task-fatal problem message built from the template.
func (reporter *Reporter) Errorf(template string, arguments ...any) {
	reporter.Error(fmt.Sprintf(template, arguments...))
}

// Plain writes a message without any severity prefix.
func (reporter *Reporter) Plain(message string) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintln(reporter.writer, message)
}

func (reporter *Reporter) emit(painter *color.Color, prefix string, message string) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, "%s %s\n", painter.Sprint(prefix), message)
}
