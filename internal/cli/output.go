package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/stratasim/internal/harness"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Assertion failure, golden mismatch or digest mismatch
	ExitCommandError = 2 // Bad arguments, unreadable scenario, journal not found
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors come from cobra's argument and flag parsing and map to
// ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the standard JSON envelope.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"` // "E_ASSERTION", "E_DIGEST_MISMATCH", ...
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data as an "ok" envelope in JSON mode, or with Println in
// text mode.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes an error envelope, or a one-line message in text mode.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Result writes a payload whose status depends on failed. In text mode it
// does nothing; commands print their own text.
func (f *OutputFormatter) Result(data any, failed bool, code, message string) error {
	if f.Format != "json" {
		return nil
	}
	resp := CLIResponse{Status: "ok", Data: data}
	if failed {
		resp.Status = "error"
		resp.Error = &CLIError{Code: code, Message: message}
	}
	return f.encode(resp)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog writes a diagnostic line when verbose mode is on. Lines go to
// ErrWriter when set so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

var (
	passMark = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")

	statusColors = map[string]*color.Color{
		"Completed": color.New(color.FgGreen),
		"Failed":    color.New(color.FgRed),
		"Analyzing": color.New(color.FgYellow),
		"Pending":   color.New(color.Faint),
	}
	bandColors = map[string]*color.Color{
		"Excellent": color.New(color.FgGreen, color.Bold),
		"Good":      color.New(color.FgGreen),
		"Fair":      color.New(color.FgYellow),
		"Poor":      color.New(color.FgRed, color.Bold),
	}
)

func mark(pass bool) string {
	if pass {
		return passMark
	}
	return failMark
}

func paint(colors map[string]*color.Color, s string) string {
	if c, ok := colors[s]; ok {
		return c.Sprint(s)
	}
	return s
}

// shortDigest trims a digest for text output.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// formatRow renders one read-back row for text output.
func formatRow(pipeline string, row harness.Row) string {
	switch pipeline {
	case harness.PipelineDocuments:
		line := fmt.Sprintf("%v  %v  %s", row["id"], row["filename"], paint(statusColors, fmt.Sprint(row["status"])))
		if wc, ok := row["word_count"]; ok {
			entities, _ := row["key_entities"].([]string)
			line += fmt.Sprintf("  words=%v entities=[%s]", wc, strings.Join(entities, ", "))
		}
		return line
	case harness.PipelineInspection:
		return fmt.Sprintf("%v  %s (%v)  $%v  %v",
			row["name"], paint(bandColors, fmt.Sprint(row["band"])), row["condition_score"],
			row["estimated_cost"], row["recommendation"])
	case harness.PipelineAssignment:
		if inspector, ok := row["assigned_inspector_id"]; ok {
			return fmt.Sprintf("%v -> %v  score=%.2f", row["id"], inspector, row["score"])
		}
		return fmt.Sprintf("%v  %s", row["id"], color.New(color.Faint).Sprint("unassigned"))
	}
	return fmt.Sprint(map[string]any(row))
}
