package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/oms/internal/domain"
	"github.com/roach88/oms/internal/ingest"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failed or accepted no rows
	ExitCommandError = 2 // Command error (bad flags, config, unreachable database, ...)
)

// Error codes used in JSON error output.
const (
	ErrCodeNoRows     = "E101" // no row survived cleaning
	ErrCodeReconcile  = "E102" // batch write failed
	ErrCodeStorefront = "E201" // storefront API failure
	ErrCodeCourier    = "E301" // courier API failure
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
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

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// ingestOutput is the JSON payload of the ingest command.
type ingestOutput struct {
	*ingest.Report
	Outcome ingest.Outcome           `json:"outcome"`
	DryRun  bool                     `json:"dry_run,omitempty"`
	Records []domain.CanonicalRecord `json:"records,omitempty"`
}

// Report prints an ingestion report. recs is only set for dry runs.
// A report that accepted no rows is printed as an ErrCodeNoRows error
// carrying the skipped-row diagnostics.
func (f *OutputFormatter) Report(rep *ingest.Report, dryRun bool, recs []domain.CanonicalRecord) error {
	none := rep.Outcome() == ingest.OutcomeNone
	if f.Format == "json" {
		data := ingestOutput{Report: rep, Outcome: rep.Outcome(), DryRun: dryRun, Records: recs}
		if none {
			return f.encode(CLIResponse{
				Status: "error",
				Error:  &CLIError{Code: ErrCodeNoRows, Message: "no rows accepted", Details: data},
			})
		}
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	w := f.Writer
	mode := ""
	if dryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "source: %s%s\n", rep.Source, mode)
	fmt.Fprintf(w, "accepted %d of %d rows (%s)\n", rep.Accepted, rep.Total, rep.Outcome())

	if len(rep.Skipped) > 0 {
		fmt.Fprintln(w, "skipped:")
		for _, s := range rep.Skipped {
			fmt.Fprintf(w, "  row %d: %s\n", s.Row, s.Reason)
		}
	}

	if res := rep.Result; res != nil {
		c := res.Created
		fmt.Fprintf(w, "created: %d customers, %d categories, %d products, %d orders, %d payments, %d items\n",
			c.Customers, c.Categories, c.Products, c.Orders, c.PaymentItems, c.OrderItems)
	}

	if len(recs) > 0 {
		fmt.Fprintln(w, "records:")
		for _, r := range recs {
			fmt.Fprintf(w, "  row %d: %s %s %s/%s qty %d @ %s = %s (%s, %s)\n",
				r.Row, r.Phone, r.ProductTitle, r.Size, r.Color, r.Quantity,
				domain.FormatMoney(r.PricePerUnit), domain.FormatMoney(r.Price), r.Medium, r.Status)
		}
	}

	if none {
		fmt.Fprintf(w, "Error [%s]: no rows accepted\n", ErrCodeNoRows)
	}
	return nil
}
