package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Structured logging setup for the job runner and the CLI.
 *
 * Description:	charmbracelet/log is declared in the teacher's go.mod
 *		but never actually called; this is the first real call
 *		site, configured the way the teacher's own cmd/* binaries
 *		wire up a verbosity flag. The optional "ts" field mirrors
 *		kissutil's "-T" strftime-format flag, which precedes each
 *		received frame with a user-chosen timestamp format.
 *
 *---------------------------------------------------------------*/

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is the package-level logger every component in this module
// logs through. CLI entrypoints reconfigure it at startup.
var Logger = log.NewWithOptions(io.Discard, log.Options{})

var timestampPattern *strftime.Strftime

// ConfigureLogger points Logger at w with a verbosity level. If
// timestampFormat is non-empty, every subsequent Log* call adds a "ts"
// field formatted with that strftime pattern, the same opt-in
// kissutil offers via its "-T" flag; left empty, log lines carry no
// extra timestamp beyond charmbracelet/log's own.
func ConfigureLogger(w io.Writer, verbose bool, timestampFormat string) error {
	Logger = log.NewWithOptions(w, log.Options{ReportTimestamp: true})

	if verbose {
		Logger.SetLevel(log.DebugLevel)
	} else {
		Logger.SetLevel(log.InfoLevel)
	}

	timestampPattern = nil

	if timestampFormat != "" {
		pattern, err := strftime.New(timestampFormat)
		if err != nil {
			return err
		}

		timestampPattern = pattern
	}

	return nil
}

// withTimestamp appends a "ts" keyval pair when a --timestamp-format
// pattern has been configured.
func withTimestamp(keyvals []interface{}) []interface{} {
	if timestampPattern == nil {
		return keyvals
	}

	return append(keyvals, "ts", timestampPattern.FormatString(time.Now()))
}

// LogJobStarted logs the start of a patch job.
func LogJobStarted(cmd PatchCommand, kind PatchKind) {
	Logger.Info("job started", withTimestamp([]interface{}{
		"kind", kind.String(), "input", cmd.InputFile, "patch", cmd.PatchFile, "output", cmd.OutputFile,
	})...)
}

// LogHunkApplied logs one successful hunk/command application.
func LogHunkApplied(hunkCount int) {
	Logger.Debug("hunk applied", withTimestamp([]interface{}{"hunk_count", hunkCount})...)
}

// LogJobFinished logs the terminal outcome of a job.
func LogJobFinished(cmd PatchCommand, term TerminalStatus, hunkCount int) {
	if term == Ok {
		Logger.Info("job finished", withTimestamp([]interface{}{"output", cmd.OutputFile, "hunk_count", hunkCount})...)
	} else {
		Logger.Error("job failed", withTimestamp([]interface{}{
			"output", cmd.OutputFile, "status", term.String(), "message", term.Message(hunkCount),
		})...)
	}
}
