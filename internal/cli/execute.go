package cli

import (
	"errors"
	"io"
)

// Execute runs the root command with args and reports a returned error in
// the requested output format. It returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Argument and flag errors from cobra.
		err = WrapExitError(ExitCommandError, ErrCodeGeneric, "usage error", err)
	}

	f := &OutputFormatter{Format: formatFromArgs(args), Writer: stderr}
	if f.Format == "json" {
		// Keep stdout a stream of JSON responses.
		f.Writer = stdout
	}
	_ = f.Error(errorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// formatFromArgs recovers --format for errors raised before or during flag
// parsing, when RootOptions may not be populated.
func formatFromArgs(args []string) string {
	for i, a := range args {
		switch {
		case a == "--format=json":
			return "json"
		case a == "--format" && i+1 < len(args) && args[i+1] == "json":
			return "json"
		}
	}
	return "text"
}
