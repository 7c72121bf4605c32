package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

func newLogger(w io.Writer, verbose bool, format string) (*slog.Logger, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", logFormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case logFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format '%s', must be '%s' or '%s'", format, logFormatText, logFormatJSON)
	}
}

// loggerFor builds the logger configured by the root command flags.
// Logs go to the root error writer so they never mix with trace output.
func loggerFor(cmd *cli.Command) (*slog.Logger, error) {
	root := cmd.Root()
	w := root.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return newLogger(w, root.Bool(flagVerbose), root.String(flagLogFormat))
}

func outputWriter(cmd *cli.Command) io.Writer {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	return w
}
