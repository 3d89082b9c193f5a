package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/vk/promptgrid/internal/app"
	"github.com/vk/promptgrid/internal/evaluator"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("promptgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
PromptGrid - A reactive dataflow engine for prompt and model-call graphs.

Usage:
  promptgrid [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a single .hcl file, a directory containing .hcl files,
    or a .json/.msgpack graph snapshot.

Environment:
  OPENAI_API_KEY
    API key for the model-call nodes. Read from .env when present.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text', 'json' or 'pretty'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	debounceFlag := flagSet.Duration("debounce", evaluator.DefaultDebounce, "Quiet period before a changed node is re-evaluated.")
	asyncTimeoutFlag := flagSet.Duration("async-timeout", 2*time.Minute, "Upper bound for a single model call. 0 disables it.")
	triggerFlag := flagSet.String("trigger", "", "Comma-separated ids of lazy nodes to trigger once the graph settles.")
	outFlag := flagSet.String("out", "", "Write the settled graph to this .json, .msgpack or .mpk snapshot.")
	broadcastFlag := flagSet.String("broadcast", "", "socket.io server URL to mirror graph changes to.")
	openAIBaseURLFlag := flagSet.String("openai-base-url", "", "Base URL of an OpenAI-compatible API.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:       path,
		LogFormat:       strings.ToLower(*logFormatFlag),
		LogLevel:        strings.ToLower(*logLevelFlag),
		HealthcheckPort: *healthPortFlag,
		Debounce:        *debounceFlag,
		AsyncTimeout:    *asyncTimeoutFlag,
		Triggers:        splitList(*triggerFlag),
		OutputPath:      *outFlag,
		BroadcastURL:    *broadcastFlag,
		OpenAIBaseURL:   *openAIBaseURLFlag,
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "graph", config.GraphPath)
	return config, false, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
