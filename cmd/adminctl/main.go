package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/DeliveryConsole/internal/app"
	"github.com/utafrali/DeliveryConsole/internal/config"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
	"github.com/utafrali/DeliveryConsole/pkg/logger"
)

const (
	exitOK = iota
	exitError
	exitSessionExpired
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		usage(stderr)
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitError
	}

	// Load configuration from the environment and an optional .env file.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return exitError
	}

	log := logger.New("adminctl", cfg.LogLevel, cfg.LogFormat)

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize console", slog.String("error", err.Error()))
		return exitError
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Error("shutdown error", slog.String("error", err.Error()))
		}
	}()

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	result, err := cmd.run(ctx, &env{app: application, fs: fs, out: stdout}, args[1:])
	if err != nil {
		return report(stderr, err)
	}
	if result != nil {
		if err := printJSON(stdout, result); err != nil {
			return report(stderr, err)
		}
	}
	return exitOK
}

func report(w io.Writer, err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case apperrors.IsSessionExpired(err):
		fmt.Fprintln(w, "session expired, please log in again")
		return exitSessionExpired
	default:
		fmt.Fprintln(w, "error:", apperrors.Message(err))
		return exitError
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
