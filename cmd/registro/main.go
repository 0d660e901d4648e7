// Command registro is the terminal client of the facial-recognition student registry.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duynhne/registro-facial/config"
	"github.com/duynhne/registro-facial/internal/remote"
	"github.com/duynhne/registro-facial/internal/terminal"
	"github.com/duynhne/registro-facial/middleware"
)

const (
	Version = "0.1.0"
	appName = "registro"
)

// BuildTime is set at link time.
var BuildTime = "dev"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand, built once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *remote.Client
	printer *terminal.Printer
	tracing bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		server   string
		logLevel string
		output   string
		timeout  time.Duration
	)
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Facial recognition student registry client",
		Long: `registro talks to the facial recognition backend.

Without a subcommand it opens an interactive session with the Analizar,
Registrar and Perfiles screens. The subcommands run one operation and exit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, server, logLevel, output, timeout)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.teardown()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSession(cmd.Context())
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&server, "server", "", "Backend base URL (overrides REGISTRY_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, json, yaml)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (overrides REGISTRY_TIMEOUT)")

	cmd.AddCommand(
		sessionCmd(a),
		listCmd(a),
		analyzeCmd(a),
		registerCmd(a),
		updateCmd(a),
		deleteCmd(a),
		versionCmd(stdout),
	)
	return cmd
}

// setup loads config, applies flag overrides and builds the logger and client.
func (a *app) setup(cmd *cobra.Command, server, logLevel, output string, timeout time.Duration) error {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Backend.BaseURL = strings.TrimRight(server, "/")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("output") {
		cfg.Output.Format = output
	}
	if flags.Changed("timeout") {
		cfg.Backend.Timeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := middleware.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if cfg.Tracing.Enabled {
		if _, err := middleware.InitTracing(cfg); err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			a.tracing = true
		}
	}

	a.cfg = cfg
	a.logger = logger
	a.printer = terminal.NewPrinter(a.stdout, cfg.Output.Format)
	a.client = remote.NewClient(cfg.Backend.BaseURL,
		remote.WithTimeout(cfg.Backend.Timeout),
		remote.WithLogger(logger.Named("remote")),
	)
	logger.Debug("Client configured",
		zap.String("server", cfg.Backend.BaseURL),
		zap.Duration("timeout", cfg.Backend.Timeout),
	)
	return nil
}

func (a *app) teardown() {
	if a.tracing {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := middleware.Shutdown(ctx); err != nil {
			a.logger.Warn("Tracer shutdown error", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
