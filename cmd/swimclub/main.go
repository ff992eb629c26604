package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"swimclub/internal/app"
	"swimclub/internal/config"
	"swimclub/internal/domain/account"
)

const programName = "swimclub"

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

// cli holds the global flags and the loaded configuration of one invocation.
type cli struct {
	debug      bool
	configFile string
	user       string
	password   string
	cfg        *config.Config
	logOut     io.Writer
}

// commonRun configures the default logger from the config and flags.
func (c *cli) commonRun() {
	logLevel := c.cfg.LogLevel()
	addSource := false
	if c.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	opts := &slog.HandlerOptions{AddSource: addSource, Level: logLevel}
	var handler slog.Handler
	if c.cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(c.logOut, opts)
	} else {
		handler = slog.NewTextHandler(c.logOut, opts)
	}
	slog.SetDefault(slog.New(handler).With("component", programName))
}

// withApp opens the engine, checks perm when login is required, runs fn and closes the engine.
// An empty perm skips the login check.
func (c *cli) withApp(perm account.Permission, fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cmd.Context(), c.cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Warn("app_close_failed", "error", err)
			}
		}()
		if c.cfg.Auth.Required && perm != "" {
			if _, err := c.login(a, perm); err != nil {
				return err
			}
		}
		return fn(cmd, a, args)
	}
}

// emit prints lines and turns an "Error: " first line into a non-zero exit.
func emit(cmd *cobra.Command, lines ...string) error {
	for _, l := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), l)
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "Error: ") {
		return errReported
	}
	return nil
}

func newRootCommand() *cobra.Command {
	c := &cli{logOut: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Swim club membership and payment administration",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c.cfg = cfg
			c.commonRun()
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&c.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&c.configFile, "config", "", "path to config file (default ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().
		StringVar(&c.user, "user", "", "staff username (or "+config.EnvPrefix+"_USER)")
	rootCmd.PersistentFlags().
		StringVar(&c.password, "password", "", "staff password (or "+config.EnvPrefix+"_PASSWORD)")

	// Subcommands
	rootCmd.AddCommand(c.memberCommand())
	rootCmd.AddCommand(c.paymentCommand())
	rootCmd.AddCommand(c.ratesCommand())
	rootCmd.AddCommand(c.reminderCommand())
	rootCmd.AddCommand(c.accountCommand())
	rootCmd.AddCommand(c.configCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
