package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fotogram/stackup/internal/config"
	"github.com/fotogram/stackup/internal/constants"
	apperrors "github.com/fotogram/stackup/internal/errors"
	"github.com/fotogram/stackup/internal/logger"
	"github.com/fotogram/stackup/internal/output"
)

var (
	configFile    string
	regionFlag    string
	profileFlag   string
	debug         bool
	verbose       bool
	timeout       string
	configLoadErr error
	signalStop    context.CancelFunc
	timeoutCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: "Deploy and tear down the fotogram two-tier infrastructure",
	Long: fmt.Sprintf(`%s %s

Creates the fotogram network and application CloudFormation stacks in
dependency order, publishes the static landing page into the application
bucket, and tears everything down again on demand.`,
		constants.ProjectName, *constants.GetVersion()),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger.Initialize(environment(), logLevel)

		if verbose {
			output.Infof("CLI build: %s", output.Bold(*constants.GetVersion()))
			output.Infof("Verbose output enabled")
		}

		// An interrupt cancels the context; in-flight poll loops notice
		// and abort with a non-zero exit.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		signalStop = stop
		cmd.SetContext(ctx)

		if timeout != "0" {
			timeoutDuration, err := parseTimeout(timeout)
			if err != nil {
				return fmt.Errorf("error parsing timeout: %w", err)
			}

			timeoutCtx, cancel := context.WithTimeout(cmd.Context(), timeoutDuration)
			timeoutCancel = cancel
			cmd.SetContext(timeoutCtx)

			if verbose {
				output.Infof("Timeout: %s", timeoutDuration)
			}
		} else if verbose {
			output.Infof("Timeout disabled")
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			// Commands that need configuration surface this through
			// getConfigFromContext; version works regardless.
			configLoadErr = err
			slog.Warn("failed to load configuration", "error", err)
			return nil
		}

		// --debug wins; otherwise the configured log_level applies.
		if !debug {
			logger.Initialize(environment(), cfg.GetLogLevel())
		}

		if regionFlag != "" {
			cfg.Region = regionFlag
		}

		if verbose {
			output.Infof("Region: %s", output.Bold(cfg.Region))
			output.Infof("Network stack: %s", output.Bold(cfg.Network.Name))
			output.Infof("App stack: %s", output.Bold(cfg.App.Name))
		}

		cmd.SetContext(context.WithValue(cmd.Context(), constants.ConfigCtxKey, cfg))
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		releaseContexts()
	},
}

// Execute runs the root command. Any failure is printed once and mapped
// to exit code 1.
func Execute() {
	err := rootCmd.Execute()
	releaseContexts()

	if err != nil {
		msg := apperrors.GetErrorMessage(err)
		if details := apperrors.GetErrorDetails(err); details != msg {
			slog.Debug("command failed", "details", details)
		}
		output.Fatal(msg)
	}
}

func releaseContexts() {
	if timeoutCancel != nil {
		timeoutCancel()
	}
	if signalStop != nil {
		signalStop()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", constants.DefaultConfigFileName,
		"Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&regionFlag, "region", "",
		"AWS region. Overrides the configured region")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "",
		"AWS shared config profile. Defaults to the AWS_PROFILE chain")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "3h",
		"Timeout for the whole command (e.g., 90m, 3h, or seconds; 0 disables)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
}

func environment() constants.Environment {
	if os.Getenv("STACKUP_ENV") == string(constants.Production) {
		return constants.Production
	}
	return constants.CLI
}

// parseTimeout parses a timeout string to time.Duration.
// Supports formats: "90m", "30s", "3h", "600" (number of seconds).
func parseTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		return constants.DefaultCommandTimeout, nil
	}

	duration, err := time.ParseDuration(timeoutStr)
	if err == nil {
		return duration, nil
	}

	seconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf(
			"invalid timeout format: %s (use a duration like '90m' or '3h', or seconds like '600')",
			timeoutStr)
	}

	return time.Duration(seconds) * time.Second, nil
}

// getConfigFromContext retrieves the config placed by PersistentPreRunE.
func getConfigFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(constants.ConfigCtxKey).(*config.Config)
	if !ok || cfg == nil {
		if configLoadErr != nil {
			return nil, configLoadErr
		}
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}

// RootCmd returns the root command for use by tools like doc generators.
func RootCmd() *cobra.Command {
	return rootCmd
}
