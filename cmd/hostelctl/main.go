// Hostelctl is a command-line client for the hostel management API.
//
// It walks an operator through enrolling a student (floor, room, bed,
// details), browses the business directory page by page, and exposes the
// underlying lookups as plain commands for scripting.
//
// Usage:
//
//	hostelctl [command] [flags]
//
// Running without arguments launches the interactive enrollment wizard.
// See 'hostelctl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/config"
	"github.com/hostelhub/hostelctl/internal/logging"
	"github.com/hostelhub/hostelctl/internal/ui"
	"github.com/hostelhub/hostelctl/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	apiURL      string
	profileName string
	tokenFlag   string
	logLevel    string
	formatFlag  string
)

// env is the resolved configuration of one invocation, filled by setup
var env struct {
	registry *config.Registry
	profile  *config.Profile
	token    string
	printer  *ui.Printer
}

var rootCmd = &cobra.Command{
	Use:   "hostelctl",
	Short: "Hostel management API client",
	Long: `A command-line client for the hostel management API.

Enroll students into free beds, browse the business directory and query
floors, rooms, beds and payment methods.

If no command is specified, the interactive enrollment wizard will launch.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides the profile and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Configuration profile to use")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Session token (default $"+config.EnvToken+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default silent)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "table", "Output format (table, json)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hostelctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// setup loads .env, logging and the configuration registry, then applies
// environment and flag overrides in that order
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	format, err := ui.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	env.printer = ui.NewPrinter(cmd.OutOrStdout()).WithFormat(format)

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := reg.ApplyEnv(); err != nil {
		return err
	}
	if name := strings.TrimSpace(profileName); name != "" {
		reg.EnsureProfile(name)
		reg.CurrentProfile = name
	}
	if apiURL != "" {
		if err := reg.SetBaseURL(reg.CurrentProfile, apiURL); err != nil {
			return err
		}
	}

	env.registry = reg
	env.profile = reg.ActiveProfile()
	env.token = tokenFlag
	if env.token == "" {
		env.token = config.TokenFromEnv()
	}

	logging.Debug("Configuration resolved",
		zap.String("profile", reg.CurrentProfile),
		zap.String("base_url", env.profile.BaseURL),
		zap.Bool("token", env.token != ""),
	)
	return nil
}

// newClient builds an API client for the active profile
func newClient() *apiclient.Client {
	return apiclient.NewClientFromProfile(env.profile, env.token)
}

// newClientFor builds an API client for another base URL with the active
// profile's connection settings
func newClientFor(baseURL string) *apiclient.Client {
	p := *env.profile
	p.BaseURL = strings.TrimRight(baseURL, "/")
	return apiclient.NewClientFromProfile(&p, env.token)
}

// fail prints an error box with troubleshooting tips and returns err.
// In JSON mode only the error is returned.
func fail(title string, err error) error {
	if !env.printer.JSON() {
		env.printer.PrintError(title, err, apiclient.TroubleshootingHint(err))
	}
	return err
}
