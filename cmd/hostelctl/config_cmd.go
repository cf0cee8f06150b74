package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hostelhub/hostelctl/internal/config"
	"github.com/hostelhub/hostelctl/internal/ui"
)

var configForce bool

// configCmd manages the configuration file. Its subcommands read and write
// the file directly so environment and flag overrides are never persisted.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage profiles and preferences",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration file and effective settings",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <baseURL>",
	Short: "Set the API base URL of a profile",
	Long: `Set the API base URL of the profile named by --profile, or of the
current profile. The profile is created if it does not exist.`,
	Example: `  hostelctl config set-url https://api.hostel.example
  hostelctl config set-url http://localhost:8080 --profile dev`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetURL,
}

var configUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Make a profile the current one",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUse,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd, configInitCmd, configSetURLCmd, configUseCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfigFile reads the file without environment overrides
func loadConfigFile() (*config.Registry, string, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, "", err
	}
	reg, err := config.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return reg, path, nil
}

// saveBaseURL stores baseURL in the profile selected by --profile or the
// file's current profile, returning the profile name
func saveBaseURL(baseURL string) (string, error) {
	reg, path, err := loadConfigFile()
	if err != nil {
		return "", err
	}
	name := profileName
	if name == "" {
		name = reg.CurrentProfile
	}
	if err := reg.SetBaseURL(name, baseURL); err != nil {
		return "", err
	}
	if err := reg.Validate(); err != nil {
		return "", err
	}
	if err := reg.SaveTo(path); err != nil {
		return "", err
	}
	return name, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	p := env.printer
	_, path, err := loadConfigFile()
	if err != nil {
		return err
	}

	if p.JSON() {
		return p.PrintJSON(map[string]any{
			"path":     path,
			"current":  env.registry.CurrentProfile,
			"baseUrl":  env.profile.BaseURL,
			"token":    env.token != "",
			"profiles": env.registry.Profiles,
			"prefs":    env.registry.Preferences,
		})
	}

	_, statErr := os.Stat(path)
	p.PrintHeader("Configuration", "hostelctl config show",
		ui.F("File", path),
		ui.F("Exists", strconv.FormatBool(statErr == nil)),
		ui.F("Profile", env.registry.CurrentProfile),
		ui.F("Base URL", env.profile.BaseURL),
	)

	t := &ui.Table{Columns: []string{"", "PROFILE", "BASE URL", "TIMEOUT", "RETRIES", "RATE"}}
	for _, name := range env.registry.ProfileNames() {
		pr := env.registry.Profiles[name]
		marker := ""
		if name == env.registry.CurrentProfile {
			marker = "*"
		}
		t.Rows = append(t.Rows, []string{
			marker, name, pr.BaseURL,
			fmt.Sprintf("%ds", pr.TimeoutSeconds),
			strconv.Itoa(pr.MaxRetries),
			fmt.Sprintf("%g/s", pr.RequestsPerSecond),
		})
	}
	p.Print(t.Render())
	p.Newline()

	if prefs := env.registry.Preferences; prefs != nil {
		p.Println(ui.TableNoteStyle.Render(fmt.Sprintf(
			"page sizes %d/%d, default category %q, discovery timeout %ds",
			prefs.InitialPageSize, prefs.LoadMorePageSize, prefs.DefaultCategoryID, prefs.DiscoverTimeout,
		)))
	}
	if env.token == "" {
		p.Println(ui.TableNoteStyle.Render("no session token; run 'hostelctl login'"))
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	reg := config.NewRegistry()
	if err := reg.Save(); err != nil {
		return err
	}
	env.printer.PrintSuccess("Configuration written", ui.F("File", path), ui.F("Base URL", config.DefaultBaseURL))
	return nil
}

func runConfigSetURL(cmd *cobra.Command, args []string) error {
	name, err := saveBaseURL(args[0])
	if err != nil {
		return err
	}
	env.printer.PrintSuccess("Base URL updated", ui.F("Profile", name), ui.F("Base URL", args[0]))
	return nil
}

func runConfigUse(cmd *cobra.Command, args []string) error {
	reg, path, err := loadConfigFile()
	if err != nil {
		return err
	}
	if err := reg.UseProfile(args[0]); err != nil {
		return err
	}
	if err := reg.SaveTo(path); err != nil {
		return err
	}
	env.printer.PrintSuccess("Profile selected", ui.F("Profile", args[0]))
	return nil
}
