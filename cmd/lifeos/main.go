package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifeos-app/lifeos/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3030"

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("lifeos version %s (commit: %s, built: %s)", version, commit, buildDate)
	}

	return fmt.Sprintf("lifeos version %s-dev", version)
}

// app carries the resolved connection settings into every subcommand.
type app struct {
	settings settings
	client   *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "lifeos",
		Short:   "LifeOS CLI: export, import and validate your LifeOS data",
		Version: versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.settings.URL, "url", defaultURL, "LifeOS server URL (env: LIFEOS_URL)")
	pf.StringVar(&a.settings.APIKey, "api-key", "", "API key (env: LIFEOS_API_KEY)")
	pf.StringVar(&a.settings.Profile, "profile", "", "Config profile (default: active_profile from the config file)")
	pf.StringVar(&a.settings.Format, "format", "table", "Output format: json|table")

	rootCmd.AddCommand(
		newInitCmd(a),
		newDoctorCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newValidateCmd(a),
	)

	return rootCmd
}

// setup resolves flags, environment and config file into a client.
func (a *app) setup(cmd *cobra.Command) error {
	if a.settings.Format != "json" && a.settings.Format != "table" {
		return fmt.Errorf("--format must be json or table, got %q", a.settings.Format)
	}

	cfg, err := loadConfigFile(defaultConfigPath())
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	flags := cmd.Flags()
	a.settings = resolveSettings(a.settings, flags.Changed("url"), flags.Changed("api-key"), os.Getenv, cfg)

	opts := []client.Option{}
	if a.settings.APIKey != "" {
		opts = append(opts, client.WithAPIKey(a.settings.APIKey))
	}

	a.client = client.New(a.settings.URL, opts...)

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
