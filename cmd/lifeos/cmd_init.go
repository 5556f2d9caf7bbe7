package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifeos-app/lifeos/client"
	"github.com/lifeos-app/lifeos/internal/models"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up LifeOS CLI configuration",
		Long:  "Interactive setup that writes a profile to ~/.lifeos/config.yaml.\nPass --url and --api-key to skip the prompts.",
		Args:  cobra.NoArgs,
		// Skip client setup; the config may not exist yet.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			nonInteractive := flags.Changed("url") || flags.Changed("api-key")

			name := a.settings.Profile
			if name == "" {
				name = defaultProfile
			}

			url := ""
			if flags.Changed("url") {
				url = a.settings.URL
			}

			return runInit(cmd, defaultConfigPath(), name, url, a.settings.APIKey, nonInteractive)
		},
	}
}

func runInit(cmd *cobra.Command, cfgPath, name, url, apiKey string, nonInteractive bool) error {
	out := cmd.OutOrStdout()

	if !nonInteractive {
		reader := bufio.NewReader(cmd.InOrStdin())

		fmt.Fprintln(out, "\n  LifeOS Setup")
		fmt.Fprintln(out)

		fmt.Fprintf(out, "  Server URL [%s]: ", defaultURL)
		line, _ := reader.ReadString('\n')
		url = strings.TrimSpace(line)

		fmt.Fprint(out, "  API Key: ")
		keyLine, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(keyLine)
	}

	if url == "" {
		url = defaultURL
	}

	if apiKey == "" {
		return errors.New("API key is required")
	}

	if cfgPath == "" {
		return errors.New("cannot locate home directory; set LIFEOS_CONFIG")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	ver, err := checkConnection(ctx, client.New(url, client.WithAPIKey(apiKey)))
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if err := saveProfile(cfgPath, name, profile{URL: url, APIKey: apiKey}); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "Connected to LifeOS %s. Profile %q saved to %s\n", ver, name, cfgPath)

	return nil
}

// checkConnection confirms the server is up and accepts the key. An empty
// snapshot is validated because it needs authentication but writes nothing.
func checkConnection(ctx context.Context, c *client.Client) (string, error) {
	health, err := c.Health(ctx)
	if err != nil {
		return "", err
	}

	if err := checkAuth(ctx, c); err != nil {
		return "", err
	}

	return health.Version, nil
}

func checkAuth(ctx context.Context, c *client.Client) error {
	empty, err := json.Marshal(models.NewSnapshot(models.SnapshotData{}, time.Now()))
	if err != nil {
		return err
	}

	if _, err := c.Validate(ctx, empty); err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("API key rejected")
		}
		return err
	}

	return nil
}
