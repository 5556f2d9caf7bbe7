package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all of your data to a JSON snapshot",
		Long: `Download a full snapshot of your LifeOS data. The file is written exactly
as the server produced it. Use 'lifeos import' to restore it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if outputPath == "-" {
				if _, err := a.client.ExportTo(ctx, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				return nil
			}

			dir := "."
			if outputPath != "" {
				dir = filepath.Dir(outputPath)
			}

			tmp, err := os.CreateTemp(dir, ".lifeos-export-*.json")
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename.

			suggested, err := a.client.ExportTo(ctx, tmp)
			if closeErr := tmp.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if outputPath == "" {
				outputPath = exportName(suggested)
			}

			if err := os.Rename(tmp.Name(), outputPath); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			total, err := countEntities(outputPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", total, outputPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: server-suggested name, use - for stdout)")

	return cmd
}

// exportName keeps only the base of the server's suggestion.
func exportName(suggested string) string {
	if name := filepath.Base(suggested); suggested != "" && name != "." && name != string(filepath.Separator) {
		return name
	}

	return fmt.Sprintf("lifeos-export-%s.json", time.Now().UTC().Format("20060102T150405Z"))
}

func countEntities(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var head struct {
		Meta struct {
			TotalEntities int `json:"totalEntities"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(f).Decode(&head); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	return head.Meta.TotalEntities, nil
}
