package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifeos-app/lifeos/client"
	"github.com/lifeos-app/lifeos/internal/models"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		mode   string
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON snapshot",
		Long: `Upload a snapshot produced by 'lifeos export'. Use - to read from stdin.

Modes:
  replace  delete your current data, then load the snapshot (default)
  merge    keep your current data and add only records it does not have`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseImportMode(mode)
			if err != nil {
				return err
			}

			if m == models.ModeReplace && !dryRun && !yes {
				if args[0] == "-" {
					return errors.New("replace imports from stdin need --yes")
				}
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Replace ALL existing LifeOS data with this snapshot?")
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("import aborted")
				}
			}

			name, r, closeFn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := a.client.ImportFile(cmd.Context(), name, r, client.ImportOptions{Mode: m, DryRun: dryRun})
			if err != nil {
				if client.IsCheckpointFailure(err) {
					return fmt.Errorf("import stopped part way, earlier checkpoints were committed: %w", err)
				}
				return fmt.Errorf("import failed: %w", err)
			}

			return printImportResult(cmd.OutOrStdout(), a.settings.Format, result)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(models.ModeReplace), "Import mode: replace|merge")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt for replace imports")

	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a snapshot against the server without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, closeFn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeFn()

			doc, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			report, err := a.client.Validate(cmd.Context(), doc)
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			if err := printReport(cmd.OutOrStdout(), a.settings.Format, report); err != nil {
				return err
			}

			if !report.Valid {
				return fmt.Errorf("%s is not importable", args[0])
			}

			return nil
		},
	}
}

// openInput opens path, or stdin for "-".
func openInput(path string, stdin io.Reader) (string, io.Reader, func(), error) {
	if path == "-" {
		return "stdin.json", stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return filepath.Base(path), f, func() { f.Close() }, nil
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
