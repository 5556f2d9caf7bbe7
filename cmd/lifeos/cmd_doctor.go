package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server readiness and auth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			results := runChecks(ctx, a)
			if !printChecks(cmd.OutOrStdout(), results) {
				return errors.New("doctor found issues")
			}

			return nil
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runChecks(ctx context.Context, a *app) []checkResult {
	var results []checkResult

	cfgPath := defaultConfigPath()
	if cfg, err := loadConfigFile(cfgPath); err != nil || cfg == nil {
		detail := cfgPath
		if err != nil {
			detail = err.Error()
		}
		results = append(results, checkResult{Name: "Config file", Detail: detail, Hint: "Run: lifeos init"})
	} else {
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: cfgPath})
	}

	if a.settings.APIKey == "" {
		results = append(results, checkResult{
			Name: "API key",
			Hint: "Set --api-key, LIFEOS_API_KEY, or run lifeos init",
		})
	} else {
		results = append(results, checkResult{Name: "API key", Passed: true, Detail: "configured"})
	}

	health, err := a.client.Health(ctx)
	if err != nil {
		results = append(results, checkResult{
			Name: "Server reachable", Detail: a.settings.URL,
			Hint: fmt.Sprintf("Is the LifeOS server running? Error: %v", err),
		})
		return results
	}
	results = append(results, checkResult{Name: "Server reachable", Passed: true, Detail: health.Version})

	ready, err := a.client.Ready(ctx)
	switch {
	case err != nil:
		results = append(results, checkResult{Name: "Server ready", Hint: err.Error()})
	case !ready.Ready():
		results = append(results, checkResult{
			Name: "Server ready", Detail: describeChecks(ready.Checks),
			Hint: "Check the server logs; migrations may be pending",
		})
	default:
		results = append(results, checkResult{
			Name: "Server ready", Passed: true,
			Detail: fmt.Sprintf("schema version %d", ready.SchemaVersion),
		})
	}

	if a.settings.APIKey != "" {
		if err := checkAuth(ctx, a.client); err != nil {
			results = append(results, checkResult{Name: "Authentication", Hint: err.Error()})
		} else {
			results = append(results, checkResult{Name: "Authentication", Passed: true, Detail: "valid"})
		}
	}

	return results
}

func describeChecks(checks map[string]string) string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var s string
	for i, name := range names {
		if i > 0 {
			s += ", "
		}
		s += name + "=" + checks[name]
	}

	return s
}

func printChecks(w io.Writer, results []checkResult) bool {
	allPassed := true

	fmt.Fprintln(w)
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}

		if r.Detail != "" {
			fmt.Fprintf(w, "%s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(w, "%s %s\n", mark, r.Name)
		}

		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(w, "     Hint: %s\n", r.Hint)
		}
	}
	fmt.Fprintln(w)

	return allPassed
}
