package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/arithmetictrainer/internal/config"
	"github.com/verte-zerg/arithmetictrainer/internal/model"
	"github.com/verte-zerg/arithmetictrainer/internal/stats"
	"github.com/verte-zerg/arithmetictrainer/internal/store"
)

const defaultCurveWindow = 10

var (
	statsMode   string
	statsSince  string
	statsLast   int
	statsWindow int
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (cli, tui, web)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig(statsMode, statsSince, statsLast, statsWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := report.Render(cmd.OutOrStdout(), cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func buildStatsConfig(mode, since string, last, window int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.StatsConfig{
		Mode:        mode,
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
	}, nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the saved unfinished session as JSON",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	data, err := store.LoadSnapshot(config.DefaultSnapshotPath())
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("no saved session")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(data)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
