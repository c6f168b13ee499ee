// Package main provides the CLI entrypoint for arithmetictrainer.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/arithmetictrainer/internal/config"
	"github.com/verte-zerg/arithmetictrainer/internal/practice"
	"github.com/verte-zerg/arithmetictrainer/internal/store"
	"github.com/verte-zerg/arithmetictrainer/internal/trainer"
	"github.com/verte-zerg/arithmetictrainer/internal/tui"
	"github.com/verte-zerg/arithmetictrainer/internal/web"
)

const (
	defaultNumber = 10
	defaultPort   = 8000
)

var version = "dev"

var (
	practiceNumber int
	practiceConfig string
	practiceWeb    bool
	practicePort   int
	practiceResume bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "arithmetictrainer",
		Short:         "Train mental arithmetic",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVarP(&practiceNumber, "number", "n", defaultNumber, "number of tasks to solve")
	rootCmd.Flags().StringVarP(&practiceConfig, "config", "c", "", "path to configuration file")
	rootCmd.Flags().BoolVarP(&practiceWeb, "web", "w", false, "serve a practice page on localhost")
	rootCmd.Flags().IntVarP(&practicePort, "port", "p", defaultPort, "port for --web")
	rootCmd.Flags().BoolVar(&practiceResume, "resume", false, "continue the last unfinished session")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		logErrf("%v\n", err)
	}
	path, err := config.ResolveConfigPath(practiceConfig)
	if err != nil {
		return fmt.Errorf("failed to find config: %w", err)
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg.Practice); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "number", &practiceNumber, fileCfg.Practice.Number)
	applyIntConfig(cmd, "port", &practicePort, fileCfg.Practice.Port)
	applyBoolConfig(cmd, "web", &practiceWeb, fileCfg.Practice.Web)
	if err := validateOptions(practiceNumber, practicePort); err != nil {
		return err
	}

	snapshotPath := config.DefaultSnapshotPath()
	session, err := openSession(fileCfg, snapshotPath, practiceResume)
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

	if practiceWeb {
		return runWeb(cmd.Context(), session, st, snapshotPath)
	}

	mode := "cli"
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		mode = "tui"
	}
	run := practice.NewRun(session, practiceNumber, mode)
	var quit bool
	if mode == "tui" {
		quit, err = runTUI(run)
	} else {
		quit, err = runPrompt(os.Stdin, cmd.OutOrStdout(), run)
	}
	if err != nil {
		return err
	}
	finishRun(cmd.OutOrStdout(), run, st, snapshotPath, quit && !run.Done())
	return nil
}

func openSession(fileCfg config.FileConfig, snapshotPath string, resume bool) (*trainer.Session, error) {
	if resume {
		data, err := store.LoadSnapshot(snapshotPath)
		if err != nil {
			return nil, err
		}
		if data != nil {
			session, err := trainer.FromJSON(data)
			if err != nil {
				return nil, fmt.Errorf("failed to resume session: %w", err)
			}
			return session, nil
		}
		logErrln("no saved session found; starting a new one")
	}
	session, err := trainer.New(fileCfg.Operators())
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return session, nil
}

func runTUI(run *practice.Run) (bool, error) {
	model := tui.NewModel(run)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return false, fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		return false, err
	}
	return model.Quit(), nil
}

func runWeb(ctx context.Context, session *trainer.Session, st *store.Store, snapshotPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shared := practice.NewShared(practice.NewRun(session, 0, "web"))
	srv, err := web.NewServer(shared, log.New(os.Stderr, "", log.Ldate|log.Ltime))
	if err != nil {
		return fmt.Errorf("failed to build web server: %w", err)
	}
	addr := fmt.Sprintf("localhost:%d", practicePort)
	serveErr := srv.ListenAndServe(ctx, addr)

	if err := shared.Record(context.Background(), st); err != nil {
		logErrf("failed to save run: %v\n", err)
	}
	if data, err := shared.Snapshot(); err != nil {
		logErrf("failed to serialize session: %v\n", err)
	} else if err := store.SaveSnapshot(snapshotPath, data); err != nil {
		logErrf("%v\n", err)
	}
	if serveErr != nil {
		return fmt.Errorf("web server failed: %w", serveErr)
	}
	return nil
}

// finishRun prints the summary, stores the run and keeps a snapshot only for
// runs that were stopped early.
func finishRun(w io.Writer, run *practice.Run, st *store.Store, snapshotPath string, unfinished bool) {
	if err := writeSummary(w, run.Session.State()); err != nil {
		logErrf("failed to write summary: %v\n", err)
	}
	if err := run.Record(context.Background(), st); err != nil {
		logErrf("failed to save run: %v\n", err)
	}
	if !unfinished {
		if err := store.RemoveSnapshot(snapshotPath); err != nil {
			logErrf("%v\n", err)
		}
		return
	}
	data, err := run.Session.MarshalJSON()
	if err != nil {
		logErrf("failed to serialize session: %v\n", err)
		return
	}
	if err := store.SaveSnapshot(snapshotPath, data); err != nil {
		logErrf("%v\n", err)
		return
	}
	logErrln("session saved; continue with --resume")
}

func validateOptions(number, port int) error {
	if number <= 0 {
		return fmt.Errorf("--number must be > 0")
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("--port must be between 1 and 65535")
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
