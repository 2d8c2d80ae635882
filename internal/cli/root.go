// Package cli wires the navledger commands: statement and CSV ingestion,
// valuation-date management, ledger rebuilds, discrepancy fixup, and Excel
// report generation.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/linksignis/navledger/config"
	"github.com/linksignis/navledger/ingest"
	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/store"
)

// RootConfig carries the persistent flags and the state resolved from them
// before any subcommand runs.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string

	cfg   *config.Config
	log   *zap.Logger
	epoch ledger.Date
}

func (rc *RootConfig) setup() error {
	// A .env next to the working directory may carry NAVLEDGER_DB.
	_ = godotenv.Load()

	var err error
	if rc.ConfigPath != "" {
		rc.cfg, err = config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return err
		}
	} else {
		rc.cfg = config.Default()
	}

	if rc.DBPath != "" {
		rc.cfg.Database = rc.DBPath
	} else if env := os.Getenv("NAVLEDGER_DB"); env != "" {
		rc.cfg.Database = env
	}

	rc.epoch, err = rc.cfg.Epoch()
	if err != nil {
		return err
	}

	rc.log, err = newLogger(rc.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

func (rc *RootConfig) Logger() *zap.Logger { return rc.log }

func (rc *RootConfig) Epoch() ledger.Date { return rc.epoch }

func (rc *RootConfig) Config() *config.Config { return rc.cfg }

// OpenStore opens the configured database; the caller closes it.
func (rc *RootConfig) OpenStore() (*store.Store, error) {
	return store.Open(rc.cfg.Database, rc.log)
}

// Ingestor binds a store to the configured epoch and logger.
func (rc *RootConfig) Ingestor(st *store.Store) *ingest.Ingestor {
	return &ingest.Ingestor{Store: st, Epoch: rc.epoch, Log: rc.log}
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "navledger",
		Short:         "navledger — daily fund-valuation ledger and NAV reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVarP(&rc.DBPath, "database", "d", "", "SQLite database path (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.setup()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if rc.log != nil {
			_ = rc.log.Sync()
		}
	}

	cmd.AddCommand(
		newBrokerCmd(rc),
		newOtherCmd(rc),
		newValuationCmd(rc),
		newRebuildCmd(rc),
		newReportCmd(rc),
		newFixupCmd(rc),
		newDBCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("navledger (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q", level)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// promptYesNo asks an interactive yes/no question, defaulting to no when
// stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool
	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirm, nil
}

func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
