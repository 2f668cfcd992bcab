// Package cli implements the course-media CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/config"
	"github.com/rcliao/course-media/internal/logger"
	"github.com/rcliao/course-media/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
	logLevel   string

	cfg *config.Config
	log = logger.Nop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "course-media",
	Short: "Media reference maintenance for course projects",
	Long: "Keeps a course project's media references consistent with its narration blocks " +
		"and its stored assets. SQLite-backed, single binary.",
	SilenceUsage:      true,
	PersistentPreRun:  setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { log.Sync() },
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $COURSE_MEDIA_DB or store.path from config)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $COURSE_MEDIA_CONFIG or ~/.config/course-media/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

func setup(cmd *cobra.Command, args []string) {
	path := configPath
	if path == "" {
		path = os.Getenv("COURSE_MEDIA_CONFIG")
	}
	loaded, _, _, err := config.Load(path)
	if err != nil {
		exitErr("load config", err)
	}
	cfg = loaded

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	l, err := logger.New(cfg.Logging.Mode, level)
	if err != nil {
		exitErr("init logger", err)
	}
	log = l.With("run_id", uuid.NewString(), "command", cmd.Name())
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("COURSE_MEDIA_DB"); env != "" {
		return env
	}
	if cfg != nil {
		return cfg.Store.Path
	}
	return config.Default().Store.Path
}

func openStore() (*store.SQLiteStore, error) {
	path, err := config.ExpandPath(getDBPath())
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(path, store.WithLogger(log))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
