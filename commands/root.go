package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/penwyp/botlogs/internal/analyzer"
	"github.com/penwyp/botlogs/internal/data/cache"
	"github.com/penwyp/botlogs/internal/data/sink"
	"github.com/penwyp/botlogs/internal/data/source"
	"github.com/penwyp/botlogs/internal/util"
)

var (
	// Logging related
	debug bool

	// Fetch window
	hours int
	limit int

	// Filtering
	userFilter string
	errorsOnly bool

	// Output and sinks
	saveDir     string
	maxFiles    int
	noColor     bool
	noClipboard bool
	noSave      bool
	reset       bool

	rootCmd = &cobra.Command{
		Use:   "botlogs [flags]",
		Short: "WhatsApp bot Cloud Run log analyzer",
		Long: `botlogs fetches Cloud Run logs for the WhatsApp bot service, classifies
each record, reconstructs bot sessions and renders them as readable
conversation timelines.

Examples:
  botlogs                           # Analyze the last 2 hours
  botlogs --hours 6                 # Analyze the last 6 hours
  botlogs --user 573003913251      # Only sessions involving this user
  botlogs --errors-only             # Only sessions containing errors
  botlogs --no-clipboard --no-save  # Console output only
  botlogs --reset                   # Drop the fetch cache first`,
		RunE: runAnalyze,
	}
)

const (
	defaultLogFile   = "~/.botlogs/logs/app.log"
	defaultCachePath = "~/.botlogs/cache/fetch.json"
	defaultSaveDir   = "~/.botlogs/sessions"
	configDir        = "~/.botlogs"
)

func init() {
	rootCmd.Flags().IntVar(&hours, "hours", 2,
		"Lookback window in hours")
	rootCmd.Flags().IntVar(&limit, "limit", 5000,
		"Maximum number of log records to fetch")

	rootCmd.Flags().StringVarP(&userFilter, "user", "u", "",
		"Only show sessions involving this user id")
	rootCmd.Flags().BoolVar(&errorsOnly, "errors-only", false,
		"Only show sessions containing at least one error")

	rootCmd.Flags().StringVar(&saveDir, "save-dir", defaultSaveDir,
		"Directory for per-session files")
	rootCmd.Flags().IntVar(&maxFiles, "max-files", sink.DefaultMaxFiles,
		"Session files kept on disk, oldest removed first")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false,
		"Disable colored console output")
	rootCmd.Flags().BoolVar(&noClipboard, "no-clipboard", false,
		"Skip copying the analysis to the clipboard")
	rootCmd.Flags().BoolVar(&noSave, "no-save", false,
		"Skip writing per-session files")

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.Flags().BoolVarP(&reset, "reset", "r", false,
		"Clear the fetch cache before analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)

	// Piped output gets plain text regardless of the flag.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		noColor = true
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Config file values apply only where the flag was left at its default.
	if !cmd.Flags().Changed("hours") {
		hours = cfg.Hours
	}
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Limit
	}
	if !cmd.Flags().Changed("max-files") {
		maxFiles = cfg.MaxFiles
	}

	cachePath := expandPath(defaultCachePath)
	if err := ensureDir(filepath.Dir(cachePath)); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	fetchCache := cache.NewFetchCache(cachePath, cache.DefaultTTL)

	if reset {
		if err := fetchCache.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		util.LogInfo("Fetch cache cleared")
	}

	config := &analyzer.Config{
		Hours:       hours,
		Limit:       limit,
		UserFilter:  userFilter,
		ErrorsOnly:  errorsOnly,
		SaveDir:     expandPath(saveDir),
		MaxFiles:    maxFiles,
		NoColor:     noColor,
		NoClipboard: noClipboard,
		NoSave:      noSave,
	}

	src := source.NewGcloudSource(cfg.ProjectID, cfg.ServiceName)
	a := analyzer.New(config, src, fetchCache)
	return a.Run(cmd.Context())
}

// serviceConfig identifies the Cloud Run deployment to read logs from and
// carries overridable pipeline defaults.
type serviceConfig struct {
	ProjectID   string
	ServiceName string
	Hours       int
	Limit       int
	MaxFiles    int
}

// loadConfig reads ~/.botlogs/config.yaml when present and falls back to the
// known deployment otherwise, so the tool works out of the box.
func loadConfig() (serviceConfig, error) {
	v := viper.New()
	v.SetDefault("project_id", "gen-lang-client-0318357688")
	v.SetDefault("service_name", "bot-wsp-whapi-ia")
	v.SetDefault("hours", 2)
	v.SetDefault("limit", 5000)
	v.SetDefault("max_files", sink.DefaultMaxFiles)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(expandPath(configDir))
	v.SetEnvPrefix("BOTLOGS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return serviceConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	return serviceConfig{
		ProjectID:   v.GetString("project_id"),
		ServiceName: v.GetString("service_name"),
		Hours:       v.GetInt("hours"),
		Limit:       v.GetInt("limit"),
		MaxFiles:    v.GetInt("max_files"),
	}, nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
