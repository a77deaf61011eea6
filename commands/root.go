package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/util"
)

var (
	// Logging related
	debug bool

	// Data and config
	dataPath   string
	configPath string

	rootCmd = &cobra.Command{
		Use:   "go-virus-feed [flags]",
		Short: "Browse virus media coverage in the terminal",
		Long: `go-virus-feed loads a dataset of virus media appearances and lets you
search the viruses, select one and follow its timeline across media.

Examples:
  go-virus-feed                                      # Browse the default dataset
  go-virus-feed --data csv/virus_media_viz_500.csv   # Browse a specific file
  go-virus-feed list --query flu --output json       # Print the matching viruses
  go-virus-feed render --entity 7 --out flu.svg      # Export one timeline
  go-virus-feed serve --addr :8080                   # Serve the feed over HTTP`,
		SilenceUsage: true,
		RunE:         runBrowse,
	}

	browseCmd = &cobra.Command{
		Use:   "browse",
		Short: "Interactive terminal browser (default command)",
		RunE:  runBrowse,
	}
)

const (
	defaultLogFile  = "~/.go-virus-feed/logs/app.log"
	defaultDataPath = "csv/virus_media_viz_500.csv"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", defaultDataPath,
		"Dataset file (CSV or JSONL) or directory of them")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (.yaml, .yml, .json or .jsonc)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")

	rootCmd.AddCommand(browseCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}
	defer util.CloseLogger()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	o, err := browser.NewOrchestrator(config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return o.Run(ctx)
}

// initLogging writes logs to the log file. Commands that do not own the
// terminal also log to the console in debug mode.
func initLogging(console bool) error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return util.InitLogger(logLevel, logFile, console && debug, util.FormatText)
}

// loadConfig reads the config file if one was given; the --data flag wins
// over the file when set explicitly
func loadConfig(cmd *cobra.Command) (*browser.Config, error) {
	config := &browser.Config{}
	if configPath != "" {
		loaded, err := browser.LoadConfigFile(expandPath(configPath))
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if config.DataPath == "" || cmd.Flags().Changed("data") {
		config.DataPath = dataPath
	}
	config.DataPath = expandPath(config.DataPath)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// loadPipeline loads the dataset into a pipeline without a drawing surface
func loadPipeline(config *browser.Config) (*browser.Pipeline, *browser.DataLoader, error) {
	loader := browser.NewDataLoader(config)
	details, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	p := browser.NewPipeline(browser.OptionsFromConfig(config, nil, nil))
	p.Load(details)
	return p, loader, nil
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

func parseEntityID(s string) (model.EntityID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid virus id %q", s)
	}
	return model.EntityID(id), nil
}
