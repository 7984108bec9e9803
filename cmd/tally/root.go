package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tally"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	storePath   string
	adapterName string
	dsn         string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Notes that know their amounts, due dates and recurrences",
	Long: `tally keeps short freeform notes and reads facts out of them:
quantities (Q3), amounts (EUR12.50, USD=(500+200)/12), due dates (25/12)
and recurrences (every 2 weeks). Recurring notes regenerate themselves and
notes due today raise a reminder.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: tally.yaml at the workspace root)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Store location (directory for fs, file for sqlite)")
	rootCmd.PersistentFlags().StringVar(&adapterName, "adapter", "", "Storage adapter: fs, sqlite, postgres, memory")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Connection string for the postgres adapter")
}

// settings resolves the store location and options from the config file and flags.
// Flags win over the config file.
func settings(extra ...tally.Option) (string, []tally.Option, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("get working directory: %w", err)
	}
	root, _ := tally.FindRoot(cwd)

	path := configPath
	if path == "" && root != "" {
		candidate := filepath.Join(root, tally.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	var cfg tally.Config
	if path != "" {
		cfg, err = tally.LoadConfig(path)
		if err != nil {
			return "", nil, err
		}
		slog.Debug("config loaded", "path", path)
		if !verbose && cfg.Log.Level != "" {
			applyLevel(cfg.Log.Level)
		}
	}

	opts, err := cfg.Options()
	if err != nil {
		return "", nil, err
	}

	adapter := strings.ToLower(cfg.Store.Adapter)
	if adapterName != "" {
		adapter = strings.ToLower(adapterName)
		opts = append(opts, tally.WithAdapter(adapter))
	}

	uri := cfg.URI()
	switch {
	case adapter == tally.AdapterPostgres && dsn != "":
		uri = dsn
	case storePath != "":
		uri = storePath
	}
	if uri == "" {
		uri = defaultURI(adapter, root, cwd)
	} else if root != "" && adapter != tally.AdapterPostgres && !filepath.IsAbs(uri) && storePath == "" {
		// Paths in tally.yaml are relative to the workspace root.
		uri = filepath.Join(root, uri)
	}

	opts = append(opts, tally.WithLogger(slog.Default()))
	opts = append(opts, extra...)
	return uri, opts, nil
}

func defaultURI(adapter, root, cwd string) string {
	base := root
	if base == "" {
		base = cwd
	}
	switch adapter {
	case tally.AdapterSQLite:
		return filepath.Join(base, tally.DirName, "tally.db")
	case tally.AdapterPostgres, tally.AdapterMemory:
		return ""
	}
	return filepath.Join(base, tally.DirName)
}

func applyLevel(name string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		slog.Warn("ignoring unknown log level", "level", name)
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openService opens the configured store and returns the note service.
func openService(extra ...tally.Option) (*tally.Service, []tally.Option, error) {
	uri, opts, err := settings(extra...)
	if err != nil {
		return nil, nil, err
	}
	svc, err := tally.New(uri, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return svc, opts, nil
}
