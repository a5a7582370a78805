package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexmglover/Deep"
	"github.com/alexmglover/Deep/pkg/config"
)

var (
	verbose    bool
	vaultPath  string
	configPath string
	logger     = slog.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deep",
	Short: "Render entry listings and category navigation from a document vault",
	Long: `Deep fills template tags from a vault of Markdown, YAML, JSON and CSV documents.
The request path selects entries the way a site router would: by date, category,
entry id or url title.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "Site root (default: nearest directory with deep.yaml)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <vault>/deep.yaml)")
}

// siteRoot resolves the --vault flag, falling back to the nearest root above
// the working directory.
func siteRoot() (string, error) {
	if vaultPath != "" {
		return vaultPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if root, err := deep.FindRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

// openService builds the render service from the global flags.
func openService(extra ...deep.Option) (*deep.Service, error) {
	root, err := siteRoot()
	if err != nil {
		return nil, err
	}
	path := configPath
	if path == "" {
		path = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	// An explicit --vault wins over the vault named in a config kept elsewhere.
	if configPath != "" && vaultPath != "" {
		if cfg.Vault, err = filepath.Abs(vaultPath); err != nil {
			return nil, err
		}
	}

	opts := []deep.Option{
		deep.WithConfig(cfg),
		deep.WithLogger(logger),
		deep.WithErrorHandler(func(err error) {
			logger.Warn("vault error", "error", err)
		}),
	}
	return deep.New(root, append(opts, extra...)...)
}
