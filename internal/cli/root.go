// Package cli provides the command-line interface for craftdeck.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/config"
	"github.com/craftdeck/craftdeck/internal/events"
	"github.com/craftdeck/craftdeck/internal/logging"
	"github.com/craftdeck/craftdeck/internal/version"
)

var (
	// Global flags
	cfgFile  string
	apiKey   string
	panelURL string
	serverID string
	verbose  bool

	// Global logger
	logger *logging.Logger

	// Job event bus, active in verbose mode.
	eventBus *events.Bus

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "craftdeck",
		Short: "CraftDeck - remote file manager for game server panels",
		Long: `CraftDeck ` + version.Version + ` - Built: ` + version.BuildTime + `
Manage files on a game server panel from the command line: browse,
search, edit, transfer, and archive files on the remote server.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
				eventBus = events.NewBus(0)
				go watchJobEvents(eventBus.Subscribe(), logger)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Panel API key (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&panelURL, "panel-url", "", "Panel base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverID, "server-id", "", "Target server id (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)
	eventBus.Close()

	return err
}

// jobBus returns the event bus jobs publish to. Nil unless verbose
// mode started one, which is fine: publishing to a nil bus is a no-op.
func jobBus() *events.Bus {
	return eventBus
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newCatCmd())
	rootCmd.AddCommand(newWriteCmd())
	rootCmd.AddCommand(newMkdirCmd())
	rootCmd.AddCommand(newTouchCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newCpCmd())
	rootCmd.AddCommand(newMvCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newFetchURLCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newDownloadURLCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling. It is
// cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig resolves configuration from file, environment, and global flags.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if panelURL != "" {
		cfg.PanelURL = panelURL
	}
	if serverID != "" {
		cfg.ServerID = serverID
	}
	cfg.ResolveAPIKey(apiKey)

	if cfg.APIKey == "" {
		key, err := promptAPIKey()
		if err == nil && key != "" {
			cfg.APIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildClient loads config and creates the panel API client.
func buildClient() (*api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(cfg, GetLogger().Zerolog())
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}
