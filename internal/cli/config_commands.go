// Package cli provides configuration commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/craftdeck/craftdeck/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage craftdeck configuration",
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively create the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			url, err := promptLine(fmt.Sprintf("Panel URL [%s]: ", cfg.PanelURL))
			if err != nil {
				return err
			}
			if url != "" {
				cfg.PanelURL = strings.TrimSuffix(url, "/")
			}

			sid, err := promptLine(fmt.Sprintf("Server id [%s]: ", cfg.ServerID))
			if err != nil {
				return err
			}
			if sid != "" {
				cfg.ServerID = sid
			}

			key, err := promptAPIKey()
			if err != nil {
				return err
			}
			if key != "" {
				cfg.APIKey = key
			}

			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if panelURL != "" {
				cfg.PanelURL = panelURL
			}
			if serverID != "" {
				cfg.ServerID = serverID
			}
			cfg.ResolveAPIKey(apiKey)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file: %s\n", path)
			fmt.Fprintf(out, "panel_url:   %s\n", cfg.PanelURL)
			fmt.Fprintf(out, "server_id:   %s\n", cfg.ServerID)
			fmt.Fprintf(out, "api_key:     %s\n", maskKey(cfg.APIKey))
			if cfg.Proxy.Mode != "" {
				fmt.Fprintf(out, "proxy:       %s %s:%d\n", cfg.Proxy.Mode, cfg.Proxy.Host, cfg.Proxy.Port)
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
