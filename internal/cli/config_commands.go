package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/config"
	"github.com/fsnav/fsnav/internal/constants"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fsnav configuration",
		Long: `Configuration management commands for fsnav.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the server connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for fsnav.

The configuration is saved to ~/.config/fsnav/config.ini and the access
token, if any, to a separate token file readable only by you.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", path)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Println("fsnav Configuration Setup")
			fmt.Println("=========================")
			fmt.Println()

			cfg := config.NewConfig()

			for {
				u, err := promptDefault("Server URL (required)", "")
				if err != nil {
					return err
				}
				cfg.ServerURL = strings.TrimRight(u, "/")
				err = cfg.ValidateForConnection()
				if err == nil {
					break
				}
				fmt.Printf("  Error: %v\n", err)
			}

			token, err := promptPassword("Access token (empty to browse as guest): ")
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println("Browse Settings (press Enter to follow the server's settings)")
			fmt.Println("--------------------------------------------------------------")
			for {
				p, err := promptDefault("Pagination (pagination, load_more, auto_load_more)", "")
				if err != nil {
					return err
				}
				cfg.Pagination = p
				if p == "" || p == config.PaginationClassic || p == config.PaginationLoadMore || p == config.PaginationAuto {
					break
				}
				fmt.Printf("  Error: %v\n", config.ErrInvalidPagination)
			}
			if cfg.PageSize, err = promptInt("Page size (0 = server default)", 0); err != nil {
				return err
			}

			fmt.Println()
			useProxy, err := promptConfirm("Configure proxy?")
			if err != nil {
				return err
			}
			if useProxy {
				fmt.Println()
				fmt.Println("Proxy Configuration")
				fmt.Println("-------------------")
				if cfg.ProxyMode, err = promptDefault("Proxy mode (no-proxy, system, basic, ntlm)", config.ProxyModeSystem); err != nil {
					return err
				}
				if cfg.ProxyMode == config.ProxyModeBasic || cfg.ProxyMode == config.ProxyModeNTLM {
					if cfg.ProxyHost, err = promptDefault("Proxy host", ""); err != nil {
						return err
					}
					if cfg.ProxyPort, err = promptInt("Proxy port", 8080); err != nil {
						return err
					}
					if cfg.ProxyUser, err = promptDefault("Proxy user (empty for none)", ""); err != nil {
						return err
					}
				}
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			tokenPath := tokenFile
			if tokenPath == "" {
				tokenPath = config.DefaultTokenPath()
			}
			if token != "" {
				if err := config.WriteTokenFile(tokenPath, token); err != nil {
					return err
				}
				logger.Info().Str("path", tokenPath).Msg("Access token saved")
			}

			// The token lives in the token file, not the config.
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}
			logger.Info().Str("path", path).Msg("Configuration saved")

			fmt.Println()
			fmt.Printf("Configuration saved to: %s\n", path)
			if token != "" {
				fmt.Printf("Access token saved to: %s\n", tokenPath)
			}
			fmt.Println()
			fmt.Println("Test your configuration with: fsnav config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/fsnav/config.ini)
  2. Token file and FSNAV_TOKEN
  3. Command-line flags (--server, --token, --pagination, --page-size)

Priority: flags > config file > token file > environment > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Current Configuration")
			fmt.Println("=====================")
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  URL:   %s\n", cfg.ServerURL)
			if cfg.Token != "" {
				// Never print any part of the token.
				fmt.Printf("  Token: <set (%d chars)>\n", len(cfg.Token))
			} else {
				fmt.Println("  Token: <not set, guest access>")
			}
			fmt.Println()

			fmt.Println("Browse Settings:")
			fmt.Printf("  Pagination:   %s\n", orDefault(cfg.Pagination, "<server setting>"))
			if cfg.PageSize > 0 {
				fmt.Printf("  Page Size:    %d\n", cfg.PageSize)
			} else {
				fmt.Println("  Page Size:    <server setting>")
			}
			fmt.Printf("  History Size: %d\n", cfg.HistorySize)
			fmt.Println()

			fmt.Println("Proxy Settings:")
			fmt.Printf("  Proxy Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Printf("  Proxy Host: %s\n", cfg.ProxyHost)
				fmt.Printf("  Proxy Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Printf("  Proxy User: %s\n", cfg.ProxyUser)
			}
			fmt.Println()

			fmt.Println("Logging:")
			fmt.Printf("  Level: %s\n", cfg.LogLevel)
			fmt.Printf("  File:  %s\n", orDefault(cfg.LogFile, "<stderr only>"))
			fmt.Println()

			path := configPath()
			fmt.Printf("Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("  (file does not exist - using defaults)")
			}
			return nil
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the server connection",
		Long: `Test the server connection with the current configuration.

Use this to verify your token and network connectivity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateForConnection(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			fmt.Printf("Server: %s\n", cfg.ServerURL)
			fmt.Println("Testing connection...")

			apiClient, err := api.NewClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			ctx, cancel := context.WithTimeout(GetContext(), constants.APIConnectionTestTimeout)
			defer cancel()

			user, err := apiClient.Me(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Println("Connection FAILED")
				fmt.Printf("  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}
			logger.Info().Str("user", user.Username).Msg("Connection test successful")

			fmt.Println("Connection SUCCESSFUL")
			fmt.Println()
			fmt.Printf("  User:       %s\n", user.Username)
			if user.IsGuest() {
				fmt.Println("  (not logged in, browsing as guest)")
			}
			fmt.Printf("  Base path:  %s\n", orDefault(user.BasePath, "/"))
			fmt.Printf("  Roots:      %d\n", len(user.Permissions))
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				fmt.Println("Default configuration path:")
			} else {
				fmt.Println("Configuration path (from --config flag):")
			}
			path := configPath()
			fmt.Printf("  %s\n", path)
			fmt.Println()

			if info, err := os.Stat(path); err == nil {
				fmt.Println("Status:   File exists")
				fmt.Printf("Size:     %d bytes\n", info.Size())
				fmt.Printf("Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("Status: File does not exist")
				fmt.Println()
				fmt.Println("Create a configuration file with: fsnav config init")
			}
			return nil
		},
	}
}
