package main

import (
	"fmt"
	"os"

	"github.com/Nomadcxx/teamsort/internal/config"
	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage teamsort configuration",
		Long: `Commands for managing teamsort configuration.

The config file is stored at: ~/.config/teamsort/config.toml
Every key can be overridden by an environment variable, e.g.
TEAMSORT_COLUMNS_TEAM=Division or TEAMSORT_OPTIONS_DRY_RUN=true.

Examples:
  teamsort config init              # Create default config file
  teamsort config show              # Display current configuration
  teamsort config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// configPath is --config when given, otherwise the default location
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		noToken bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

A random API token is generated for 'teamsort serve' unless --no-token
is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if !noToken {
				token, err := config.GenerateAPIToken()
				if err != nil {
					return fmt.Errorf("failed to generate API token: %w", err)
				}
				cfg.Server.Token = token
			}

			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			ui.SuccessMsg(out, "Created config file: %s", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Set your usual roster columns under [columns]")
			fmt.Fprintln(out, "  2. Run 'teamsort config show' to review settings")
			fmt.Fprintln(out, "  3. Try 'teamsort run --dry-run -t roster.csv -d ./photos'")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	cmd.Flags().BoolVar(&noToken, "no-token", false, "leave server.token empty")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective configuration: file values, environment overrides and defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			path, _ := configPath()
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "# Config file: %s\n\n", path)
			} else {
				fmt.Fprintf(out, "# No config file at %s, showing defaults\n\n", path)
			}

			shown := *cfg
			shown.Server.Token = maskToken(cfg.Server.Token)
			fmt.Fprint(out, shown.ToTOML())
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
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

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
