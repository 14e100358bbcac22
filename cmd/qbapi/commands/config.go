package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/fieldworks-io/qbapi-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const Masked = "***"

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Commands for viewing and updating the qbapi configuration file",
	}

	cmd.AddCommand(newConfigViewCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := map[string]interface{}{
				"realm":  viper.GetString("realm"),
				"apps":   viper.GetString("apps"),
				"output": viper.GetString("output"),
			}

			if viper.GetString("token") != "" {
				settings["token"] = Masked
			}

			done, err := renderStructured(settings)
			if done || err != nil {
				return err
			}

			encoder := yaml.NewEncoder(os.Stdout)
			encoder.SetIndent(2)

			return encoder.Encode(settings)
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token",
		Short: "Store a user token in the config file",
		Long:  "Prompt for a Quickbase user token without echoing it and write it to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stderr, "User token: ")

			tokenBytes, err := term.ReadPassword(syscall.Stdin)

			fmt.Fprintln(os.Stderr)

			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}

			viper.Set("token", string(tokenBytes))

			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("finding home directory: %w", err)
				}

				configFile = filepath.Join(home, ".qbapi", "config.yml")
			}

			err = viper.WriteConfigAs(configFile)
			if err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			err = os.Chmod(configFile, constants.ConfigFilePerm)
			if err != nil {
				return fmt.Errorf("restricting config permissions: %w", err)
			}

			fmt.Fprintln(os.Stderr, "Token saved to", configFile)

			return nil
		},
	}
}
