// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/authdata/authdata/internal/config"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "authdata",
		Short: "authdata answers identity attribute queries",
		Long: `authdata answers identity attribute queries for federated login.
Users are looked up in the local store or in the LDAP directories and
HTTP APIs configured as sources, and are provisioned locally under a
stable pseudonymous OID.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func readConfig() error {
	var err error

	cfg, err = config.ReadConfig(configPath)

	return err
}
