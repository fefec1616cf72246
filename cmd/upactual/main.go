package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/grdmnt/upbank-actual/pkg/config"
	"github.com/grdmnt/upbank-actual/pkg/up"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "upactual",
	Short: "Utilities for the Up → Actual webhook bridge",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "upactual",
	})
}

// buildConfig loads configuration for a subcommand and runs the given
// validation, so commands that only touch one provider do not demand the
// other provider's settings.
func buildConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Build(cfgFile, nil)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func upClient(cfg *config.Config, logger *log.Logger) *up.Client {
	return up.NewClient(cfg.UpAPIToken, cfg.UpAPIURL, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is environment/.env only)")

	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(testCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
