package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/grdmnt/upbank-actual/pkg/actual"
	"github.com/grdmnt/upbank-actual/pkg/config"
)

var (
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	closedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts on either side of the bridge",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var accountsUpCmd = &cobra.Command{
	Use:   "up",
	Short: "List Up accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := buildConfig(func(c *config.Config) error { return c.ValidateUp() })
		if err != nil {
			return err
		}

		accounts, err := upClient(cfg, newLogger()).Accounts()
		if err != nil {
			return err
		}

		fmt.Println("Up accounts:")
		for _, a := range accounts {
			name := a.Attributes.DisplayName
			if name == "" {
				name = a.ID
			}
			line := fmt.Sprintf("- %-24s id=%s", name, idStyle.Render(a.ID))
			if a.Attributes.AccountType != "" {
				line += mutedStyle.Render("  type=" + a.Attributes.AccountType)
			}
			fmt.Println(line)
		}
		printMapHint()
		return nil
	},
}

var accountsActualCmd = &cobra.Command{
	Use:   "actual",
	Short: "List Actual accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := buildConfig(func(c *config.Config) error { return c.ValidateActual() })
		if err != nil {
			return err
		}

		logger := newLogger()
		client := actual.New(actual.Options{
			ServerURL:          cfg.ActualServerURL,
			Password:           cfg.ActualPassword,
			BudgetID:           cfg.ActualBudgetID,
			EncryptionPassword: cfg.ActualEncryptionPassword,
			Logger:             logger,
		})

		accounts, err := client.Accounts()
		if err != nil {
			return err
		}

		fmt.Println("Actual accounts:")
		for _, a := range accounts {
			line := fmt.Sprintf("- %-24s id=%s", a.Name, idStyle.Render(a.ID))
			if a.Closed {
				line += closedStyle.Render("  (closed)")
			}
			fmt.Println(line)
		}
		printMapHint()
		return nil
	},
}

func printMapHint() {
	fmt.Println("\nUse these ids in ACCOUNT_MAP, e.g.:")
	fmt.Println(`ACCOUNT_MAP={"<up-account-id>":"<actual-account-id>"}`)
}

func init() {
	accountsCmd.AddCommand(accountsUpCmd)
	accountsCmd.AddCommand(accountsActualCmd)
}
