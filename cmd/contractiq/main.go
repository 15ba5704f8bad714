package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contractiq/contractiq/internal/cli"
	"github.com/contractiq/contractiq/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "contractiq",
		Short: "ContractIQ CLI - contract management and Q&A",
		Long: `ContractIQ CLI uploads contracts and answers questions about them.

Environment variables:
  CONTRACTIQ_TOKEN    Session token (from 'contractiq login')
  CONTRACTIQ_API_URL  API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("token", "", "Session token (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SignupCmd())
	rootCmd.AddCommand(client.LoginCmd())
	rootCmd.AddCommand(client.LogoutCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.ContractsCmd())
	rootCmd.AddCommand(client.AskCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
