package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contractiq/contractiq/internal/cli"
	"github.com/contractiq/contractiq/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contractiqd",
		Short: "ContractIQ daemon and admin CLI",
		Long:  "ContractIQ daemon for running the API server and managing user accounts",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.UserCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
