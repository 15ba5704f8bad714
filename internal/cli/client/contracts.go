package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// contractSummary mirrors an entry of the server's /contracts payload.
type contractSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UploadedOn string `json:"uploaded_on"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	Status     string `json:"status"`
	RiskScore  string `json:"risk_score"`
}

// contractDetail mirrors the server's /contracts/{id} payload.
type contractDetail struct {
	contractSummary
	Chunks []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
		Page int    `json:"page"`
	} `json:"chunks"`
}

// ContractsCmd creates the contracts command group
func ContractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Browse uploaded contracts",
		Long:  "List uploaded contracts and inspect their extracted text",
	}

	cmd.AddCommand(ContractsListCmd())
	cmd.AddCommand(ContractsGetCmd())

	return cmd
}

// ContractsListCmd creates the contracts list command
func ContractsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your contracts",
		Long:  "List all contracts you have uploaded, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runContractsList(cmd, outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runContractsList(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/contracts")
	if err != nil {
		return err
	}

	var contracts []contractSummary
	if err := json.Unmarshal(resp.Data, &contracts); err != nil {
		return fmt.Errorf("failed to parse contracts response: %w", err)
	}

	if outputJSON {
		jsonBytes, _ := json.MarshalIndent(contracts, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if len(contracts) == 0 {
		fmt.Println("No contracts uploaded yet")
		return nil
	}

	fmt.Println("Contracts:")
	for _, c := range contracts {
		line := fmt.Sprintf("  %s: %s [%s, risk %s]", c.ID, c.Name, c.Status, c.RiskScore)
		if c.ExpiryDate != "" {
			line += fmt.Sprintf(" (expires %s)", c.ExpiryDate)
		}
		fmt.Println(line)
	}
	return nil
}

// ContractsGetCmd creates the contracts get command
func ContractsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a contract with its extracted chunks",
		Long:  "Fetch a single contract you own, including its extracted text chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runContractsGet(cmd, args[0], outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runContractsGet(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/contracts/" + id)
	if err != nil {
		return err
	}

	var detail contractDetail
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		return fmt.Errorf("failed to parse contract response: %w", err)
	}

	if outputJSON {
		jsonBytes, _ := json.MarshalIndent(detail, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("%s (%s)\n", detail.Name, detail.ID)
	fmt.Printf("Status: %s, risk %s\n", detail.Status, detail.RiskScore)
	if detail.ExpiryDate != "" {
		fmt.Printf("Expires: %s\n", detail.ExpiryDate)
	}
	fmt.Printf("Chunks: %d\n", len(detail.Chunks))
	for _, c := range detail.Chunks {
		text := c.Text
		if len(text) > 120 {
			text = text[:120] + "..."
		}
		fmt.Printf("  [page %d] %s\n", c.Page, text)
	}
	return nil
}
