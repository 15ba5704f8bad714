package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// askResponse mirrors the server's /ask payload.
type askResponse struct {
	Answer     string `json:"answer"`
	Confidence int    `json:"confidence"`
	Sources    []struct {
		ContractName string `json:"contract_name"`
		Excerpt      string `json:"excerpt"`
		Page         int    `json:"page"`
		Relevance    int    `json:"relevance"`
	} `json:"sources"`
}

// AskCmd creates the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about your contracts",
		Long:  "Ask a natural-language question answered from your uploaded contracts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/ask", map[string]string{"query": question})
	if err != nil {
		return err
	}

	var result askResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse ask response: %w", err)
	}

	if outputJSON {
		jsonBytes, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Println(result.Answer)
	fmt.Printf("\nConfidence: %d\n", result.Confidence)
	if len(result.Sources) > 0 {
		fmt.Println("Sources:")
		for _, s := range result.Sources {
			excerpt := s.Excerpt
			if len(excerpt) > 100 {
				excerpt = excerpt[:100] + "..."
			}
			fmt.Printf("  %s (page %d, relevance %d): %s\n", s.ContractName, s.Page, s.Relevance, excerpt)
		}
	}
	return nil
}
