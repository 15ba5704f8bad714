package client

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// uploadResponse mirrors the server's /upload payload.
type uploadResponse struct {
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// UploadCmd creates the upload command
func UploadCmd() *cobra.Command {
	var expiryDate string
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a contract document",
		Long:  "Upload a PDF, DOCX or plain-text contract for ingestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], contentType, expiryDate, outputJSON)
		},
	}

	cmd.Flags().StringVar(&expiryDate, "expiry", "", "Contract expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Override the detected content type")
	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath, contentType, expiryDate string, outputJSON bool) error {
	if contentType == "" {
		contentType = detectContentType(filePath)
		if contentType == "" {
			return fmt.Errorf("cannot detect content type for %s; use --content-type", filePath)
		}
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.UploadContract(filePath, contentType, expiryDate)
	if err != nil {
		return err
	}

	var result uploadResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	if outputJSON {
		jsonBytes, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Uploaded %s (%s)\n", result.Filename, result.DocumentID)
	fmt.Printf("Chunks processed: %d\n", result.ChunksProcessed)
	return nil
}

func detectContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".text", ".md":
		return "text/plain"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return ""
}
