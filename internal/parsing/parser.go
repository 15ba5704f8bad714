// Package parsing extracts chunk-sized text from uploaded contract files.
// PDFs keep their page numbers; docx and plain text are treated as a
// single page.
package parsing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/contractiq/contractiq/internal/service"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeText = "text/plain"
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// pageExtractTimeout bounds text extraction of a single PDF page;
	// malformed PDFs can send the extractor into unbounded work.
	pageExtractTimeout = 10 * time.Second
)

// Parser implements service.DocumentParser for the supported upload formats.
type Parser struct {
	chunkCfg ChunkConfig
}

// NewParser creates a Parser with default chunking.
func NewParser() *Parser {
	return &Parser{chunkCfg: DefaultChunkConfig()}
}

// NewParserWithConfig creates a Parser with custom chunking.
func NewParserWithConfig(cfg ChunkConfig) *Parser {
	return &Parser{chunkCfg: cfg}
}

// Parse extracts text from the uploaded file and splits it into chunks.
func (p *Parser) Parse(ctx context.Context, filename, contentType string, data []byte) ([]service.ParsedChunk, error) {
	var pages []pageText
	var err error

	switch contentType {
	case contentTypePDF:
		pages, err = extractPDF(data)
	case contentTypeDocx:
		pages, err = extractDocx(filename, data)
	case contentTypeText:
		pages = []pageText{{number: 1, content: string(data)}}
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
	if err != nil {
		return nil, err
	}

	var chunks []service.ParsedChunk
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, text := range chunkText(page.content, p.chunkCfg) {
			chunks = append(chunks, service.ParsedChunk{Text: text, Page: page.number})
		}
	}
	if len(chunks) == 0 {
		return nil, errors.New("no extractable text")
	}

	return chunks, nil
}

type pageText struct {
	number  int
	content string
}

func extractPDF(data []byte) ([]pageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []pageText
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := extractPage(page)
		if err != nil {
			// skip unreadable pages, keep the rest
			continue
		}

		pages = append(pages, pageText{number: i, content: content})
	}

	return pages, nil
}

// extractPage runs GetPlainText with a timeout.
func extractPage(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}

// extractDocx writes the upload to a temp file because the extractor only
// reads from paths.
func extractDocx(filename string, data []byte) ([]pageText, error) {
	tmp, err := os.CreateTemp("", "upload-*"+sanitizeExt(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to extract docx: %w", err)
	}

	return []pageText{{number: 1, content: text}}, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".docx" {
		ext = ".docx"
	}
	return ext
}
