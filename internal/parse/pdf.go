package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// pdfBlocks extracts per-page text from a PDF document, keeping page
// boundaries as block boundaries. pdfcpu works on files, so content is
// staged through a temp directory that is removed before returning.
func pdfBlocks(doc types.RawDocument, section types.SectionHint) ([]types.TextBlock, error) {
	tempDir, err := os.MkdirTemp("", "meeting-pdf-")
	if err != nil {
		return nil, &Error{URL: doc.SourceURL, Message: "failed to create temp dir", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	tempFile := filepath.Join(tempDir, "doc.pdf")
	if err := os.WriteFile(tempFile, doc.Content, 0o644); err != nil {
		return nil, &Error{URL: doc.SourceURL, Message: "failed to write temp PDF", Cause: err}
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, &Error{URL: doc.SourceURL, Message: "failed to read PDF", Cause: err}
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(tempDir, "pages")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &Error{URL: doc.SourceURL, Message: "failed to create extraction dir", Cause: err}
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return nil, &Error{URL: doc.SourceURL, Message: "failed to extract PDF content", Cause: err}
	}

	pageTexts := readPageFiles(outDir)

	var blocks []types.TextBlock
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		blocks = append(blocks, types.TextBlock{
			Section: section,
			Page:    pageNum,
			Text:    text,
		})
	}

	if len(blocks) == 0 {
		return nil, &Error{URL: doc.SourceURL, Message: "no usable text content"}
	}
	return blocks, nil
}

// readPageFiles collects per-page content files written by pdfcpu. Filenames
// vary between pdfcpu versions, so both known formats are tried.
func readPageFiles(outDir string) map[int]string {
	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
			continue
		}
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}
	return pageTexts
}
