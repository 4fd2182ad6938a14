package textlayer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// minTextLayerChars is the threshold below which an embedded text layer is
// treated as absent. Scanned PDFs often carry a handful of stray characters
// that would otherwise starve the OCR path.
const minTextLayerChars = 32

// Extractor pulls the embedded text layer out of a PDF without rasterizing
// it. Digital invoices (as opposed to scans) carry their text directly, and
// reading it is both faster and more accurate than OCR. Callers fall back to
// the OCR path when no usable layer is found.
type Extractor struct {
	maxWorkers int
	logger     logger.Logger
}

func NewExtractor(maxWorkers int, log logger.Logger) *Extractor {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Extractor{maxWorkers: maxWorkers, logger: log}
}

// Extract returns the per-page embedded text, or an error when the document
// has no usable text layer.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*models.ExtractedText, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf contains no pages")
	}

	texts := make([]string, numPages)
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("failed to get text from page %d: %w", pageNum, err)
			}
			texts[pageNum-1] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	result := &models.ExtractedText{Pages: make([]models.PageText, numPages)}
	for i, text := range texts {
		result.Pages[i] = models.PageText{Index: i + 1, Text: text}
		total += len(strings.TrimSpace(text))
	}
	if total < minTextLayerChars {
		return nil, fmt.Errorf("no usable text layer (%d chars)", total)
	}

	e.logger.Info("Used embedded text layer",
		logger.Int("pages", numPages),
		logger.Int("chars", total),
	)
	return result, nil
}
