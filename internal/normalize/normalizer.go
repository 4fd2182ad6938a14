package normalize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/internal/pipeline"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// Normalizer turns an accepted upload into a flat sequence of page images.
// Image uploads pass through as a single page; PDFs are rasterized page by
// page. Every rendered page is written into the request workspace and
// registered with the janitor before the next page renders, so a failure
// mid-document still leaves nothing behind.
type Normalizer struct {
	dpi    int
	logger logger.Logger
}

func NewNormalizer(dpi int, log logger.Logger) *Normalizer {
	return &Normalizer{dpi: dpi, logger: log}
}

func (n *Normalizer) Normalize(ctx context.Context, upload *models.UploadRequest, workdir string, tracker pipeline.Tracker) ([]models.PageImage, error) {
	if upload.IsPDF() {
		return n.rasterizePDF(ctx, upload.Data, workdir, tracker)
	}

	img, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, pipeline.NewStageError(pipeline.StageNormalize, pipeline.ReasonCorruptDocument,
			fmt.Errorf("failed to decode image: %w", err))
	}
	return []models.PageImage{{Index: 1, Image: img}}, nil
}

func (n *Normalizer) rasterizePDF(ctx context.Context, data []byte, workdir string, tracker pipeline.Tracker) ([]models.PageImage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, pipeline.NewStageError(pipeline.StageNormalize, pipeline.ReasonCorruptDocument,
			fmt.Errorf("failed to open pdf: %w", err))
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return nil, pipeline.NewStageError(pipeline.StageNormalize, pipeline.ReasonEmptyDocument,
			fmt.Errorf("pdf contains no pages"))
	}

	pages := make([]models.PageImage, 0, numPages)
	for i := 0; i < numPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(i, float64(n.dpi))
		if err != nil {
			return nil, pipeline.NewStageError(pipeline.StageNormalize, pipeline.ReasonCorruptDocument,
				fmt.Errorf("failed to render page %d: %w", i+1, err))
		}

		path, err := n.savePage(workdir, i+1, img)
		if err != nil {
			return nil, pipeline.NewStageError(pipeline.StageNormalize, pipeline.ReasonCorruptDocument, err)
		}
		tracker.Track(path)

		pages = append(pages, models.PageImage{Index: i + 1, Image: img, Path: path})
	}

	n.logger.Info("Rasterized PDF",
		logger.Int("pages", numPages),
		logger.Int("dpi", n.dpi),
	)
	return pages, nil
}

func (n *Normalizer) savePage(workdir string, pageNum int, img image.Image) (string, error) {
	path := filepath.Join(workdir, fmt.Sprintf("page_%d.png", pageNum))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create page image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	return path, nil
}
