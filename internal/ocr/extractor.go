package ocr

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/internal/pipeline"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// Extractor runs the engine over every page. Pages are independent, so they
// run in parallel under a bounded worker count; results are reassembled in
// page order regardless of completion order.
type Extractor struct {
	engine     Engine
	maxWorkers int
	// strict makes a single failed page abort the whole extraction.
	// The default contributes an empty string for the failed page instead.
	strict bool
	logger logger.Logger
}

func NewExtractor(engine Engine, maxWorkers int, strict bool, log logger.Logger) *Extractor {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Extractor{engine: engine, maxWorkers: maxWorkers, strict: strict, logger: log}
}

func (e *Extractor) Extract(ctx context.Context, pages []models.PageImage) (*models.ExtractedText, error) {
	if len(pages) == 0 {
		return nil, pipeline.NewStageError(pipeline.StageOCR, pipeline.ReasonNoTextFound,
			fmt.Errorf("no pages to extract"))
	}

	texts := make([]string, len(pages))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.maxWorkers)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			text, err := e.engine.Recognize(gctx, page.Image)
			if err != nil {
				if e.strict {
					return pipeline.NewStageError(pipeline.StageOCR, pipeline.ReasonEnginePageFailure,
						fmt.Errorf("page %d: %w", page.Index, err))
				}
				e.logger.Warn("OCR failed for page, continuing",
					logger.Int("page", page.Index),
					logger.Error(err),
				)
				failed.Add(1)
				texts[i] = ""
				return nil
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if int(failed.Load()) == len(pages) {
		return nil, pipeline.NewStageError(pipeline.StageOCR, pipeline.ReasonEnginePageFailure,
			fmt.Errorf("ocr failed on all %d pages", len(pages)))
	}

	result := &models.ExtractedText{Pages: make([]models.PageText, len(pages))}
	for i, page := range pages {
		result.Pages[i] = models.PageText{Index: page.Index, Text: texts[i]}
	}

	if !result.HasText() {
		return nil, pipeline.NewStageError(pipeline.StageOCR, pipeline.ReasonNoTextFound,
			fmt.Errorf("no text recognized on any of %d pages", len(pages)))
	}

	e.logger.Info("OCR extraction completed",
		logger.Int("pages", len(pages)),
		logger.Int("failedPages", int(failed.Load())),
		logger.Int("textLength", len(result.Full())),
	)
	return result, nil
}
