package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/internal/shape"
	"github.com/scanwise/invoice-extractor/pkg/logger"
	"github.com/scanwise/invoice-extractor/pkg/storage"
)

// Tracker registers temporary artifacts for cleanup. Stages call Track as
// soon as an artifact exists, so a failure mid-stage leaves nothing behind.
type Tracker interface {
	Track(path string)
}

// Normalizer converts an upload into page images (one for plain images, one
// per page for PDFs), registering rendered files with the tracker.
type Normalizer interface {
	Normalize(ctx context.Context, upload *models.UploadRequest, workdir string, tracker Tracker) ([]models.PageImage, error)
}

// TextExtractor runs OCR over the pages and assembles text in page order.
type TextExtractor interface {
	Extract(ctx context.Context, pages []models.PageImage) (*models.ExtractedText, error)
}

// FieldExtractor turns extracted text into the model's raw JSON payload.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (map[string]any, error)
}

// TextLayerReader pulls embedded text out of digital PDFs so they can skip
// rasterization and OCR entirely.
type TextLayerReader interface {
	Extract(ctx context.Context, data []byte) (*models.ExtractedText, error)
}

// Options are the pipeline's immutable run-time switches.
type Options struct {
	TextLayerFastPath bool
}

// Pipeline sequences validation, normalization, OCR, AI extraction and
// shaping for one upload, and guarantees artifact cleanup on every exit
// path. Stage progression is strictly sequential; only page OCR inside the
// text extractor runs in parallel.
type Pipeline struct {
	validator *Validator
	store     storage.Store
	norm      Normalizer
	ocr       TextExtractor
	ai        FieldExtractor
	textLayer TextLayerReader
	opts      Options
	logger    logger.Logger
}

func New(
	validator *Validator,
	store storage.Store,
	norm Normalizer,
	ocr TextExtractor,
	ai FieldExtractor,
	textLayer TextLayerReader,
	opts Options,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		validator: validator,
		store:     store,
		norm:      norm,
		ocr:       ocr,
		ai:        ai,
		textLayer: textLayer,
		opts:      opts,
		logger:    log,
	}
}

// Run processes one upload end to end and always returns a terminal result.
// Validation failures reject the request before anything touches disk; every
// later failure degrades to a fallback record so the client still receives
// the full key set.
func (p *Pipeline) Run(ctx context.Context, upload *models.UploadRequest) *models.PipelineResult {
	if err := p.validator.Validate(upload); err != nil {
		reason := ReasonOf(err)
		p.logger.Warn("Upload rejected",
			logger.String("filename", upload.Filename),
			logger.String("reason", string(reason)),
		)
		return &models.PipelineResult{
			Status:      models.StatusFailed,
			Reason:      string(reason),
			FailedStage: string(StageValidate),
		}
	}

	requestID := uuid.New().String()
	log := p.logger.With(logger.String("requestId", requestID))
	log.Info("Starting pipeline",
		logger.String("filename", upload.Filename),
		logger.Int64("size", upload.Size),
	)

	workdir, err := p.store.CreateWorkspace(requestID)
	if err != nil {
		log.Error("Failed to create workspace", logger.Error(err))
		return p.degrade(log, StageNormalize, ReasonServiceUnavailable)
	}

	janitor := NewJanitor(p.store, workdir, log)
	// Cleanup must run on every exit path and must not be cancellable.
	defer janitor.ReleaseAll()

	uploadPath, err := p.store.SaveUpload(workdir, upload.Filename, upload.Data)
	if err != nil {
		log.Error("Failed to save upload", logger.Error(err))
		return p.degrade(log, StageNormalize, ReasonServiceUnavailable)
	}
	janitor.Track(uploadPath)

	text, terminal := p.extractText(ctx, log, upload, workdir, janitor)
	if terminal != nil {
		return terminal
	}

	raw, err := p.ai.Extract(ctx, text.Full())
	if err != nil {
		reason := ReasonOf(err)
		log.Error("AI extraction failed",
			logger.String("reason", string(reason)),
			logger.Error(err),
		)
		return p.degrade(log, StageAI, reason)
	}

	record := shape.Shape(raw)
	log.Info("Pipeline completed",
		logger.Int("items", len(record.Items)),
	)
	return &models.PipelineResult{
		Status: models.StatusSuccess,
		Record: record,
	}
}

// extractText produces the document text, preferring a PDF's embedded text
// layer when enabled and falling back to rasterization plus OCR. A non-nil
// result is terminal: a rejection for corrupt or empty documents, or a
// degraded fallback for OCR failures.
func (p *Pipeline) extractText(
	ctx context.Context,
	log logger.Logger,
	upload *models.UploadRequest,
	workdir string,
	janitor *Janitor,
) (*models.ExtractedText, *models.PipelineResult) {
	if p.opts.TextLayerFastPath && p.textLayer != nil && upload.IsPDF() {
		text, err := p.textLayer.Extract(ctx, upload.Data)
		if err == nil {
			return text, nil
		}
		log.Info("No usable text layer, rasterizing", logger.Error(err))
	}

	pages, err := p.norm.Normalize(ctx, upload, workdir, janitor)
	if err != nil {
		reason := ReasonOf(err)
		log.Error("Normalization failed",
			logger.String("reason", string(reason)),
			logger.Error(err),
		)
		if Rejectable(reason) {
			return nil, &models.PipelineResult{
				Status:      models.StatusFailed,
				Reason:      string(reason),
				FailedStage: string(StageNormalize),
			}
		}
		return nil, p.degrade(log, StageNormalize, reason)
	}

	text, err := p.ocr.Extract(ctx, pages)
	if err != nil {
		// NoTextFound and all-pages-failed both short-circuit here: sending
		// empty text to the model cannot produce a better answer than the
		// fallback record.
		reason := ReasonOf(err)
		log.Error("OCR extraction failed",
			logger.String("reason", string(reason)),
			logger.Error(err),
		)
		return nil, p.degrade(log, StageOCR, reason)
	}
	return text, nil
}

func (p *Pipeline) degrade(log logger.Logger, stage Stage, reason Reason) *models.PipelineResult {
	if reason == "" {
		reason = ReasonServiceUnavailable
	}
	log.Warn("Degrading to fallback record",
		logger.String("stage", string(stage)),
		logger.String("reason", string(reason)),
	)
	return &models.PipelineResult{
		Status:      models.StatusPartial,
		Record:      shape.Fallback(),
		Reason:      string(reason),
		FailedStage: string(stage),
	}
}
