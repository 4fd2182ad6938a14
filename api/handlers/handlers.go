package handlers

import (
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

type Handlers struct {
	Invoice *InvoiceHandler
}

func NewHandlers(
	runner PipelineRunner,
	prober Prober,
	maxUploadSize int64,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Invoice: NewInvoiceHandler(runner, prober, maxUploadSize, logger),
	}
}
