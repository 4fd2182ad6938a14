package pipeline

import (
	"fmt"

	"github.com/scanwise/invoice-extractor/internal/models"
)

// Validator enforces the upload constraints before any processing or disk
// writes happen. Checks run in a fixed order and fail fast with a specific
// reason code.
type Validator struct {
	maxSize      int64
	allowedTypes map[string]struct{}
}

// NewValidator builds a validator for the given size limit (bytes) and the
// set of accepted extensions (lower-case, with dot).
func NewValidator(maxSize int64, allowedExts []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[ext] = struct{}{}
	}
	return &Validator{maxSize: maxSize, allowedTypes: allowed}
}

// Validate returns nil when the upload may enter the pipeline.
func (v *Validator) Validate(upload *models.UploadRequest) error {
	ext := upload.Ext()
	if _, ok := v.allowedTypes[ext]; !ok {
		return NewStageError(StageValidate, ReasonUnsupportedType,
			fmt.Errorf("unsupported file type: %q", ext))
	}
	if upload.Size > v.maxSize {
		return NewStageError(StageValidate, ReasonTooLarge,
			fmt.Errorf("file size %d exceeds maximum of %d bytes", upload.Size, v.maxSize))
	}
	return nil
}
