package models

// ResultStatus classifies the terminal outcome of one pipeline run.
type ResultStatus string

const (
	// StatusSuccess means every stage completed and the record came from the model.
	StatusSuccess ResultStatus = "success"
	// StatusPartial means a post-validation stage failed and Record is the fallback.
	StatusPartial ResultStatus = "partial"
	// StatusFailed means the upload was rejected before any extraction happened.
	StatusFailed ResultStatus = "failed"
)

// PipelineResult is created exactly once per request by the orchestrator.
// Record is nil only when Status is StatusFailed.
type PipelineResult struct {
	Status      ResultStatus
	Record      *InvoiceRecord
	Reason      string
	FailedStage string
}
