package domain

import "errors"

// Sentinel errors shared across adapters and use cases.
var (
	ErrBackendFailure     = errors.New("backend failure")
	ErrUnsupportedBackend = errors.New("unsupported backend")
	ErrExtractionGap      = errors.New("extraction gap")
	ErrFetchFailure       = errors.New("fetch failure")
	ErrAnalysisFailure    = errors.New("analysis failure")
	ErrInvalidArticle     = errors.New("invalid article")
	ErrNotFound           = errors.New("not found")
	ErrNotImplemented     = errors.New("not implemented")
)

// FailureKind classifies per-item failures that a run skips over.
type FailureKind string

const (
	FailureBackend    FailureKind = "backend"
	FailureExtraction FailureKind = "extraction"
	FailureFetch      FailureKind = "fetch"
	FailureAnalysis   FailureKind = "analysis"
	FailureUnknown    FailureKind = "unknown"
)

// FailureKinds lists every skippable kind in reporting order.
var FailureKinds = []FailureKind{FailureBackend, FailureExtraction, FailureFetch, FailureAnalysis}

// FailureKindOf maps an error chain onto its failure kind.
func FailureKindOf(err error) FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBackendFailure), errors.Is(err, ErrUnsupportedBackend):
		return FailureBackend
	case errors.Is(err, ErrExtractionGap):
		return FailureExtraction
	case errors.Is(err, ErrFetchFailure):
		return FailureFetch
	case errors.Is(err, ErrAnalysisFailure), errors.Is(err, ErrInvalidArticle):
		return FailureAnalysis
	default:
		return FailureUnknown
	}
}
