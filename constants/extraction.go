package constants

// ExtractionMode records which path produced a raw record.
type ExtractionMode string

const (
	ModeStructured  ExtractionMode = "structured"
	ModeOCRFallback ExtractionMode = "ocr-fallback"
)

// Form family identifiers.
const (
	FormUnknown = "unknown"
	// ResaleFormCode is the registry key for the one-to-four family resale contract.
	ResaleFormCode = "TREC-20"
)
