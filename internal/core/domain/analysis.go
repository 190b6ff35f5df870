package domain

import "time"

// AnalysisOutcome summarizes how much of the document could be read.
type AnalysisOutcome string

const (
	AnalysisSuccess AnalysisOutcome = "SUCCESS"
	AnalysisPartial AnalysisOutcome = "PARTIAL"
	AnalysisFailed  AnalysisOutcome = "FAILED"
)

// ExtractedSize is one unit-type row parsed from an announcement.
type ExtractedSize struct {
	SizeType      string  `json:"sizeType"`
	ExclusiveArea float64 `json:"exclusiveArea,omitempty"`
	SupplyUnits   int     `json:"supplyUnits,omitempty"`
	Price         int64   `json:"price,omitempty"`
}

// ExtractedRequirement is one eligibility criterion the parser found in
// the announcement text, before it is matched against a user profile.
type ExtractedRequirement struct {
	Category    RequirementCategory `json:"category"`
	Description string              `json:"description"`
	Value       string              `json:"value,omitempty"`
	Confidence  int                 `json:"confidence"`
}

// ExtractedSubscription holds the structured fields parsed out of an
// announcement document, with the parser's overall confidence.
type ExtractedSubscription struct {
	Name                 string          `json:"name,omitempty"`
	Location             string          `json:"location,omitempty"`
	Developer            string          `json:"developer,omitempty"`
	SupplyType           string          `json:"supplyType,omitempty"`
	TotalUnits           int             `json:"totalUnits,omitempty"`
	ApplicationStartDate string          `json:"applicationStartDate,omitempty"`
	ApplicationEndDate   string          `json:"applicationEndDate,omitempty"`
	MinPrice             int64           `json:"minPrice,omitempty"`
	MaxPrice             int64           `json:"maxPrice,omitempty"`
	Sizes                []ExtractedSize        `json:"sizes,omitempty"`
	Requirements         []ExtractedRequirement `json:"requirements,omitempty"`
	Confidence           int                    `json:"confidence"`
}

// AnalysisResult is the immutable final product of the worker pipeline,
// valid only once the owning document has reached COMPLETED.
type AnalysisResult struct {
	PdfID                 string                `json:"pdfId"`
	Outcome               AnalysisOutcome       `json:"status"`
	TextConfidence        int                   `json:"textConfidence"`
	HasOCR                bool                  `json:"hasOcr"`
	OCRQuality            OCRQuality            `json:"ocrQuality,omitempty"`
	OCRWarnings           []string              `json:"ocrWarnings,omitempty"`
	ExtractedSubscription ExtractedSubscription `json:"extractedSubscription"`
	Eligibility           *EligibilityResult    `json:"eligibilityAnalysis,omitempty"`
	ProcessingTimeMs      int64                 `json:"processingTimeMs"`
	AnalyzedAt            time.Time             `json:"analyzedAt"`
}
