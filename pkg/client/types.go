// Package client is the Go SDK for the subscription-assistant API. It
// mirrors the server's wire types and carries no dependency on the
// server packages, so it can be vendored into other services as-is.
package client

import "time"

// Status is the server-side processing state of an uploaded document.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusUploading     Status = "UPLOADING"
	StatusProcessing    Status = "PROCESSING"
	StatusOCRInProgress Status = "OCR_IN_PROGRESS"
	StatusAnalyzing     Status = "ANALYZING"
	StatusCompleted     Status = "COMPLETED"
	StatusFailed        Status = "FAILED"
)

// StepIndex returns the position of the status in the processing
// ladder, or -1 for FAILED and unknown values. The OCR step is
// optional, so consecutive observations may skip index 3.
func (s Status) StepIndex() int {
	switch s {
	case StatusPending:
		return 0
	case StatusUploading:
		return 1
	case StatusProcessing:
		return 2
	case StatusOCRInProgress:
		return 3
	case StatusAnalyzing:
		return 4
	case StatusCompleted:
		return 5
	default:
		return -1
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document is the server's record of one uploaded file.
type Document struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	ContentType string    `json:"mimeType"`
	Status      Status    `json:"status"`
	HasOCR      bool      `json:"hasOcr,omitempty"`
	OCRQuality  string    `json:"ocrQuality,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// StatusReport is one poll response.
type StatusReport struct {
	PdfID                  string `json:"pdfId"`
	Status                 Status `json:"status"`
	Progress               int    `json:"progress"`
	CurrentStep            string `json:"currentStep,omitempty"`
	EstimatedTimeRemaining int    `json:"estimatedTimeRemaining,omitempty"`
	HasOCR                 bool   `json:"hasOcr,omitempty"`
	OCRQuality             string `json:"ocrQuality,omitempty"`
	ErrorMessage           string `json:"errorMessage,omitempty"`
}

// ExtractedSubscription holds the structured fields parsed out of an
// announcement document.
type ExtractedSubscription struct {
	Name                 string `json:"name,omitempty"`
	Location             string `json:"location,omitempty"`
	Developer            string `json:"developer,omitempty"`
	SupplyType           string `json:"supplyType,omitempty"`
	TotalUnits           int    `json:"totalUnits,omitempty"`
	ApplicationStartDate string `json:"applicationStartDate,omitempty"`
	ApplicationEndDate   string `json:"applicationEndDate,omitempty"`
	MinPrice             int64  `json:"minPrice,omitempty"`
	MaxPrice             int64  `json:"maxPrice,omitempty"`
	Confidence           int    `json:"confidence"`
}

// AnalysisResult is the final product of processing, valid only once the
// document has reached COMPLETED.
type AnalysisResult struct {
	PdfID                 string                `json:"pdfId"`
	Outcome               string                `json:"status"`
	TextConfidence        int                   `json:"textConfidence"`
	HasOCR                bool                  `json:"hasOcr"`
	OCRQuality            string                `json:"ocrQuality,omitempty"`
	OCRWarnings           []string              `json:"ocrWarnings,omitempty"`
	ExtractedSubscription ExtractedSubscription `json:"extractedSubscription"`
	Eligibility           *EligibilityResult    `json:"eligibilityAnalysis,omitempty"`
	ProcessingTimeMs      int64                 `json:"processingTimeMs"`
	AnalyzedAt            time.Time             `json:"analyzedAt"`
}

// RequirementCategory is the fixed enumeration of eligibility dimensions.
type RequirementCategory string

const (
	CategoryIncome       RequirementCategory = "INCOME"
	CategoryAsset        RequirementCategory = "ASSET"
	CategoryHousing      RequirementCategory = "HOUSING"
	CategoryRegion       RequirementCategory = "REGION"
	CategoryAge          RequirementCategory = "AGE"
	CategoryHousehold    RequirementCategory = "HOUSEHOLD"
	CategorySubscription RequirementCategory = "SUBSCRIPTION"
	CategorySpecial      RequirementCategory = "SPECIAL"
)

// Requirement is a single eligibility condition with its verdict.
type Requirement struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Category      RequirementCategory `json:"category"`
	IsMet         bool                `json:"isMet"`
	Importance    string              `json:"importance"`
	UserValue     string              `json:"userValue,omitempty"`
	RequiredValue string              `json:"requiredValue,omitempty"`
	Note          string              `json:"note,omitempty"`
}

// Recommendation is an actionable hint attached to a scoring result.
type Recommendation struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
}

// EligibilityResult is an immutable snapshot of a scoring pass.
type EligibilityResult struct {
	SubscriptionID      string           `json:"subscriptionId"`
	UserID              string           `json:"userId"`
	IsEligible          bool             `json:"isEligible"`
	MatchScore          int              `json:"matchScore"`
	Tier                string           `json:"tier,omitempty"`
	TierDescription     string           `json:"tierDescription,omitempty"`
	RequirementsMet     []Requirement    `json:"requirementsMet"`
	RequirementsFailed  []Requirement    `json:"requirementsFailed"`
	RequirementsPartial []Requirement    `json:"requirementsPartial,omitempty"`
	Recommendations     []Recommendation `json:"recommendations"`
	AnalyzedAt          time.Time        `json:"analyzedAt"`
}

// UserProfile holds the answers eligibility scoring evaluates against.
// SaveProfile replaces the stored profile wholesale, so send every field
// each time.
type UserProfile struct {
	UserID               string   `json:"userId"`
	Age                  int      `json:"age"`
	AnnualIncome         int64    `json:"annualIncome"`
	TotalAssets          int64    `json:"totalAssets"`
	HouseholdMembers     int      `json:"householdMembers"`
	HousingOwned         int      `json:"housingOwned"`
	Region               string   `json:"region,omitempty"`
	SubscriptionMonths   int      `json:"subscriptionPeriod,omitempty"`
	IsMarried            bool     `json:"isMarried,omitempty"`
	NumberOfChildren     int      `json:"numberOfChildren,omitempty"`
	IsFirstTimeHomeBuyer bool     `json:"isFirstTimeHomeBuyer,omitempty"`
	LocationPreferences  []string `json:"locationPreferences,omitempty"`
}

// AllRequirements flattens the verdict buckets preserving their order:
// met first, then failed, then partial.
func (r *EligibilityResult) AllRequirements() []Requirement {
	out := make([]Requirement, 0, len(r.RequirementsMet)+len(r.RequirementsFailed)+len(r.RequirementsPartial))
	out = append(out, r.RequirementsMet...)
	out = append(out, r.RequirementsFailed...)
	out = append(out, r.RequirementsPartial...)
	return out
}
