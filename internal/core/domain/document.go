package domain

import "time"

// ProcessingStatus tracks a document through the analysis pipeline.
// The order is fixed: a document never moves to a lower step, and the
// two terminal statuses stop all further transitions.
type ProcessingStatus string

const (
	StatusPending       ProcessingStatus = "PENDING"
	StatusUploading     ProcessingStatus = "UPLOADING"
	StatusProcessing    ProcessingStatus = "PROCESSING"
	StatusOCRInProgress ProcessingStatus = "OCR_IN_PROGRESS"
	StatusAnalyzing     ProcessingStatus = "ANALYZING"
	StatusCompleted     ProcessingStatus = "COMPLETED"
	StatusFailed        ProcessingStatus = "FAILED"
)

// StepIndex returns the position of the status in the processing ladder,
// or -1 for FAILED and unknown values. OCR_IN_PROGRESS is optional:
// text-native documents jump straight from PROCESSING to ANALYZING.
func (s ProcessingStatus) StepIndex() int {
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

func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress maps a status to its nominal completion percentage.
func (s ProcessingStatus) Progress() int {
	switch s {
	case StatusPending:
		return 0
	case StatusUploading:
		return 10
	case StatusProcessing:
		return 40
	case StatusOCRInProgress:
		return 60
	case StatusAnalyzing:
		return 80
	case StatusCompleted:
		return 100
	default:
		return 0
	}
}

// StepLabel is the human-readable label shown while the step runs.
func (s ProcessingStatus) StepLabel() string {
	switch s {
	case StatusPending:
		return "대기 중"
	case StatusUploading:
		return "업로드 중"
	case StatusProcessing:
		return "파일 처리 중"
	case StatusOCRInProgress:
		return "텍스트 추출 중"
	case StatusAnalyzing:
		return "AI 분석 중"
	case StatusCompleted:
		return "분석 완료"
	case StatusFailed:
		return "처리 실패"
	default:
		return string(s)
	}
}

type OCRQuality string

const (
	OCRQualityHigh   OCRQuality = "HIGH"
	OCRQualityMedium OCRQuality = "MEDIUM"
	OCRQualityLow    OCRQuality = "LOW"
	OCRQualityNone   OCRQuality = "NONE"
)

// PdfDocument is an uploaded announcement file tracked through analysis.
type PdfDocument struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	FileName    string           `json:"fileName"`
	StoragePath string           `json:"-"`
	FileSize    int64            `json:"fileSize"`
	ContentType string           `json:"mimeType"`
	Status      ProcessingStatus `json:"status"`
	HasOCR      bool             `json:"hasOcr"`
	OCRQuality  OCRQuality       `json:"ocrQuality,omitempty"`
	PageCount   int              `json:"pageCount,omitempty"`
	CacheKey    string           `json:"-"`
	Error       string           `json:"errorMessage,omitempty"`
	UploadedAt  time.Time        `json:"uploadedAt"`
	ProcessedAt *time.Time       `json:"processedAt,omitempty"`
}

// StatusReport is the polling view of a document.
type StatusReport struct {
	PdfID                  string           `json:"pdfId"`
	Status                 ProcessingStatus `json:"status"`
	Progress               int              `json:"progress"`
	CurrentStep            string           `json:"currentStep,omitempty"`
	EstimatedTimeRemaining int              `json:"estimatedTimeRemaining,omitempty"`
	HasOCR                 bool             `json:"hasOcr,omitempty"`
	OCRQuality             OCRQuality       `json:"ocrQuality,omitempty"`
	ErrorMessage           string           `json:"errorMessage,omitempty"`
}

// ReportFor builds the polling view for a document. Remaining time is a
// rough per-step estimate; OCR documents get more time per step.
func ReportFor(doc *PdfDocument) StatusReport {
	report := StatusReport{
		PdfID:        doc.ID,
		Status:       doc.Status,
		Progress:     doc.Status.Progress(),
		CurrentStep:  doc.Status.StepLabel(),
		HasOCR:       doc.HasOCR,
		OCRQuality:   doc.OCRQuality,
		ErrorMessage: doc.Error,
	}
	if !doc.Status.IsTerminal() {
		remainingSteps := StatusCompleted.StepIndex() - doc.Status.StepIndex()
		perStep := 5
		if doc.HasOCR {
			perStep = 10
		}
		report.EstimatedTimeRemaining = remainingSteps * perStep
	}
	return report
}
