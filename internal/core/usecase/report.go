package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

type ExportReportUseCase struct {
	eligibility *EligibilityUseCase
	writer      ports.ReportWriter
}

func NewExportReportUseCase(eligibility *EligibilityUseCase, writer ports.ReportWriter) *ExportReportUseCase {
	return &ExportReportUseCase{eligibility: eligibility, writer: writer}
}

// Export evaluates the user against the announcement and renders the
// outcome as a downloadable workbook, returning content and file name.
func (uc *ExportReportUseCase) Export(ctx context.Context, subscriptionID, userID string) ([]byte, string, error) {
	result, err := uc.eligibility.Check(ctx, subscriptionID, userID)
	if err != nil {
		return nil, "", err
	}

	groups := domain.GroupRequirements(result)

	content, err := uc.writer.Write(result, groups)
	if err != nil {
		return nil, "", fmt.Errorf("render report: %w", err)
	}

	name := fmt.Sprintf("eligibility_%s_%s.xlsx", subscriptionID, time.Now().UTC().Format("20060102"))
	return content, name, nil
}
