package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

const sheetName = "자격 분석"

// Writer renders an eligibility result as a spreadsheet: a summary block
// followed by one section per requirement category.
type Writer struct{}

func New() *Writer {
	return &Writer{}
}

func (w *Writer) Write(result *domain.EligibilityResult, groups []domain.RequirementGroup) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	setRow := func(values ...any) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	verdict := "부적격"
	if result.IsEligible {
		verdict = "적격"
	}

	setRow("청약 자격 분석 결과")
	setRow("공고 ID", result.SubscriptionID)
	setRow("사용자 ID", result.UserID)
	setRow("판정", verdict)
	setRow("적합도 점수", result.MatchScore)
	if result.Tier != "" {
		setRow("등급", string(result.Tier), result.TierDescription)
	}
	setRow("분석 시각", result.AnalyzedAt.Format("2006-01-02 15:04:05"))
	row++

	for _, group := range groups {
		titleCell, _ := excelize.CoordinatesToCellName(1, row)
		endCell, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellStyle(sheetName, titleCell, endCell, headerStyle)
		setRow(group.CategoryLabel, fmt.Sprintf("%d/%d 충족", group.MetCount, group.TotalCount), fmt.Sprintf("%d점", group.Score))
		setRow("요건", "충족 여부", "기준값", "사용자값", "비고")

		for _, req := range group.Requirements {
			met := "미충족"
			if req.IsMet {
				met = "충족"
			}
			setRow(req.Name, met, req.RequiredValue, req.UserValue, req.Note)
		}
		row++
	}

	if len(result.Recommendations) > 0 {
		setRow("권장 사항")
		for _, rec := range result.Recommendations {
			setRow(string(rec.Type), rec.Title, rec.Description)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
