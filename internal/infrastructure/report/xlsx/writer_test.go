package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

func sampleResult() *domain.EligibilityResult {
	return &domain.EligibilityResult{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		IsEligible:     true,
		MatchScore:     85,
		RequirementsMet: []domain.Requirement{
			{ID: "income", Name: "소득 기준", Category: domain.CategoryIncome, IsMet: true, UserValue: "5000만원", RequiredValue: "6000만원 이하"},
		},
		RequirementsFailed: []domain.Requirement{
			{ID: "age", Name: "최소 나이", Category: domain.CategoryAge, IsMet: false, UserValue: "18세", RequiredValue: "만 19세 이상"},
		},
		Recommendations: []domain.Recommendation{
			{ID: "r1", Type: domain.RecommendationInformation, Title: "내년에 다시 신청 가능"},
		},
		AnalyzedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteProducesReadableWorkbook(t *testing.T) {
	result := sampleResult()
	groups := domain.GroupRequirements(result)

	data, err := New().Write(result, groups)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	flat := ""
	for _, r := range rows {
		for _, c := range r {
			flat += c + "|"
		}
	}

	for _, want := range []string{"sub-1", "user-1", "적격", "85", "소득 요건", "소득 기준", "최소 나이", "미충족", "내년에 다시 신청 가능"} {
		if !bytes.Contains([]byte(flat), []byte(want)) {
			t.Errorf("workbook missing %q", want)
		}
	}
}

func TestWriteIneligibleVerdict(t *testing.T) {
	result := sampleResult()
	result.IsEligible = false
	result.Recommendations = nil

	data, err := New().Write(result, domain.GroupRequirements(result))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	found := false
	for _, r := range rows {
		for _, c := range r {
			if c == "부적격" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected 부적격 verdict row")
	}
}
