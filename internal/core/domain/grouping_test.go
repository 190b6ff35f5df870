package domain

import "testing"

func req(id string, category RequirementCategory, met bool) Requirement {
	return Requirement{ID: id, Name: id, Category: category, IsMet: met, Importance: ImportanceMedium}
}

func TestGroupRequirementsPartitionsEveryRequirement(t *testing.T) {
	result := &EligibilityResult{
		RequirementsMet: []Requirement{
			req("income-1", CategoryIncome, true),
			req("age-1", CategoryAge, true),
		},
		RequirementsFailed: []Requirement{
			req("income-2", CategoryIncome, false),
			req("housing-1", CategoryHousing, false),
		},
		RequirementsPartial: []Requirement{
			req("income-3", CategoryIncome, false),
		},
	}

	groups := GroupRequirements(result)

	total := 0
	for _, g := range groups {
		total += g.TotalCount
		if len(g.Requirements) != g.TotalCount {
			t.Fatalf("group %s: len=%d totalCount=%d", g.Category, len(g.Requirements), g.TotalCount)
		}
	}
	if total != 5 {
		t.Fatalf("expected 5 requirements across groups, got %d", total)
	}
}

func TestGroupRequirementsScoreAndOrder(t *testing.T) {
	result := &EligibilityResult{
		RequirementsMet: []Requirement{
			req("housing-1", CategoryHousing, true),
			req("income-1", CategoryIncome, true),
			req("income-2", CategoryIncome, true),
		},
		RequirementsFailed: []Requirement{
			req("income-3", CategoryIncome, false),
		},
	}

	groups := GroupRequirements(result)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// INCOME sorts before HOUSING in the fixed category order.
	if groups[0].Category != CategoryIncome || groups[1].Category != CategoryHousing {
		t.Fatalf("unexpected order: %s, %s", groups[0].Category, groups[1].Category)
	}
	if groups[0].MetCount != 2 || groups[0].TotalCount != 3 {
		t.Fatalf("income counts: met=%d total=%d", groups[0].MetCount, groups[0].TotalCount)
	}
	if groups[0].Score != 67 {
		t.Fatalf("round(2/3*100) = 67, got %d", groups[0].Score)
	}
	if groups[1].Score != 100 {
		t.Fatalf("housing score = %d, want 100", groups[1].Score)
	}

	// Input order preserved within a category.
	if groups[0].Requirements[0].ID != "income-1" || groups[0].Requirements[2].ID != "income-3" {
		t.Fatalf("input order not preserved: %+v", groups[0].Requirements)
	}
}

func TestGroupRequirementsOmitsEmptyCategoriesAndIsDeterministic(t *testing.T) {
	result := &EligibilityResult{
		RequirementsMet: []Requirement{req("sub-1", CategorySubscription, true)},
	}

	first := GroupRequirements(result)
	second := GroupRequirements(result)

	if len(first) != 1 {
		t.Fatalf("expected 1 group, got %d", len(first))
	}
	if first[0].Category != second[0].Category || first[0].Score != second[0].Score {
		t.Fatalf("grouping not deterministic: %+v vs %+v", first, second)
	}
}

func TestGroupRequirementsEmptyInput(t *testing.T) {
	groups := GroupRequirements(&EligibilityResult{})
	if len(groups) != 0 {
		t.Fatalf("expected no groups for empty result, got %d", len(groups))
	}
}
