package client

import (
	"math"
	"sort"
)

// RequirementGroup is a category bucket with its satisfaction score.
type RequirementGroup struct {
	Category      RequirementCategory `json:"category"`
	CategoryLabel string              `json:"categoryLabel"`
	Requirements  []Requirement       `json:"requirements"`
	MetCount      int                 `json:"metCount"`
	TotalCount    int                 `json:"totalCount"`
	Score         int                 `json:"score"`
}

var groupOrder = []RequirementCategory{
	CategoryIncome,
	CategoryHousing,
	CategorySubscription,
	CategoryRegion,
	CategoryAge,
	CategoryHousehold,
	CategoryAsset,
	CategorySpecial,
}

var categoryLabels = map[RequirementCategory]string{
	CategoryIncome:       "소득 요건",
	CategoryAsset:        "자산 요건",
	CategoryHousing:      "주택 소유 요건",
	CategoryRegion:       "거주 지역 요건",
	CategoryAge:          "나이 요건",
	CategoryHousehold:    "가구 요건",
	CategorySubscription: "청약통장 요건",
	CategorySpecial:      "특별공급 요건",
}

// Label returns the display label for a category.
func (c RequirementCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// GroupRequirements partitions a result's requirements into
// per-category groups in a fixed display order. Every requirement lands
// in exactly one group, members keep their input order, empty
// categories are omitted and each score is round(met/total*100). The
// transform is pure and deterministic.
func GroupRequirements(result *EligibilityResult) []RequirementGroup {
	byCategory := make(map[RequirementCategory]*RequirementGroup)

	for _, req := range result.AllRequirements() {
		group, ok := byCategory[req.Category]
		if !ok {
			group = &RequirementGroup{
				Category:      req.Category,
				CategoryLabel: req.Category.Label(),
			}
			byCategory[req.Category] = group
		}
		group.Requirements = append(group.Requirements, req)
		group.TotalCount++
		if req.IsMet {
			group.MetCount++
		}
	}

	out := make([]RequirementGroup, 0, len(byCategory))
	appendGroup := func(category RequirementCategory) {
		group, ok := byCategory[category]
		if !ok {
			return
		}
		if group.TotalCount > 0 {
			group.Score = int(math.Round(float64(group.MetCount) / float64(group.TotalCount) * 100))
		}
		out = append(out, *group)
		delete(byCategory, category)
	}

	for _, category := range groupOrder {
		appendGroup(category)
	}
	rest := make([]RequirementCategory, 0, len(byCategory))
	for category := range byCategory {
		rest = append(rest, category)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, category := range rest {
		appendGroup(category)
	}
	return out
}
