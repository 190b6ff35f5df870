package domain

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

// groupOrder is the fixed display order of categories.
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

// GroupRequirements partitions the requirements of a result into
// per-category groups. Every requirement lands in exactly one group,
// members keep their input order, categories with no requirements are
// omitted, and each group's score is round(met/total*100).
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
	for _, category := range groupOrder {
		group, ok := byCategory[category]
		if !ok {
			continue
		}
		if group.TotalCount > 0 {
			group.Score = int(math.Round(float64(group.MetCount) / float64(group.TotalCount) * 100))
		}
		out = append(out, *group)
		delete(byCategory, category)
	}
	// Categories outside the known order would be dropped silently;
	// append them last, sorted, so the output stays deterministic.
	rest := make([]RequirementCategory, 0, len(byCategory))
	for category := range byCategory {
		rest = append(rest, category)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, category := range rest {
		group := byCategory[category]
		if group.TotalCount > 0 {
			group.Score = int(math.Round(float64(group.MetCount) / float64(group.TotalCount) * 100))
		}
		out = append(out, *group)
	}
	return out
}

// MatchScoreLabel buckets a 0-100 match score into a display grade.
func MatchScoreLabel(score int) string {
	switch {
	case score >= 90:
		return "최상"
	case score >= 70:
		return "상"
	case score >= 50:
		return "중"
	case score >= 30:
		return "하"
	default:
		return "미달"
	}
}
