package eligibility

import (
	"fmt"
	"strings"
	"time"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

// Calculator evaluates a user profile against a subscription's bounds.
// All boundary comparisons are inclusive. The calculator is pure apart
// from the injected clock.
type Calculator struct {
	rules RuleSet
	now   func() time.Time
}

func NewCalculator(rules RuleSet) *Calculator {
	return &Calculator{
		rules: rules.normalize(),
		now:   time.Now,
	}
}

// WithClock overrides the timestamp source, for tests.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Evaluate produces an immutable scoring snapshot. Hard requirements
// (HIGH importance) decide eligibility; soft requirements only shave the
// match score and land in the partial bucket when unmet.
func (c *Calculator) Evaluate(profile *domain.UserProfile, sub *domain.Subscription) *domain.EligibilityResult {
	reqs := c.buildRequirements(profile, sub)

	result := &domain.EligibilityResult{
		SubscriptionID:  sub.ID,
		UserID:          profile.UserID,
		Recommendations: []domain.Recommendation{},
		AnalyzedAt:      c.now().UTC(),
	}

	eligible := true
	for _, req := range reqs {
		switch {
		case req.IsMet:
			result.RequirementsMet = append(result.RequirementsMet, req)
		case req.Importance == domain.ImportanceHigh:
			eligible = false
			result.RequirementsFailed = append(result.RequirementsFailed, req)
		default:
			result.RequirementsPartial = append(result.RequirementsPartial, req)
		}
	}
	result.IsEligible = eligible
	result.MatchScore = c.matchScore(profile, sub, eligible)
	result.Tier, result.TierDescription = c.tierFor(profile, eligible)
	result.Recommendations = c.recommend(result)
	return result
}

func (c *Calculator) buildRequirements(profile *domain.UserProfile, sub *domain.Subscription) []domain.Requirement {
	var reqs []domain.Requirement

	if sub.MinIncome != nil || sub.MaxIncome != nil {
		reqs = append(reqs, domain.Requirement{
			ID:            "income-range",
			Name:          "연소득 기준",
			Description:   "공고의 소득 기준 구간 충족 여부",
			Category:      domain.CategoryIncome,
			Importance:    domain.ImportanceHigh,
			IsMet:         withinInt64(profile.AnnualIncome, sub.MinIncome, sub.MaxIncome),
			UserValue:     fmt.Sprintf("%d", profile.AnnualIncome),
			RequiredValue: rangeLabelInt64(sub.MinIncome, sub.MaxIncome),
		})
	}

	if sub.MaxAssets != nil {
		reqs = append(reqs, domain.Requirement{
			ID:            "asset-ceiling",
			Name:          "자산 기준",
			Description:   "총자산 상한 충족 여부",
			Category:      domain.CategoryAsset,
			Importance:    domain.ImportanceHigh,
			IsMet:         profile.TotalAssets <= *sub.MaxAssets,
			UserValue:     fmt.Sprintf("%d", profile.TotalAssets),
			RequiredValue: fmt.Sprintf("≤ %d", *sub.MaxAssets),
		})
	}

	if sub.MinAge != nil || sub.MaxAge != nil {
		reqs = append(reqs, domain.Requirement{
			ID:            "age-range",
			Name:          "연령 기준",
			Category:      domain.CategoryAge,
			Importance:    domain.ImportanceHigh,
			IsMet:         withinInt(profile.Age, sub.MinAge, sub.MaxAge),
			UserValue:     fmt.Sprintf("%d세", profile.Age),
			RequiredValue: rangeLabelInt(sub.MinAge, sub.MaxAge),
		})
	}

	if sub.MaxHousingOwned != nil {
		reqs = append(reqs, domain.Requirement{
			ID:            "housing-owned",
			Name:          "주택 소유 기준",
			Description:   "보유 주택 수 상한 충족 여부",
			Category:      domain.CategoryHousing,
			Importance:    domain.ImportanceHigh,
			IsMet:         profile.HousingOwned <= *sub.MaxHousingOwned,
			UserValue:     fmt.Sprintf("%d채", profile.HousingOwned),
			RequiredValue: fmt.Sprintf("≤ %d채", *sub.MaxHousingOwned),
		})
	}

	if sub.MinHouseholdMembers != nil || sub.MaxHouseholdMembers != nil {
		reqs = append(reqs, domain.Requirement{
			ID:            "household-size",
			Name:          "가구원 수 기준",
			Category:      domain.CategoryHousehold,
			Importance:    domain.ImportanceMedium,
			IsMet:         withinInt(profile.HouseholdMembers, sub.MinHouseholdMembers, sub.MaxHouseholdMembers),
			UserValue:     fmt.Sprintf("%d명", profile.HouseholdMembers),
			RequiredValue: rangeLabelInt(sub.MinHouseholdMembers, sub.MaxHouseholdMembers),
		})
	}

	if sub.MinSubscriptionMo != nil {
		reqs = append(reqs, domain.Requirement{
			ID:            "subscription-account",
			Name:          "청약통장 가입기간",
			Category:      domain.CategorySubscription,
			Importance:    domain.ImportanceHigh,
			IsMet:         profile.SubscriptionMonths >= *sub.MinSubscriptionMo,
			UserValue:     fmt.Sprintf("%d개월", profile.SubscriptionMonths),
			RequiredValue: fmt.Sprintf("≥ %d개월", *sub.MinSubscriptionMo),
		})
	}

	if sub.Location != "" {
		reqs = append(reqs, domain.Requirement{
			ID:          "region-preference",
			Name:        "선호 지역",
			Description: "공고 지역이 선호 지역에 포함되는지 여부",
			Category:    domain.CategoryRegion,
			Importance:  domain.ImportanceLow,
			IsMet:       c.locationMatches(profile, sub),
			UserValue:   strings.Join(profile.LocationPreferences, ", "),
			RequiredValue: sub.Location,
		})
	}

	return reqs
}

func (c *Calculator) matchScore(profile *domain.UserProfile, sub *domain.Subscription, eligible bool) int {
	if !eligible {
		return 0
	}

	score := 100

	if sub.MaxHousingOwned != nil && profile.HousingOwned > 0 {
		score -= c.rules.Penalties.OwnedHousing
	}

	// Users near the edges of the income band are a weaker fit.
	if sub.MinIncome != nil && sub.MaxIncome != nil && *sub.MaxIncome > *sub.MinIncome {
		bandWidth := *sub.MaxIncome - *sub.MinIncome
		position := profile.AnnualIncome - *sub.MinIncome
		margin := bandWidth * int64(c.rules.Tiers.BoundaryMarginPct) / 100
		if position < margin || position > bandWidth-margin {
			score -= c.rules.Penalties.IncomeBoundary
		}
	}

	if sub.Location != "" && !c.locationMatches(profile, sub) {
		score -= c.rules.Penalties.LocationMismatch
	}

	if score < 0 {
		score = 0
	}
	return score
}

func (c *Calculator) tierFor(profile *domain.UserProfile, eligible bool) (domain.EligibilityTier, string) {
	if !eligible {
		return domain.TierIneligible, "자격 요건 미충족"
	}
	switch {
	case profile.NumberOfChildren >= c.rules.Tiers.MultiChildFloor:
		return domain.TierSpecialMultiChild, "다자녀 특별공급 대상"
	case profile.IsMarried && profile.NumberOfChildren <= 1 && profile.HousingOwned == 0:
		return domain.TierSpecialNewlywed, "신혼부부 특별공급 대상"
	case profile.IsFirstTimeHomeBuyer && profile.HousingOwned == 0:
		return domain.TierSpecialFirstTime, "생애최초 특별공급 대상"
	case profile.SubscriptionMonths >= c.rules.Tiers.Priority1Months && profile.HousingOwned == 0:
		return domain.TierPriority1, "1순위"
	case profile.SubscriptionMonths >= c.rules.Tiers.Priority2Months:
		return domain.TierPriority2, "2순위"
	default:
		return domain.TierGeneral, "일반공급"
	}
}

func (c *Calculator) recommend(result *domain.EligibilityResult) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(result.RequirementsFailed)+len(result.RequirementsPartial))

	for _, req := range result.RequirementsFailed {
		recs = append(recs, domain.Recommendation{
			ID:          "fix-" + req.ID,
			Type:        domain.RecommendationActionRequired,
			Title:       req.Name + " 보완 필요",
			Description: fmt.Sprintf("현재 %s, 기준 %s", req.UserValue, req.RequiredValue),
			Priority:    domain.ImportanceHigh,
		})
	}
	for _, req := range result.RequirementsPartial {
		recs = append(recs, domain.Recommendation{
			ID:          "improve-" + req.ID,
			Type:        domain.RecommendationImprovement,
			Title:       req.Name + " 개선 가능",
			Description: fmt.Sprintf("현재 %s, 기준 %s", req.UserValue, req.RequiredValue),
			Priority:    req.Importance,
		})
	}
	return recs
}

func (c *Calculator) locationMatches(profile *domain.UserProfile, sub *domain.Subscription) bool {
	if len(profile.LocationPreferences) == 0 {
		// No stated preference never counts against the user.
		return true
	}
	for _, pref := range profile.LocationPreferences {
		pref = strings.TrimSpace(pref)
		if pref != "" && strings.Contains(sub.Location, pref) {
			return true
		}
	}
	return false
}

func withinInt(v int, min, max *int) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func withinInt64(v int64, min, max *int64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func rangeLabelInt(min, max *int) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%d ~ %d", *min, *max)
	case min != nil:
		return fmt.Sprintf("≥ %d", *min)
	case max != nil:
		return fmt.Sprintf("≤ %d", *max)
	default:
		return ""
	}
}

func rangeLabelInt64(min, max *int64) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%d ~ %d", *min, *max)
	case min != nil:
		return fmt.Sprintf("≥ %d", *min)
	case max != nil:
		return fmt.Sprintf("≤ %d", *max)
	default:
		return ""
	}
}
