package domain

import "time"

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

// CategoryLabel returns the display label for a category.
func (c RequirementCategory) Label() string {
	switch c {
	case CategoryIncome:
		return "소득 요건"
	case CategoryAsset:
		return "자산 요건"
	case CategoryHousing:
		return "주택 소유"
	case CategoryRegion:
		return "지역 요건"
	case CategoryAge:
		return "연령 요건"
	case CategoryHousehold:
		return "가구 구성"
	case CategorySubscription:
		return "청약통장"
	case CategorySpecial:
		return "특별공급"
	default:
		return string(c)
	}
}

type ImportanceLevel string

const (
	ImportanceHigh   ImportanceLevel = "HIGH"
	ImportanceMedium ImportanceLevel = "MEDIUM"
	ImportanceLow    ImportanceLevel = "LOW"
)

type EligibilityTier string

const (
	TierPriority1         EligibilityTier = "PRIORITY_1"
	TierPriority2         EligibilityTier = "PRIORITY_2"
	TierGeneral           EligibilityTier = "GENERAL"
	TierSpecialNewlywed   EligibilityTier = "SPECIAL_NEWLYWED"
	TierSpecialFirstTime  EligibilityTier = "SPECIAL_FIRST_TIME"
	TierSpecialMultiChild EligibilityTier = "SPECIAL_MULTI_CHILD"
	TierIneligible        EligibilityTier = "INELIGIBLE"
)

// Requirement is a single eligibility condition with its verdict.
type Requirement struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Category      RequirementCategory `json:"category"`
	IsMet         bool                `json:"isMet"`
	Importance    ImportanceLevel     `json:"importance"`
	UserValue     string              `json:"userValue,omitempty"`
	RequiredValue string              `json:"requiredValue,omitempty"`
	Note          string              `json:"note,omitempty"`
}

type RecommendationType string

const (
	RecommendationActionRequired RecommendationType = "ACTION_REQUIRED"
	RecommendationImprovement    RecommendationType = "IMPROVEMENT"
	RecommendationInformation    RecommendationType = "INFORMATION"
	RecommendationWarning        RecommendationType = "WARNING"
)

type Recommendation struct {
	ID          string             `json:"id"`
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Priority    ImportanceLevel    `json:"priority"`
}

// EligibilityResult is an immutable snapshot of a scoring pass.
type EligibilityResult struct {
	SubscriptionID      string           `json:"subscriptionId"`
	UserID              string           `json:"userId"`
	IsEligible          bool             `json:"isEligible"`
	MatchScore          int              `json:"matchScore"`
	Tier                EligibilityTier  `json:"tier,omitempty"`
	TierDescription     string           `json:"tierDescription,omitempty"`
	RequirementsMet     []Requirement    `json:"requirementsMet"`
	RequirementsFailed  []Requirement    `json:"requirementsFailed"`
	RequirementsPartial []Requirement    `json:"requirementsPartial,omitempty"`
	Recommendations     []Recommendation `json:"recommendations"`
	AnalyzedAt          time.Time        `json:"analyzedAt"`
}

// AllRequirements flattens the three verdict buckets preserving their
// original order: met first, then failed, then partial.
func (r *EligibilityResult) AllRequirements() []Requirement {
	out := make([]Requirement, 0, len(r.RequirementsMet)+len(r.RequirementsFailed)+len(r.RequirementsPartial))
	out = append(out, r.RequirementsMet...)
	out = append(out, r.RequirementsFailed...)
	out = append(out, r.RequirementsPartial...)
	return out
}

// UserProfile holds the answers eligibility rules evaluate against.
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

// Subscription is a housing offer with the bounds eligibility checks use.
// Nil bounds mean the offer does not constrain that dimension; all
// boundaries are inclusive.
type Subscription struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Location            string     `json:"location,omitempty"`
	Developer           string     `json:"developer,omitempty"`
	SupplyType          string     `json:"supplyType,omitempty"`
	TotalUnits          int        `json:"totalUnits,omitempty"`
	MinAge              *int       `json:"minAge,omitempty"`
	MaxAge              *int       `json:"maxAge,omitempty"`
	MinIncome           *int64     `json:"minIncome,omitempty"`
	MaxIncome           *int64     `json:"maxIncome,omitempty"`
	MaxAssets           *int64     `json:"maxAssets,omitempty"`
	MinHouseholdMembers *int       `json:"minHouseholdMembers,omitempty"`
	MaxHouseholdMembers *int       `json:"maxHouseholdMembers,omitempty"`
	MaxHousingOwned     *int       `json:"maxHousingOwned,omitempty"`
	MinSubscriptionMo   *int       `json:"minSubscriptionMonths,omitempty"`
	MinPrice            int64      `json:"minPrice,omitempty"`
	MaxPrice            int64      `json:"maxPrice,omitempty"`
	ApplicationStart    *time.Time `json:"applicationStartDate,omitempty"`
	ApplicationEnd      *time.Time `json:"applicationEndDate,omitempty"`
	SourcePdfID         string     `json:"sourcePdfId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
