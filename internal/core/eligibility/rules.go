package eligibility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Penalties are subtracted from a perfect match score for soft mismatches.
type Penalties struct {
	OwnedHousing     int `yaml:"owned_housing"`
	IncomeBoundary   int `yaml:"income_boundary"`
	LocationMismatch int `yaml:"location_mismatch"`
}

// TierThresholds hold the subscription-account seniority cutoffs for
// priority ranks, in months.
type TierThresholds struct {
	Priority1Months  int `yaml:"priority1_months"`
	Priority2Months  int `yaml:"priority2_months"`
	MultiChildFloor  int `yaml:"multi_child_floor"`
	BoundaryMarginPct int `yaml:"boundary_margin_pct"`
}

// RuleSet tunes the scoring pass without code changes.
type RuleSet struct {
	Penalties Penalties      `yaml:"penalties"`
	Tiers     TierThresholds `yaml:"tiers"`
}

// DefaultRuleSet mirrors the reference scoring behavior.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Penalties: Penalties{
			OwnedHousing:     5,
			IncomeBoundary:   10,
			LocationMismatch: 15,
		},
		Tiers: TierThresholds{
			Priority1Months:   24,
			Priority2Months:   6,
			MultiChildFloor:   2,
			BoundaryMarginPct: 10,
		},
	}
}

// LoadRuleSet reads a YAML rule file, filling omitted fields from the
// defaults. An empty path returns the defaults unchanged.
func LoadRuleSet(path string) (RuleSet, error) {
	rules := DefaultRuleSet()
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rule file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return RuleSet{}, fmt.Errorf("parse rule file: %w", err)
	}
	return rules.normalize(), nil
}

func (r RuleSet) normalize() RuleSet {
	def := DefaultRuleSet()
	out := r
	if out.Penalties.OwnedHousing < 0 {
		out.Penalties.OwnedHousing = def.Penalties.OwnedHousing
	}
	if out.Penalties.IncomeBoundary < 0 {
		out.Penalties.IncomeBoundary = def.Penalties.IncomeBoundary
	}
	if out.Penalties.LocationMismatch < 0 {
		out.Penalties.LocationMismatch = def.Penalties.LocationMismatch
	}
	if out.Tiers.Priority1Months <= 0 {
		out.Tiers.Priority1Months = def.Tiers.Priority1Months
	}
	if out.Tiers.Priority2Months <= 0 {
		out.Tiers.Priority2Months = def.Tiers.Priority2Months
	}
	if out.Tiers.MultiChildFloor <= 0 {
		out.Tiers.MultiChildFloor = def.Tiers.MultiChildFloor
	}
	if out.Tiers.BoundaryMarginPct <= 0 || out.Tiers.BoundaryMarginPct >= 50 {
		out.Tiers.BoundaryMarginPct = def.Tiers.BoundaryMarginPct
	}
	return out
}
