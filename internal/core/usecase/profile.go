package usecase

import (
	"context"
	"fmt"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

type ProfileUseCase struct {
	profiles ports.ProfileRepository
}

func NewProfileUseCase(profiles ports.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{profiles: profiles}
}

// Save validates and stores a user's eligibility profile. Saving is an
// upsert: the latest submission replaces the previous one.
func (uc *ProfileUseCase) Save(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	if profile.Age < 0 || profile.AnnualIncome < 0 || profile.TotalAssets < 0 ||
		profile.HouseholdMembers < 0 || profile.HousingOwned < 0 || profile.SubscriptionMonths < 0 {
		return fmt.Errorf("%w: profile fields must not be negative", domain.ErrInvalidInput)
	}

	if err := uc.profiles.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("store profile %s: %w", profile.UserID, err)
	}
	return nil
}

func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return profile, nil
}
