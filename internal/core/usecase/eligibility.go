package usecase

import (
	"context"
	"fmt"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

type EligibilityUseCase struct {
	subscriptions ports.SubscriptionRepository
	profiles      ports.ProfileRepository
	evaluator     ports.EligibilityEvaluator
}

func NewEligibilityUseCase(
	subscriptions ports.SubscriptionRepository,
	profiles ports.ProfileRepository,
	evaluator ports.EligibilityEvaluator,
) *EligibilityUseCase {
	return &EligibilityUseCase{
		subscriptions: subscriptions,
		profiles:      profiles,
		evaluator:     evaluator,
	}
}

// Check evaluates a stored user profile against a stored announcement
// on demand, independent of the upload pipeline.
func (uc *EligibilityUseCase) Check(ctx context.Context, subscriptionID, userID string) (*domain.EligibilityResult, error) {
	sub, err := uc.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("load subscription %s: %w", subscriptionID, err)
	}
	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return uc.evaluator.Evaluate(profile, sub), nil
}
