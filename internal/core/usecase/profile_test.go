package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/eligibility"
)

func TestProfileSaveRequiresUserID(t *testing.T) {
	uc := NewProfileUseCase(&profileRepoFake{})

	err := uc.Save(context.Background(), &domain.UserProfile{Age: 30})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := uc.Save(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil profile, got %v", err)
	}
}

func TestProfileSaveRejectsNegativeFields(t *testing.T) {
	uc := NewProfileUseCase(&profileRepoFake{})

	err := uc.Save(context.Background(), &domain.UserProfile{UserID: "user-1", AnnualIncome: -1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileSaveOverwritesPrevious(t *testing.T) {
	profiles := &profileRepoFake{}
	uc := NewProfileUseCase(profiles)

	if err := uc.Save(context.Background(), &domain.UserProfile{UserID: "user-1", Age: 30}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := uc.Save(context.Background(), &domain.UserProfile{UserID: "user-1", Age: 31}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	stored, err := uc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Age != 31 {
		t.Fatalf("expected latest profile, got %+v", stored)
	}
}

func TestProfileGetMissing(t *testing.T) {
	uc := NewProfileUseCase(&profileRepoFake{})

	_, err := uc.Get(context.Background(), "user-1")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSavedProfileReachesEligibilityCheck(t *testing.T) {
	profiles := &profileRepoFake{}
	profileUC := NewProfileUseCase(profiles)

	err := profileUC.Save(context.Background(), &domain.UserProfile{
		UserID:             "user-1",
		Age:                34,
		AnnualIncome:       50_000_000,
		HouseholdMembers:   3,
		SubscriptionMonths: 48,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	maxIncome := int64(70_000_000)
	subs := &subscriptionRepoFake{existing: &domain.Subscription{
		ID:        "sub-1",
		Name:      "행복주택",
		MaxIncome: &maxIncome,
	}}
	checkUC := NewEligibilityUseCase(subs, profiles, eligibility.NewCalculator(eligibility.DefaultRuleSet()))

	result, err := checkUC.Check(context.Background(), "sub-1", "user-1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.UserID != "user-1" || result.SubscriptionID != "sub-1" {
		t.Fatalf("unexpected result identity %+v", result)
	}
	if !result.IsEligible {
		t.Fatalf("expected the saved profile to satisfy the income range, got %+v", result)
	}
}
