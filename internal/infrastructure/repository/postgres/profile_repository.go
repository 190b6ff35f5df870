package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload FROM user_profiles WHERE user_id = $1
`, userID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, userID)
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	profile.UserID = userID
	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO user_profiles (user_id, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
`, profile.UserID, payload)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
