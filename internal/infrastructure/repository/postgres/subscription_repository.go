package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO subscriptions (id, name, payload, source_pdf_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`, sub.ID, sub.Name, payload, sub.SourcePdfID, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
SELECT payload FROM subscriptions WHERE id = $1
`, id), id)
}

func (r *SubscriptionRepository) FindByName(ctx context.Context, name string) (*domain.Subscription, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
SELECT payload FROM subscriptions WHERE name = $1
`, name), name)
}

func (r *SubscriptionRepository) AttachSourcePdf(ctx context.Context, id, pdfID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE subscriptions
SET source_pdf_id = $2, updated_at = $3
WHERE id = $1
`, id, pdfID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("attach source pdf: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, id)
	}
	return nil
}

func (r *SubscriptionRepository) scanOne(row *sql.Row, key string) (*domain.Subscription, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, key)
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}

	var sub domain.Subscription
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal subscription: %w", err)
	}
	return &sub, nil
}
