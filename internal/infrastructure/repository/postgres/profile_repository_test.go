package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

func newProfileRepoWithMock(t *testing.T) (*ProfileRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewProfileRepository(db), mock, db
}

func TestProfileUpsertWritesPayload(t *testing.T) {
	repo, mock, db := newProfileRepoWithMock(t)
	defer db.Close()

	profile := domain.UserProfile{UserID: "user-1", Age: 34, AnnualIncome: 50_000_000}
	payload, _ := json.Marshal(&profile)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_profiles (user_id, payload, updated_at)`)).
		WithArgs("user-1", payload).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), &profile); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProfileGetByUserIDRoundTrip(t *testing.T) {
	repo, mock, db := newProfileRepoWithMock(t)
	defer db.Close()

	stored := domain.UserProfile{UserID: "user-1", Age: 34, SubscriptionMonths: 48}
	payload, _ := json.Marshal(&stored)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM user_profiles WHERE user_id = $1`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	profile, err := repo.GetByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if profile.UserID != "user-1" || profile.Age != 34 || profile.SubscriptionMonths != 48 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProfileGetByUserIDNotFound(t *testing.T) {
	repo, mock, db := newProfileRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM user_profiles WHERE user_id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
