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

func newSubscriptionRepoWithMock(t *testing.T) (*SubscriptionRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewSubscriptionRepository(db), mock, db
}

func TestFindByNameRoundTrip(t *testing.T) {
	repo, mock, db := newSubscriptionRepoWithMock(t)
	defer db.Close()

	stored := domain.Subscription{ID: "sub-1", Name: "행복마을 아파트", SupplyType: "공공분양"}
	payload, _ := json.Marshal(stored)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM subscriptions WHERE name = $1`)).
		WithArgs("행복마을 아파트").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	sub, err := repo.FindByName(context.Background(), "행복마을 아파트")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	if sub.ID != "sub-1" || sub.SupplyType != "공공분양" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindByNameNotFound(t *testing.T) {
	repo, mock, db := newSubscriptionRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM subscriptions WHERE name = $1`)).
		WithArgs("없는 공고").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByName(context.Background(), "없는 공고")
	if !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestAttachSourcePdfNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, db := newSubscriptionRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE subscriptions`)).
		WithArgs("missing", "pdf-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AttachSourcePdf(context.Background(), "missing", "pdf-1")
	if !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateUpsertsByName(t *testing.T) {
	repo, mock, db := newSubscriptionRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subscriptions`)).
		WithArgs("sub-1", "행복마을 아파트", sqlmock.AnyArg(), "pdf-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &domain.Subscription{
		ID:          "sub-1",
		Name:        "행복마을 아파트",
		SourcePdfID: "pdf-1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
