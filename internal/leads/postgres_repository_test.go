package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var leadRowColumns = []string{"id", "form_id", "name", "company", "phone", "phone_digits", "email", "remote_ip", "user_agent", "submitted_at", "created_at"}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	lead := validLead("heroForm", "Jane")
	lead.ID = "2f6c1a2e-7d1b-4bb4-9a43-1f1f9a0c1111"
	created := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(lead.ID, "heroForm", "Jane", "Acme Roofing", "(555) 123-4567", "5551234567", "owner@acme.com", "", "", lead.SubmittedAt).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	if err := repo.Create(context.Background(), lead); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !lead.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at from db, got %v", lead.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateValidatesBeforeInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	if err := repo.Create(context.Background(), &Lead{FormID: "heroForm"}); err == nil {
		t.Fatal("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id = \\$1").
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows(leadRowColumns).
			AddRow("lead-1", "finalForm", "Jane", "Acme", "(555) 123-4567", "5551234567", "jane@acme.com", "10.0.0.1", "curl", ts, ts))

	lead, err := repo.GetByID(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if lead.FormID != "finalForm" || lead.RemoteIP != "10.0.0.1" {
		t.Fatalf("unexpected lead %#v", lead)
	}

	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("FROM leads").
		WithArgs("heroForm", MaxListLimit, 0).
		WillReturnRows(pgxmock.NewRows(leadRowColumns).
			AddRow("a", "heroForm", "Jane", "Acme", "5551234567", "5551234567", "jane@acme.com", "", "", ts, ts).
			AddRow("b", "heroForm", "Joe", "Best", "5559876543", "5559876543", "joe@best.com", "", "", ts, ts))

	leads, err := repo.List(context.Background(), ListFilter{FormID: "heroForm", Limit: 500})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 2 || leads[1].ID != "b" {
		t.Fatalf("unexpected leads %v", leads)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
