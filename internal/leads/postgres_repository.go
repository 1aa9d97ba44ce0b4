package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	if db == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{db: db}
}

const leadColumns = `id, form_id, name, company, phone, phone_digits, email, remote_ip, user_agent, submitted_at, created_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) error {
	if err := lead.validate(); err != nil {
		return err
	}
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}

	query := `
		INSERT INTO leads (id, form_id, name, company, phone, phone_digits, email, remote_ip, user_agent, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		lead.ID,
		lead.FormID,
		lead.Name,
		lead.Company,
		lead.Phone,
		lead.PhoneDigits,
		lead.Email,
		lead.RemoteIP,
		lead.UserAgent,
		lead.SubmittedAt,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	lead.CreatedAt = createdAt
	return nil
}

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads newest first, optionally for one form.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	filter = filter.normalized()
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE ($1 = '' OR form_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, filter.FormID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.FormID,
		&lead.Name,
		&lead.Company,
		&lead.Phone,
		&lead.PhoneDigits,
		&lead.Email,
		&lead.RemoteIP,
		&lead.UserAgent,
		&lead.SubmittedAt,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}
