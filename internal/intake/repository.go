package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTokenNotFound = apperr.NotFound("api token not found")

// APIToken is a company API token. Only the bcrypt hash of its secret is
// stored.
type APIToken struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	Name       string
	TokenHash  string
	CreatedBy  *uuid.UUID
	LastUsedAt *time.Time
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// TokenStore is the persistence the intake module needs.
type TokenStore interface {
	CreateToken(ctx context.Context, token APIToken) (APIToken, error)
	GetActiveToken(ctx context.Context, id uuid.UUID) (APIToken, error)
	ListTokens(ctx context.Context, companyID uuid.UUID) ([]APIToken, error)
	RevokeToken(ctx context.Context, companyID, id uuid.UUID) error
	TouchToken(ctx context.Context, id uuid.UUID)
}

// Repository stores API tokens in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tokenSelectCols = `id, company_id, name, token_hash, created_by, last_used_at, created_at, revoked_at`

// CreateToken stores a token under the id that was embedded in its plaintext.
func (r *Repository) CreateToken(ctx context.Context, token APIToken) (APIToken, error) {
	created, err := scanToken(r.pool.QueryRow(ctx, `
		INSERT INTO company_api_tokens (id, company_id, name, token_hash, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+tokenSelectCols,
		token.ID, token.CompanyID, token.Name, token.TokenHash, token.CreatedBy))
	if err != nil {
		return APIToken{}, fmt.Errorf("insert api token: %w", err)
	}
	return created, nil
}

// GetActiveToken loads a token that has not been revoked.
func (r *Repository) GetActiveToken(ctx context.Context, id uuid.UUID) (APIToken, error) {
	token, err := scanToken(r.pool.QueryRow(ctx, `
		SELECT `+tokenSelectCols+` FROM company_api_tokens
		WHERE id = $1 AND revoked_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return APIToken{}, ErrTokenNotFound
		}
		return APIToken{}, fmt.Errorf("get api token: %w", err)
	}
	return token, nil
}

// ListTokens returns the company's tokens, newest first, revoked included.
func (r *Repository) ListTokens(ctx context.Context, companyID uuid.UUID) ([]APIToken, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tokenSelectCols+` FROM company_api_tokens
		WHERE company_id = $1
		ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list api tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]APIToken, 0)
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// RevokeToken stops a token from authenticating.
func (r *Repository) RevokeToken(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE company_api_tokens SET revoked_at = now()
		WHERE id = $1 AND company_id = $2 AND revoked_at IS NULL`, id, companyID)
	if err != nil {
		return fmt.Errorf("revoke api token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// TouchToken stamps last_used_at. Failures are ignored.
func (r *Repository) TouchToken(ctx context.Context, id uuid.UUID) {
	_, _ = r.pool.Exec(ctx, `UPDATE company_api_tokens SET last_used_at = now() WHERE id = $1`, id)
}

func scanToken(row pgx.Row) (APIToken, error) {
	var t APIToken
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.TokenHash, &t.CreatedBy, &t.LastUsedAt, &t.CreatedAt, &t.RevokedAt)
	return t, err
}

var _ TokenStore = (*Repository)(nil)
