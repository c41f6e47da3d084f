package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailVerificationToken represents stored verification tokens.
type EmailVerificationToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// EmailVerificationRepository manages verification token persistence.
type EmailVerificationRepository interface {
	Create(ctx context.Context, token *EmailVerificationToken) error
	GetByToken(ctx context.Context, token string) (*EmailVerificationToken, error)
	MarkUsed(ctx context.Context, id string) error
}

type emailVerificationRepository struct {
	pool *pgxpool.Pool
}

// NewEmailVerificationRepository constructs repository.
func NewEmailVerificationRepository(pool *pgxpool.Pool) EmailVerificationRepository {
	return &emailVerificationRepository{pool: pool}
}

func (r *emailVerificationRepository) Create(ctx context.Context, token *EmailVerificationToken) error {
	const query = `
        INSERT INTO email_verification_tokens (user_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *emailVerificationRepository) GetByToken(ctx context.Context, tokenStr string) (*EmailVerificationToken, error) {
	const query = `
        SELECT id, user_id, token, expires_at, used_at, created_at
        FROM email_verification_tokens WHERE token=$1`
	var token EmailVerificationToken
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *emailVerificationRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE email_verification_tokens SET used_at=NOW()
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
