package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rentpal/rentpal-api/internal/domain"
)

// OAuthStateRepo persists in-flight federated-login state nonces.
type OAuthStateRepo struct {
	db DB
}

func NewOAuthStateRepo(db DB) *OAuthStateRepo { return &OAuthStateRepo{db: db} }

func (r *OAuthStateRepo) Put(ctx context.Context, s *domain.OAuthState) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO oauth_states (state, account_type, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		s.State, s.AccountType, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert oauth state: %w", domain.ErrStorage)
	}
	return nil
}

// Consume deletes the state row and returns it. A nonce can be redeemed at
// most once; an unknown nonce yields ErrNotFound.
func (r *OAuthStateRepo) Consume(ctx context.Context, state string) (*domain.OAuthState, error) {
	s := domain.OAuthState{State: state}
	err := r.db.QueryRow(ctx, `
		DELETE FROM oauth_states WHERE state = $1
		RETURNING account_type, created_at, expires_at`, state).
		Scan(&s.AccountType, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("oauth state: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", domain.ErrStorage)
	}
	return &s, nil
}
