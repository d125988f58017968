package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rentpal/rentpal-api/internal/domain"
)

// OTPRepo persists one-time-password rows. The table is append-only: a new
// row per code, no deletes, and the single false→true flip of is_used on
// successful verification.
type OTPRepo struct {
	db DB
}

func NewOTPRepo(db DB) *OTPRepo { return &OTPRepo{db: db} }

func (r *OTPRepo) Insert(ctx context.Context, o *domain.OTP) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otps (email, otp, created_at, expires_at, is_used)
		VALUES ($1, $2, $3, $4, FALSE)`,
		o.Email, o.Code, o.CreatedAt, o.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert otp: %w", domain.ErrStorage)
	}
	return nil
}

// ConsumeLatest verifies the supplied code against the most-recently-created
// unused row for the email and marks it used. The row lock plus the
// is_used guard on the UPDATE guarantee that of two concurrent calls on the
// same code exactly one succeeds; the loser sees the row already consumed.
func (r *OTPRepo) ConsumeLatest(ctx context.Context, email, code string, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin otp consume: %w", domain.ErrStorage)
	}
	defer tx.Rollback(ctx)

	var (
		id        int64
		stored    string
		expiresAt time.Time
	)
	err = tx.QueryRow(ctx, `
		SELECT id, otp, expires_at FROM otps
		WHERE email = $1 AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`, email).Scan(&id, &stored, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// No unused row left. If the newest row for this email carries the
		// supplied code and is already used, a concurrent verify won the race.
		var used bool
		probe := tx.QueryRow(ctx, `
			SELECT is_used FROM otps
			WHERE email = $1 AND otp = $2
			ORDER BY created_at DESC
			LIMIT 1`, email, code)
		if probeErr := probe.Scan(&used); probeErr == nil && used {
			return domain.ErrOTPAlreadyUsed
		}
		return domain.ErrOTPInvalid
	}
	if err != nil {
		return fmt.Errorf("select otp: %w", domain.ErrStorage)
	}

	if now.After(expiresAt) {
		return domain.ErrOTPExpired
	}
	if stored != code {
		return domain.ErrOTPInvalid
	}

	tag, err := tx.Exec(ctx,
		`UPDATE otps SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`, id)
	if err != nil {
		return fmt.Errorf("mark otp used: %w", domain.ErrStorage)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOTPAlreadyUsed
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit otp consume: %w", domain.ErrStorage)
	}
	return nil
}
