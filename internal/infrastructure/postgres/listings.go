package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rentpal/rentpal-api/internal/domain"
)

// ListingRepo persists property listings and per-user saves.
type ListingRepo struct {
	db DB
}

func NewListingRepo(db DB) *ListingRepo { return &ListingRepo{db: db} }

const listingColumns = `id, owner_email, description, address, bedroom_no, bathroom_no,
	furnished, available_facilities, interior_features, exterior_features,
	purpose, price, payment_frequency, property_type, photo_key, created_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(&l.ID, &l.OwnerEmail, &l.Description, &l.Address, &l.BedroomNo,
		&l.BathroomNo, &l.Furnished, &l.AvailableFacilities, &l.InteriorFeatures,
		&l.ExteriorFeatures, &l.Purpose, &l.Price, &l.PaymentFrequency,
		&l.PropertyType, &l.PhotoKey, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("listing: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan listing: %w", domain.ErrStorage)
	}
	return &l, nil
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		l.ID, l.OwnerEmail, l.Description, l.Address, l.BedroomNo, l.BathroomNo,
		l.Furnished, l.AvailableFacilities, l.InteriorFeatures, l.ExteriorFeatures,
		l.Purpose, l.Price, l.PaymentFrequency, l.PropertyType, l.PhotoKey, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", domain.ErrStorage)
	}
	return nil
}

func (r *ListingRepo) Get(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	return scanListing(row)
}

func (r *ListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", domain.ErrStorage)
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepo) Save(ctx context.Context, userEmail, listingID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO saved_listings (user_email, listing_id) VALUES ($1, $2)`,
		userEmail, listingID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("listing already saved: %w", domain.ErrConflict)
		}
		return fmt.Errorf("save listing: %w", domain.ErrStorage)
	}
	return nil
}

func (r *ListingRepo) ListSaved(ctx context.Context, userEmail string) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.owner_email, l.description, l.address, l.bedroom_no, l.bathroom_no,
			l.furnished, l.available_facilities, l.interior_features, l.exterior_features,
			l.purpose, l.price, l.payment_frequency, l.property_type, l.photo_key, l.created_at
		FROM listings l
		JOIN saved_listings sl ON l.id = sl.listing_id
		WHERE sl.user_email = $1
		ORDER BY l.created_at DESC`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list saved listings: %w", domain.ErrStorage)
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepo) SetPhotoKey(ctx context.Context, id, key string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE listings SET photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("set photo key: %w", domain.ErrStorage)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing: %w", domain.ErrNotFound)
	}
	return nil
}

func collectListings(rows pgx.Rows) ([]domain.Listing, error) {
	var out []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ID, &l.OwnerEmail, &l.Description, &l.Address, &l.BedroomNo,
			&l.BathroomNo, &l.Furnished, &l.AvailableFacilities, &l.InteriorFeatures,
			&l.ExteriorFeatures, &l.Purpose, &l.Price, &l.PaymentFrequency,
			&l.PropertyType, &l.PhotoKey, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", domain.ErrStorage)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", domain.ErrStorage)
	}
	return out, nil
}
