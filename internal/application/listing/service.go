package listing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rentpal/rentpal-api/internal/domain"
	"github.com/rentpal/rentpal-api/internal/pkg/id"
)

// Service exposes property-listing operations. Posting is restricted to
// Landlord and Agent accounts; saving is restricted to User accounts.
type Service interface {
	Create(ctx context.Context, owner *domain.User, req domain.CreateListingRequest) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
	Save(ctx context.Context, u *domain.User, listingID string) error
	ListSaved(ctx context.Context, u *domain.User) ([]domain.Listing, error)
	UploadPhoto(ctx context.Context, u *domain.User, listingID, filename string, r io.Reader) (string, error)
	PhotoURL(ctx context.Context, listingID string) (string, error)
}

type listingStore interface {
	Create(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
	Save(ctx context.Context, userEmail, listingID string) error
	ListSaved(ctx context.Context, userEmail string) ([]domain.Listing, error)
	SetPhotoKey(ctx context.Context, id, key string) error
}

type photoStore interface {
	UploadPhoto(ctx context.Context, listingID, filename string, r io.Reader) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo   listingStore
	photos photoStore
}

func NewService(repo listingStore, photos photoStore) Service {
	return &service{repo: repo, photos: photos}
}

func (s *service) Create(ctx context.Context, owner *domain.User, req domain.CreateListingRequest) (*domain.Listing, error) {
	if !owner.AccountType.CanPostListings() {
		return nil, fmt.Errorf("only landlords and agents can post listings: %w", domain.ErrForbidden)
	}
	l := &domain.Listing{
		ID:                  id.New(),
		OwnerEmail:          owner.Email,
		Description:         req.Description,
		Address:             req.Address,
		BedroomNo:           req.BedroomNo,
		BathroomNo:          req.BathroomNo,
		Furnished:           req.Furnished,
		AvailableFacilities: req.AvailableFacilities,
		InteriorFeatures:    req.InteriorFeatures,
		ExteriorFeatures:    req.ExteriorFeatures,
		Purpose:             req.Purpose,
		Price:               req.Price,
		PaymentFrequency:    req.PaymentFrequency,
		PropertyType:        req.PropertyType,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) List(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.List(ctx)
}

func (s *service) Save(ctx context.Context, u *domain.User, listingID string) error {
	if u.AccountType != domain.AccountTypeUser {
		return fmt.Errorf("only regular users can save listings: %w", domain.ErrForbidden)
	}
	if _, err := s.repo.Get(ctx, listingID); err != nil {
		return err
	}
	return s.repo.Save(ctx, u.Email, listingID)
}

func (s *service) ListSaved(ctx context.Context, u *domain.User) ([]domain.Listing, error) {
	if u.AccountType != domain.AccountTypeUser {
		return nil, fmt.Errorf("only regular users can view saved listings: %w", domain.ErrForbidden)
	}
	return s.repo.ListSaved(ctx, u.Email)
}

func (s *service) UploadPhoto(ctx context.Context, u *domain.User, listingID, filename string, r io.Reader) (string, error) {
	l, err := s.repo.Get(ctx, listingID)
	if err != nil {
		return "", err
	}
	if l.OwnerEmail != u.Email {
		return "", fmt.Errorf("only the listing owner can upload photos: %w", domain.ErrForbidden)
	}
	key, err := s.photos.UploadPhoto(ctx, listingID, filename, r)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", domain.ErrStorage)
	}
	if err := s.repo.SetPhotoKey(ctx, listingID, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *service) PhotoURL(ctx context.Context, listingID string) (string, error) {
	l, err := s.repo.Get(ctx, listingID)
	if err != nil {
		return "", err
	}
	if l.PhotoKey == nil {
		return "", fmt.Errorf("listing has no photo: %w", domain.ErrNotFound)
	}
	url, err := s.photos.PresignedURL(ctx, *l.PhotoKey, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("presign photo: %w", domain.ErrStorage)
	}
	return url, nil
}
