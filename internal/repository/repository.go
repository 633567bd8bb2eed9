package repository

import (
	"context"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
)

// AccountRepository defines the interface for account persistence operations.
type AccountRepository interface {
	// Create inserts a new account. The generated ID and creation time are
	// written back to the account. A duplicate username returns an
	// already-exists error.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Account, error)

	// GetByUsername retrieves an account by its username.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// ListingRepository defines the interface for listing persistence operations.
type ListingRepository interface {
	// Create inserts a new listing. The generated ID is written back.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing with its seller's username.
	GetByID(ctx context.Context, id int64) (*domain.ListingDetail, error)

	// List returns all listings, newest first.
	List(ctx context.Context) ([]domain.Listing, error)

	// Search returns listings whose title contains the given substring,
	// case-insensitively, newest first.
	Search(ctx context.Context, query string) ([]domain.Listing, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review. The generated ID is written back.
	Create(ctx context.Context, review *domain.Review) error

	// ListByListingID returns all reviews for a listing with author
	// usernames, newest first.
	ListByListingID(ctx context.Context, listingID int64) ([]domain.ReviewDetail, error)
}
