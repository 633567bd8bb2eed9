package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/internal/event"
	"github.com/anderovsky/ITStep-zrucnosti/internal/repository"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/validator"
)

// ListingService implements the business logic for listing operations.
type ListingService struct {
	listingRepo repository.ListingRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(listingRepo repository.ListingRepository, producer *event.Producer, logger *slog.Logger) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		producer:    producer,
		logger:      logger,
	}
}

// CreateListingInput holds the parameters for creating a listing. Price
// arrives as the raw form string; parsing failures are reported as
// validation errors rather than server faults.
type CreateListingInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"required,max=2000"`
	Price       string `validate:"required"`
	AccountID   int64  `validate:"required"`
}

// Create validates the input, parses the price, and stores a new listing
// owned by the given account.
func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	price, err := decimal.NewFromString(input.Price)
	if err != nil {
		return nil, apperrors.InvalidInput("price must be a valid number")
	}
	if price.IsNegative() {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if price.Exponent() < -2 {
		return nil, apperrors.InvalidInput("price can have at most two decimal places")
	}

	listing := &domain.Listing{
		Title:       input.Title,
		Description: input.Description,
		Price:       price,
		AccountID:   input.AccountID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishListingCreated(ctx, listing); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.created event",
			slog.Int64("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "listing created",
		slog.Int64("listing_id", listing.ID),
		slog.Int64("account_id", listing.AccountID),
	)

	return listing, nil
}

// Browse returns listings for the index page. An empty query returns all
// listings; otherwise only those whose title contains the query,
// case-insensitively. Results are newest first either way.
func (s *ListingService) Browse(ctx context.Context, query string) ([]domain.Listing, error) {
	if query == "" {
		listings, err := s.listingRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("browse listings: %w", err)
		}
		return listings, nil
	}

	listings, err := s.listingRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listings, nil
}

// GetDetail returns a listing with its seller's username.
func (s *ListingService) GetDetail(ctx context.Context, id int64) (*domain.ListingDetail, error) {
	if id <= 0 {
		return nil, apperrors.NotFound("listing", fmt.Sprintf("%d", id))
	}

	detail, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return detail, nil
}
