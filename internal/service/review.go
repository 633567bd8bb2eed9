package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/internal/event"
	"github.com/anderovsky/ITStep-zrucnosti/internal/repository"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/validator"
)

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	listingRepo repository.ListingRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	listingRepo repository.ListingRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		listingRepo: listingRepo,
		producer:    producer,
		logger:      logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ListingID int64  `validate:"required"`
	AccountID int64  `validate:"required"`
	Content   string `validate:"required,max=2000"`
	Rating    int    `validate:"required,gte=1,lte=5"`
}

// Create validates the input and stores a new review on the listing. The
// listing must exist; reviewing a missing listing returns not-found.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	if _, err := s.listingRepo.GetByID(ctx, input.ListingID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		Content:   input.Content,
		Rating:    input.Rating,
		AccountID: input.AccountID,
		ListingID: input.ListingID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", review.ID),
		slog.Int64("listing_id", review.ListingID),
		slog.Int64("account_id", review.AccountID),
	)

	return review, nil
}

// ListForListing returns all reviews for a listing with author usernames,
// newest first.
func (s *ReviewService) ListForListing(ctx context.Context, listingID int64) ([]domain.ReviewDetail, error) {
	reviews, err := s.reviewRepo.ListByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
