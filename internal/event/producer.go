package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	pkgkafka "github.com/anderovsky/ITStep-zrucnosti/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicAccountRegistered = "marketplace.account.registered"
	TopicListingCreated    = "marketplace.listing.created"
	TopicReviewCreated     = "marketplace.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeAccount = "account"
	AggregateTypeListing = "listing"
	AggregateTypeReview  = "review"
)

// Source identifier for events originating from this service.
const SourceMarketplace = "marketplace"

// AccountRegisteredData is the payload for an account.registered event.
type AccountRegisteredData struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ListingCreatedData is the payload for a listing.created event.
type ListingCreatedData struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	AccountID int64  `json:"account_id"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID        int64 `json:"id"`
	ListingID int64 `json:"listing_id"`
	AccountID int64 `json:"account_id"`
	Rating    int   `json:"rating"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAccountRegistered publishes an account.registered event.
func (p *Producer) PublishAccountRegistered(ctx context.Context, account *domain.Account) error {
	data := AccountRegisteredData{
		ID:       account.ID,
		Username: account.Username,
	}

	event, err := pkgkafka.NewEvent(TopicAccountRegistered, formatID(account.ID), AggregateTypeAccount, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create account.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicAccountRegistered, event); err != nil {
		return fmt.Errorf("publish account.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published account.registered event",
		slog.Int64("account_id", account.ID),
		slog.String("username", account.Username),
	)

	return nil
}

// PublishListingCreated publishes a listing.created event.
func (p *Producer) PublishListingCreated(ctx context.Context, listing *domain.Listing) error {
	data := ListingCreatedData{
		ID:        listing.ID,
		Title:     listing.Title,
		Price:     listing.Price.String(),
		AccountID: listing.AccountID,
	}

	event, err := pkgkafka.NewEvent(TopicListingCreated, formatID(listing.ID), AggregateTypeListing, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create listing.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicListingCreated, event); err != nil {
		return fmt.Errorf("publish listing.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published listing.created event",
		slog.Int64("listing_id", listing.ID),
		slog.Int64("account_id", listing.AccountID),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		ListingID: review.ListingID,
		AccountID: review.AccountID,
		Rating:    review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, formatID(review.ID), AggregateTypeReview, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.Int64("review_id", review.ID),
		slog.Int64("listing_id", review.ListingID),
	)

	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
