package postgres

import (
	"context"
	"fmt"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (content, rating, account_id, listing_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	err := r.pool.QueryRow(ctx, query,
		rv.Content,
		rv.Rating,
		rv.AccountID,
		rv.ListingID,
		rv.CreatedAt,
	).Scan(&rv.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByListingID returns all reviews for a listing with author usernames, newest first.
func (r *ReviewRepository) ListByListingID(ctx context.Context, listingID int64) ([]domain.ReviewDetail, error) {
	query := `
		SELECT r.id, r.content, r.rating, r.account_id, r.listing_id, r.created_at, a.username
		FROM reviews r
		JOIN accounts a ON a.id = r.account_id
		WHERE r.listing_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.ReviewDetail
	for rows.Next() {
		var rv domain.ReviewDetail
		if err := rows.Scan(
			&rv.ID,
			&rv.Content,
			&rv.Rating,
			&rv.AccountID,
			&rv.ListingID,
			&rv.CreatedAt,
			&rv.AuthorUsername,
		); err != nil {
			end(err)
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	end(nil)

	if reviews == nil {
		reviews = []domain.ReviewDetail{}
	}

	return reviews, nil
}
