package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/database"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
)

// ListingRepository implements repository.ListingRepository using PostgreSQL.
type ListingRepository struct {
	pool database.DBTX
}

// NewListingRepository creates a new PostgreSQL-backed listing repository.
func NewListingRepository(pool database.DBTX) *ListingRepository {
	return &ListingRepository{pool: pool}
}

// Create inserts a new listing into the database.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `
		INSERT INTO listings (title, description, price, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateListing", query)
	err := r.pool.QueryRow(ctx, query,
		l.Title,
		l.Description,
		l.Price.String(),
		l.AccountID,
		l.CreatedAt,
	).Scan(&l.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing with its seller's username.
func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.ListingDetail, error) {
	query := `
		SELECT l.id, l.title, l.description, l.price::text, l.account_id, l.created_at, a.username
		FROM listings l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.id = $1`

	var (
		d     domain.ListingDetail
		price string
	)

	ctx, end := database.TraceQuery(ctx, "GetListing", query)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&price,
		&d.AccountID,
		&d.CreatedAt,
		&d.SellerUsername,
	)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("listing", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}

	if d.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse listing price: %w", err)
	}

	return &d, nil
}

// List returns all listings, newest first.
func (r *ListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	query := `
		SELECT id, title, description, price::text, account_id, created_at
		FROM listings
		ORDER BY created_at DESC, id DESC`

	ctx, end := database.TraceQuery(ctx, "ListListings", query)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	end(err)
	return listings, err
}

// Search returns listings whose title contains the given substring,
// case-insensitively, newest first. ILIKE wildcards in the query string are
// escaped so they match literally.
func (r *ListingRepository) Search(ctx context.Context, q string) ([]domain.Listing, error) {
	query := `
		SELECT id, title, description, price::text, account_id, created_at
		FROM listings
		WHERE title ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY created_at DESC, id DESC`

	ctx, end := database.TraceQuery(ctx, "SearchListings", query)
	rows, err := r.pool.Query(ctx, query, escapeLikePattern(q))
	if err != nil {
		end(err)
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	end(err)
	return listings, err
}

// scanListings reads listing rows, converting the text-encoded price.
func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		var (
			l     domain.Listing
			price string
		)
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Description,
			&price,
			&l.AccountID,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}

		var err error
		if l.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse listing price: %w", err)
		}

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	if listings == nil {
		listings = []domain.Listing{}
	}

	return listings, nil
}

// escapeLikePattern escapes LIKE/ILIKE metacharacters so user input matches literally.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
