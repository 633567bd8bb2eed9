package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents a service offered on the marketplace.
type Listing struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	AccountID   int64           `json:"account_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListingDetail is a listing together with its seller's username.
type ListingDetail struct {
	Listing
	SellerUsername string `json:"seller_username"`
}
