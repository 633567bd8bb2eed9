package domain

import (
	"time"
)

// Review represents a review left on a listing.
type Review struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	AccountID int64     `json:"account_id"`
	ListingID int64     `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewDetail is a review together with its author's username.
type ReviewDetail struct {
	Review
	AuthorUsername string `json:"author_username"`
}
