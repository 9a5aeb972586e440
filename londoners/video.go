package londoners

import "time"

// ListingVideo describes a stored promotional video of one listing.
type ListingVideo struct {
	ID        int64
	ListingID string
	Title     string
	URL       string
	CreatedAt time.Time
}
