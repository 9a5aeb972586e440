package londoners

import (
	"time"

	"github.com/google/uuid"
)

// QuoteID is a local quote record unique ID.
type QuoteID = uuid.UUID

func newQuoteID() QuoteID { return uuid.New() }

// QuoteRecord describes a local bookkeeping row for a quote created
// upstream.
type QuoteRecord struct {
	ID             QuoteID   `json:"quote_id"`
	GuestyQuoteID  string    `json:"guesty_quote_id"`
	ListingID      string    `json:"listing_id"`
	CheckInDate    string    `json:"check_in_date_localized"`
	CheckOutDate   string    `json:"check_out_date_localized"`
	Source         string    `json:"source"`
	GuestsCount    int       `json:"guests_count"`
	IgnoreCalendar *bool     `json:"ignore_calendar"`
	IgnoreTerms    *bool     `json:"ignore_terms"`
	IgnoreBlocks   *bool     `json:"ignore_blocks"`
	CouponCode     *string   `json:"coupon_code"`
	CreatedAt      time.Time `json:"time"`
}

// NewQuoteRecord creates new local quote record.
func NewQuoteRecord() *QuoteRecord {
	return &QuoteRecord{ID: newQuoteID(), CreatedAt: time.Now().UTC()}
}
