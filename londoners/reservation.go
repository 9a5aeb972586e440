package londoners

import (
	"time"

	"github.com/google/uuid"
)

// ReservationID is a local reservation record unique ID.
type ReservationID = uuid.UUID

func newReservationID() ReservationID { return uuid.New() }

// ReservationStatusAllowed lists reservation statuses accepted by the
// status-update operation.
var ReservationStatusAllowed = []string{
	"inquiry", "reserved", "confirmed", "declined", "expired",
	"canceled", "closed", "awaiting_payment"}

// IsReservationStatusAllowed returns true if the status is accepted by the
// status-update operation.
func IsReservationStatusAllowed(status string) bool {
	for _, allowed := range ReservationStatusAllowed {
		if status == allowed {
			return true
		}
	}
	return false
}

// ReservationRecord describes a local bookkeeping row for a reservation
// created upstream.
type ReservationRecord struct {
	ID                  ReservationID `json:"reservation_id"`
	GuestyReservationID string        `json:"guesty_reservation_id"`
	QuoteID             string        `json:"quote_id"`
	GuestID             string        `json:"guest_id"`
	GuestEmail          string        `json:"guest_email"`
	GuestFirstName      string        `json:"guest_first_name"`
	GuestLastName       string        `json:"guest_last_name"`
	ListingID           string        `json:"listing_id"`
	ListingTitle        string        `json:"listing_title"`
	UnitTypeID          *string       `json:"unit_type_id"`
	ConfirmationCode    *string       `json:"confirmation_code"`
	Status              string        `json:"status"`
	CheckIn             time.Time     `json:"check_in"`
	CheckOut            time.Time     `json:"check_out"`
	CheckInDate         string        `json:"check_in_date"`
	CheckOutDate        string        `json:"check_out_date"`
	Source              string        `json:"source"`
	Channel             string        `json:"channel"`
	GuestsCount         int           `json:"guests_count"`
	NumberOfAdults      int           `json:"number_of_adults"`
	NumberOfChildren    int           `json:"number_of_children"`
	NumberOfInfants     int           `json:"number_of_infants"`
	NumberOfPets        int           `json:"number_of_pets"`
	CreationTime        time.Time     `json:"creation_time"`
	ReservedExpiresAt   time.Time     `json:"reserved_expires_at"`
}

// NewReservationRecord creates new local reservation record with the
// standard 24-hour reservation hold.
func NewReservationRecord() *ReservationRecord {
	now := time.Now().UTC()
	return &ReservationRecord{
		ID:                newReservationID(),
		Channel:           "direct",
		CreationTime:      now,
		ReservedExpiresAt: now.Add(24 * time.Hour)}
}
