package londoners

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a user unique ID.
type UserID = uuid.UUID

func newUserID() UserID { return uuid.New() }

// User describes a site user. Users are keyed by the guest ID assigned by
// Guesty at sign-up; Favorites holds listing IDs.
type User struct {
	ID        UserID
	GuestID   string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	UserType  string
	Favorites []string
	CreatedAt time.Time
}

// NewUser creates new user record for a Guesty guest.
func NewUser(
	guestID, email, firstName, lastName, phone, userType string) *User {
	return &User{
		ID:        newUserID(),
		GuestID:   guestID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		UserType:  userType,
		Favorites: []string{},
		CreatedAt: time.Now().UTC()}
}

// HasFavorite returns true if the listing is already in the favorites list.
func (user *User) HasFavorite(listingID string) bool {
	return HasFavorite(user.Favorites, listingID)
}

// HasFavorite returns true if the listing is in the favorites list.
func HasFavorite(favorites []string, listingID string) bool {
	for _, id := range favorites {
		if id == listingID {
			return true
		}
	}
	return false
}

// RemoveFavorite returns the favorites list without the listing.
func RemoveFavorite(favorites []string, listingID string) []string {
	result := make([]string, 0, len(favorites))
	for _, id := range favorites {
		if id != listingID {
			result = append(result, id)
		}
	}
	return result
}
