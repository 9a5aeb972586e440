package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/londoners/londoners-aws/londoners"
)

// tokenStub satisfies londoners.TokenSource with a fixed token so handler
// tests never touch the token store.
type tokenStub struct{}

func (tokenStub) GetToken(londoners.Scope) (string, error) {
	return "test-token", nil
}

// fakeDB is an in-memory stand-in for the Postgres store. Handler tests
// override only the record sets they exercise.
type fakeDB struct {
	favorites    map[string][]string
	reviews      map[string][]*londoners.Review
	reviewIDs    map[string]int64
	coords       []*londoners.ListingCoords
	videos       []*londoners.ListingVideo
	reservations []*londoners.ReservationRecord

	storedQuotes       []*londoners.QuoteRecord
	storedReservations []*londoners.ReservationRecord
	storedUsers        []*londoners.User

	beginErr error
	writeErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		favorites: map[string][]string{},
		reviews:   map[string][]*londoners.Review{},
		reviewIDs: map[string]int64{}}
}

func (db *fakeDB) Begin() (londoners.DBTrans, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return &fakeTrans{db: db}, nil
}

type fakeTrans struct{ db *fakeDB }

func (t *fakeTrans) Commit() error { return nil }
func (t *fakeTrans) Rollback()     {}

func (t *fakeTrans) FindCurrentToken(
	londoners.Scope) (*londoners.CachedToken, error) {
	return nil, nil
}
func (t *fakeTrans) InsertToken(*londoners.CachedToken) error { return nil }
func (t *fakeTrans) DeleteScopeTokens(londoners.Scope) error  { return nil }

func (t *fakeTrans) CreateUser(
	user *londoners.User) (*londoners.User, error) {
	if t.db.writeErr != nil {
		return nil, t.db.writeErr
	}
	for _, stored := range t.db.storedUsers {
		if stored.GuestID == user.GuestID || stored.Email == user.Email {
			return nil, nil
		}
	}
	t.db.storedUsers = append(t.db.storedUsers, user)
	return user, nil
}

func (t *fakeTrans) FindUserFavorites(
	guestID string) ([]string, bool, error) {
	favorites, found := t.db.favorites[guestID]
	return favorites, found, nil
}

func (t *fakeTrans) UpdateUserFavorites(
	guestID string, favorites []string) error {
	if t.db.writeErr != nil {
		return t.db.writeErr
	}
	t.db.favorites[guestID] = favorites
	return nil
}

func (t *fakeTrans) FindReviewID(
	listingID, guestID string) (*int64, error) {
	if id, has := t.db.reviewIDs[listingID+"/"+guestID]; has {
		return &id, nil
	}
	return nil, nil
}

func (t *fakeTrans) CreateReview(
	review *londoners.Review) (int64, error) {
	if t.db.writeErr != nil {
		return 0, t.db.writeErr
	}
	id := int64(len(t.db.reviewIDs) + 1)
	t.db.reviewIDs[review.ListingID+"/"+review.GuestID] = id
	review.ID = id
	t.db.reviews[review.ListingID] = append(
		t.db.reviews[review.ListingID], review)
	return id, nil
}

func (t *fakeTrans) GetListingReviews(
	listingID string) ([]*londoners.Review, error) {
	return t.db.reviews[listingID], nil
}

func (t *fakeTrans) CreateReservation(
	record *londoners.ReservationRecord) error {
	if t.db.writeErr != nil {
		return t.db.writeErr
	}
	t.db.storedReservations = append(t.db.storedReservations, record)
	return nil
}

func (t *fakeTrans) GetCheckedOutReservations(
	from, till time.Time) ([]*londoners.ReservationRecord, error) {
	result := []*londoners.ReservationRecord{}
	for _, record := range t.db.reservations {
		if !record.CheckOut.Before(from) && record.CheckOut.Before(till) {
			result = append(result, record)
		}
	}
	return result, nil
}

func (t *fakeTrans) CreateQuote(record *londoners.QuoteRecord) error {
	if t.db.writeErr != nil {
		return t.db.writeErr
	}
	t.db.storedQuotes = append(t.db.storedQuotes, record)
	return nil
}

func (t *fakeTrans) FindListingCoords(
	listingID string) (*londoners.ListingCoords, error) {
	for _, coords := range t.db.coords {
		if coords.ListingID == listingID {
			return coords, nil
		}
	}
	return nil, nil
}

func (t *fakeTrans) GetListingCoords(
	excludeListingID string) ([]*londoners.ListingCoords, error) {
	result := []*londoners.ListingCoords{}
	for _, coords := range t.db.coords {
		if coords.ListingID != excludeListingID {
			result = append(result, coords)
		}
	}
	return result, nil
}

func (t *fakeTrans) GetListingVideos(
	listingID string) ([]*londoners.ListingVideo, error) {
	result := []*londoners.ListingVideo{}
	for _, video := range t.db.videos {
		if video.ListingID == listingID {
			result = append(result, video)
		}
	}
	return result, nil
}

////////////////////////////////////////////////////////////////////////////////

func newTestService(db londoners.DB, apiURL string) service {
	settings := &londoners.Settings{
		GuestyAPIURL:              apiURL,
		GuestyPayURL:              apiURL,
		BookingEngineAPIURL:       apiURL,
		IdentityAPIURL:            apiURL + "/auth",
		IdentityAnonKey:           "anon-key",
		IdentityServiceKey:        "service-key",
		StripeAPIURL:              apiURL + "/stripe",
		StripeSecretKey:           "sk-test",
		ChargeAutomationAccountID: "ca-account",
		ChargeAutomationAPIKey:    "ca-key"}
	return service{
		settings: settings,
		db:       db,
		guesty:   londoners.NewGuestyClient(settings, tokenStub{}),
		booking:  londoners.NewBookingEngineClient(settings, tokenStub{}),
		identity: londoners.NewIdentityClient(settings),
		stripe:   londoners.NewStripeClient(settings)}
}

func executeRequest(
	t *testing.T, impl lambdaImpl, httpReq *httpRequest) *httpResponse {
	request := lambdaRequest{Request: httpReq}
	request.Execute(impl)
	require.NoError(t, request.ResponseErr)
	require.NotNil(t, request.Response)
	return request.Response
}

func parseResponseBody(t *testing.T, response *httpResponse) londoners.JSON {
	body := londoners.JSON{}
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	return body
}
