package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/londoners/londoners-aws/londoners"
)

func TestNearbyListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/listings/close":
				fmt.Fprint(writer, `{
					"title": "Covent Garden Flat",
					"address": {"city": "London", "country": "UK"},
					"bedrooms": 1, "beds": 2, "bathrooms": 1,
					"accommodates": 2,
					"prices": {"basePrice": 180, "currency": "GBP"}}`)
			case "/listings/origin":
				fmt.Fprint(writer, `{"title": "Origin Flat"}`)
			default:
				http.Error(writer, `{"error": "not found"}`,
					http.StatusNotFound)
			}
		}))
	defer server.Close()

	db := newFakeDB()
	db.coords = []*londoners.ListingCoords{
		{ListingID: "origin", Latitude: 51.5074, Longitude: -0.1278},
		{ListingID: "close", Latitude: 51.5080, Longitude: -0.1280},
		{ListingID: "mid", Latitude: 51.5200, Longitude: -0.1278},
		{ListingID: "far", Latitude: 51.6000, Longitude: -0.1278},
	}
	db.reviews["close"] = []*londoners.Review{
		{ID: 1, ListingID: "close", GuestID: "guest-1", Overall: 5,
			Ratings: londoners.RatingSet{Cleanliness: 5, Accuracy: 5,
				CheckIn: 5, Communication: 5, Location: 5, Value: 5},
			CreatedAt: time.Now()},
		{ID: 2, ListingID: "close", GuestID: "guest-2", Overall: 4,
			Ratings: londoners.RatingSet{Cleanliness: 4, Accuracy: 4,
				CheckIn: 4, Communication: 4, Location: 4, Value: 4},
			CreatedAt: time.Now()},
	}
	impl := &nearbyListingsLambda{service: newTestService(db, server.URL)}

	run := func(listingID string, query map[string]string) *httpResponse {
		return executeRequest(t, impl, &httpRequest{
			HTTPMethod:            http.MethodGet,
			PathParameters:        map[string]string{"id": listingID},
			QueryStringParameters: query})
	}

	t.Run("default-radius", func(t *testing.T) {
		response := run("origin", nil)
		require.Equal(t, http.StatusOK, response.StatusCode)
		body := parseResponseBody(t, response)

		radius, _ := body.Number("radius_km")
		require.Equal(t, londoners.NearbyListingRadiusKM, radius)
		count, _ := body.Number("count")
		require.Equal(t, 2.0, count)

		listings, _ := body.Array("listings")
		require.Len(t, listings, 2)
		first, _ := body.Text("listings", 0, "listing_id")
		second, _ := body.Text("listings", 1, "listing_id")
		require.Equal(t, "close", first)
		require.Equal(t, "mid", second)

		firstDistance, _ := body.Number("listings", 0, "distance_km")
		secondDistance, _ := body.Number("listings", 1, "distance_km")
		require.Less(t, firstDistance, secondDistance)
	})

	t.Run("annotates-details", func(t *testing.T) {
		response := run("origin", nil)
		body := parseResponseBody(t, response)

		name, _ := body.Text("listings", 0, "details", "name")
		require.Equal(t, "Covent Garden Flat", name)
		price, _ := body.Number("listings", 0, "details", "base_price")
		require.Equal(t, 180.0, price)
		rating, _ := body.Number("listings", 0, "overall_average_rating")
		require.Equal(t, 4.5, rating)

		// No upstream details and no reviews for this one, the
		// coordinates still make it into the answer.
		_, hasDetails := body.Object("listings", 1, "details")
		require.False(t, hasDetails)
		_, hasRating := body.Number("listings", 1, "overall_average_rating")
		require.False(t, hasRating)

		targetName, _ := body.Text("target_listing", "details", "name")
		require.Equal(t, "Origin Flat", targetName)
	})

	t.Run("custom-radius", func(t *testing.T) {
		response := run("origin", map[string]string{"radius": "1"})
		body := parseResponseBody(t, response)
		listings, _ := body.Array("listings")
		require.Len(t, listings, 1)
	})

	t.Run("bad-radius", func(t *testing.T) {
		response := run("origin", map[string]string{"radius": "-2"})
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("unknown-listing", func(t *testing.T) {
		response := run("missing", nil)
		require.Equal(t, http.StatusNotFound, response.StatusCode)
	})

	t.Run("excludes-origin", func(t *testing.T) {
		response := run("origin", nil)
		body := parseResponseBody(t, response)
		listings, _ := body.Array("listings")
		for i := range listings {
			id, _ := body.Text("listings", i, "listing_id")
			require.NotEqual(t, "origin", id)
		}
	})
}
