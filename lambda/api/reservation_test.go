package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReservationCreate(t *testing.T) {
	var quoteBody map[string]interface{}
	var createBody map[string]interface{}
	var statusBody map[string]interface{}
	statusCalls := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/quotes":
				require.NoError(t,
					json.NewDecoder(request.Body).Decode(&quoteBody))
				fmt.Fprint(writer, `{
					"_id": "guesty-quote-1",
					"rates": {"ratePlans": [
						{"money": {"rateId": "rate-1"}}]}}`)
			case "/reservations-v3/quote":
				require.NoError(t,
					json.NewDecoder(request.Body).Decode(&createBody))
				fmt.Fprint(writer, `{
					"_id": "guesty-res-1",
					"confirmationCode": "CONF-1",
					"listing": {"title": "Mayfair Flat"},
					"guest": {"firstName": "Ada", "lastName": "Lovelace",
						"email": "ada@example.com"},
					"checkIn": "2026-10-01T15:00:00Z",
					"checkOut": "2026-10-05T10:00:00Z"}`)
			case "/reservations-v3/guesty-res-1/status":
				statusCalls++
				require.NoError(t,
					json.NewDecoder(request.Body).Decode(&statusBody))
				fmt.Fprint(writer, `{"status": "awaiting_payment"}`)
			default:
				t.Errorf("unexpected upstream path %q", request.URL.Path)
			}
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &reservationCreateLambda{service: newTestService(db, server.URL)}

	response := executeRequest(t, impl, &httpRequest{
		HTTPMethod: http.MethodPost,
		Body: `{"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"listing_id": "listing-1",
			"source": "website",
			"guests_count": 2,
			"guest_id": "guest-1",
			"number_of_adults": 2,
			"reserved_until": 24}`})

	require.Equal(t, http.StatusOK, response.StatusCode)

	// The quote is created first from the stay fields.
	require.Equal(t, "listing-1", quoteBody["listingId"])
	require.Equal(t, "2026-10-01", quoteBody["checkInDateLocalized"])
	require.Equal(t, "website", quoteBody["source"])
	require.Equal(t, 2.0,
		quoteBody["numberOfGuests"].(map[string]interface{})["numberOfAdults"])

	// The reservation references the created quote and its rate plan.
	require.Equal(t, "guesty-quote-1", createBody["quoteId"])
	require.Equal(t, "rate-1", createBody["ratePlanId"])
	require.Equal(t, "reserved", createBody["status"])
	require.Equal(t, "guest-1", createBody["guestId"])
	require.Equal(t, 24.0, createBody["reservedUntil"])

	require.Equal(t, 1, statusCalls)
	require.Equal(t, "awaiting_payment", statusBody["status"])

	body := parseResponseBody(t, response)
	require.Equal(t, true, body.Get("success"))
	guestyID, _ := body.Text("guesty_reservation", "_id")
	require.Equal(t, "guesty-res-1", guestyID)
	storedStatus, _ := body.Text("database_record", "status")
	require.Equal(t, "awaiting_payment", storedStatus)

	require.Len(t, db.storedReservations, 1)
	record := db.storedReservations[0]
	require.Equal(t, "guesty-res-1", record.GuestyReservationID)
	require.Equal(t, "guesty-quote-1", record.QuoteID)
	require.Equal(t, "guest-1", record.GuestID)
	require.Equal(t, "awaiting_payment", record.Status)
	require.Equal(t, "Mayfair Flat", record.ListingTitle)
	require.Equal(t, "listing-1", record.ListingID)
	require.Equal(t, "ada@example.com", record.GuestEmail)
	require.NotNil(t, record.ConfirmationCode)
	require.Equal(t, "CONF-1", *record.ConfirmationCode)
	require.Equal(t, "direct", record.Channel)
	require.Equal(t, "2026-10-01", record.CheckInDate)
	require.Equal(t, 2, record.GuestsCount)
	require.Equal(t, 2, record.NumberOfAdults)
}

func TestReservationCreateRatePlanFallback(t *testing.T) {
	var createBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/quotes":
				// The older quote schema carries the rate plan ID in
				// ratePlan._id instead of money.rateId.
				fmt.Fprint(writer, `{
					"_id": "guesty-quote-1",
					"rates": {"ratePlans": [
						{"ratePlan": {"_id": "plan-7"}}]}}`)
			case "/reservations-v3/quote":
				require.NoError(t,
					json.NewDecoder(request.Body).Decode(&createBody))
				fmt.Fprint(writer, `{"_id": "guesty-res-1"}`)
			case "/reservations-v3/guesty-res-1/status":
				fmt.Fprint(writer, `{"status": "awaiting_payment"}`)
			default:
				t.Errorf("unexpected upstream path %q", request.URL.Path)
			}
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &reservationCreateLambda{service: newTestService(db, server.URL)}

	response := executeRequest(t, impl, &httpRequest{
		HTTPMethod: http.MethodPost,
		Body: `{"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"listing_id": "listing-1",
			"source": "website",
			"guests_count": 2,
			"guest_id": "guest-1",
			"number_of_adults": 2}`})

	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, "plan-7", createBody["ratePlanId"])
	require.Equal(t, 12.0, createBody["reservedUntil"])
}

func TestReservationCreateStatusUpdateBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/quotes":
				fmt.Fprint(writer, `{"_id": "guesty-quote-1"}`)
			case "/reservations-v3/quote":
				fmt.Fprint(writer, `{"_id": "guesty-res-1"}`)
			default:
				http.Error(writer, `{"error": "boom"}`,
					http.StatusBadGateway)
			}
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &reservationCreateLambda{service: newTestService(db, server.URL)}

	response := executeRequest(t, impl, &httpRequest{
		HTTPMethod: http.MethodPost,
		Body: `{"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"listing_id": "listing-1",
			"source": "website",
			"guests_count": 2,
			"guest_id": "guest-1",
			"number_of_adults": 2}`})

	// The failed status update is logged but the reservation still counts.
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Len(t, db.storedReservations, 1)
	require.Equal(t, "reserved", db.storedReservations[0].Status)
}

func TestReservationCreateValidation(t *testing.T) {
	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			upstreamCalls++
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &reservationCreateLambda{service: newTestService(db, server.URL)}

	run := func(body string) *httpResponse {
		return executeRequest(t, impl, &httpRequest{
			HTTPMethod: http.MethodPost, Body: body})
	}

	valid := map[string]interface{}{
		"check_in_date_localized":  "2026-10-01",
		"check_out_date_localized": "2026-10-05",
		"listing_id":               "listing-1",
		"source":                   "website",
		"guests_count":             2,
		"guest_id":                 "guest-1",
		"number_of_adults":         2,
	}
	runWithout := func(t *testing.T, field string) *httpResponse {
		body := map[string]interface{}{}
		for name, value := range valid {
			if name != field {
				body[name] = value
			}
		}
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		return run(string(raw))
	}

	for _, field := range []string{
		"check_in_date_localized", "check_out_date_localized", "listing_id",
		"source", "guests_count", "guest_id", "number_of_adults"} {
		t.Run("no-"+field, func(t *testing.T) {
			response := runWithout(t, field)
			require.Equal(t, http.StatusBadRequest, response.StatusCode)
		})
	}

	t.Run("check-in-after-check-out", func(t *testing.T) {
		response := run(`{"check_in_date_localized": "2026-10-05",
			"check_out_date_localized": "2026-10-01",
			"listing_id": "listing-1", "source": "website",
			"guests_count": 2, "guest_id": "guest-1",
			"number_of_adults": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("bad-reserved-until", func(t *testing.T) {
		response := run(`{"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"listing_id": "listing-1", "source": "website",
			"guests_count": 2, "guest_id": "guest-1",
			"number_of_adults": 2, "reserved_until": 13}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	require.Zero(t, upstreamCalls)
	require.Empty(t, db.storedReservations)
}

func TestReservationStatusUpdateValidation(t *testing.T) {
	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			upstreamCalls++
			fmt.Fprint(writer, `{"status": "confirmed"}`)
		}))
	defer server.Close()

	impl := &reservationStatusUpdateLambda{
		service: newTestService(newFakeDB(), server.URL)}

	t.Run("unknown-status", func(t *testing.T) {
		response := executeRequest(t, impl, &httpRequest{
			HTTPMethod:     http.MethodPut,
			PathParameters: map[string]string{"id": "res-1"},
			Body:           `{"status": "paused"}`})
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
		require.Zero(t, upstreamCalls)
	})

	t.Run("allowed-status", func(t *testing.T) {
		response := executeRequest(t, impl, &httpRequest{
			HTTPMethod:     http.MethodPut,
			PathParameters: map[string]string{"id": "res-1"},
			Body:           `{"status": "confirmed"}`})
		require.Equal(t, http.StatusOK, response.StatusCode)
		require.Equal(t, 1, upstreamCalls)
	})
}
