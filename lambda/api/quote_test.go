package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteCreateValidation(t *testing.T) {
	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			upstreamCalls++
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &quoteCreateLambda{service: newTestService(db, server.URL)}

	run := func(body string) *httpResponse {
		return executeRequest(t, impl, &httpRequest{
			HTTPMethod: http.MethodPost, Body: body})
	}

	t.Run("no-listing", func(t *testing.T) {
		response := run(`{"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"source": "website", "guests_count": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("check-in-after-check-out", func(t *testing.T) {
		response := run(`{"listing_id": "listing-1",
			"check_in_date_localized": "2026-10-05",
			"check_out_date_localized": "2026-10-01",
			"source": "website", "guests_count": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("check-in-equals-check-out", func(t *testing.T) {
		response := run(`{"listing_id": "listing-1",
			"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-01",
			"source": "website", "guests_count": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("invalid-date", func(t *testing.T) {
		response := run(`{"listing_id": "listing-1",
			"check_in_date_localized": "tomorrow",
			"check_out_date_localized": "2026-10-05",
			"source": "website", "guests_count": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("no-guests", func(t *testing.T) {
		response := run(`{"listing_id": "listing-1",
			"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"source": "website"}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("no-source", func(t *testing.T) {
		response := run(`{"listing_id": "listing-1",
			"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05", "guests_count": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	// Rejected requests must never reach the upstream or the store.
	require.Zero(t, upstreamCalls)
	require.Empty(t, db.storedQuotes)
}

func TestQuoteCreate(t *testing.T) {
	var upstreamBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			require.Equal(t, "/quotes", request.URL.Path)
			require.Equal(t, "Bearer test-token",
				request.Header.Get("Authorization"))
			require.NoError(t,
				json.NewDecoder(request.Body).Decode(&upstreamBody))
			fmt.Fprint(writer, `{"_id": "guesty-quote-1",
				"money": {"rateId": "rate-1"}}`)
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &quoteCreateLambda{service: newTestService(db, server.URL)}

	response := executeRequest(t, impl, &httpRequest{
		HTTPMethod: http.MethodPost,
		Body: `{"check_in_date_localized": "2025-06-01",
			"check_out_date_localized": "2025-06-07",
			"listing_id": "abc123",
			"source": "website",
			"guests_count": 2}`})

	require.Equal(t, http.StatusOK, response.StatusCode)

	// The inbound snake_case fields are renamed to the Guesty naming.
	require.Equal(t, "abc123", upstreamBody["listingId"])
	require.Equal(t, "2025-06-01", upstreamBody["checkInDateLocalized"])
	require.Equal(t, "2025-06-07", upstreamBody["checkOutDateLocalized"])
	require.Equal(t, "website", upstreamBody["source"])
	require.Equal(t, 2.0, upstreamBody["guestsCount"])
	// The coupon code field is always serialized, null when absent.
	_, hasCoupon := upstreamBody["couponCode"]
	require.True(t, hasCoupon)
	require.Nil(t, upstreamBody["couponCode"])
	_, hasIgnoreCalendar := upstreamBody["ignoreCalendar"]
	require.False(t, hasIgnoreCalendar)

	// The answer carries both the upstream quote and the stored record.
	body := parseResponseBody(t, response)
	require.Equal(t, true, body.Get("success"))
	guestyID, _ := body.Text("guesty_quote", "_id")
	require.Equal(t, "guesty-quote-1", guestyID)
	storedListing, _ := body.Text("database_record", "listing_id")
	require.Equal(t, "abc123", storedListing)
	quoteID, _ := body.Text("quote_id")
	require.NotEmpty(t, quoteID)

	require.Len(t, db.storedQuotes, 1)
	record := db.storedQuotes[0]
	require.Equal(t, "guesty-quote-1", record.GuestyQuoteID)
	require.Equal(t, "abc123", record.ListingID)
	require.Equal(t, "2025-06-01", record.CheckInDate)
	require.Equal(t, "2025-06-07", record.CheckOutDate)
	require.Equal(t, "website", record.Source)
	require.Equal(t, 2, record.GuestsCount)
}

func TestQuoteCreateUpstreamErrorMirrored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(writer, `{"message": "dates not available"}`)
		}))
	defer server.Close()

	db := newFakeDB()
	impl := &quoteCreateLambda{service: newTestService(db, server.URL)}

	response := executeRequest(t, impl, &httpRequest{
		HTTPMethod: http.MethodPost,
		Body: `{"listing_id": "listing-1",
			"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"source": "website",
			"guests_count": 2}`})

	require.Equal(t, http.StatusUnprocessableEntity, response.StatusCode)
	body := parseResponseBody(t, response)
	message, _ := body.Text("details", "message")
	require.Equal(t, "dates not available", message)
	require.Empty(t, db.storedQuotes)
}

func TestQuoteCreatePersistenceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			fmt.Fprint(writer, `{"_id": "guesty-quote-1"}`)
		}))
	defer server.Close()

	db := newFakeDB()
	db.writeErr = fmt.Errorf("connection lost")
	impl := &quoteCreateLambda{service: newTestService(db, server.URL)}

	response := executeRequest(t, impl, &httpRequest{
		HTTPMethod: http.MethodPost,
		Body: `{"listing_id": "listing-1",
			"check_in_date_localized": "2026-10-01",
			"check_out_date_localized": "2026-10-05",
			"source": "website",
			"guests_count": 2}`})

	require.Equal(t, http.StatusInternalServerError, response.StatusCode)
}

func TestQuoteCreateMultiple(t *testing.T) {
	var quoteBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/listings":
				fmt.Fprint(writer, `{"results": [
					{"_id": "listing-1", "active": true},
					{"_id": "listing-2", "active": false},
					{"_id": "listing-3"}]}`)
			case "/quotes/multiple":
				require.NoError(t, json.NewDecoder(request.Body).
					Decode(&quoteBody))
				fmt.Fprint(writer, `{"quotes": []}`)
			default:
				t.Errorf("unexpected path %q", request.URL.Path)
			}
		}))
	defer server.Close()

	impl := &quoteCreateMultipleLambda{
		service: newTestService(newFakeDB(), server.URL)}

	run := func(body string) *httpResponse {
		return executeRequest(t, impl, &httpRequest{
			HTTPMethod: http.MethodPost, Body: body})
	}

	t.Run("explicit-listings", func(t *testing.T) {
		response := run(`{"listingIds": ["listing-7"],
			"checkInDateLocalized": "2026-10-01",
			"checkOutDateLocalized": "2026-10-05",
			"source": "website", "guestsCount": 2}`)
		require.Equal(t, http.StatusOK, response.StatusCode)
		require.Equal(t,
			[]interface{}{"listing-7"}, quoteBody["listingIds"])
	})

	t.Run("all-active-listings", func(t *testing.T) {
		response := run(`{"checkInDateLocalized": "2026-10-01",
			"checkOutDateLocalized": "2026-10-05",
			"source": "website", "guestsCount": 2}`)
		require.Equal(t, http.StatusOK, response.StatusCode)
		// The listing flagged inactive is dropped, the one without the
		// flag is kept.
		require.Equal(t,
			[]interface{}{"listing-1", "listing-3"},
			quoteBody["listingIds"])
	})

	t.Run("bad-dates", func(t *testing.T) {
		response := run(`{"checkInDateLocalized": "2026-10-05",
			"checkOutDateLocalized": "2026-10-01",
			"source": "website", "guestsCount": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("no-source", func(t *testing.T) {
		response := run(`{"checkInDateLocalized": "2026-10-01",
			"checkOutDateLocalized": "2026-10-05", "guestsCount": 2}`)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
}
