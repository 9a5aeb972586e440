package londoners

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GuestyClient calls the Guesty Open API and the Guesty Pay tokenization
// endpoint with bearer tokens from the token cache.
type GuestyClient struct {
	httpClient *http.Client
	apiURL     string
	payURL     string
	tokens     TokenSource
}

// NewGuestyClient creates new Guesty Open API client.
func NewGuestyClient(settings *Settings, tokens TokenSource) *GuestyClient {
	return &GuestyClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     settings.GuestyAPIURL,
		payURL:     settings.GuestyPayURL,
		tokens:     tokens}
}

func callUpstream(
	httpClient *http.Client,
	method, rawURL, token string,
	query url.Values,
	body, result interface{}) error {
	return callUpstreamHeaders(httpClient, method, rawURL, token, nil,
		query, body, result)
}

func callUpstreamHeaders(
	httpClient *http.Client,
	method, rawURL, token string,
	headers map[string]string,
	query url.Values,
	body, result interface{}) error {

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		serialized, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf(`failed to serialize request: "%v"`, err)
		}
		reader = bytes.NewReader(serialized)
	}

	request, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		request.Header.Set(name, value)
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return &UpstreamError{Body: err.Error()}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return &UpstreamError{
			StatusCode: response.StatusCode, Body: err.Error()}
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &UpstreamError{
			StatusCode: response.StatusCode, Body: string(responseBody)}
	}
	if result == nil || len(responseBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf(`failed to parse response "%s": "%v"`,
			responseBody, err)
	}
	return nil
}

func (client *GuestyClient) call(
	method, path string,
	query url.Values,
	body, result interface{}) error {
	token, err := client.tokens.GetToken(ScopeOpenAPI)
	if err != nil {
		return err
	}
	return callUpstream(client.httpClient, method, client.apiURL+path, token,
		query, body, result)
}

////////////////////////////////////////////////////////////////////////////////

// GetListing returns a listing resource by ID.
func (client *GuestyClient) GetListing(id string) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodGet, "/listings/"+id, nil, nil, &result)
	return result, err
}

// SearchListings forwards a prepared listings query.
func (client *GuestyClient) SearchListings(query url.Values) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodGet, "/listings", query, nil, &result)
	return result, err
}

// GetListingPhotos returns all photos of a property.
func (client *GuestyClient) GetListingPhotos(propertyID string) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodGet,
		"/properties-api/property-photos/property-photos/"+propertyID,
		nil, nil, &result)
	return result, err
}

// GetCalendar returns the availability calendar of a listing for a date
// range.
func (client *GuestyClient) GetCalendar(
	listingID string, query url.Values) (interface{}, error) {
	var result interface{}
	err := client.call(http.MethodGet,
		"/availability-pricing/api/calendar/listings/"+listingID,
		query, nil, &result)
	return result, err
}

////////////////////////////////////////////////////////////////////////////////

// GuestBreakdown describes a guest count breakdown of a quote.
type GuestBreakdown struct {
	NumberOfAdults   int  `json:"numberOfAdults"`
	NumberOfChildren *int `json:"numberOfChildren,omitempty"`
	NumberOfInfants  *int `json:"numberOfInfants,omitempty"`
	NumberOfPets     *int `json:"numberOfPets,omitempty"`
}

// QuoteParams describes a quote-creation request in the Guesty field naming.
// Optional flags are serialized only when present, couponCode is always
// present and null when absent, matching what the upstream expects.
type QuoteParams struct {
	ListingID             string          `json:"listingId"`
	CheckInDateLocalized  string          `json:"checkInDateLocalized"`
	CheckOutDateLocalized string          `json:"checkOutDateLocalized"`
	GuestsCount           int             `json:"guestsCount"`
	Source                string          `json:"source"`
	IgnoreCalendar        *bool           `json:"ignoreCalendar,omitempty"`
	IgnoreTerms           *bool           `json:"ignoreTerms,omitempty"`
	IgnoreBlocks          *bool           `json:"ignoreBlocks,omitempty"`
	CouponCode            *string         `json:"couponCode"`
	NumberOfGuests        *GuestBreakdown `json:"numberOfGuests,omitempty"`
}

// CreateQuote creates a quote.
func (client *GuestyClient) CreateQuote(params *QuoteParams) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost, "/quotes", nil, params, &result)
	return result, err
}

// MultipleQuotesParams describes a multi-listing quote-creation request.
type MultipleQuotesParams struct {
	ListingIDs            []string `json:"listingIds"`
	CheckInDateLocalized  string   `json:"checkInDateLocalized"`
	CheckOutDateLocalized string   `json:"checkOutDateLocalized"`
	GuestsCount           int      `json:"guestsCount"`
	Source                string   `json:"source"`
	IgnoreCalendar        *bool    `json:"ignoreCalendar,omitempty"`
	IgnoreTerms           *bool    `json:"ignoreTerms,omitempty"`
	IgnoreBlocks          *bool    `json:"ignoreBlocks,omitempty"`
	CouponCode            *string  `json:"couponCode"`
}

// CreateMultipleQuotes creates quotes for several listings at once.
func (client *GuestyClient) CreateMultipleQuotes(
	params *MultipleQuotesParams) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost, "/quotes/multiple", nil, params,
		&result)
	return result, err
}

////////////////////////////////////////////////////////////////////////////////

// ReservationFromQuoteParams describes a reservation-creation request that
// references a previously created quote.
type ReservationFromQuoteParams struct {
	QuoteID        string `json:"quoteId"`
	Status         string `json:"status"`
	RatePlanID     string `json:"ratePlanId,omitempty"`
	ReservedUntil  int    `json:"reservedUntil"`
	GuestID        string `json:"guestId"`
	IgnoreCalendar *bool  `json:"ignoreCalendar,omitempty"`
	IgnoreTerms    *bool  `json:"ignoreTerms,omitempty"`
	IgnoreBlocks   *bool  `json:"ignoreBlocks,omitempty"`
}

// CreateReservationFromQuote creates a reservation from a quote.
func (client *GuestyClient) CreateReservationFromQuote(
	params *ReservationFromQuoteParams) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost, "/reservations-v3/quote", nil,
		params, &result)
	return result, err
}

// UpdateReservationStatus sets the status of a reservation.
func (client *GuestyClient) UpdateReservationStatus(
	reservationID, status string) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPut,
		"/reservations-v3/"+reservationID+"/status", nil,
		map[string]string{"status": status}, &result)
	return result, err
}

// GetReservation returns a reservation by ID.
func (client *GuestyClient) GetReservation(
	reservationID string, query url.Values) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodGet, "/reservations/"+reservationID,
		query, nil, &result)
	return result, err
}

// ListReservations forwards a prepared reservations query.
func (client *GuestyClient) ListReservations(
	query url.Values) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodGet, "/reservations", query, nil, &result)
	return result, err
}

////////////////////////////////////////////////////////////////////////////////

// AddPayment records a manual payment on a reservation.
func (client *GuestyClient) AddPayment(
	reservationID string, payment JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost,
		"/reservations/"+reservationID+"/payments", nil, payment, &result)
	return result, err
}

// RefundPayment refunds a payment of a reservation.
func (client *GuestyClient) RefundPayment(
	reservationID, paymentID string, amount float64, note string) (
	JSON, error) {
	payload := JSON{"amount": amount}
	if note != "" {
		payload["note"] = note
	}
	result := JSON{}
	err := client.call(http.MethodPost,
		"/reservations/"+reservationID+"/payments/"+paymentID+"/refund",
		nil, payload, &result)
	return result, err
}

// CreateInvoiceItem adds an invoice item to a reservation.
func (client *GuestyClient) CreateInvoiceItem(
	reservationID string, item JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost,
		"/invoice-items/reservation/"+reservationID, nil, item, &result)
	return result, err
}

////////////////////////////////////////////////////////////////////////////////

// CreateGuest creates a guest record upstream.
func (client *GuestyClient) CreateGuest(guest JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost, "/guests-crud", nil, guest, &result)
	return result, err
}

// GetGuest returns a guest record by ID.
func (client *GuestyClient) GetGuest(guestID string) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodGet, "/guests-crud/"+guestID, nil, nil,
		&result)
	return result, err
}

// UpdateGuest updates a guest record.
func (client *GuestyClient) UpdateGuest(
	guestID string, fields JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPut, "/guests-crud/"+guestID, nil, fields,
		&result)
	return result, err
}

// GetPaymentMethods returns the stored payment methods of a guest.
func (client *GuestyClient) GetPaymentMethods(
	guestID string, query url.Values) (interface{}, error) {
	var result interface{}
	err := client.call(http.MethodGet,
		"/guests/"+guestID+"/payment-methods", query, nil, &result)
	return result, err
}

// CreatePaymentMethod attaches a tokenized card to a guest.
func (client *GuestyClient) CreatePaymentMethod(
	guestID string, method JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost,
		"/guests/"+guestID+"/payment-methods", nil, method, &result)
	return result, err
}

////////////////////////////////////////////////////////////////////////////////

// TokenizeCard tokenizes a card with the Guesty Pay tokenization endpoint.
func (client *GuestyClient) TokenizeCard(payload JSON) (JSON, error) {
	token, err := client.tokens.GetToken(ScopeOpenAPI)
	if err != nil {
		return nil, err
	}
	result := JSON{}
	err = callUpstream(client.httpClient, http.MethodPost,
		client.payURL+"/tokenize/v2", token, nil, payload, &result)
	return result, err
}
