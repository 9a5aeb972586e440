package londoners

import (
	"net/http"
	"time"
)

// ReservedUntilAllowed lists accepted reservation hold durations in hours,
// -1 means no limit.
var ReservedUntilAllowed = []int{-1, 12, 24, 36, 48, 72}

// IsReservedUntilAllowed returns true if the hold duration is accepted.
func IsReservedUntilAllowed(hours int) bool {
	for _, allowed := range ReservedUntilAllowed {
		if hours == allowed {
			return true
		}
	}
	return false
}

// BookingEngineClient calls the Guesty Booking Engine API with bearer
// tokens of the booking-engine scope.
type BookingEngineClient struct {
	httpClient *http.Client
	apiURL     string
	tokens     TokenSource
}

// NewBookingEngineClient creates new Booking Engine API client.
func NewBookingEngineClient(
	settings *Settings, tokens TokenSource) *BookingEngineClient {
	return &BookingEngineClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     settings.BookingEngineAPIURL,
		tokens:     tokens}
}

func (client *BookingEngineClient) call(
	method, path string, body, result interface{}) error {
	token, err := client.tokens.GetToken(ScopeBookingEngine)
	if err != nil {
		return err
	}
	return callUpstream(client.httpClient, method, client.apiURL+path, token,
		nil, body, result)
}

// CreateQuote creates a booking-engine reservation quote.
func (client *BookingEngineClient) CreateQuote(params JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost, "/reservations/quotes", params,
		&result)
	return result, err
}

// InstantReservation books a quote instantly with a tokenized card.
func (client *BookingEngineClient) InstantReservation(
	quoteID string, params JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost,
		"/reservations/quotes/"+quoteID+"/instant", params, &result)
	return result, err
}

// InstantCharge books a quote instantly charging a payment method or a
// confirmation token.
func (client *BookingEngineClient) InstantCharge(
	quoteID string, params JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost,
		"/reservations/quotes/"+quoteID+"/instant-charge", params, &result)
	return result, err
}

// VerifyPayment verifies a 3-D Secure payment of a reservation.
func (client *BookingEngineClient) VerifyPayment(
	reservationID, paymentID string) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost,
		"/reservations/"+reservationID+"/verify-payment",
		JSON{"paymentId": paymentID}, &result)
	return result, err
}
