package api

import (
	"net/http"

	"github.com/londoners/londoners-aws/londoners"
)

// NewBookingQuoteCreateLambda creates lambda to create a booking-engine
// reservation quote.
func (factory *lambdaFactory) NewBookingQuoteCreateLambda() lambdaImpl {
	return &bookingQuoteCreateLambda{}
}

type bookingQuoteCreateLambda struct{ service }

func (lambda *bookingQuoteCreateLambda) Init() error {
	return lambda.initService()
}

func (lambda *bookingQuoteCreateLambda) Methods() []string {
	return methodsPost()
}

func (lambda *bookingQuoteCreateLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *bookingQuoteCreateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := *request.GetRequest().(*londoners.JSON)
	if _, ok := params.Text("listingId"); !ok {
		return newHTTPResponseBadParam("Listing ID is not provided",
			"listing ID is not provided")
	}
	checkIn, hasCheckIn := params.Text("checkInDateLocalized")
	checkOut, hasCheckOut := params.Text("checkOutDateLocalized")
	if !hasCheckIn || !hasCheckOut {
		return newHTTPResponseBadParam("Stay dates are not provided",
			"stay dates are not provided")
	}
	if response, err := checkStayDates(checkIn, checkOut); response != nil ||
		err != nil {
		return response, err
	}

	result, callErr := lambda.booking.CreateQuote(params)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewBookingInstantReservationLambda creates lambda to book a quote
// instantly with a tokenized card.
func (factory *lambdaFactory) NewBookingInstantReservationLambda() lambdaImpl {
	return &bookingInstantReservationLambda{}
}

type bookingInstantReservationLambda struct{ service }

func (lambda *bookingInstantReservationLambda) Init() error {
	return lambda.initService()
}

func (lambda *bookingInstantReservationLambda) Methods() []string {
	return methodsPost()
}

func (lambda *bookingInstantReservationLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *bookingInstantReservationLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	quoteID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	params := *request.GetRequest().(*londoners.JSON)
	if len(params) == 0 {
		return newHTTPResponseBadParam("Reservation data is not provided",
			"instant reservation request is empty")
	}

	result, callErr := lambda.booking.InstantReservation(quoteID, params)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewBookingInstantChargeLambda creates lambda to book a quote instantly
// charging a stored payment method or a confirmation token.
func (factory *lambdaFactory) NewBookingInstantChargeLambda() lambdaImpl {
	return &bookingInstantChargeLambda{}
}

type bookingInstantChargeLambda struct{ service }

func (lambda *bookingInstantChargeLambda) Init() error {
	return lambda.initService()
}

func (lambda *bookingInstantChargeLambda) Methods() []string {
	return methodsPost()
}

func (lambda *bookingInstantChargeLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *bookingInstantChargeLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	quoteID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	params := *request.GetRequest().(*londoners.JSON)

	if _, ok := params.Text("ratePlanId"); !ok {
		return newHTTPResponseBadParam("Rate plan ID is not provided",
			"rate plan ID is not provided")
	}
	// The charge source is one of a Stripe confirmation token or a stored
	// payment method, never both.
	_, hasToken := params.Text("confirmationToken")
	_, hasMethod := params.Text("initialPaymentMethodId")
	if hasToken == hasMethod {
		return newHTTPResponseBadParam(
			"Exactly one of confirmation token and payment method is required",
			"confirmation token given: %t, payment method given: %t",
			hasToken, hasMethod)
	}
	guest, hasGuest := params.Object("guest")
	if !hasGuest {
		return newHTTPResponseBadParam("Guest is not provided",
			"guest object is not provided")
	}
	for _, field := range []string{"firstName", "lastName", "email"} {
		if _, ok := guest.Text(field); !ok {
			return newHTTPResponseBadParam(
				"Guest name and email are required",
				"guest field %q is not provided", field)
		}
	}
	if raw := params.Get("reservedUntil"); raw != nil {
		hours, isNumber := params.Number("reservedUntil")
		if !isNumber || !londoners.IsReservedUntilAllowed(int(hours)) {
			return newHTTPResponseBadParam(
				"Reserved-until hours value is not allowed",
				"reserved-until value %v is not allowed", raw)
		}
	} else {
		params["reservedUntil"] = 12
	}

	result, callErr := lambda.booking.InstantCharge(quoteID, params)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewBookingPaymentVerifyLambda creates lambda to verify a 3-D Secure
// payment of a reservation.
func (factory *lambdaFactory) NewBookingPaymentVerifyLambda() lambdaImpl {
	return &bookingPaymentVerifyLambda{}
}

type bookingPaymentVerifyLambda struct{ service }

func (lambda *bookingPaymentVerifyLambda) Init() error {
	return lambda.initService()
}

func (lambda *bookingPaymentVerifyLambda) Methods() []string {
	return methodsPost()
}

type bookingPaymentVerifyRequest struct {
	PaymentID string `json:"paymentId"`
}

func (lambda *bookingPaymentVerifyLambda) CreateRequest() interface{} {
	return &bookingPaymentVerifyRequest{}
}

func (lambda *bookingPaymentVerifyLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	params := request.GetRequest().(*bookingPaymentVerifyRequest)
	if params.PaymentID == "" {
		return newHTTPResponseBadParam("Payment ID is not provided",
			"payment ID is not provided")
	}

	result, callErr := lambda.booking.VerifyPayment(
		reservationID, params.PaymentID)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}
