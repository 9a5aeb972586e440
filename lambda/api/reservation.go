package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/londoners/londoners-aws/londoners"
)

// NewReservationCreateLambda creates lambda to place a reservation: it
// creates an upstream quote from the stay fields, books a reservation
// against it, moves it to awaiting-payment and records it locally.
func (factory *lambdaFactory) NewReservationCreateLambda() lambdaImpl {
	return &reservationCreateLambda{}
}

type reservationCreateLambda struct{ service }

func (lambda *reservationCreateLambda) Init() error {
	return lambda.initService()
}

func (lambda *reservationCreateLambda) Methods() []string {
	return methodsPost()
}

// reservationCreateRequest carries the inbound snake_case contract with the
// stay fields, the handler creates the upstream quote itself.
type reservationCreateRequest struct {
	ListingID        string  `json:"listing_id"`
	CheckInDate      string  `json:"check_in_date_localized"`
	CheckOutDate     string  `json:"check_out_date_localized"`
	Source           string  `json:"source"`
	GuestsCount      int     `json:"guests_count"`
	GuestID          string  `json:"guest_id"`
	NumberOfAdults   int     `json:"number_of_adults"`
	NumberOfChildren *int    `json:"number_of_children"`
	NumberOfInfants  *int    `json:"number_of_infants"`
	NumberOfPets     *int    `json:"number_of_pets"`
	ReservedUntil    *int    `json:"reserved_until"`
	IgnoreCalendar   *bool   `json:"ignore_calendar"`
	IgnoreTerms      *bool   `json:"ignore_terms"`
	IgnoreBlocks     *bool   `json:"ignore_blocks"`
	CouponCode       *string `json:"coupon_code"`
	Channel          string  `json:"channel"`
}

func (lambda *reservationCreateLambda) CreateRequest() interface{} {
	return &reservationCreateRequest{}
}

type reservationCreateResponse struct {
	Success           bool                         `json:"success"`
	ReservationID     londoners.ReservationID      `json:"reservation_id"`
	GuestyReservation londoners.JSON               `json:"guesty_reservation"`
	DatabaseRecord    *londoners.ReservationRecord `json:"database_record"`
}

func (lambda *reservationCreateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*reservationCreateRequest)
	if response, err := lambda.checkParams(params); response != nil ||
		err != nil {
		return response, err
	}
	reservedUntil := 12
	if params.ReservedUntil != nil {
		reservedUntil = *params.ReservedUntil
	}

	quote, quoteErr := lambda.guesty.CreateQuote(&londoners.QuoteParams{
		ListingID:             params.ListingID,
		CheckInDateLocalized:  params.CheckInDate,
		CheckOutDateLocalized: params.CheckOutDate,
		GuestsCount:           params.GuestsCount,
		Source:                params.Source,
		IgnoreCalendar:        params.IgnoreCalendar,
		IgnoreTerms:           params.IgnoreTerms,
		IgnoreBlocks:          params.IgnoreBlocks,
		CouponCode:            params.CouponCode,
		NumberOfGuests: &londoners.GuestBreakdown{
			NumberOfAdults:   params.NumberOfAdults,
			NumberOfChildren: params.NumberOfChildren,
			NumberOfInfants:  params.NumberOfInfants,
			NumberOfPets:     params.NumberOfPets}})
	if quoteErr != nil {
		return newHTTPResponseFromError(quoteErr)
	}
	quoteID := quote.TextChain("",
		[]interface{}{"_id"},
		[]interface{}{"quote", "_id"})
	if quoteID == "" {
		return newHTTPResponseInternalServerError(
			fmt.Errorf("quote response carries no quote ID"))
	}
	// The quote answer has shipped the rate plan ID in two places over the
	// schema versions.
	ratePlanID := quote.TextChain("",
		[]interface{}{"rates", "ratePlans", 0, "money", "rateId"},
		[]interface{}{"rates", "ratePlans", 0, "ratePlan", "_id"})

	result, callErr := lambda.guesty.CreateReservationFromQuote(
		&londoners.ReservationFromQuoteParams{
			QuoteID:        quoteID,
			Status:         "reserved",
			RatePlanID:     ratePlanID,
			ReservedUntil:  reservedUntil,
			GuestID:        params.GuestID,
			IgnoreCalendar: params.IgnoreCalendar,
			IgnoreTerms:    params.IgnoreTerms,
			IgnoreBlocks:   params.IgnoreBlocks})
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}

	reservationID := result.TextChain("",
		[]interface{}{"_id"},
		[]interface{}{"reservationId"},
		[]interface{}{"reservation", "_id"})

	// The reservation is already placed upstream, a failure to move it to
	// awaiting-payment must not fail the whole operation.
	status := "reserved"
	if reservationID != "" {
		if _, statusErr := lambda.guesty.UpdateReservationStatus(
			reservationID, "awaiting_payment"); statusErr != nil {
			londoners.Log.Error(
				`Failed to set reservation "%s" status: "%v".`,
				reservationID, statusErr)
		} else {
			status = "awaiting_payment"
		}
	}

	record := lambda.newRecord(params, result, quoteID, reservationID, status)
	if txErr := lambda.storeReservation(record); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	return newHTTPResponse(http.StatusOK, reservationCreateResponse{
		Success:           true,
		ReservationID:     record.ID,
		GuestyReservation: result,
		DatabaseRecord:    record})
}

func (lambda *reservationCreateLambda) checkParams(
	params *reservationCreateRequest) (*httpResponse, error) {

	if params.ListingID == "" {
		return newHTTPResponseBadParam("Listing ID is not provided",
			"listing ID is not provided")
	}
	if response, err := checkStayDates(
		params.CheckInDate, params.CheckOutDate); response != nil ||
		err != nil {
		return response, err
	}
	if params.Source == "" {
		return newHTTPResponseBadParam("Source is not provided",
			"source is not provided")
	}
	if params.GuestsCount < 1 {
		return newHTTPResponseBadParam("Guests count has to be positive",
			"guests count %d is not positive", params.GuestsCount)
	}
	if params.GuestID == "" {
		return newHTTPResponseBadParam("Guest ID is not provided",
			"guest ID is not provided")
	}
	if params.NumberOfAdults < 1 {
		return newHTTPResponseBadParam(
			"Number of adults has to be positive",
			"number of adults %d is not positive", params.NumberOfAdults)
	}
	if params.ReservedUntil != nil &&
		!londoners.IsReservedUntilAllowed(*params.ReservedUntil) {
		return newHTTPResponseBadParam(
			"Reserved-until hours value is not allowed",
			"reserved-until hours %d is not allowed", *params.ReservedUntil)
	}
	return nil, nil
}

func (lambda *reservationCreateLambda) newRecord(
	params *reservationCreateRequest,
	result londoners.JSON,
	quoteID, reservationID, status string) *londoners.ReservationRecord {

	record := londoners.NewReservationRecord()
	record.GuestyReservationID = reservationID
	record.QuoteID = quoteID
	record.Status = status

	record.GuestID = result.TextChain(params.GuestID,
		[]interface{}{"guestId"},
		[]interface{}{"guest", "_id"})
	record.GuestEmail = result.TextChain("",
		[]interface{}{"guest", "email"},
		[]interface{}{"guestEmail"})
	record.GuestFirstName = result.TextChain("",
		[]interface{}{"guest", "firstName"},
		[]interface{}{"guest", "fullName"})
	record.GuestLastName = result.TextChain("",
		[]interface{}{"guest", "lastName"})

	record.ListingID = result.TextChain(params.ListingID,
		[]interface{}{"unitId"},
		[]interface{}{"listing", "_id"})
	record.ListingTitle = result.TextChain("",
		[]interface{}{"listing", "title"},
		[]interface{}{"listing", "nickname"})
	unitTypeID := result.TextChain("",
		[]interface{}{"unitTypeId"},
		[]interface{}{"listing", "unitTypeId"})
	if unitTypeID != "" {
		record.UnitTypeID = &unitTypeID
	}
	if code, ok := result.Text("confirmationCode"); ok {
		record.ConfirmationCode = &code
	}

	record.CheckInDate = params.CheckInDate
	record.CheckOutDate = params.CheckOutDate
	checkIn := result.TextChain("",
		[]interface{}{"checkInDate"},
		[]interface{}{"checkIn"})
	if parsed, err := time.Parse(time.RFC3339, checkIn); err == nil {
		record.CheckIn = parsed.UTC()
	}
	checkOut := result.TextChain("",
		[]interface{}{"checkOutDate"},
		[]interface{}{"checkOut"})
	if parsed, err := time.Parse(time.RFC3339, checkOut); err == nil {
		record.CheckOut = parsed.UTC()
	}

	record.Source = params.Source
	if params.Channel != "" {
		record.Channel = params.Channel
	}

	record.GuestsCount = params.GuestsCount
	record.NumberOfAdults = params.NumberOfAdults
	if params.NumberOfChildren != nil {
		record.NumberOfChildren = *params.NumberOfChildren
	}
	if params.NumberOfInfants != nil {
		record.NumberOfInfants = *params.NumberOfInfants
	}
	if params.NumberOfPets != nil {
		record.NumberOfPets = *params.NumberOfPets
	}

	record.ReservedExpiresAt = record.CreationTime.Add(
		time.Duration(reservedUntilHours(params)) * time.Hour)
	return record
}

func reservedUntilHours(params *reservationCreateRequest) int {
	if params.ReservedUntil == nil || *params.ReservedUntil <= 0 {
		return 24
	}
	return *params.ReservedUntil
}

func (lambda *reservationCreateLambda) storeReservation(
	record *londoners.ReservationRecord) error {
	tx, err := lambda.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := tx.CreateReservation(record); err != nil {
		return err
	}
	return tx.Commit()
}

////////////////////////////////////////////////////////////////////////////////

// NewReservationStatusUpdateLambda creates lambda to set the status of a
// reservation.
func (factory *lambdaFactory) NewReservationStatusUpdateLambda() lambdaImpl {
	return &reservationStatusUpdateLambda{}
}

type reservationStatusUpdateLambda struct{ service }

func (lambda *reservationStatusUpdateLambda) Init() error {
	return lambda.initService()
}

func (lambda *reservationStatusUpdateLambda) Methods() []string {
	return methodsPut()
}

type reservationStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (lambda *reservationStatusUpdateLambda) CreateRequest() interface{} {
	return &reservationStatusUpdateRequest{}
}

func (lambda *reservationStatusUpdateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	params := request.GetRequest().(*reservationStatusUpdateRequest)
	if !londoners.IsReservationStatusAllowed(params.Status) {
		return newHTTPResponseBadParam("Status is not allowed",
			`status "%s" is not allowed`, params.Status)
	}

	result, callErr := lambda.guesty.UpdateReservationStatus(
		reservationID, params.Status)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewReservationInfoLambda creates lambda to get a reservation.
func (factory *lambdaFactory) NewReservationInfoLambda() lambdaImpl {
	return &reservationInfoLambda{}
}

type reservationInfoLambda struct{ service }

func (lambda *reservationInfoLambda) Init() error {
	return lambda.initService()
}

func (lambda *reservationInfoLambda) Methods() []string { return methodsGet() }

func (lambda *reservationInfoLambda) CreateRequest() interface{} { return nil }

func (lambda *reservationInfoLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	result, callErr := lambda.guesty.GetReservation(
		reservationID, forwardedQuery(request))
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewReservationListLambda creates lambda to list reservations. Query
// arguments are forwarded to the upstream reservations query as is.
func (factory *lambdaFactory) NewReservationListLambda() lambdaImpl {
	return &reservationListLambda{}
}

type reservationListLambda struct{ service }

func (lambda *reservationListLambda) Init() error {
	return lambda.initService()
}

func (lambda *reservationListLambda) Methods() []string { return methodsGet() }

func (lambda *reservationListLambda) CreateRequest() interface{} { return nil }

func (lambda *reservationListLambda) Run(
	request LambdaRequest) (*httpResponse, error) {
	result, err := lambda.guesty.ListReservations(forwardedQuery(request))
	if err != nil {
		return newHTTPResponseFromError(err)
	}
	return newHTTPResponse(http.StatusOK, result)
}
