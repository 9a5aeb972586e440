package api

import (
	"net/http"
	"time"

	"github.com/londoners/londoners-aws/londoners"
)

// checkStayDates validates a localized check-in and check-out date pair.
func checkStayDates(checkIn, checkOut string) (*httpResponse, error) {
	in, err := time.Parse(calendarDateFormat, checkIn)
	if err != nil {
		return newHTTPResponseBadParam("Check-in date is invalid",
			`failed to parse check-in date "%s": "%v"`, checkIn, err)
	}
	out, err := time.Parse(calendarDateFormat, checkOut)
	if err != nil {
		return newHTTPResponseBadParam("Check-out date is invalid",
			`failed to parse check-out date "%s": "%v"`, checkOut, err)
	}
	if !in.Before(out) {
		return newHTTPResponseBadParam(
			"Check-in date has to be before check-out date",
			`check-in "%s" is not before check-out "%s"`, checkIn, checkOut)
	}
	return nil, nil
}

////////////////////////////////////////////////////////////////////////////////

// NewQuoteCreateLambda creates lambda to create a quote and record it
// locally.
func (factory *lambdaFactory) NewQuoteCreateLambda() lambdaImpl {
	return &quoteCreateLambda{}
}

type quoteCreateLambda struct{ service }

func (lambda *quoteCreateLambda) Init() error { return lambda.initService() }

func (lambda *quoteCreateLambda) Methods() []string { return methodsPost() }

// quoteCreateRequest carries the inbound snake_case contract, the fields are
// renamed to the Guesty naming when forwarded.
type quoteCreateRequest struct {
	ListingID      string  `json:"listing_id"`
	CheckInDate    string  `json:"check_in_date_localized"`
	CheckOutDate   string  `json:"check_out_date_localized"`
	GuestsCount    int     `json:"guests_count"`
	Source         string  `json:"source"`
	IgnoreCalendar *bool   `json:"ignore_calendar"`
	IgnoreTerms    *bool   `json:"ignore_terms"`
	IgnoreBlocks   *bool   `json:"ignore_blocks"`
	CouponCode     *string `json:"coupon_code"`
}

func (lambda *quoteCreateLambda) CreateRequest() interface{} {
	return &quoteCreateRequest{}
}

type quoteCreateResponse struct {
	Success        bool                   `json:"success"`
	QuoteID        londoners.QuoteID      `json:"quote_id"`
	GuestyQuote    londoners.JSON         `json:"guesty_quote"`
	DatabaseRecord *londoners.QuoteRecord `json:"database_record"`
}

func (lambda *quoteCreateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*quoteCreateRequest)
	if params.ListingID == "" {
		return newHTTPResponseBadParam("Listing ID is not provided",
			"listing ID is not provided")
	}
	if response, err := checkStayDates(
		params.CheckInDate, params.CheckOutDate); response != nil ||
		err != nil {
		return response, err
	}
	if params.GuestsCount < 1 {
		return newHTTPResponseBadParam("Guests count has to be positive",
			"guests count %d is not positive", params.GuestsCount)
	}
	if params.Source == "" {
		return newHTTPResponseBadParam("Source is not provided",
			"source is not provided")
	}

	result, callErr := lambda.guesty.CreateQuote(&londoners.QuoteParams{
		ListingID:             params.ListingID,
		CheckInDateLocalized:  params.CheckInDate,
		CheckOutDateLocalized: params.CheckOutDate,
		GuestsCount:           params.GuestsCount,
		Source:                params.Source,
		IgnoreCalendar:        params.IgnoreCalendar,
		IgnoreTerms:           params.IgnoreTerms,
		IgnoreBlocks:          params.IgnoreBlocks,
		CouponCode:            params.CouponCode})
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}

	record := londoners.NewQuoteRecord()
	record.GuestyQuoteID = result.TextChain("",
		[]interface{}{"_id"},
		[]interface{}{"quote", "_id"})
	record.ListingID = params.ListingID
	record.CheckInDate = params.CheckInDate
	record.CheckOutDate = params.CheckOutDate
	record.Source = params.Source
	record.GuestsCount = params.GuestsCount
	record.IgnoreCalendar = params.IgnoreCalendar
	record.IgnoreTerms = params.IgnoreTerms
	record.IgnoreBlocks = params.IgnoreBlocks
	record.CouponCode = params.CouponCode

	if txErr := lambda.storeQuote(record); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	return newHTTPResponse(http.StatusOK, quoteCreateResponse{
		Success:        true,
		QuoteID:        record.ID,
		GuestyQuote:    result,
		DatabaseRecord: record})
}

func (lambda *quoteCreateLambda) storeQuote(
	record *londoners.QuoteRecord) error {
	tx, err := lambda.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := tx.CreateQuote(record); err != nil {
		return err
	}
	return tx.Commit()
}

////////////////////////////////////////////////////////////////////////////////

// NewQuoteCreateMultipleLambda creates lambda to create quotes for several
// listings at once. Without an explicit listing list quotes are created for
// every active listing.
func (factory *lambdaFactory) NewQuoteCreateMultipleLambda() lambdaImpl {
	return &quoteCreateMultipleLambda{}
}

type quoteCreateMultipleLambda struct{ service }

func (lambda *quoteCreateMultipleLambda) Init() error {
	return lambda.initService()
}

func (lambda *quoteCreateMultipleLambda) Methods() []string {
	return methodsPost()
}

type quoteCreateMultipleRequest struct {
	ListingIDs     []string `json:"listingIds"`
	CheckInDate    string   `json:"checkInDateLocalized"`
	CheckOutDate   string   `json:"checkOutDateLocalized"`
	GuestsCount    int      `json:"guestsCount"`
	Source         string   `json:"source"`
	IgnoreCalendar *bool    `json:"ignoreCalendar"`
	IgnoreTerms    *bool    `json:"ignoreTerms"`
	IgnoreBlocks   *bool    `json:"ignoreBlocks"`
	CouponCode     *string  `json:"couponCode"`
}

func (lambda *quoteCreateMultipleLambda) CreateRequest() interface{} {
	return &quoteCreateMultipleRequest{}
}

func (lambda *quoteCreateMultipleLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*quoteCreateMultipleRequest)
	if response, err := checkStayDates(
		params.CheckInDate, params.CheckOutDate); response != nil ||
		err != nil {
		return response, err
	}
	if params.GuestsCount < 1 {
		return newHTTPResponseBadParam("Guests count has to be positive",
			"guests count %d is not positive", params.GuestsCount)
	}
	if params.Source == "" {
		return newHTTPResponseBadParam("Source is not provided",
			"source is not provided")
	}

	listingIDs := params.ListingIDs
	if len(listingIDs) == 0 {
		ids, idsErr := lambda.findListingIDs(true)
		if idsErr != nil {
			return newHTTPResponseFromError(idsErr)
		}
		if len(ids) == 0 {
			return newHTTPResponseNotFound("No active listings found")
		}
		listingIDs = ids
	}

	result, callErr := lambda.guesty.CreateMultipleQuotes(
		&londoners.MultipleQuotesParams{
			ListingIDs:            listingIDs,
			CheckInDateLocalized:  params.CheckInDate,
			CheckOutDateLocalized: params.CheckOutDate,
			GuestsCount:           params.GuestsCount,
			Source:                params.Source,
			IgnoreCalendar:        params.IgnoreCalendar,
			IgnoreTerms:           params.IgnoreTerms,
			IgnoreBlocks:          params.IgnoreBlocks,
			CouponCode:            params.CouponCode})
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}
