package api

import (
	"net/http"
	"net/url"
	"time"
)

const calendarDateFormat = "2006-01-02"

// NewCalendarInfoLambda creates lambda to get the availability calendar of
// a listing for a date range.
func (factory *lambdaFactory) NewCalendarInfoLambda() lambdaImpl {
	return &calendarInfoLambda{}
}

type calendarInfoLambda struct{ service }

func (lambda *calendarInfoLambda) Init() error { return lambda.initService() }

func (lambda *calendarInfoLambda) Methods() []string { return methodsGet() }

func (lambda *calendarInfoLambda) CreateRequest() interface{} { return nil }

func (lambda *calendarInfoLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	listingID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}

	from, fromErr := request.ReadQueryArgString("from")
	if fromErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"from\" is not provided", "%v", fromErr)
	}
	to, toErr := request.ReadQueryArgString("to")
	if toErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"to\" is not provided", "%v", toErr)
	}
	if _, parseErr := time.Parse(calendarDateFormat, from); parseErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"from\" is not a date",
			`failed to parse date "%s": "%v"`, from, parseErr)
	}
	if _, parseErr := time.Parse(calendarDateFormat, to); parseErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"to\" is not a date",
			`failed to parse date "%s": "%v"`, to, parseErr)
	}

	query := url.Values{}
	query.Set("startDate", from)
	query.Set("endDate", to)
	result, callErr := lambda.guesty.GetCalendar(listingID, query)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewMinNightsLambda creates lambda to get the minimum-nights term of a
// listing.
func (factory *lambdaFactory) NewMinNightsLambda() lambdaImpl {
	return &minNightsLambda{}
}

type minNightsLambda struct{ service }

func (lambda *minNightsLambda) Init() error { return lambda.initService() }

func (lambda *minNightsLambda) Methods() []string { return methodsGet() }

func (lambda *minNightsLambda) CreateRequest() interface{} { return nil }

type minNightsResponse struct {
	ListingID string `json:"listing_id"`
	MinNights int    `json:"min_nights"`
}

func (lambda *minNightsLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	listingID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}

	listing, callErr := lambda.guesty.GetListing(listingID)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}

	minNights := listing.NumberChain(1,
		[]interface{}{"terms", "minNights"},
		[]interface{}{"prices", "minNights"})
	return newHTTPResponse(http.StatusOK, minNightsResponse{
		ListingID: listingID, MinNights: int(minNights)})
}
