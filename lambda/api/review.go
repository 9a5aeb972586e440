package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/londoners/londoners-aws/londoners"
)

// NewReviewAddLambda creates lambda to add a guest review of a listing. A
// guest may leave at most one review per listing.
func (factory *lambdaFactory) NewReviewAddLambda() lambdaImpl {
	return &reviewAddLambda{}
}

type reviewAddLambda struct{ service }

func (lambda *reviewAddLambda) Init() error { return lambda.initService() }

func (lambda *reviewAddLambda) Methods() []string { return methodsPost() }

type reviewAddRequest struct {
	ListingID string              `json:"listing_id"`
	GuestID   string              `json:"guest_id"`
	Text      string              `json:"review_text"`
	Ratings   londoners.RatingSet `json:"ratings"`
}

func (lambda *reviewAddLambda) CreateRequest() interface{} {
	return &reviewAddRequest{}
}

type reviewAddResponse struct {
	ID            int64   `json:"id"`
	OverallRating float64 `json:"overall_rating"`
}

func (lambda *reviewAddLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*reviewAddRequest)
	if params.ListingID == "" {
		return newHTTPResponseBadParam("Listing ID is not provided",
			"listing ID is not provided")
	}
	if params.GuestID == "" {
		return newHTTPResponseBadParam("Guest ID is not provided",
			"guest ID is not provided")
	}

	review, reviewErr := londoners.NewReview(
		params.ListingID, params.GuestID, params.Text, params.Ratings)
	if reviewErr != nil {
		return newHTTPResponseBadParam(
			"Ratings have to be between 1 and 5", "%v", reviewErr)
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()

	existingID, txErr := tx.FindReviewID(params.ListingID, params.GuestID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if existingID != nil {
		return newHTTPResponseConflict(
			"Guest has already reviewed this listing")
	}

	id, txErr := tx.CreateReview(review)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if txErr := tx.Commit(); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	return newHTTPResponse(http.StatusOK, reviewAddResponse{
		ID: id, OverallRating: review.Overall})
}

////////////////////////////////////////////////////////////////////////////////

// NewReviewListLambda creates lambda to list reviews of a listing with
// aggregated statistics, sorting and pagination.
func (factory *lambdaFactory) NewReviewListLambda() lambdaImpl {
	return &reviewListLambda{}
}

type reviewListLambda struct{ service }

func (lambda *reviewListLambda) Init() error { return lambda.initService() }

func (lambda *reviewListLambda) Methods() []string { return methodsGet() }

func (lambda *reviewListLambda) CreateRequest() interface{} { return nil }

type reviewResponse struct {
	ID            int64               `json:"id"`
	GuestID       string              `json:"guest_id"`
	Text          string              `json:"review_text"`
	OverallRating float64             `json:"overall_rating"`
	Ratings       londoners.RatingSet `json:"ratings"`
	CreatedAt     time.Time           `json:"created_at"`
}

type reviewListResponse struct {
	ListingID  string                      `json:"listing_id"`
	Reviews    []reviewResponse            `json:"reviews"`
	Statistics *londoners.ReviewStatistics `json:"statistics"`
	Page       int                         `json:"page"`
	PerPage    int                         `json:"per_page"`
	TotalPages int                         `json:"total_pages"`
}

func readPageArgs(request LambdaRequest) (int, int, *httpResponse, error) {
	page := 1
	perPage := 10
	if arg, has := request.GetQueryArgs()["page"]; has && arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 {
			response, respErr := newHTTPResponseBadParam(
				"Query argument \"page\" is not a positive number",
				`failed to parse page "%s": "%v"`, arg, err)
			return 0, 0, response, respErr
		}
		page = parsed
	}
	if arg, has := request.GetQueryArgs()["per_page"]; has && arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 || parsed > 50 {
			response, respErr := newHTTPResponseBadParam(
				"Query argument \"per_page\" has to be between 1 and 50",
				`failed to parse per_page "%s": "%v"`, arg, err)
			return 0, 0, response, respErr
		}
		perPage = parsed
	}
	return page, perPage, nil, nil
}

func (lambda *reviewListLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	listingID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	order, orderErr := londoners.ParseReviewSortOrder(
		request.GetQueryArgs()["sort"])
	if orderErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"sort\" is unknown", "%v", orderErr)
	}
	page, perPage, response, err := readPageArgs(request)
	if response != nil || err != nil {
		return response, err
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()
	reviews, txErr := tx.GetListingReviews(listingID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	// Statistics always cover the whole listing, not the requested page.
	statistics := londoners.NewReviewStatistics(reviews)
	londoners.SortReviews(reviews, order)

	totalPages := (len(reviews) + perPage - 1) / perPage
	first := (page - 1) * perPage
	if first > len(reviews) {
		first = len(reviews)
	}
	last := first + perPage
	if last > len(reviews) {
		last = len(reviews)
	}

	result := reviewListResponse{
		ListingID:  listingID,
		Reviews:    []reviewResponse{},
		Statistics: statistics,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages}
	for _, review := range reviews[first:last] {
		result.Reviews = append(result.Reviews, reviewResponse{
			ID:            review.ID,
			GuestID:       review.GuestID,
			Text:          review.Text,
			OverallRating: review.Overall,
			Ratings:       review.Ratings,
			CreatedAt:     review.CreatedAt})
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewReviewRequestEmailLambda creates lambda to mail review requests to
// guests whose reservations checked out within the given window. It is
// meant to be invoked periodically.
func (factory *lambdaFactory) NewReviewRequestEmailLambda() lambdaImpl {
	return &reviewRequestEmailLambda{}
}

type reviewRequestEmailLambda struct {
	service
	email londoners.EmailService
}

func (lambda *reviewRequestEmailLambda) Init() error {
	if err := lambda.initService(); err != nil {
		return err
	}
	email, err := londoners.NewEmailService(lambda.settings)
	if err != nil {
		return err
	}
	lambda.email = email
	return nil
}

func (lambda *reviewRequestEmailLambda) Methods() []string {
	return methodsPost()
}

type reviewRequestEmailRequest struct {
	From string `json:"from"`
	Till string `json:"till"`
}

func (lambda *reviewRequestEmailLambda) CreateRequest() interface{} {
	return &reviewRequestEmailRequest{}
}

type reviewRequestEmailResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func (lambda *reviewRequestEmailLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*reviewRequestEmailRequest)

	// Default window is the past day.
	till := time.Now().UTC()
	from := till.Add(-24 * time.Hour)
	if params.From != "" {
		parsed, parseErr := time.Parse(calendarDateFormat, params.From)
		if parseErr != nil {
			return newHTTPResponseBadParam("From date is invalid",
				`failed to parse from date "%s": "%v"`,
				params.From, parseErr)
		}
		from = parsed
	}
	if params.Till != "" {
		parsed, parseErr := time.Parse(calendarDateFormat, params.Till)
		if parseErr != nil {
			return newHTTPResponseBadParam("Till date is invalid",
				`failed to parse till date "%s": "%v"`,
				params.Till, parseErr)
		}
		till = parsed
	}
	if !from.Before(till) {
		return newHTTPResponseBadParam(
			"From date has to be before till date",
			`from "%v" is not before till "%v"`, from, till)
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()
	reservations, txErr := tx.GetCheckedOutReservations(from, till)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	result := reviewRequestEmailResponse{}
	for _, reservation := range reservations {
		if reservation.GuestEmail == "" {
			continue
		}
		if sendErr := lambda.email.SendReviewRequest(
			reservation); sendErr != nil {
			londoners.Log.Error(
				`Failed to send review request for reservation "%s": "%v".`,
				reservation.GuestyReservationID, sendErr)
			result.Failed++
			continue
		}
		result.Sent++
	}
	return newHTTPResponse(http.StatusOK, result)
}
