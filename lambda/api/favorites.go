package api

import (
	"net/http"

	"github.com/londoners/londoners-aws/londoners"
)

type favoritesResponse struct {
	Message   string   `json:"message"`
	GuestID   string   `json:"guest_id"`
	Favorites []string `json:"favorites"`
}

// NewFavoriteAddLambda creates lambda to add a listing to the favorites of
// a user. Adding a listing that is already there succeeds and changes
// nothing.
func (factory *lambdaFactory) NewFavoriteAddLambda() lambdaImpl {
	return &favoriteAddLambda{}
}

type favoriteAddLambda struct{ service }

func (lambda *favoriteAddLambda) Init() error { return lambda.initService() }

func (lambda *favoriteAddLambda) Methods() []string { return methodsPost() }

type favoriteRequest struct {
	ListingID string `json:"listing_id"`
}

func (lambda *favoriteAddLambda) CreateRequest() interface{} {
	return &favoriteRequest{}
}

func (lambda *favoriteAddLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	params := request.GetRequest().(*favoriteRequest)
	if params.ListingID == "" {
		return newHTTPResponseBadParam("Listing ID is not provided",
			"listing ID is not provided")
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()

	favorites, found, txErr := tx.FindUserFavorites(guestID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if !found {
		return newHTTPResponseNotFound("User is unknown")
	}

	if londoners.HasFavorite(favorites, params.ListingID) {
		return newHTTPResponse(http.StatusOK, favoritesResponse{
			Message:   "Listing is already in favorites",
			GuestID:   guestID,
			Favorites: favorites})
	}

	favorites = append(favorites, params.ListingID)
	if txErr := tx.UpdateUserFavorites(guestID, favorites); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if txErr := tx.Commit(); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	return newHTTPResponse(http.StatusOK, favoritesResponse{
		Message:   "Listing added to favorites successfully",
		GuestID:   guestID,
		Favorites: favorites})
}

////////////////////////////////////////////////////////////////////////////////

// NewFavoriteDeleteLambda creates lambda to remove a listing from the
// favorites of a user. Removing a listing that is not there fails with
// not-found.
func (factory *lambdaFactory) NewFavoriteDeleteLambda() lambdaImpl {
	return &favoriteDeleteLambda{}
}

type favoriteDeleteLambda struct{ service }

func (lambda *favoriteDeleteLambda) Init() error {
	return lambda.initService()
}

func (lambda *favoriteDeleteLambda) Methods() []string {
	return methodsDelete()
}

func (lambda *favoriteDeleteLambda) CreateRequest() interface{} { return nil }

func (lambda *favoriteDeleteLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	listingID, argErr := request.ReadQueryArgString("listing_id")
	if argErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"listing_id\" is not provided", "%v", argErr)
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()

	favorites, found, txErr := tx.FindUserFavorites(guestID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if !found {
		return newHTTPResponseNotFound("User is unknown")
	}

	if !londoners.HasFavorite(favorites, listingID) {
		return newHTTPResponseNotFound("Listing is not in favorites")
	}
	remaining := londoners.RemoveFavorite(favorites, listingID)
	if txErr := tx.UpdateUserFavorites(guestID, remaining); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if txErr := tx.Commit(); txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	return newHTTPResponse(http.StatusOK, favoritesResponse{
		Message:   "Listing removed from favorites successfully",
		GuestID:   guestID,
		Favorites: remaining})
}

////////////////////////////////////////////////////////////////////////////////

// NewFavoriteCheckLambda creates lambda to check if a listing is in the
// favorites of a user.
func (factory *lambdaFactory) NewFavoriteCheckLambda() lambdaImpl {
	return &favoriteCheckLambda{}
}

type favoriteCheckLambda struct{ service }

func (lambda *favoriteCheckLambda) Init() error { return lambda.initService() }

func (lambda *favoriteCheckLambda) Methods() []string { return methodsGet() }

func (lambda *favoriteCheckLambda) CreateRequest() interface{} { return nil }

type favoriteCheckResponse struct {
	GuestID    string `json:"guest_id"`
	ListingID  string `json:"listing_id"`
	IsFavorite bool   `json:"is_favorite"`
}

func (lambda *favoriteCheckLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	listingID, argErr := request.ReadQueryArgString("listing_id")
	if argErr != nil {
		return newHTTPResponseBadParam(
			"Query argument \"listing_id\" is not provided", "%v", argErr)
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()

	favorites, found, txErr := tx.FindUserFavorites(guestID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if !found {
		return newHTTPResponseNotFound("User is unknown")
	}

	return newHTTPResponse(http.StatusOK, favoriteCheckResponse{
		GuestID:    guestID,
		ListingID:  listingID,
		IsFavorite: londoners.HasFavorite(favorites, listingID)})
}

////////////////////////////////////////////////////////////////////////////////

// NewFavoriteListLambda creates lambda to list the favorites of a user with
// the upstream details of each listing. A listing that cannot be fetched is
// left out instead of failing the whole answer.
func (factory *lambdaFactory) NewFavoriteListLambda() lambdaImpl {
	return &favoriteListLambda{}
}

type favoriteListLambda struct{ service }

func (lambda *favoriteListLambda) Init() error { return lambda.initService() }

func (lambda *favoriteListLambda) Methods() []string { return methodsGet() }

func (lambda *favoriteListLambda) CreateRequest() interface{} { return nil }

type favoriteListResponse struct {
	GuestID   string            `json:"guest_id"`
	Favorites []string          `json:"favorites"`
	Listings  []*listingSummary `json:"listings"`
}

func (lambda *favoriteListLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}

	favorites, txResponse, txErr := lambda.readFavorites(guestID)
	if txResponse != nil || txErr != nil {
		return txResponse, txErr
	}

	result := favoriteListResponse{
		GuestID:   guestID,
		Favorites: favorites,
		Listings:  []*listingSummary{}}
	for _, listingID := range favorites {
		details, callErr := lambda.guesty.GetListing(listingID)
		if callErr != nil {
			londoners.Log.Error(
				`Failed to get favorite listing "%s": "%v".`,
				listingID, callErr)
			continue
		}
		result.Listings = append(result.Listings,
			newListingSummary(listingID, details))
	}
	return newHTTPResponse(http.StatusOK, result)
}

func (lambda *favoriteListLambda) readFavorites(
	guestID string) ([]string, *httpResponse, error) {

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		response, err := newHTTPResponseInternalServerError(txErr)
		return nil, response, err
	}
	defer tx.Rollback()

	favorites, found, txErr := tx.FindUserFavorites(guestID)
	if txErr != nil {
		response, err := newHTTPResponseInternalServerError(txErr)
		return nil, response, err
	}
	if !found {
		response, err := newHTTPResponseNotFound("User is unknown")
		return nil, response, err
	}
	return favorites, nil, nil
}
