package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/londoners/londoners-aws/londoners"
)

// NewListingInfoLambda creates lambda to get one listing.
func (factory *lambdaFactory) NewListingInfoLambda() lambdaImpl {
	return &listingInfoLambda{}
}

type listingInfoLambda struct{ service }

func (lambda *listingInfoLambda) Init() error { return lambda.initService() }

func (lambda *listingInfoLambda) Methods() []string { return methodsGet() }

func (lambda *listingInfoLambda) CreateRequest() interface{} { return nil }

func (lambda *listingInfoLambda) Run(
	request LambdaRequest) (*httpResponse, error) {
	listingID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	result, callErr := lambda.guesty.GetListing(listingID)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewListingSearchLambda creates lambda to search listings. Query arguments
// are forwarded to the upstream listings query as is.
func (factory *lambdaFactory) NewListingSearchLambda() lambdaImpl {
	return &listingSearchLambda{}
}

type listingSearchLambda struct{ service }

func (lambda *listingSearchLambda) Init() error { return lambda.initService() }

func (lambda *listingSearchLambda) Methods() []string { return methodsGet() }

func (lambda *listingSearchLambda) CreateRequest() interface{} { return nil }

func (lambda *listingSearchLambda) Run(
	request LambdaRequest) (*httpResponse, error) {
	result, err := lambda.guesty.SearchListings(forwardedQuery(request))
	if err != nil {
		return newHTTPResponseFromError(err)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewListingIDListLambda creates lambda to list IDs of all active listings.
func (factory *lambdaFactory) NewListingIDListLambda() lambdaImpl {
	return &listingIDListLambda{}
}

type listingIDListLambda struct{ service }

func (lambda *listingIDListLambda) Init() error { return lambda.initService() }

func (lambda *listingIDListLambda) Methods() []string { return methodsGet() }

func (lambda *listingIDListLambda) CreateRequest() interface{} { return nil }

type listingIDListResponse struct {
	IDs []string `json:"ids"`
}

func (lambda *listingIDListLambda) Run(
	request LambdaRequest) (*httpResponse, error) {
	ids, err := lambda.findListingIDs(false)
	if err != nil {
		return newHTTPResponseFromError(err)
	}
	return newHTTPResponse(http.StatusOK, listingIDListResponse{IDs: ids})
}

// findListingIDs pages through the whole upstream listing set and collects
// the IDs, optionally dropping listings flagged as inactive.
func (service *service) findListingIDs(activeOnly bool) ([]string, error) {
	query := url.Values{}
	query.Set("fields", "_id active")
	query.Set("limit", "100")

	ids := []string{}
	for skip := 0; ; skip += 100 {
		query.Set("skip", strconv.Itoa(skip))
		result, err := service.guesty.SearchListings(query)
		if err != nil {
			return nil, err
		}
		listings, _ := result.Array("results")
		for _, listing := range listings {
			object, ok := listing.(map[string]interface{})
			if !ok {
				continue
			}
			fields := londoners.JSON(object)
			if activeOnly {
				if active, ok := fields["active"].(bool); ok && !active {
					continue
				}
			}
			if id, ok := fields.Text("_id"); ok {
				ids = append(ids, id)
			}
		}
		if len(listings) < 100 {
			break
		}
	}
	return ids, nil
}

////////////////////////////////////////////////////////////////////////////////

// listingSummary is the short listing card other answers embed when they
// annotate local records with upstream listing details.
type listingSummary struct {
	ListingID string   `json:"listing_id"`
	Name      string   `json:"name"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Street    string   `json:"street,omitempty"`
	Bedrooms  float64  `json:"bedrooms"`
	Beds      float64  `json:"beds"`
	Baths     float64  `json:"baths"`
	Guests    float64  `json:"guests"`
	BasePrice float64  `json:"base_price"`
	Currency  string   `json:"currency,omitempty"`
	Images    []string `json:"images"`
}

func newListingSummary(
	listingID string, details londoners.JSON) *listingSummary {

	result := &listingSummary{ListingID: listingID, Images: []string{}}
	result.Name = details.TextChain("",
		[]interface{}{"title"},
		[]interface{}{"nickname"})
	result.City, _ = details.Text("address", "city")
	result.Country, _ = details.Text("address", "country")
	result.Street, _ = details.Text("address", "street")
	result.Bedrooms, _ = details.Number("bedrooms")
	result.Beds, _ = details.Number("beds")
	result.Baths, _ = details.Number("bathrooms")
	result.Guests, _ = details.Number("accommodates")
	result.BasePrice, _ = details.Number("prices", "basePrice")
	result.Currency, _ = details.Text("prices", "currency")

	pictures, _ := details.Array("pictures")
	for _, picture := range pictures {
		object, ok := picture.(map[string]interface{})
		if !ok {
			continue
		}
		url := londoners.JSON(object).TextChain("",
			[]interface{}{"thumbnail"},
			[]interface{}{"regular"},
			[]interface{}{"original"})
		if url != "" {
			result.Images = append(result.Images, url)
		}
	}
	return result
}

////////////////////////////////////////////////////////////////////////////////

// NewListingPhotosLambda creates lambda to get all photos of a property.
func (factory *lambdaFactory) NewListingPhotosLambda() lambdaImpl {
	return &listingPhotosLambda{}
}

type listingPhotosLambda struct{ service }

func (lambda *listingPhotosLambda) Init() error { return lambda.initService() }

func (lambda *listingPhotosLambda) Methods() []string { return methodsGet() }

func (lambda *listingPhotosLambda) CreateRequest() interface{} { return nil }

func (lambda *listingPhotosLambda) Run(
	request LambdaRequest) (*httpResponse, error) {
	propertyID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	result, callErr := lambda.guesty.GetListingPhotos(propertyID)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewListingVideosLambda creates lambda to list locally stored videos of a
// listing.
func (factory *lambdaFactory) NewListingVideosLambda() lambdaImpl {
	return &listingVideosLambda{}
}

type listingVideosLambda struct{ service }

func (lambda *listingVideosLambda) Init() error { return lambda.initService() }

func (lambda *listingVideosLambda) Methods() []string { return methodsGet() }

func (lambda *listingVideosLambda) CreateRequest() interface{} { return nil }

type listingVideoResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type listingVideosResponse struct {
	ListingID string                 `json:"listing_id"`
	Videos    []listingVideoResponse `json:"videos"`
}

func (lambda *listingVideosLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	listingID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()
	videos, txErr := tx.GetListingVideos(listingID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	result := listingVideosResponse{
		ListingID: listingID, Videos: []listingVideoResponse{}}
	for _, video := range videos {
		result.Videos = append(result.Videos, listingVideoResponse{
			ID:        video.ID,
			Title:     video.Title,
			URL:       video.URL,
			CreatedAt: video.CreatedAt})
	}
	return newHTTPResponse(http.StatusOK, result)
}
