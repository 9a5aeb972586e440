package api

import (
	"net/http"
	"strconv"

	"github.com/londoners/londoners-aws/londoners"
)

// NewNearbyListingsLambda creates lambda to list listings within a radius
// of the given listing, ascending by distance.
func (factory *lambdaFactory) NewNearbyListingsLambda() lambdaImpl {
	return &nearbyListingsLambda{}
}

type nearbyListingsLambda struct{ service }

func (lambda *nearbyListingsLambda) Init() error {
	return lambda.initService()
}

func (lambda *nearbyListingsLambda) Methods() []string { return methodsGet() }

func (lambda *nearbyListingsLambda) CreateRequest() interface{} { return nil }

type nearbyListingResponse struct {
	ListingID     string          `json:"listing_id"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	DistanceKM    float64         `json:"distance_km"`
	Details       *listingSummary `json:"details,omitempty"`
	OverallRating *float64        `json:"overall_average_rating,omitempty"`
}

type nearbyListingsResponse struct {
	ListingID string                  `json:"listing_id"`
	RadiusKM  float64                 `json:"radius_km"`
	Count     int                     `json:"count"`
	Target    *nearbyListingResponse  `json:"target_listing"`
	Listings  []nearbyListingResponse `json:"listings"`
}

func (lambda *nearbyListingsLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	listingID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}

	radius := londoners.NearbyListingRadiusKM
	if arg, has := request.GetQueryArgs()["radius"]; has && arg != "" {
		parsed, parseErr := strconv.ParseFloat(arg, 64)
		if parseErr != nil || parsed <= 0 {
			return newHTTPResponseBadParam(
				"Query argument \"radius\" is not a positive number",
				`failed to parse radius "%s": "%v"`, arg, parseErr)
		}
		radius = parsed
	}

	tx, txErr := lambda.db.Begin()
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	defer tx.Rollback()

	origin, txErr := tx.FindListingCoords(listingID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if origin == nil {
		return newHTTPResponseNotFound("Listing coordinates are unknown")
	}
	candidates, txErr := tx.GetListingCoords(listingID)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}

	result := nearbyListingsResponse{
		ListingID: listingID,
		RadiusKM:  radius,
		Target: &nearbyListingResponse{
			ListingID: listingID,
			Latitude:  origin.Latitude,
			Longitude: origin.Longitude},
		Listings: []nearbyListingResponse{}}
	lambda.describe(tx, result.Target)
	for _, nearby := range londoners.Nearby(
		origin.Latitude, origin.Longitude, candidates, radius) {
		item := nearbyListingResponse{
			ListingID:  nearby.ListingID,
			Latitude:   nearby.Latitude,
			Longitude:  nearby.Longitude,
			DistanceKM: nearby.DistanceKM}
		lambda.describe(tx, &item)
		result.Listings = append(result.Listings, item)
	}
	result.Count = len(result.Listings)
	return newHTTPResponse(http.StatusOK, result)
}

// describe annotates a match with the upstream listing details and the
// locally aggregated review rating. A failed upstream fetch leaves the
// coordinates and distance in the answer instead of failing it.
func (lambda *nearbyListingsLambda) describe(
	tx londoners.DBTrans, item *nearbyListingResponse) {

	details, callErr := lambda.guesty.GetListing(item.ListingID)
	if callErr != nil {
		londoners.Log.Error(
			`Failed to get nearby listing "%s" details: "%v".`,
			item.ListingID, callErr)
	} else {
		item.Details = newListingSummary(item.ListingID, details)
	}

	reviews, txErr := tx.GetListingReviews(item.ListingID)
	if txErr != nil {
		londoners.Log.Error(
			`Failed to get listing "%s" reviews: "%v".`,
			item.ListingID, txErr)
		return
	}
	statistics := londoners.NewReviewStatistics(reviews)
	if statistics.TotalReviews > 0 {
		rating := statistics.OverallAverage
		item.OverallRating = &rating
	}
}
