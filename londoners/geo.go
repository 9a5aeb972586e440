package londoners

import (
	"math"
	"sort"
)

// earthRadiusKM is the mean Earth radius.
const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// ListingCoords describes stored coordinates of one listing.
type ListingCoords struct {
	ListingID string
	Latitude  float64
	Longitude float64
}

// NearbyListing is a candidate listing annotated with its distance from the
// reference coordinate, rounded to two decimal places.
type NearbyListing struct {
	ListingID  string
	Latitude   float64
	Longitude  float64
	DistanceKM float64
}

// Nearby returns the candidates within radiusKM of the reference
// coordinate, ascending by distance.
func Nearby(
	lat, lng float64,
	candidates []*ListingCoords,
	radiusKM float64) []*NearbyListing {
	result := []*NearbyListing{}
	for _, candidate := range candidates {
		distance := math.Round(
			Haversine(lat, lng, candidate.Latitude, candidate.Longitude)*
				100) / 100
		if distance > radiusKM {
			continue
		}
		result = append(result, &NearbyListing{
			ListingID:  candidate.ListingID,
			Latitude:   candidate.Latitude,
			Longitude:  candidate.Longitude,
			DistanceKM: distance})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DistanceKM < result[j].DistanceKM
	})
	return result
}
