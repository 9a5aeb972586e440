package londoners

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// RatingSet describes the six per-category ratings of one review, each on a
// 1 to 5 scale.
type RatingSet struct {
	Cleanliness   float64 `json:"cleanliness"`
	Accuracy      float64 `json:"accuracy"`
	CheckIn       float64 `json:"check_in"`
	Communication float64 `json:"communication"`
	Location      float64 `json:"location"`
	Value         float64 `json:"value"`
}

func (ratings *RatingSet) values() []float64 {
	return []float64{
		ratings.Cleanliness, ratings.Accuracy, ratings.CheckIn,
		ratings.Communication, ratings.Location, ratings.Value}
}

// Check validates that every category rating is inside the 1 to 5 scale.
func (ratings *RatingSet) Check() error {
	for _, value := range ratings.values() {
		if math.IsNaN(value) || math.IsInf(value, 0) ||
			value < 1 || value > 5 {
			return fmt.Errorf(`rating has invalid value "%v"`, value)
		}
	}
	return nil
}

// Overall returns the mean of the six category ratings rounded to one
// decimal place.
func (ratings *RatingSet) Overall() float64 {
	var total float64
	for _, value := range ratings.values() {
		total += value
	}
	return math.Round(total/6*10) / 10
}

// Review describes one guest review of one listing with its rating child
// record.
type Review struct {
	ID        int64
	ListingID string
	GuestID   string
	Text      string
	Overall   float64
	Ratings   RatingSet
	CreatedAt time.Time
}

// NewReview creates new review with the overall rating derived from the
// category ratings.
func NewReview(
	listingID, guestID, text string, ratings RatingSet) (*Review, error) {
	if err := ratings.Check(); err != nil {
		return nil, err
	}
	return &Review{
		ListingID: listingID,
		GuestID:   guestID,
		Text:      text,
		Overall:   ratings.Overall(),
		Ratings:   ratings,
		CreatedAt: time.Now().UTC()}, nil
}

// ReviewSortOrder is a listing-review sort order enumeration.
type ReviewSortOrder string

const (
	// ReviewSortNewest sorts reviews by creation time, newest first.
	ReviewSortNewest ReviewSortOrder = "newest"
	// ReviewSortOldest sorts reviews by creation time, oldest first.
	ReviewSortOldest ReviewSortOrder = "oldest"
	// ReviewSortRatingHigh sorts reviews by overall rating, highest first.
	ReviewSortRatingHigh ReviewSortOrder = "rating_high"
	// ReviewSortRatingLow sorts reviews by overall rating, lowest first.
	ReviewSortRatingLow ReviewSortOrder = "rating_low"
)

// ParseReviewSortOrder parses a sort order in string, empty defaults to
// newest-first.
func ParseReviewSortOrder(source string) (ReviewSortOrder, error) {
	switch ReviewSortOrder(source) {
	case "":
		return ReviewSortNewest, nil
	case ReviewSortNewest, ReviewSortOldest,
		ReviewSortRatingHigh, ReviewSortRatingLow:
		return ReviewSortOrder(source), nil
	}
	return "", fmt.Errorf(`failed to parse review sort order from value "%s"`,
		source)
}

// SortReviews sorts reviews in place by the given order.
func SortReviews(reviews []*Review, order ReviewSortOrder) {
	sort.SliceStable(reviews, func(i, j int) bool {
		switch order {
		case ReviewSortOldest:
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		case ReviewSortRatingHigh:
			return reviews[i].Overall > reviews[j].Overall
		case ReviewSortRatingLow:
			return reviews[i].Overall < reviews[j].Overall
		default:
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
	})
}

// ReviewStatistics describes aggregated review numbers of one listing.
type ReviewStatistics struct {
	TotalReviews       int            `json:"total_reviews"`
	OverallAverage     float64        `json:"overall_average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	CategoryAverages   RatingSet      `json:"category_averages"`
}

// NewReviewStatistics aggregates statistics over the listing reviews.
func NewReviewStatistics(reviews []*Review) *ReviewStatistics {
	result := &ReviewStatistics{
		RatingDistribution: map[string]int{
			"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}}
	result.TotalReviews = len(reviews)
	if len(reviews) == 0 {
		return result
	}

	var overall float64
	var categories RatingSet
	for _, review := range reviews {
		overall += review.Overall
		rounded := int(math.Round(review.Overall))
		if rounded >= 1 && rounded <= 5 {
			result.RatingDistribution[fmt.Sprintf("%d", rounded)]++
		}
		categories.Cleanliness += review.Ratings.Cleanliness
		categories.Accuracy += review.Ratings.Accuracy
		categories.CheckIn += review.Ratings.CheckIn
		categories.Communication += review.Ratings.Communication
		categories.Location += review.Ratings.Location
		categories.Value += review.Ratings.Value
	}

	count := float64(len(reviews))
	round1 := func(value float64) float64 {
		return math.Round(value/count*10) / 10
	}
	result.OverallAverage = round1(overall)
	result.CategoryAverages = RatingSet{
		Cleanliness:   round1(categories.Cleanliness),
		Accuracy:      round1(categories.Accuracy),
		CheckIn:       round1(categories.CheckIn),
		Communication: round1(categories.Communication),
		Location:      round1(categories.Location),
		Value:         round1(categories.Value)}
	return result
}
