package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

type RatingHandler struct{}

func NewRatingHandler() *RatingHandler {
	return &RatingHandler{}
}

type ratingPatternsQuery struct {
	Limit      int `query:"limit"       validate:"min=1,max=500"`
	MinRatings int `query:"min_ratings" validate:"min=1"`
}

type crossGenreQuery struct {
	MinSharedUsers int `query:"min_shared_users" validate:"min=1"`
}

type lowRatersQuery struct {
	Threshold float64 `query:"threshold" validate:"min=0,max=5"`
	Limit     int     `query:"limit"     validate:"min=1,max=500"`
}

type ratingPattern struct {
	UserID       int64   `json:"user_id"`
	TotalRatings int     `json:"total_ratings"`
	AvgRating    float64 `json:"avg_rating"`
	StdDev       float64 `json:"std_dev"`
	GenresRated  int     `json:"genres_rated"`
}

type crossGenrePreference struct {
	GenreA      string  `json:"genre_a"`
	GenreB      string  `json:"genre_b"`
	Correlation float64 `json:"correlation"`
	SharedUsers int     `json:"shared_users"`
}

type lowRater struct {
	UserID       int64   `json:"user_id"`
	AvgRating    float64 `json:"avg_rating"`
	TotalRatings int     `json:"total_ratings"`
	PctBelowAvg  float64 `json:"pct_below_avg"`
}

type ratingConsistency struct {
	Genre              string  `json:"genre"`
	AvgStdDev          float64 `json:"avg_std_dev"`
	MostConsistentPct  float64 `json:"most_consistent_pct"`
	LeastConsistentPct float64 `json:"least_consistent_pct"`
}

// Patterns returns per-user rating behaviour.
//
// @Summary  Rating patterns
// @Tags     ratings
// @Produce  json
// @Param    limit        query     int  false  "Maximum users"         default(50) minimum(1) maximum(500)
// @Param    min_ratings  query     int  false  "Minimum ratings/user"  default(10) minimum(1)
// @Success  200          {array}   ratingPattern
// @Failure  422          {object}  errorResponse
// @Failure  501          {object}  errorResponse
// @Router   /api/ratings/patterns [get]
func (h *RatingHandler) Patterns(c echo.Context) error {
	q := ratingPatternsQuery{Limit: 50, MinRatings: 10}
	if err := bind(c, &q); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// CrossGenre returns correlations between genre preferences.
//
// @Summary  Cross-genre preferences
// @Tags     ratings
// @Produce  json
// @Param    min_shared_users  query     int  false  "Minimum shared users"  default(10) minimum(1)
// @Success  200               {array}   crossGenrePreference
// @Failure  422               {object}  errorResponse
// @Failure  501               {object}  errorResponse
// @Router   /api/ratings/cross-genre [get]
func (h *RatingHandler) CrossGenre(c echo.Context) error {
	q := crossGenreQuery{MinSharedUsers: 10}
	if err := bind(c, &q); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// LowRaters returns users who consistently rate below threshold.
//
// @Summary  Low raters
// @Tags     ratings
// @Produce  json
// @Param    threshold  query     number  false  "Rating threshold"  default(2.5) minimum(0) maximum(5)
// @Param    limit      query     int     false  "Maximum users"     default(50)  minimum(1) maximum(500)
// @Success  200        {array}   lowRater
// @Failure  422        {object}  errorResponse
// @Failure  501        {object}  errorResponse
// @Router   /api/ratings/low-raters [get]
func (h *RatingHandler) LowRaters(c echo.Context) error {
	q := lowRatersQuery{Threshold: 2.5, Limit: 50}
	if err := bind(c, &q); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Consistency returns rating consistency per genre.
//
// @Summary  Rating consistency
// @Tags     ratings
// @Produce  json
// @Success  200  {array}   ratingConsistency
// @Failure  501  {object}  errorResponse
// @Router   /api/ratings/consistency [get]
func (h *RatingHandler) Consistency(c echo.Context) error {
	return domain.ErrNotImplemented
}
