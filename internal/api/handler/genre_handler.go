package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

type GenreHandler struct{}

func NewGenreHandler() *GenreHandler {
	return &GenreHandler{}
}

type genreCount struct {
	Genre      string   `json:"genre"`
	MovieCount int      `json:"movie_count"`
	AvgRating  *float64 `json:"avg_rating"`
}

type genrePopularity struct {
	Genre        string  `json:"genre"`
	TotalRatings int     `json:"total_ratings"`
	AvgRating    float64 `json:"avg_rating"`
	UniqueUsers  int     `json:"unique_users"`
}

// A high standard deviation marks a polarising genre.
type genrePolarisation struct {
	Genre             string  `json:"genre"`
	AvgRating         float64 `json:"avg_rating"`
	StdDev            float64 `json:"std_dev"`
	PolarisationScore float64 `json:"polarisation_score"`
}

// List returns every genre with its movie count.
//
// @Summary  List genres
// @Tags     genres
// @Produce  json
// @Success  200  {array}   genreCount
// @Failure  501  {object}  errorResponse
// @Router   /api/genres [get]
func (h *GenreHandler) List(c echo.Context) error {
	return domain.ErrNotImplemented
}

// Popularity returns rating volume and reach per genre.
//
// @Summary  Genre popularity
// @Tags     genres
// @Produce  json
// @Success  200  {array}   genrePopularity
// @Failure  501  {object}  errorResponse
// @Router   /api/genres/popularity [get]
func (h *GenreHandler) Popularity(c echo.Context) error {
	return domain.ErrNotImplemented
}

// Polarisation returns the rating spread per genre.
//
// @Summary  Genre polarisation
// @Tags     genres
// @Produce  json
// @Success  200  {array}   genrePolarisation
// @Failure  501  {object}  errorResponse
// @Router   /api/genres/polarisation [get]
func (h *GenreHandler) Polarisation(c echo.Context) error {
	return domain.ErrNotImplemented
}
