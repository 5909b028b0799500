package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// PersonalityHandler serves Big Five trait analytics.
type PersonalityHandler struct{}

func NewPersonalityHandler() *PersonalityHandler {
	return &PersonalityHandler{}
}

type genreCorrelationQuery struct {
	Trait string `query:"trait"`
	Genre string `query:"genre"`
}

type segmentsQuery struct {
	NSegments int `query:"n_segments" validate:"min=2,max=20"`
}

type traitStats struct {
	Trait  string  `json:"trait"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

type traitGenreCorrelation struct {
	Trait       string  `json:"trait"`
	Genre       string  `json:"genre"`
	Correlation float64 `json:"correlation"`
	PValue      float64 `json:"p_value"`
	SampleSize  int     `json:"sample_size"`
}

type userSegment struct {
	SegmentID       int                `json:"segment_id"`
	Label           string             `json:"label"`
	Size            int                `json:"size"`
	DominantTraits  map[string]float64 `json:"dominant_traits"`
	PreferredGenres []string           `json:"preferred_genres"`
}

// Traits returns summary statistics per trait.
//
// @Summary  Personality traits
// @Tags     personality
// @Produce  json
// @Success  200  {array}   traitStats
// @Failure  501  {object}  errorResponse
// @Router   /api/personality/traits [get]
func (h *PersonalityHandler) Traits(c echo.Context) error {
	return domain.ErrNotImplemented
}

// GenreCorrelation correlates traits with genre preferences, optionally
// narrowed to one trait or genre.
//
// @Summary  Trait and genre correlation
// @Tags     personality
// @Produce  json
// @Param    trait  query     string  false  "Trait"
// @Param    genre  query     string  false  "Genre"
// @Success  200    {array}   traitGenreCorrelation
// @Failure  501    {object}  errorResponse
// @Router   /api/personality/genre-correlation [get]
func (h *PersonalityHandler) GenreCorrelation(c echo.Context) error {
	var q genreCorrelationQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Segments clusters users by personality and rating behaviour.
//
// @Summary  User segments
// @Tags     personality
// @Produce  json
// @Param    n_segments  query     int  false  "Number of segments"  default(5) minimum(2) maximum(20)
// @Success  200         {array}   userSegment
// @Failure  422         {object}  errorResponse
// @Failure  501         {object}  errorResponse
// @Router   /api/personality/segments [get]
func (h *PersonalityHandler) Segments(c echo.Context) error {
	q := segmentsQuery{NSegments: 5}
	if err := bind(c, &q); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}
