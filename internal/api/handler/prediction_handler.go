package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

type PredictionHandler struct{}

func NewPredictionHandler() *PredictionHandler {
	return &PredictionHandler{}
}

type predictionRequest struct {
	Title  string   `json:"title"  validate:"required"  example:"Heat"`
	Genres []string `json:"genres" validate:"required"`
	Year   *int     `json:"year"`
}

type predictionResponse struct {
	PredictedRating float64  `json:"predicted_rating"`
	Confidence      float64  `json:"confidence"`
	SimilarTitles   []string `json:"similar_titles"`
}

type similarMoviesRequest struct {
	MovieID int64 `param:"movie_id"`
	Limit   int   `query:"limit" validate:"min=1,max=100"`
}

type similarMovie struct {
	MovieID         int64    `json:"movie_id"`
	Title           string   `json:"title"`
	SimilarityScore float64  `json:"similarity_score"`
	Genres          []string `json:"genres"`
	AvgRating       *float64 `json:"avg_rating"`
}

// Predict estimates the rating of a hypothetical title from its genres and
// metadata.
//
// @Summary  Predict rating
// @Tags     predictions
// @Accept   json
// @Produce  json
// @Param    body  body      predictionRequest  true  "Title description"
// @Success  200   {object}  predictionResponse
// @Failure  400   {object}  errorResponse
// @Failure  422   {object}  errorResponse
// @Failure  501   {object}  errorResponse
// @Router   /api/predictions/predict [post]
func (h *PredictionHandler) Predict(c echo.Context) error {
	var req predictionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Similar finds movies similar to movie_id by ratings and genre overlap.
//
// @Summary  Similar movies
// @Tags     predictions
// @Produce  json
// @Param    movie_id  path      int  true   "Movie ID"
// @Param    limit     query     int  false  "Maximum results"  default(10) minimum(1) maximum(100)
// @Success  200       {array}   similarMovie
// @Failure  422       {object}  errorResponse
// @Failure  501       {object}  errorResponse
// @Router   /api/predictions/similar/{movie_id} [get]
func (h *PredictionHandler) Similar(c echo.Context) error {
	req := similarMoviesRequest{Limit: 10}
	if err := bind(c, &req); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}
