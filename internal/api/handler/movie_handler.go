package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// MovieHandler serves the movie catalogue. Queries against the MovieLens
// schema are not implemented yet; requests are validated and answered 501.
type MovieHandler struct{}

func NewMovieHandler() *MovieHandler {
	return &MovieHandler{}
}

type listMoviesQuery struct {
	Page      int      `query:"page"       validate:"min=1"`
	PageSize  int      `query:"page_size"  validate:"min=1,max=100"`
	Title     string   `query:"title"`
	Genre     string   `query:"genre"`
	Year      *int     `query:"year"`
	MinRating *float64 `query:"min_rating" validate:"omitempty,min=0,max=5"`
	Sort      string   `query:"sort"       validate:"oneof=title rating year num_ratings"`
}

type movieIDParam struct {
	MovieID int64 `param:"movie_id"`
}

type movieSummary struct {
	MovieID    int64    `json:"movie_id"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres"`
	AvgRating  *float64 `json:"avg_rating"`
	NumRatings int      `json:"num_ratings"`
}

type movieListResponse struct {
	Movies   []movieSummary `json:"movies"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type movieDetailResponse struct {
	movieSummary
	Year *int     `json:"year"`
	Tags []string `json:"tags"`
}

type ratingDistributionResponse struct {
	MovieID      int64          `json:"movie_id"`
	Title        string         `json:"title"`
	Distribution map[string]int `json:"distribution"`
	AvgRating    float64        `json:"avg_rating"`
	NumRatings   int            `json:"num_ratings"`
}

// List returns a page of movies.
//
// @Summary      List movies
// @Tags         movies
// @Produce      json
// @Param        page        query     int     false  "Page number"       default(1)  minimum(1)
// @Param        page_size   query     int     false  "Page size"         default(20) minimum(1) maximum(100)
// @Param        title       query     string  false  "Title substring"
// @Param        genre       query     string  false  "Genre"
// @Param        year        query     int     false  "Release year"
// @Param        min_rating  query     number  false  "Minimum average rating" minimum(0) maximum(5)
// @Param        sort        query     string  false  "Sort key" Enums(title, rating, year, num_ratings) default(title)
// @Success      200         {object}  movieListResponse
// @Failure      422         {object}  errorResponse
// @Failure      501         {object}  errorResponse
// @Router       /api/movies [get]
func (h *MovieHandler) List(c echo.Context) error {
	q := listMoviesQuery{Page: 1, PageSize: 20, Sort: "title"}
	if err := bind(c, &q); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Get returns one movie with its tags.
//
// @Summary      Movie detail
// @Tags         movies
// @Produce      json
// @Param        movie_id  path      int  true  "Movie ID"
// @Success      200       {object}  movieDetailResponse
// @Failure      501       {object}  errorResponse
// @Router       /api/movies/{movie_id} [get]
func (h *MovieHandler) Get(c echo.Context) error {
	var p movieIDParam
	if err := bind(c, &p); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Ratings returns the rating distribution of one movie.
//
// @Summary      Movie rating distribution
// @Tags         movies
// @Produce      json
// @Param        movie_id  path      int  true  "Movie ID"
// @Success      200       {object}  ratingDistributionResponse
// @Failure      501       {object}  errorResponse
// @Router       /api/movies/{movie_id}/ratings [get]
func (h *MovieHandler) Ratings(c echo.Context) error {
	var p movieIDParam
	if err := bind(c, &p); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}
