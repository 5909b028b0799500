package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// CollectionHandler serves user-owned movie collections. Every route must be
// mounted behind middleware.Auth; the owner is the authenticated user.
type CollectionHandler struct{}

func NewCollectionHandler() *CollectionHandler {
	return &CollectionHandler{}
}

type collectionIDParam struct {
	CollectionID int64 `param:"collection_id"`
}

type createCollectionRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=200"`
	Description *string `json:"description"`
}

type updateCollectionRequest struct {
	CollectionID int64   `param:"collection_id" json:"-"`
	Name         *string `json:"name"        validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description"`
}

type addMovieRequest struct {
	CollectionID int64 `param:"collection_id" json:"-"`
	MovieID      int64 `json:"movie_id"        validate:"required"`
}

type collectionMovieParam struct {
	CollectionID int64 `param:"collection_id"`
	MovieID      int64 `param:"movie_id"`
}

type collectionSummary struct {
	CollectionID int64     `json:"collection_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	MovieCount   int       `json:"movie_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type collectionDetail struct {
	CollectionID int64            `json:"collection_id"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	Movies       []map[string]any `json:"movies"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at"`
}

// List returns the caller's collections.
//
// @Summary   List collections
// @Tags      collections
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   collectionSummary
// @Failure   401  {object}  errorResponse
// @Failure   501  {object}  errorResponse
// @Router    /api/collections [get]
func (h *CollectionHandler) List(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Create adds a collection owned by the caller.
//
// @Summary   Create collection
// @Tags      collections
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      createCollectionRequest  true  "Collection"
// @Success   201   {object}  collectionSummary
// @Failure   401   {object}  errorResponse
// @Failure   422   {object}  errorResponse
// @Failure   501   {object}  errorResponse
// @Router    /api/collections [post]
func (h *CollectionHandler) Create(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var req createCollectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Get returns one collection with its movies.
//
// @Summary   Collection detail
// @Tags      collections
// @Produce   json
// @Security  BearerAuth
// @Param     collection_id  path      int  true  "Collection ID"
// @Success   200            {object}  collectionDetail
// @Failure   401            {object}  errorResponse
// @Failure   501            {object}  errorResponse
// @Router    /api/collections/{collection_id} [get]
func (h *CollectionHandler) Get(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var p collectionIDParam
	if err := bind(c, &p); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Update renames a collection or changes its description.
//
// @Summary   Update collection
// @Tags      collections
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     collection_id  path      int                      true  "Collection ID"
// @Param     body           body      updateCollectionRequest  true  "Changes"
// @Success   200            {object}  collectionSummary
// @Failure   401            {object}  errorResponse
// @Failure   422            {object}  errorResponse
// @Failure   501            {object}  errorResponse
// @Router    /api/collections/{collection_id} [put]
func (h *CollectionHandler) Update(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var req updateCollectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// Delete removes a collection.
//
// @Summary   Delete collection
// @Tags      collections
// @Security  BearerAuth
// @Param     collection_id  path  int  true  "Collection ID"
// @Success   204
// @Failure   401  {object}  errorResponse
// @Failure   501  {object}  errorResponse
// @Router    /api/collections/{collection_id} [delete]
func (h *CollectionHandler) Delete(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var p collectionIDParam
	if err := bind(c, &p); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// AddMovie puts a movie into a collection.
//
// @Summary   Add movie to collection
// @Tags      collections
// @Accept    json
// @Security  BearerAuth
// @Param     collection_id  path      int              true  "Collection ID"
// @Param     body           body      addMovieRequest  true  "Movie"
// @Success   201
// @Failure   401            {object}  errorResponse
// @Failure   422            {object}  errorResponse
// @Failure   501            {object}  errorResponse
// @Router    /api/collections/{collection_id}/movies [post]
func (h *CollectionHandler) AddMovie(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var req addMovieRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}

// RemoveMovie takes a movie out of a collection.
//
// @Summary   Remove movie from collection
// @Tags      collections
// @Security  BearerAuth
// @Param     collection_id  path  int  true  "Collection ID"
// @Param     movie_id       path  int  true  "Movie ID"
// @Success   204
// @Failure   401  {object}  errorResponse
// @Failure   501  {object}  errorResponse
// @Router    /api/collections/{collection_id}/movies/{movie_id} [delete]
func (h *CollectionHandler) RemoveMovie(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var p collectionMovieParam
	if err := bind(c, &p); err != nil {
		return err
	}
	return domain.ErrNotImplemented
}
