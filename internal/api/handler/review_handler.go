package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/rental-system/internal/core/ports"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviews ports.ReviewService
}

func NewReviewHandler(reviews ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Rating int    `json:"rating"  validate:"required,min=1,max=5"`
	Text   string `json:"text"`
}

type updateReviewRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text   *string `json:"text"`
}

// Create handles POST /api/reviews.
//
// @Summary      Review an item
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReviewRequest  true  "Review"
// @Success      201   {object}  domain.Review
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	review, err := h.reviews.Create(c.Request().Context(), userID, ports.CreateReviewInput{
		ItemID: req.ItemID,
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

// ListForItem handles GET /api/reviews/item/:itemId. Public.
//
// @Summary      List an item's reviews
// @Tags         reviews
// @Produce      json
// @Param        itemId  path  string  true  "Item id"
// @Success      200  {array}  ports.ReviewView
// @Router       /reviews/item/{itemId} [get]
func (h *ReviewHandler) ListForItem(c echo.Context) error {
	views, err := h.reviews.ListForItem(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// ListForUser handles GET /api/reviews/user/:userId. Public.
//
// @Summary      List a user's reviews
// @Tags         reviews
// @Produce      json
// @Param        userId  path  string  true  "User id"
// @Success      200  {array}  ports.ReviewView
// @Router       /reviews/user/{userId} [get]
func (h *ReviewHandler) ListForUser(c echo.Context) error {
	views, err := h.reviews.ListForUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Update handles PUT /api/reviews/:id (author only).
//
// @Summary      Update own review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Review id"
// @Param        body  body      updateReviewRequest  true  "Fields to change"
// @Success      200   {object}  domain.Review
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	review, err := h.reviews.Update(c.Request().Context(), c.Param("id"), userID, ports.UpdateReviewInput{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Delete handles DELETE /api/reviews/:id (author only).
//
// @Summary      Delete own review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Review id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.reviews.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "review deleted"})
}
