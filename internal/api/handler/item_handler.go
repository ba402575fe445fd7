package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

// ItemHandler handles HTTP requests for the item catalog.
type ItemHandler struct {
	items    ports.ItemService
	bookings ports.BookingService
}

func NewItemHandler(items ports.ItemService, bookings ports.BookingService) *ItemHandler {
	return &ItemHandler{items: items, bookings: bookings}
}

// List handles GET /api/items. Reads are public.
//
// @Summary      List items
// @Tags         items
// @Produce      json
// @Param        category  query  string  false  "Exact category match"
// @Param        search    query  string  false  "Partial title match"
// @Param        minPrice  query  number  false  "Minimum daily rate"
// @Param        maxPrice  query  number  false  "Maximum daily rate"
// @Success      200  {array}  domain.Item
// @Router       /items [get]
func (h *ItemHandler) List(c echo.Context) error {
	filter := ports.ListItemsFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	if raw := c.QueryParam("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "minPrice must be a number")
		}
		filter.MinPrice = &v
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "maxPrice must be a number")
		}
		filter.MaxPrice = &v
	}

	items, err := h.items.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/items/:id.
//
// @Summary      Get an item with its owner expanded
// @Tags         items
// @Produce      json
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  ports.ItemDetail
// @Failure      404  {object}  map[string]string
// @Router       /items/{id} [get]
func (h *ItemHandler) Get(c echo.Context) error {
	detail, err := h.items.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

// Create handles POST /api/items (vendor role).
//
// @Summary      List a new item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createItemRequest  true  "Item details"
// @Success      201   {object}  domain.Item
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /items [post]
func (h *ItemHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	item, err := h.items.Create(c.Request().Context(), userID, ports.CreateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Images:        req.Images,
		DailyRate:     req.DailyRate,
		DepositAmount: req.DepositAmount,
		Condition:     domain.ItemCondition(req.Condition),
		Location:      req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update handles PUT /api/items/:id (vendor role, owner only).
//
// @Summary      Update an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Item id"
// @Param        body  body      updateItemRequest  true  "Fields to change"
// @Success      200   {object}  domain.Item
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /items/{id} [put]
func (h *ItemHandler) Update(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var condition *domain.ItemCondition
	if req.Condition != nil {
		cond := domain.ItemCondition(*req.Condition)
		condition = &cond
	}

	item, err := h.items.Update(c.Request().Context(), c.Param("id"), userID, role, ports.UpdateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Images:        req.Images,
		DailyRate:     req.DailyRate,
		DepositAmount: req.DepositAmount,
		Condition:     condition,
		Location:      req.Location,
		Available:     req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /api/items/:id (vendor role, owner only).
//
// @Summary      Delete an item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /items/{id} [delete]
func (h *ItemHandler) Delete(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.items.Delete(c.Request().Context(), c.Param("id"), userID, role); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "item deleted"})
}

// Availability handles GET /api/items/:id/availability.
//
// @Summary      Check a date range against existing bookings
// @Tags         items
// @Produce      json
// @Param        id         path   string  true  "Item id"
// @Param        startDate  query  string  true  "RFC 3339 or YYYY-MM-DD start"
// @Param        endDate    query  string  true  "RFC 3339 or YYYY-MM-DD end (exclusive)"
// @Success      200  {object}  ports.Availability
// @Failure      404  {object}  map[string]string
// @Router       /items/{id}/availability [get]
func (h *ItemHandler) Availability(c echo.Context) error {
	start, err := parseDate(c.QueryParam("startDate"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "startDate must be a valid date")
	}
	end, err := parseDate(c.QueryParam("endDate"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "endDate must be a valid date")
	}

	availability, err := h.bookings.CheckAvailability(c.Request().Context(), c.Param("id"), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availability)
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
