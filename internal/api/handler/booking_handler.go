package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookings ports.BookingService
}

func NewBookingHandler(bookings ports.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /api/bookings: conflict check, payment capture, persist.
//
// @Summary      Book an item for a date range
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookingRequest  true  "Booking request"
// @Success      201   {object}  ports.BookingView
// @Failure      402   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be a valid date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must be a valid date")
	}

	view, err := h.bookings.Create(c.Request().Context(), ports.CreateBookingInput{
		ItemID:          req.ItemID,
		RenterID:        userID,
		StartDate:       start,
		EndDate:         end,
		PaymentMethodID: req.PaymentMethodID,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// List handles GET /api/bookings: the caller's bookings, newest first.
//
// @Summary      List own bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.BookingView
// @Router       /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.bookings.ListForRenter(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Get handles GET /api/bookings/:id.
//
// @Summary      Get one booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  ports.BookingView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.bookings.Get(c.Request().Context(), c.Param("id"), userID, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Update handles PUT /api/bookings/:id: a lifecycle transition request.
//
// @Summary      Transition a booking's status
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Booking id"
// @Param        body  body      updateBookingRequest  true  "Target status"
// @Success      200   {object}  domain.Booking
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /bookings/{id} [put]
func (h *BookingHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	booking, err := h.bookings.Transition(c.Request().Context(), c.Param("id"), userID, domain.BookingStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

// Cancel handles DELETE /api/bookings/:id. The record survives as an audit
// trail in the cancelled state; paid bookings are refunded first.
//
// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  domain.Booking
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.Cancel(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}
