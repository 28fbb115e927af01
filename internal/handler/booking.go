package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/experience-booking/internal/queue"
	"github.com/iliyamo/experience-booking/internal/service"
)

// publishTimeout bounds the post-commit event publish.
const publishTimeout = 3 * time.Second

// BookingHandler creates and looks up bookings.
type BookingHandler struct {
	Reservations *service.ReservationService
	Catalog      *service.CatalogService
	Events       service.EventPublisher
	Log          logrus.FieldLogger
}

// NewBookingHandler constructs a BookingHandler.  A nil publisher disables
// booking events.
func NewBookingHandler(reservations *service.ReservationService, catalog *service.CatalogService, events service.EventPublisher, log logrus.FieldLogger) *BookingHandler {
	if reservations == nil || catalog == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if events == nil {
		events = service.NoopPublisher{}
	}
	return &BookingHandler{Reservations: reservations, Catalog: catalog, Events: events, Log: log}
}

// CreateBooking handles POST /api/bookings.  On success it answers 201 with
// the booking id and then publishes booking.confirmed.  A publish failure
// is logged and does not change the response.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req service.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Reservations.Reserve(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.Log, err)
	}

	// The booking is committed; a client disconnect must not cancel the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := h.Events.PublishBookingConfirmed(ctx, queue.NewBookingConfirmedEvent(b)); err != nil {
		h.Log.WithError(err).WithField("booking_id", b.ID).Warn("booking.confirmed not published")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"bookingId": b.ID,
		"message":   "Booked successfully",
	})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	b, err := h.Catalog.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}
