package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/experience-booking/internal/handler"
)

// RegisterRoutes registers the routes that sit outside /api.  At the moment
// that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the read-only experience endpoints.  cache is
// applied to the catalog list only; availability changes with every
// booking and is always read from the store.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/experiences")
	g.GET("", h.ListExperiences, cache)
	g.GET("/:id", h.GetExperience)
}

// RegisterBookings registers the booking endpoints.  limit is applied to
// booking creation only.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api/bookings")
	g.POST("", h.CreateBooking, limit)
	g.GET("/:id", h.GetBooking)
}
