package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/experience-booking/internal/service"
)

// respondError maps the service error taxonomy to a status code and a
// {"error": ...} body.  Anything outside the taxonomy is a 500 and is
// logged; its message is not sent to the client.
func respondError(c echo.Context, log logrus.FieldLogger, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  service.ErrValidation.Error(),
			"fields": verr.Fields,
		})
	}

	var cerr *service.CapacityError
	if errors.As(err, &cerr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      service.ErrInsufficientCapacity.Error(),
			"requested":  cerr.Requested,
			"spots_left": cerr.Available,
		})
	}

	if errors.Is(err, service.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}

	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
