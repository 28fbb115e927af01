package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/experience-booking/internal/model"
	"github.com/iliyamo/experience-booking/internal/service"
)

// CatalogHandler serves the read-only experience endpoints.
type CatalogHandler struct {
	Catalog *service.CatalogService
	Log     logrus.FieldLogger
	now     func() time.Time
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, log logrus.FieldLogger) *CatalogHandler {
	if catalog == nil {
		panic("nil catalog passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog, Log: log, now: time.Now}
}

// ListExperiences handles GET /api/experiences.
func (h *CatalogHandler) ListExperiences(c echo.Context) error {
	list, err := h.Catalog.ListExperiences(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if list == nil {
		list = []model.Experience{}
	}
	return c.JSON(http.StatusOK, list)
}

// GetExperience handles GET /api/experiences/:id?date=YYYY-MM-DD.  A missing
// date means today in UTC.
func (h *CatalogHandler) GetExperience(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		date = h.now().UTC().Format(model.DateLayout)
	}
	view, err := h.Catalog.GetExperienceAvailability(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, view)
}
