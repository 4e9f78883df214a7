package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// PlacesHandler handles the nearby-places endpoints.
type PlacesHandler struct {
	placesService core.PlacesService
	logger        *zap.Logger
}

// NewPlacesHandler creates a new PlacesHandler.
func NewPlacesHandler(ps core.PlacesService, logger *zap.Logger) *PlacesHandler {
	return &PlacesHandler{placesService: ps, logger: logger}
}

// Nearby handles GET /api/v1/places/nearby?lat=&lng=&radius=&category=.
func (h *PlacesHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameter", Details: "lat and lng are required numbers"})
		return
	}
	radius, ok := queryInt(c, "radius", 0)
	if !ok {
		return
	}

	places, err := h.placesService.Nearby(c.Request.Context(), models.NearbyQuery{
		Lat:      lat,
		Lng:      lng,
		Radius:   radius,
		Category: c.Query("category"),
	})
	if err != nil {
		h.handleError(c, "Nearby", err)
		return
	}
	c.JSON(http.StatusOK, places)
}

// PlaceDetails handles GET /api/v1/places/:placeId.
func (h *PlacesHandler) PlaceDetails(c *gin.Context) {
	details, err := h.placesService.PlaceDetails(c.Request.Context(), c.Param("placeId"))
	if err != nil {
		h.handleError(c, "PlaceDetails", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *PlacesHandler) handleError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidLocation), errors.Is(err, core.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrPlaceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Place not found"})
	case errors.Is(err, core.ErrPlacesUnavailable):
		h.logger.Warn(op+" upstream failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "El servicio de lugares no está disponible en este momento."})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load places"})
	}
}
