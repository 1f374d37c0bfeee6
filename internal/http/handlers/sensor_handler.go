package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/sensor"
)

// SensorSource отдаёт показания датчиков около точки.
type SensorSource interface {
	Readings(ctx context.Context, lat, lng float64) []sensor.Reading
}

type SensorHandler struct {
	source    SensorSource
	centerLat float64
	centerLng float64
}

func NewSensorHandler(source SensorSource, centerLat, centerLng float64) *SensorHandler {
	return &SensorHandler{source: source, centerLat: centerLat, centerLng: centerLng}
}

// Readings обрабатывает GET /api/sensors?lat=&lng=. Без координат берётся центр города.
func (h *SensorHandler) Readings(c *gin.Context) {
	lat, ok := common.ParseFloatQuery(c, "lat")
	if !ok {
		lat = h.centerLat
	}
	lng, ok := common.ParseFloatQuery(c, "lng")
	if !ok {
		lng = h.centerLng
	}

	response.Success(c, "", gin.H{"sensors": h.source.Readings(c.Request.Context(), lat, lng)})
}
