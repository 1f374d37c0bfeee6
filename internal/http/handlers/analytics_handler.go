package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/problem"
)

// AnalyticsHandler отдаёт городскую сводку.
type AnalyticsHandler struct {
	analytics *problem.AnalyticsUseCase
}

func NewAnalyticsHandler(analytics *problem.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Analytics обрабатывает GET /api/analytics.
func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	a, err := h.analytics.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"analytics": dto.NewAnalyticsResponse(a.City, a.Stats, a.ActiveUsers)})
}
