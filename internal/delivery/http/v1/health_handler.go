package v1

import (
	"net/http"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/usecase"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

func NewHealthHandler(v1 *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	v1.GET("/health", handler.Health)
}

// Health godoc
// @Summary      Service health
// @Description  Reports the database and redis status. Answers 503 when a configured dependency is down.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.healthUC.Check(c.Request.Context())
	if status["status"] != "ok" {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
