package v1

import (
	"net/http"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"

	"github.com/gin-gonic/gin"
)

type PipelineHandler struct {
	eligibilityUC domain.EligibilityUsecase
}

// NewPipelineHandler registers the webhook used by the applications service
func NewPipelineHandler(internal *gin.RouterGroup, eligibilityUC domain.EligibilityUsecase) {
	handler := &PipelineHandler{eligibilityUC: eligibilityUC}
	internal.POST("/pipeline-events", handler.HandleEvent)
}

// HandleEvent godoc
// @Summary      Report an application status change
// @Description  Candidates moved to an eligible pipeline status are added to the recruiter's eligible list. Other statuses are acknowledged and ignored.
// @Tags         internal
// @Accept       json
// @Produce      json
// @Param        X-Internal-Token  header    string                true  "Service token"
// @Param        request           body      domain.PipelineEvent  true  "Pipeline event"
// @Success      202               {object}  response.Response
// @Failure      400               {object}  response.Response
// @Failure      401               {object}  response.Response
// @Router       /internal/pipeline-events [post]
func (h *PipelineHandler) HandleEvent(c *gin.Context) {
	var event domain.PipelineEvent
	if !bindJSON(c, &event) {
		return
	}

	registered, err := h.eligibilityUC.HandlePipelineEvent(c.Request.Context(), event)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Event ignored"
	if registered {
		message = "Candidate registered as eligible"
	}
	response.Success(c, http.StatusAccepted, message, gin.H{"registered": registered})
}
