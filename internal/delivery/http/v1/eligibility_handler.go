package v1

import (
	"net/http"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"

	"github.com/gin-gonic/gin"
)

type EligibilityHandler struct {
	eligibilityUC domain.EligibilityUsecase
}

// NewEligibilityHandler registers the recruiter's eligible-candidate routes
func NewEligibilityHandler(recruiters *gin.RouterGroup, eligibilityUC domain.EligibilityUsecase) {
	handler := &EligibilityHandler{eligibilityUC: eligibilityUC}

	eligible := recruiters.Group("/eligible-candidates")
	{
		eligible.POST("", handler.Register)
		eligible.GET("", handler.List)
	}
}

// Register godoc
// @Summary      Register an eligible candidate
// @Description  Records that the candidate may receive an interview proposal for the offer. Registering the same candidate and offer twice is a no-op.
// @Tags         recruiter-eligibility
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.EligibleCandidateInput  true  "Candidate and offer"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /recruiters/eligible-candidates [post]
func (h *EligibilityHandler) Register(c *gin.Context) {
	var req domain.EligibleCandidateInput
	if !bindJSON(c, &req) {
		return
	}

	if err := h.eligibilityUC.Register(c.Request.Context(), currentUserID(c), req); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Candidate registered as eligible", nil)
}

// List godoc
// @Summary      List eligible candidates
// @Description  Returns the recruiter's eligible candidates, most recently added first
// @Tags         recruiter-eligibility
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.EligibleCandidate}
// @Failure      403  {object}  response.Response
// @Router       /recruiters/eligible-candidates [get]
func (h *EligibilityHandler) List(c *gin.Context) {
	candidates, err := h.eligibilityUC.ListForRecruiter(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Eligible candidates retrieved", candidates)
}
