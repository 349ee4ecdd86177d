package v1

import (
	"net/http"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"

	"github.com/gin-gonic/gin"
)

// ChooseSlotRequest carries the slot the candidate accepts
type ChooseSlotRequest struct {
	SlotID int64 `json:"slot_id" binding:"required,gt=0"`
}

type CandidateAppointmentHandler struct {
	appointmentUC domain.AppointmentUsecase
}

// NewCandidateAppointmentHandler registers the candidate's appointment routes
func NewCandidateAppointmentHandler(candidates *gin.RouterGroup, appointmentUC domain.AppointmentUsecase) {
	handler := &CandidateAppointmentHandler{appointmentUC: appointmentUC}

	appointments := candidates.Group("/appointments")
	{
		appointments.GET("", handler.List)
		appointments.POST("/:id/choose-slot", handler.ChooseSlot)
		appointments.POST("/:id/refuse-all", handler.RefuseAll)
	}
}

// List godoc
// @Summary      List candidate appointments
// @Description  Returns the candidate's appointments with their slots, newest first
// @Tags         candidate-appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Appointment}
// @Router       /candidates/appointments [get]
func (h *CandidateAppointmentHandler) List(c *gin.Context) {
	appointments, err := h.appointmentUC.ListForCandidate(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Appointments retrieved", appointments)
}

// ChooseSlot godoc
// @Summary      Choose a proposed slot
// @Description  Confirms one of the three proposed slots of a PENDING appointment
// @Tags         candidate-appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                true  "Appointment ID"
// @Param        request  body      ChooseSlotRequest  true  "Chosen slot"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /candidates/appointments/{id}/choose-slot [post]
func (h *CandidateAppointmentHandler) ChooseSlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ChooseSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.appointmentUC.ChooseSlot(c.Request.Context(), currentUserID(c), id, req.SlotID); err != nil {
		failOperation(c, "choose_slot", err, "Unable to choose this slot")
		return
	}

	response.Success(c, http.StatusOK, "Slot confirmed", nil)
}

// RefuseAll godoc
// @Summary      Refuse every proposed slot
// @Description  Refuses a PENDING appointment. The recruiter is notified through the messaging service.
// @Tags         candidate-appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/appointments/{id}/refuse-all [post]
func (h *CandidateAppointmentHandler) RefuseAll(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.appointmentUC.RefuseAll(c.Request.Context(), currentUserID(c), id); err != nil {
		failOperation(c, "refuse_all", err, "Unable to refuse this appointment")
		return
	}

	response.Success(c, http.StatusOK, "Slots refused", nil)
}
