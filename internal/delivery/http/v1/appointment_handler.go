package v1

import (
	"net/http"
	"strconv"
	"strings"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

type AppointmentHandler struct {
	appointmentUC domain.AppointmentUsecase
	secLog        *security.SecurityLogger
}

// NewAppointmentHandler registers the recruiter's appointment routes
func NewAppointmentHandler(recruiters *gin.RouterGroup, appointmentUC domain.AppointmentUsecase, secLog *security.SecurityLogger) {
	handler := &AppointmentHandler{appointmentUC: appointmentUC, secLog: secLog}

	appointments := recruiters.Group("/appointments")
	{
		appointments.POST("", handler.CreateProposal)
		appointments.GET("", handler.List)
		appointments.GET("/export", handler.Export)
		appointments.PUT("/:id/finalize", handler.Finalize)
		appointments.POST("/:id/final-email", handler.SendFinalEmail)
	}
}

// CreateProposal godoc
// @Summary      Propose interview slots
// @Description  Opens a scheduling cycle for an eligible candidate with exactly three distinct datetimes (RFC 3339). The candidate is emailed the slots.
// @Tags         recruiter-appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ProposalInput  true  "Candidate, offer and slots"
// @Success      201      {object}  response.Response{data=domain.ProposalResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /recruiters/appointments [post]
func (h *AppointmentHandler) CreateProposal(c *gin.Context) {
	var req domain.ProposalInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.appointmentUC.CreateProposal(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, result.Message, result)
}

// List godoc
// @Summary      List recruiter appointments
// @Description  Returns every appointment created by the recruiter with its slots, newest first
// @Tags         recruiter-appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Appointment}
// @Router       /recruiters/appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	appointments, err := h.appointmentUC.ListForRecruiter(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Appointments retrieved", appointments)
}

// Export godoc
// @Summary      Export appointments to Excel/CSV
// @Tags         recruiter-appointments
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        format   query     string  false  "Export format (xlsx, csv). Default: xlsx"
// @Param        columns  query     string  false  "Comma-separated column names to include"
// @Success      200      {file}    binary
// @Failure      400      {object}  response.Response
// @Router       /recruiters/appointments/export [get]
func (h *AppointmentHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	var columns []string
	if cols := c.Query("columns"); cols != "" {
		columns = strings.Split(cols, ",")
	}

	req := domain.AppointmentExportRequest{
		RecruiterID: currentUserID(c),
		Columns:     columns,
		Format:      format,
	}

	data, filename, err := h.appointmentUC.ExportForRecruiter(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.secLog.Log(c.Request.Context(), security.SecurityEvent{
		Event:        security.EventDataExport,
		SubjectType:  "user_id",
		SubjectValue: security.HashValue(strconv.FormatInt(currentUserID(c), 10)),
		IP:           c.ClientIP(),
		RequestID:    c.GetString(string(domain.KeyRequestID)),
		Details:      map[string]interface{}{"format": format, "bytes": len(data)},
	})

	contentType := contentTypeXLSX
	if format == "csv" {
		contentType = contentTypeCSV
	}
	response.Attachment(c, filename, contentType, data)
}

// Finalize godoc
// @Summary      Finalize a confirmed appointment
// @Description  Attaches the interview mode, location and notes to a CONFIRMED appointment and completes it
// @Tags         recruiter-appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                   true  "Appointment ID"
// @Param        request  body      domain.FinalizeInput  true  "Interview details"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /recruiters/appointments/{id}/finalize [put]
func (h *AppointmentHandler) Finalize(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.FinalizeInput
	if !bindJSON(c, &req) {
		return
	}

	if err := h.appointmentUC.Finalize(c.Request.Context(), currentUserID(c), id, req); err != nil {
		failOperation(c, "finalize", err, "Unable to finalize this appointment")
		return
	}

	response.Success(c, http.StatusOK, "Appointment finalized", nil)
}

// SendFinalEmail godoc
// @Summary      Send the confirmation email
// @Description  Emails the candidate the final interview details of a COMPLETED appointment
// @Tags         recruiter-appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /recruiters/appointments/{id}/final-email [post]
func (h *AppointmentHandler) SendFinalEmail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.appointmentUC.SendFinalEmail(c.Request.Context(), currentUserID(c), id); err != nil {
		failOperation(c, "send_final_email", err, "Unable to send the confirmation email")
		return
	}

	response.Success(c, http.StatusOK, "Confirmation email sent", nil)
}
