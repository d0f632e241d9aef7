package handlers

import (
	"github.com/gin-gonic/gin"

	"mediremind-server/internal/middleware"
	"mediremind-server/internal/models"
	"mediremind-server/internal/utils"
	"mediremind-server/internal/workflow"
)

// AppointmentHandler exposes the appointment workflow over HTTP. All
// rule-bearing work lives in the workflow engine; this is request glue.
type AppointmentHandler struct {
	Engine *workflow.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(engine *workflow.Service) *AppointmentHandler {
	return &AppointmentHandler{Engine: engine}
}

// RequestAppointment handles POST /appointments/request (patient only).
func (h *AppointmentHandler) RequestAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Invalid or expired token")
		return
	}

	var in workflow.RequestAppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	appt, err := h.Engine.RequestAppointment(c.Request.Context(), userID, in)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	utils.Created(c, "Appointment requested successfully", gin.H{"appointment": appt})
}

// ScheduleAppointment handles POST /appointments/schedule (doctor/admin).
func (h *AppointmentHandler) ScheduleAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Invalid or expired token")
		return
	}

	var in workflow.ScheduleAppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	appt, err := h.Engine.ScheduleAppointment(c.Request.Context(), userID, in)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	utils.Created(c, "Appointment scheduled successfully", gin.H{"appointment": appt})
}

// ListAppointments handles GET /appointments, role-scoped.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	role, roleOK := middleware.GetUserRoleFromContext(c)
	if !exists || !roleOK {
		utils.Unauthorized(c, "Invalid or expired token")
		return
	}

	views, err := h.Engine.ListForUser(c.Request.Context(), userID, role)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	utils.Success(c, "Appointments retrieved successfully", gin.H{"appointments": views})
}

// RespondToAppointment handles PUT /appointments/:id/respond, dispatching by
// the caller's role.
func (h *AppointmentHandler) RespondToAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	role, roleOK := middleware.GetUserRoleFromContext(c)
	if !exists || !roleOK {
		utils.Unauthorized(c, "Invalid or expired token")
		return
	}

	appointmentID := c.Param("id")

	if role == models.RolePatient {
		var in workflow.PatientResponseInput
		if err := c.ShouldBindJSON(&in); err != nil {
			utils.BadRequest(c, "Invalid request payload", err.Error())
			return
		}
		appt, err := h.Engine.RespondAsPatient(c.Request.Context(), userID, appointmentID, in)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
		utils.Success(c, "Appointment updated successfully", gin.H{"appointment": appt})
		return
	}

	var in workflow.DoctorResponseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload", err.Error())
		return
	}
	appt, err := h.Engine.RespondAsDoctor(c.Request.Context(), userID, appointmentID, in)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	utils.Success(c, "Appointment updated successfully", gin.H{"appointment": appt})
}

// respondWorkflowError maps workflow error kinds onto the HTTP contract.
func respondWorkflowError(c *gin.Context, err error) {
	wfErr := workflow.AsError(err)
	switch wfErr.Kind {
	case workflow.KindValidation, workflow.KindConflict:
		utils.BadRequest(c, wfErr.Summary, wfErr.Details)
	case workflow.KindNotFound:
		utils.NotFound(c, wfErr.Summary, wfErr.Details)
	default:
		utils.InternalServerError(c, wfErr.Summary, wfErr.Details)
	}
}
