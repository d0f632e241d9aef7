package workflow

import (
	"fmt"

	"mediremind-server/internal/models"
)

// Action is a response action declared by a patient or a doctor. Actions are
// mapped to stored statuses through the transition tables below; the tables
// are the single source of truth for what a response does to an appointment.
type Action string

// Patient response actions
const (
	ActionConfirmed           Action = "confirmed"
	ActionDeclined            Action = "declined"
	ActionRescheduleRequested Action = "reschedule_requested"
)

// Doctor response actions
const (
	ActionApproved   Action = "approved"
	ActionRejected   Action = "rejected"
	ActionReschedule Action = "reschedule"
)

var patientResponses = map[Action]models.AppointmentStatus{
	ActionConfirmed:           models.StatusConfirmed,
	ActionDeclined:            models.StatusDeclined,
	ActionRescheduleRequested: models.StatusRescheduleRequested,
}

var doctorResponses = map[Action]models.AppointmentStatus{
	ActionApproved:   models.StatusScheduled,
	ActionRejected:   models.StatusDeclined,
	ActionReschedule: models.StatusRescheduleRequested,
}

// terminalStatuses are only ever set outside this subsystem; once reached,
// no response may move the appointment again.
var terminalStatuses = map[models.AppointmentStatus]bool{
	models.StatusCancelled: true,
	models.StatusCompleted: true,
}

// doctorRespondable are the statuses a doctor response may act on.
var doctorRespondable = map[models.AppointmentStatus]bool{
	models.StatusRequested:           true,
	models.StatusRescheduleRequested: true,
}

// NextStatusForPatient resolves a patient action against the current status.
func NextStatusForPatient(current models.AppointmentStatus, action Action) (models.AppointmentStatus, error) {
	next, ok := patientResponses[action]
	if !ok {
		return "", newValidation("Invalid status",
			"status must be one of: confirmed, declined, reschedule_requested")
	}
	if terminalStatuses[current] {
		return "", newConflict("Cannot update appointment", fmt.Sprintf("already %s", current))
	}
	return next, nil
}

// NextStatusForDoctor resolves a doctor action against the current status.
func NextStatusForDoctor(current models.AppointmentStatus, action Action) (models.AppointmentStatus, error) {
	next, ok := doctorResponses[action]
	if !ok {
		return "", newValidation("Invalid status",
			"status must be one of: approved, rejected, reschedule")
	}
	if !doctorRespondable[current] {
		return "", newConflict("Cannot update appointment", fmt.Sprintf("already %s", current))
	}
	return next, nil
}
