package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusRequested           AppointmentStatus = "requested"
	StatusScheduled           AppointmentStatus = "scheduled"
	StatusConfirmed           AppointmentStatus = "confirmed"
	StatusDeclined            AppointmentStatus = "declined"
	StatusRescheduleRequested AppointmentStatus = "reschedule_requested"
	StatusCancelled           AppointmentStatus = "cancelled"
	StatusCompleted           AppointmentStatus = "completed"
)

// Appointment type values
const (
	TypeInitial  = "initial"
	TypeFollowUp = "follow-up"
)

// InitiatedBy values
const (
	InitiatedByPatient = "patient"
	InitiatedByDoctor  = "doctor"
)

// Appointment represents a clinic appointment between a patient and a doctor.
// Date and Time are kept as the wire strings (YYYY-MM-DD, HH:MM); the workflow
// engine validates them before anything is persisted.
type Appointment struct {
	BaseModel
	PatientID        string            `gorm:"size:36;index" json:"patient_id"`
	DoctorID         string            `gorm:"size:36;index" json:"doctor_id"`
	Date             string            `gorm:"column:appointment_date;size:10;index" json:"date"`
	Time             string            `gorm:"column:appointment_time;size:5" json:"time"`
	Type             string            `gorm:"size:20" json:"type"`
	LocationText     string            `gorm:"size:255;default:'Main Hospital'" json:"location_text"`
	Notes            string            `gorm:"type:text" json:"notes"`
	PreferredChannel string            `gorm:"size:20;default:'sms'" json:"preferred_channel"`
	InitiatedBy      string            `gorm:"size:10" json:"initiated_by"`
	Status           AppointmentStatus `gorm:"size:24;default:'requested'" json:"status"`
	PatientNotes     string            `gorm:"type:text" json:"patient_notes"`
	DoctorNotes      string            `gorm:"type:text" json:"doctor_notes"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
