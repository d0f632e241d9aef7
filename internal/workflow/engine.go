package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mediremind-server/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultLocation = "Main Hospital"
	defaultChannel  = "sms"
)

// Notifier delivers an appointment notification over the given channel.
// Delivery is best-effort: the engine logs failures and never fails the
// request over them.
type Notifier interface {
	Send(ctx context.Context, channel, phone, message string) error
}

// Service is the appointment workflow engine. It validates requests and
// responses, enforces the status transition tables, detects slot conflicts
// and commits the resulting record mutations.
type Service struct {
	repo     Repository
	locker   SlotLocker
	notifier Notifier
	log      *zap.Logger
}

// NewService creates a workflow engine. notifier may be nil to disable
// notification dispatch.
func NewService(repo Repository, locker SlotLocker, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		log:      log,
	}
}

// RequestAppointmentInput is the patient-initiated creation payload.
type RequestAppointmentInput struct {
	DoctorID         string `json:"doctor_id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Type             string `json:"type"`
	LocationText     string `json:"location_text"`
	Notes            string `json:"notes"`
	PreferredChannel string `json:"preferred_channel"`
}

// ScheduleAppointmentInput is the doctor-initiated creation payload.
type ScheduleAppointmentInput struct {
	PatientID        string `json:"patient_id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Type             string `json:"type"`
	LocationText     string `json:"location_text"`
	Notes            string `json:"notes"`
	PreferredChannel string `json:"preferred_channel"`
}

// PatientResponseInput is a patient's response to an existing appointment.
type PatientResponseInput struct {
	Status       string `json:"status"`
	PatientNotes string `json:"patient_notes"`
}

// DoctorResponseInput is a doctor's response to an appointment request.
type DoctorResponseInput struct {
	Status      string `json:"status"`
	DoctorNotes string `json:"doctor_notes"`
	NewDate     string `json:"new_date"`
	NewTime     string `json:"new_time"`
}

// AppointmentView is a list entry enriched with the counterpart's profile.
type AppointmentView struct {
	models.Appointment
	DoctorName   string `json:"doctor_name,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
	PatientPhone string `json:"patient_phone,omitempty"`
}

// RequestAppointment creates a patient-initiated appointment request.
func (s *Service) RequestAppointment(ctx context.Context, patientID string, in RequestAppointmentInput) (*models.Appointment, error) {
	if in.DoctorID == "" || in.Date == "" || in.Time == "" || in.Type == "" {
		return nil, newValidation("Missing required fields", "doctor_id, date, time and type are required")
	}

	apptType, err := normalizeType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := validateFutureSlot(in.Date, in.Time); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetStaffProfile(ctx, in.DoctorID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, newNotFound("Doctor not found", "no staff profile exists for the given doctor_id")
		}
		return nil, newDependency("Database error", err.Error())
	}

	appt := &models.Appointment{
		PatientID:        patientID,
		DoctorID:         in.DoctorID,
		Date:             in.Date,
		Time:             in.Time,
		Type:             apptType,
		LocationText:     defaultString(in.LocationText, defaultLocation),
		Notes:            in.Notes,
		PreferredChannel: defaultString(in.PreferredChannel, defaultChannel),
		InitiatedBy:      models.InitiatedByPatient,
		Status:           models.StatusRequested,
	}

	if err := s.insertWithSlotGuard(ctx, appt); err != nil {
		return nil, err
	}

	s.log.Info("appointment requested",
		zap.String("appointment_id", appt.ID),
		zap.String("patient_id", patientID),
		zap.String("doctor_id", in.DoctorID),
		zap.String("slot", in.Date+" "+in.Time),
	)
	return appt, nil
}

// ScheduleAppointment creates a doctor-initiated appointment.
func (s *Service) ScheduleAppointment(ctx context.Context, doctorID string, in ScheduleAppointmentInput) (*models.Appointment, error) {
	if in.PatientID == "" || in.Date == "" || in.Time == "" || in.Type == "" {
		return nil, newValidation("Missing required fields", "patient_id, date, time and type are required")
	}

	apptType, err := normalizeType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := validateFutureSlot(in.Date, in.Time); err != nil {
		return nil, err
	}

	patient, err := s.repo.GetPatientProfile(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, newNotFound("Patient not found", "no patient profile exists for the given patient_id")
		}
		return nil, newDependency("Database error", err.Error())
	}

	appt := &models.Appointment{
		PatientID:        in.PatientID,
		DoctorID:         doctorID,
		Date:             in.Date,
		Time:             in.Time,
		Type:             apptType,
		LocationText:     defaultString(in.LocationText, defaultLocation),
		Notes:            in.Notes,
		PreferredChannel: defaultString(in.PreferredChannel, defaultChannel),
		InitiatedBy:      models.InitiatedByDoctor,
		Status:           models.StatusScheduled,
	}

	if err := s.insertWithSlotGuard(ctx, appt); err != nil {
		return nil, err
	}

	s.log.Info("appointment scheduled",
		zap.String("appointment_id", appt.ID),
		zap.String("patient_id", in.PatientID),
		zap.String("doctor_id", doctorID),
		zap.String("slot", in.Date+" "+in.Time),
	)

	s.notify(ctx, appt.PreferredChannel, patient.Phone,
		fmt.Sprintf("Your appointment on %s at %s (%s) has been scheduled.", appt.Date, appt.Time, appt.LocationText))
	return appt, nil
}

// RespondAsPatient applies a patient response to an appointment the caller owns.
func (s *Service) RespondAsPatient(ctx context.Context, patientID, appointmentID string, in PatientResponseInput) (*models.Appointment, error) {
	if in.Status == "" {
		return nil, newValidation("Missing required fields", "status is required")
	}

	appt, err := s.loadOwned(ctx, appointmentID, func(a *models.Appointment) bool {
		return a.PatientID == patientID
	})
	if err != nil {
		return nil, err
	}

	next, err := NextStatusForPatient(appt.Status, Action(in.Status))
	if err != nil {
		return nil, err
	}

	appt.Status = next
	appt.PatientNotes = in.PatientNotes
	if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		return nil, newDependency("Failed to update appointment", err.Error())
	}

	s.log.Info("patient responded",
		zap.String("appointment_id", appt.ID),
		zap.String("status", string(next)),
	)

	if s.notifier != nil {
		if staff, err := s.repo.GetStaffProfile(ctx, appt.DoctorID); err == nil {
			s.notify(ctx, appt.PreferredChannel, staff.Phone,
				fmt.Sprintf("Appointment on %s at %s is now %s.", appt.Date, appt.Time, appt.Status))
		}
	}
	return appt, nil
}

// RespondAsDoctor applies a doctor response to an appointment request,
// optionally rescheduling it to a new slot.
func (s *Service) RespondAsDoctor(ctx context.Context, doctorID, appointmentID string, in DoctorResponseInput) (*models.Appointment, error) {
	if in.Status == "" {
		return nil, newValidation("Missing required fields", "status is required")
	}

	appt, err := s.loadOwned(ctx, appointmentID, func(a *models.Appointment) bool {
		return a.DoctorID == doctorID
	})
	if err != nil {
		return nil, err
	}

	next, err := NextStatusForDoctor(appt.Status, Action(in.Status))
	if err != nil {
		return nil, err
	}

	appt.Status = next
	appt.DoctorNotes = in.DoctorNotes

	if Action(in.Status) == ActionReschedule {
		if in.NewDate == "" || in.NewTime == "" {
			return nil, newValidation("Missing reschedule information", "new_date and new_time are required")
		}
		if err := validateFutureSlot(in.NewDate, in.NewTime); err != nil {
			return nil, err
		}
		// The new slot gets the same lock-guarded check-then-write as creation,
		// so a concurrent request for the same slot cannot slip in between.
		err := s.locker.WithSlotLock(ctx, SlotKey(appt.DoctorID, in.NewDate, in.NewTime), func(lockCtx context.Context) error {
			taken, err := s.repo.SlotTaken(lockCtx, appt.DoctorID, in.NewDate, in.NewTime, appt.ID)
			if err != nil {
				return newDependency("Database error", err.Error())
			}
			if taken {
				return newConflict("Time slot not available", "another appointment already occupies the new slot")
			}
			appt.Date = in.NewDate
			appt.Time = in.NewTime
			if err := s.repo.SaveAppointment(lockCtx, appt); err != nil {
				return newDependency("Failed to update appointment", err.Error())
			}
			return nil
		})
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, newConflict("Time slot not available", "slot is currently being booked, please retry")
		}
		if err != nil {
			return nil, err
		}
	} else if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		return nil, newDependency("Failed to update appointment", err.Error())
	}

	s.log.Info("doctor responded",
		zap.String("appointment_id", appt.ID),
		zap.String("status", string(next)),
	)

	if s.notifier != nil {
		if patient, err := s.repo.GetPatientProfile(ctx, appt.PatientID); err == nil {
			s.notify(ctx, appt.PreferredChannel, patient.Phone,
				fmt.Sprintf("Your appointment on %s at %s is now %s.", appt.Date, appt.Time, appt.Status))
		}
	}
	return appt, nil
}

// ListForUser returns the caller's appointments, role-scoped and enriched
// with the counterpart's profile. Patients see appointments where they are
// the patient; staff see those where they are the doctor.
func (s *Service) ListForUser(ctx context.Context, userID string, role models.Role) ([]AppointmentView, error) {
	var (
		appointments []models.Appointment
		err          error
	)
	if role == models.RolePatient {
		appointments, err = s.repo.ListByPatient(ctx, userID)
	} else {
		appointments, err = s.repo.ListByDoctor(ctx, userID)
	}
	if err != nil {
		return nil, newDependency("Failed to fetch appointments", err.Error())
	}

	views := make([]AppointmentView, 0, len(appointments))
	if role == models.RolePatient {
		staffNames := map[string]string{}
		for _, appt := range appointments {
			name, cached := staffNames[appt.DoctorID]
			if !cached {
				if staff, err := s.repo.GetStaffProfile(ctx, appt.DoctorID); err == nil {
					name = staff.FullName
				}
				staffNames[appt.DoctorID] = name
			}
			views = append(views, AppointmentView{Appointment: appt, DoctorName: name})
		}
		return views, nil
	}

	patients := map[string]*models.Patient{}
	for _, appt := range appointments {
		profile, cached := patients[appt.PatientID]
		if !cached {
			profile, _ = s.repo.GetPatientProfile(ctx, appt.PatientID)
			patients[appt.PatientID] = profile
		}
		view := AppointmentView{Appointment: appt}
		if profile != nil {
			view.PatientName = profile.FullName
			view.PatientPhone = profile.Phone
		}
		views = append(views, view)
	}
	return views, nil
}

// insertWithSlotGuard runs the conflict check and insert under the per-slot
// lock so concurrent requests for the same slot are serialized.
func (s *Service) insertWithSlotGuard(ctx context.Context, appt *models.Appointment) error {
	err := s.locker.WithSlotLock(ctx, SlotKey(appt.DoctorID, appt.Date, appt.Time), func(lockCtx context.Context) error {
		taken, err := s.repo.SlotTaken(lockCtx, appt.DoctorID, appt.Date, appt.Time, "")
		if err != nil {
			return newDependency("Database error", err.Error())
		}
		if taken {
			return newConflict("Time slot not available", "another appointment already occupies this slot")
		}
		if err := s.repo.CreateAppointment(lockCtx, appt); err != nil {
			return newDependency("Failed to create appointment", err.Error())
		}
		return nil
	})
	if errors.Is(err, ErrLockNotAcquired) {
		return newConflict("Time slot not available", "slot is currently being booked, please retry")
	}
	return err
}

// loadOwned fetches an appointment and checks ownership. A missing record
// and a non-owned record are deliberately indistinguishable to the caller.
func (s *Service) loadOwned(ctx context.Context, id string, owns func(*models.Appointment) bool) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, newNotFound("Appointment not found", "")
		}
		return nil, newDependency("Database error", err.Error())
	}
	if !owns(appt) {
		return nil, newNotFound("Appointment not found", "")
	}
	return appt, nil
}

func (s *Service) notify(ctx context.Context, channel, phone, message string) {
	if s.notifier == nil || phone == "" {
		return
	}
	if err := s.notifier.Send(ctx, channel, phone, message); err != nil {
		s.log.Warn("notification delivery failed",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}

// normalizeType lowercases the appointment type and checks it against the
// allowed values.
func normalizeType(t string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(t))
	if normalized != models.TypeInitial && normalized != models.TypeFollowUp {
		return "", newValidation("Invalid appointment type", "type must be initial or follow-up")
	}
	return normalized, nil
}

// validateFutureSlot parses date (YYYY-MM-DD) and time-of-day (HH:MM) and
// requires the moment to be strictly in the future.
func validateFutureSlot(date, timeOfDay string) error {
	moment, err := ParseSlot(date, timeOfDay)
	if err != nil {
		return err
	}
	if !moment.After(time.Now()) {
		return newValidation("Appointment time must be in the future", "date and time must be after the current time")
	}
	return nil
}

// ParseSlot parses the wire date and time strings into a single moment.
func ParseSlot(date, timeOfDay string) (time.Time, error) {
	// time.Parse tolerates unpadded components, the wire format does not
	if len(date) != len(dateLayout) || len(timeOfDay) != len(timeLayout) {
		return time.Time{}, newValidation("Invalid date or time format", "expected date YYYY-MM-DD and time HH:MM")
	}
	moment, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+timeOfDay, time.Local)
	if err != nil {
		return time.Time{}, newValidation("Invalid date or time format", "expected date YYYY-MM-DD and time HH:MM")
	}
	return moment, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
