package workflow

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mediremind-server/internal/models"
)

// ErrRecordNotFound is returned by repository reads when no row matches.
var ErrRecordNotFound = errors.New("record not found")

// Repository is the persistence contract the workflow engine depends on.
type Repository interface {
	GetPatientProfile(ctx context.Context, userID string) (*models.Patient, error)
	GetStaffProfile(ctx context.Context, userID string) (*models.StaffProfile, error)

	// SlotTaken reports whether a non-cancelled appointment other than
	// excludeID already occupies (doctorID, date, timeOfDay).
	SlotTaken(ctx context.Context, doctorID, date, timeOfDay, excludeID string) (bool, error)

	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	SaveAppointment(ctx context.Context, appt *models.Appointment) error
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository wraps a gorm handle in the Repository contract.
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetPatientProfile(ctx context.Context, userID string) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &patient, nil
}

func (r *gormRepository) GetStaffProfile(ctx context.Context, userID string) (*models.StaffProfile, error) {
	var profile models.StaffProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormRepository) SlotTaken(ctx context.Context, doctorID, date, timeOfDay, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
			doctorID, date, timeOfDay, models.StatusCancelled)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *gormRepository) GetAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (r *gormRepository) SaveAppointment(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appt).Error
}

func (r *gormRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date asc, appointment_time asc").
		Find(&appointments).Error
	return appointments, err
}

func (r *gormRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_date asc, appointment_time asc").
		Find(&appointments).Error
	return appointments, err
}
