package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mediremind-server/internal/middleware"
	"mediremind-server/internal/models"
	"mediremind-server/internal/utils"
)

// PatientHandler handles patient dashboard and profile requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// Dashboard handles GET /patients/dashboard.
func (h *PatientHandler) Dashboard(c *gin.Context) {
	patient, ok := h.loadProfile(c)
	if !ok {
		return
	}

	utils.Success(c, "Dashboard data retrieved successfully", gin.H{
		"data": gin.H{
			"profile": patient,
			"user_id": patient.UserID,
			"role":    models.RolePatient,
		},
	})
}

// GetProfile handles GET /patients/profile.
func (h *PatientHandler) GetProfile(c *gin.Context) {
	patient, ok := h.loadProfile(c)
	if !ok {
		return
	}

	utils.Success(c, "Profile retrieved successfully", gin.H{"profile": patient})
}

// UpdatePatientProfileRequest whitelists the updateable profile fields.
type UpdatePatientProfileRequest struct {
	FullName         *string `json:"full_name"`
	Phone            *string `json:"phone"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Gender           *string `json:"gender"`
	DateOfBirth      *string `json:"date_of_birth"`
	EmergencyContact *string `json:"emergency_contact"`
}

// UpdateProfile handles PUT /patients/profile. Account-level fields
// (full_name, phone, email) are mirrored onto the users table.
func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	patient, ok := h.loadProfile(c)
	if !ok {
		return
	}

	var req UpdatePatientProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.DateOfBirth != nil {
		updates["date_of_birth"] = *req.DateOfBirth
	}
	if req.EmergencyContact != nil {
		updates["emergency_contact"] = *req.EmergencyContact
	}

	if len(updates) == 0 {
		utils.BadRequest(c, "No valid fields to update",
			"allowed fields are: full_name, phone, email, gender, date_of_birth, emergency_contact")
		return
	}

	if err := h.DB.Model(patient).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile", err.Error())
		return
	}

	userUpdates := map[string]interface{}{}
	for _, field := range []string{"full_name", "phone", "email"} {
		if value, ok := updates[field]; ok {
			userUpdates[field] = value
		}
	}
	if len(userUpdates) > 0 {
		if err := h.DB.Model(&models.User{}).Where("id = ?", patient.UserID).Updates(userUpdates).Error; err != nil {
			utils.InternalServerError(c, "Failed to update profile", err.Error())
			return
		}
	}

	utils.Success(c, "Profile updated successfully", gin.H{"profile": patient})
}

func (h *PatientHandler) loadProfile(c *gin.Context) (*models.Patient, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Invalid or expired token")
		return nil, false
	}

	var patient models.Patient
	if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient profile not found", "")
		} else {
			utils.InternalServerError(c, "Database error", err.Error())
		}
		return nil, false
	}
	return &patient, true
}
