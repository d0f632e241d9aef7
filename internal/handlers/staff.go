package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mediremind-server/internal/middleware"
	"mediremind-server/internal/models"
	"mediremind-server/internal/utils"
)

// StaffHandler handles staff dashboard and profile requests.
type StaffHandler struct {
	DB *gorm.DB
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(db *gorm.DB) *StaffHandler {
	return &StaffHandler{DB: db}
}

// Dashboard handles GET /staff/dashboard.
func (h *StaffHandler) Dashboard(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	utils.Success(c, "Staff dashboard data retrieved successfully", gin.H{"profile": profile})
}

// GetProfile handles GET /staff/profile.
func (h *StaffHandler) GetProfile(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	utils.Success(c, "Profile retrieved successfully", gin.H{"profile": profile})
}

// UpdateStaffProfileRequest whitelists the updateable profile fields.
type UpdateStaffProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// UpdateProfile handles PUT /staff/profile. Account-level fields are
// mirrored onto the users table.
func (h *StaffHandler) UpdateProfile(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	var req UpdateStaffProfileRequest
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

	if len(updates) == 0 {
		utils.BadRequest(c, "No valid fields to update", "allowed fields are: full_name, phone, email")
		return
	}

	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile", err.Error())
		return
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", profile.UserID).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile", err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", gin.H{"profile": profile})
}

func (h *StaffHandler) loadProfile(c *gin.Context) (*models.StaffProfile, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Invalid or expired token")
		return nil, false
	}

	var profile models.StaffProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Staff profile not found", "")
		} else {
			utils.InternalServerError(c, "Database error", err.Error())
		}
		return nil, false
	}
	return &profile, true
}
