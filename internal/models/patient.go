package models

// Patient holds the patient-facing profile linked to a user account.
type Patient struct {
	BaseModel
	UserID           string `gorm:"size:36;uniqueIndex" json:"user_id"`
	FullName         string `gorm:"size:255" json:"full_name"`
	Phone            string `gorm:"size:32" json:"phone"`
	Email            string `gorm:"size:255" json:"email"`
	Gender           string `gorm:"size:20" json:"gender,omitempty"`
	DateOfBirth      string `gorm:"size:10" json:"date_of_birth,omitempty"`
	EmergencyContact string `gorm:"size:255" json:"emergency_contact,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
