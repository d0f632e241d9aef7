package models

// StaffProfile holds the profile for doctors and admins.
type StaffProfile struct {
	BaseModel
	UserID   string `gorm:"size:36;uniqueIndex" json:"user_id"`
	FullName string `gorm:"size:255" json:"full_name"`
	Phone    string `gorm:"size:32" json:"phone"`
	Email    string `gorm:"size:255" json:"email"`
	Position string `gorm:"size:50" json:"position"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
