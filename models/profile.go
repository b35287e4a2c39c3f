package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile is the submitter identity captured at login. Re-submitting
// the login form overwrites the whole profile; profiles are never deleted.
type UserProfile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string `gorm:"size:255;not null" json:"name"`
	StudentID  string `gorm:"uniqueIndex;size:50;not null" json:"student_id"`
	Supervisor string `gorm:"size:255" json:"supervisor"`
	Phone      string `gorm:"size:50" json:"phone"`
}

// TableName overrides the table name
func (UserProfile) TableName() string {
	return "user_profiles"
}
