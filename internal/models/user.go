package models

import "time"

const (
	RoleOwner        = "owner"
	RoleManager      = "manager"
	RoleReception    = "reception"
	RoleProfessional = "professional"
)

// User é tanto o login quanto o profissional dono de uma coluna da agenda.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	StudioID uint   `gorm:"index" json:"studio_id"`
	Studio   Studio `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`
	JobTitle     string `gorm:"size:60" json:"job_title"`
	AvatarURL    string `gorm:"size:255" json:"avatar_url"`
	Schedulable  bool   `gorm:"default:true" json:"schedulable"`
	Active       bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
