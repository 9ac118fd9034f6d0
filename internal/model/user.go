package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered author.
type User struct {
	ID           uuid.UUID `json:"entity_id" gorm:"column:entity_id;type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	LastName     string    `json:"last_name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:hashed_password;size:255;not null"` // Never expose in JSON
	Timestamps
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
