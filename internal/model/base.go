package model

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps holds the creation and modification times shared by every persisted entity.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// SoftDelete marks a row inactive without removing it.
type SoftDelete struct {
	IsDeleted bool       `json:"is_deleted" gorm:"not null;default:false;index"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Deleted reports whether the row has been soft-deleted.
func (s *SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// MarkDeleted flags the row as deleted at the given time.
func (s *SoftDelete) MarkDeleted(at time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &at
}

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnerID() uuid.UUID
}
