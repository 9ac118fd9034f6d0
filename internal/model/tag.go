package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a user-owned label that posts can reference.
type Tag struct {
	ID     uuid.UUID `json:"entity_id" gorm:"column:entity_id;type:char(36);primaryKey"`
	Name   string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	UserID uuid.UUID `json:"user_id" gorm:"column:user_id;type:char(36);not null;index"`
	SoftDelete
	Timestamps

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// EntityID returns the primary key.
func (t *Tag) EntityID() uuid.UUID { return t.ID }

// OwnerID returns the id of the user who created the tag.
func (t *Tag) OwnerID() uuid.UUID { return t.UserID }

// TagPatch carries the optional fields of a tag update. Nil fields are left untouched.
type TagPatch struct {
	Name *string
}

// Apply copies the supplied fields onto t and returns the affected columns.
func (p TagPatch) Apply(t *Tag) []string {
	var cols []string
	if p.Name != nil {
		t.Name = *p.Name
		cols = append(cols, "name")
	}
	return cols
}
