package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog entry owned by a user and labelled with any number of tags.
type Post struct {
	ID      uuid.UUID `json:"entity_id" gorm:"column:entity_id;type:char(36);primaryKey"`
	Title   string    `json:"title" gorm:"size:255;not null"`
	Content string    `json:"content" gorm:"type:text;not null"`
	UserID  uuid.UUID `json:"user_id" gorm:"column:user_id;type:char(36);not null;index"`
	SoftDelete
	Timestamps

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Tags []Tag `json:"tags" gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EntityID returns the primary key.
func (p *Post) EntityID() uuid.UUID { return p.ID }

// OwnerID returns the id of the author.
func (p *Post) OwnerID() uuid.UUID { return p.UserID }

// PostTag is a row of the post/tag join table.
type PostTag struct {
	PostID uuid.UUID `gorm:"column:post_id;type:char(36);primaryKey"`
	TagID  uuid.UUID `gorm:"column:tag_id;type:char(36);primaryKey"`
}

// TableName pins the join table name.
func (PostTag) TableName() string { return "post_tags" }

// PostPatch carries the optional fields of a post update.
// TagIDs distinguishes "not supplied" (nil) from "clear all" (pointer to an empty slice).
type PostPatch struct {
	Title   *string
	Content *string
	TagIDs  *[]uuid.UUID
}

// Apply copies the supplied scalar fields onto p and returns the affected columns.
// The tag set is handled separately since it lives in the join table.
func (pp PostPatch) Apply(p *Post) []string {
	var cols []string
	if pp.Title != nil {
		p.Title = *pp.Title
		cols = append(cols, "title")
	}
	if pp.Content != nil {
		p.Content = *pp.Content
		cols = append(cols, "content")
	}
	return cols
}
