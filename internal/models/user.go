package models

import (
	"time"
)

// User is the local identity record. It may exist before the hosted auth
// provider knows about the account (ExternalID nil, pending link) or after
// linking (ExternalID set). Rows are soft-deactivated, never hard-deleted,
// once they have been linked.
type User struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ExternalID *string `gorm:"uniqueIndex;size:255" json:"external_id,omitempty"`
	Name       string  `gorm:"size:100" json:"name"`
	Email      string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	IsActive   bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsLinked reports whether the row is associated with an external identity.
func (u *User) IsLinked() bool {
	return u.ExternalID != nil && len(*u.ExternalID) > 0
}

func (u *User) GetName() string {
	if len(u.Name) > 0 {
		return u.Name
	}
	return "Unknown"
}
