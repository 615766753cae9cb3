package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Teacher represents a member of the teaching staff
type Teacher struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"not null;index" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"phone"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	Avatar    string    `gorm:"type:varchar(1024)" json:"avatar,omitempty"`
	Post      string    `gorm:"type:varchar(100);not null;index" json:"post"` // e.g., "Professor", "Lecturer"
}

func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
