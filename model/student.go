package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shift is the enrollment time-slot of a student
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
)

// Shifts lists every accepted shift value
var Shifts = []Shift{ShiftMorning, ShiftEvening}

// IsValid reports whether s is one of the accepted shifts
func (s Shift) IsValid() bool {
	for _, shift := range Shifts {
		if s == shift {
			return true
		}
	}
	return false
}

// Student represents an enrolled student
type Student struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"not null;index" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"type:varchar(32);not null" json:"phone"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	Avatar    string    `gorm:"type:varchar(1024)" json:"avatar,omitempty"`
	Shift     Shift     `gorm:"type:varchar(20);not null;index" json:"shift"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
