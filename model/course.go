package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course represents a course offered by the school
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Title       string    `gorm:"not null;uniqueIndex" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"imageUrl"`

	// Version is bumped on every write touching the course or its teacher
	// set. Writers compare-and-swap on it.
	Version int `gorm:"not null;default:1" json:"version"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CourseTeacher is the join row between a course and an assigned teacher
type CourseTeacher struct {
	CourseID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"courseId"`
	TeacherID  uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"teacherId"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assignedAt"`

	// Relationships
	Course  Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT" json:"-"`
	Teacher Teacher `gorm:"foreignKey:TeacherID;constraint:OnDelete:RESTRICT" json:"-"`
}

// CourseStudent is the join row between a course and an enrolled student
type CourseStudent struct {
	CourseID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"courseId"`
	StudentID  uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"studentId"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolledAt"`

	// Relationships
	Course  Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT" json:"-"`
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}
