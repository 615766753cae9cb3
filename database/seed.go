package database

import (
	"fmt"
	"log"
	"os"

	"github.com/sahilchouksey/school-admin-api/model"
	"github.com/sahilchouksey/school-admin-api/utils/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdmin(); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedTeachers(); err != nil {
		return fmt.Errorf("failed to seed teachers: %w", err)
	}

	if err := s.SeedStudents(); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdmin creates the default admin account
func (s *Seeder) SeedAdmin() error {
	var count int64
	if err := s.db.Model(&model.Admin{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin already exists, skipping...")
		return nil
	}

	// Get admin credentials from environment variables
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.Admin{
		Name:         "School Admin",
		Email:        adminEmail,
		PasswordHash: passwordHash,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin: %s\n", admin.Email)
	return nil
}

// SeedCourses creates the demo course catalogue
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	courses := []model.Course{
		{Title: "Mathematics", Description: "Algebra, calculus and discrete mathematics"},
		{Title: "Physics", Description: "Mechanics, electromagnetism and optics"},
		{Title: "Computer Science", Description: "Programming fundamentals and data structures"},
		{Title: "English Literature", Description: "Reading and analysis of classic and modern texts"},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d courses\n", len(courses))
	return nil
}

// SeedTeachers creates demo teachers and assigns them to the seeded courses
func (s *Seeder) SeedTeachers() error {
	var count int64
	if err := s.db.Model(&model.Teacher{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Teachers already exist, skipping...")
		return nil
	}

	teachers := []model.Teacher{
		{Name: "Alice Johnson", Email: "alice.johnson@school.test", Phone: "+10000000001", Post: "Professor"},
		{Name: "Brian Smith", Email: "brian.smith@school.test", Phone: "+10000000002", Post: "Lecturer"},
		{Name: "Carla Gomez", Email: "carla.gomez@school.test", Phone: "+10000000003", Post: "Assistant Professor"},
	}

	if err := s.db.Create(&teachers).Error; err != nil {
		return err
	}

	var courses []model.Course
	if err := s.db.Order("title ASC").Find(&courses).Error; err != nil {
		return err
	}

	// Round-robin assignment, one teacher per course
	links := make([]model.CourseTeacher, 0, len(courses))
	for i, course := range courses {
		links = append(links, model.CourseTeacher{
			CourseID:  course.ID,
			TeacherID: teachers[i%len(teachers)].ID,
		})
	}

	if len(links) > 0 {
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created %d teachers with %d course assignments\n", len(teachers), len(links))
	return nil
}

// SeedStudents creates demo students enrolled in the seeded courses
func (s *Seeder) SeedStudents() error {
	var count int64
	if err := s.db.Model(&model.Student{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Students already exist, skipping...")
		return nil
	}

	students := []model.Student{
		{Name: "Daniel Lee", Email: "daniel.lee@student.test", Phone: "+20000000001", Shift: model.ShiftMorning},
		{Name: "Emma Brown", Email: "emma.brown@student.test", Phone: "+20000000002", Shift: model.ShiftEvening},
		{Name: "Farah Khan", Email: "farah.khan@student.test", Phone: "+20000000003", Shift: model.ShiftMorning},
		{Name: "George Miller", Email: "george.miller@student.test", Phone: "+20000000004", Shift: model.ShiftEvening},
	}

	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	var courses []model.Course
	if err := s.db.Order("title ASC").Find(&courses).Error; err != nil {
		return err
	}

	links := make([]model.CourseStudent, 0, len(students))
	for i, student := range students {
		if len(courses) == 0 {
			break
		}
		links = append(links, model.CourseStudent{
			CourseID:  courses[i%len(courses)].ID,
			StudentID: student.ID,
		})
	}

	if len(links) > 0 {
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created %d students with %d enrollments\n", len(students), len(links))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
