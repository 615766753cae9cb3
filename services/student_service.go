package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/model"
	"github.com/sahilchouksey/school-admin-api/utils/cache"
	queryHelper "github.com/sahilchouksey/school-admin-api/utils/query"
	"github.com/sahilchouksey/school-admin-api/utils/validation"
	"gorm.io/gorm"
)

// StudentService handles student CRUD, search and enrollments
type StudentService struct {
	db        *gorm.DB
	cache     cache.Cache
	validator *validation.Validator
}

// NewStudentService creates a new student service. c may be nil.
func NewStudentService(db *gorm.DB, c cache.Cache) *StudentService {
	return &StudentService{
		db:        db,
		cache:     c,
		validator: validation.NewValidator(),
	}
}

// StudentView is a student with courses expanded to {id, title, imageUrl}
type StudentView struct {
	model.Student
	Courses []CourseCard `json:"courses"`
}

// StudentStats holds the student aggregates
type StudentStats struct {
	TotalStudents  int64 `json:"totalStudents"`
	MorningShift   int64 `json:"morningShift"`
	EveningShift   int64 `json:"eveningShift"`
	WithCourses    int64 `json:"withCourses"`
	WithoutCourses int64 `json:"withoutCourses"`
}

type studentStatsRow struct {
	TotalStudents int64
	MorningShift  int64
	EveningShift  int64
	WithCourses   int64
}

// StudentFilter narrows List. Empty fields are ignored.
type StudentFilter struct {
	Shift string
}

// CreateStudentInput represents the request to create a student
type CreateStudentInput struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone" validate:"required"`
	Shift     string   `json:"shift" validate:"required,oneof=morning evening"`
	Address   string   `json:"address"`
	Avatar    string   `json:"avatar"`
	CourseIDs []string `json:"courseIds"`
}

// UpdateStudentInput represents a partial student update. Nil fields are left untouched.
type UpdateStudentInput struct {
	Name      *string   `json:"name"`
	Email     *string   `json:"email" validate:"omitnil,email"`
	Phone     *string   `json:"phone"`
	Shift     *string   `json:"shift" validate:"omitnil,oneof=morning evening"`
	Address   *string   `json:"address"`
	Avatar    *string   `json:"avatar"`
	CourseIDs *[]string `json:"courseIds"`
}

// Create persists a new student and enrolls it in its courses
func (s *StudentService) Create(ctx context.Context, input CreateStudentInput) (*StudentView, error) {
	input.Name = validation.SanitizeString(input.Name)
	input.Email = validation.SanitizeString(input.Email)
	input.Phone = validation.SanitizeString(input.Phone)
	input.Shift = validation.SanitizeString(input.Shift)
	input.Address = validation.SanitizeString(input.Address)
	input.Avatar = validation.SanitizeString(input.Avatar)

	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}

	courseIDs, err := parseIDs(input.CourseIDs, "course")
	if err != nil {
		return nil, err
	}

	student := model.Student{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Shift:   model.Shift(input.Shift),
		Address: input.Address,
		Avatar:  input.Avatar,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureStudentEmailAvailable(tx, student.Email, uuid.Nil); err != nil {
			return err
		}
		if err := ensureExist(tx, "courses", "course", courseIDs); err != nil {
			return err
		}
		if err := tx.Create(&student).Error; err != nil {
			return err
		}
		return syncStudentEnrollment(tx, student.ID, courseIDs)
	})
	if err != nil {
		return nil, storeError("StudentService", "Student", "Failed to create student", err)
	}

	invalidate(ctx, s.cache, StudentStatsKey, StudentDropdownKey)

	return s.view(ctx, student.ID)
}

// List returns a page of students, optionally filtered by shift
func (s *StudentService) List(ctx context.Context, page Page, filter StudentFilter) ([]StudentView, ListMeta, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&model.Student{})
	if filter.Shift != "" {
		shift, err := parseShift(filter.Shift)
		if err != nil {
			return nil, ListMeta{}, err
		}
		query = query.Where("shift = ?", shift)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, ListMeta{}, internalError("StudentService", "Failed to count students", err)
	}

	var students []model.Student
	if err := query.Order("created_at DESC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&students).Error; err != nil {
		return nil, ListMeta{}, internalError("StudentService", "Failed to fetch students", err)
	}

	views, err := s.expand(db, students)
	if err != nil {
		return nil, ListMeta{}, internalError("StudentService", "Failed to fetch student courses", err)
	}

	return views, page.listMeta(total), nil
}

// ListAllForDropdown returns every student as {id, name, email, avatar, shift}, sorted by name
func (s *StudentService) ListAllForDropdown(ctx context.Context) ([]StudentOption, error) {
	return cached(ctx, s.cache, StudentDropdownKey, func() ([]StudentOption, error) {
		options := []StudentOption{}
		if err := s.db.WithContext(ctx).Model(&model.Student{}).
			Select("id, name, email, avatar, shift").
			Order("name ASC").
			Scan(&options).Error; err != nil {
			return nil, internalError("StudentService", "Failed to fetch students", err)
		}
		return options, nil
	})
}

// GetByID returns a student with its courses
func (s *StudentService) GetByID(ctx context.Context, id string) (*StudentView, error) {
	studentID, err := parseID(id, "student")
	if err != nil {
		return nil, err
	}
	return s.view(ctx, studentID)
}

// Update applies a partial update. A present courseIds replaces the enrollments.
func (s *StudentService) Update(ctx context.Context, id string, input UpdateStudentInput) (*StudentView, error) {
	studentID, err := parseID(id, "student")
	if err != nil {
		return nil, err
	}

	input.Email = validation.SanitizeOptional(input.Email)
	input.Shift = validation.SanitizeOptional(input.Shift)
	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"name":  input.Name,
		"email": input.Email,
		"phone": input.Phone,
		"shift": input.Shift,
	} {
		if value == nil {
			continue
		}
		sanitized := validation.SanitizeString(*value)
		if sanitized == "" {
			return nil, validationError("%s cannot be empty", column)
		}
		updates[column] = sanitized
	}
	if input.Address != nil {
		updates["address"] = validation.SanitizeString(*input.Address)
	}
	if input.Avatar != nil {
		updates["avatar"] = validation.SanitizeString(*input.Avatar)
	}

	var courseIDs []uuid.UUID
	if input.CourseIDs != nil {
		if courseIDs, err = parseIDs(*input.CourseIDs, "course"); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}

		if email, ok := updates["email"].(string); ok && email != student.Email {
			if err := ensureStudentEmailAvailable(tx, email, student.ID); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&student).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.CourseIDs != nil {
			return syncStudentEnrollment(tx, student.ID, courseIDs)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("StudentService", "Student", "Failed to update student", err)
	}

	invalidate(ctx, s.cache, StudentStatsKey, StudentDropdownKey)

	return s.view(ctx, studentID)
}

// Delete removes a student together with its enrollments
func (s *StudentService) Delete(ctx context.Context, id string) error {
	studentID, err := parseID(id, "student")
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&model.CourseStudent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		return storeError("StudentService", "Student", "Failed to delete student", err)
	}

	invalidate(ctx, s.cache, StudentStatsKey, StudentDropdownKey)
	return nil
}

// Search matches query literally and case-insensitively against name, email,
// phone, address and shift
func (s *StudentService) Search(ctx context.Context, query string, page Page) ([]StudentView, PageMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, PageMeta{}, validationError("Search query is required")
	}

	db := s.db.WithContext(ctx)
	where, args := queryHelper.ContainsClause(query, "name", "email", "phone", "address", "shift")

	var total int64
	if err := db.Model(&model.Student{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, PageMeta{}, internalError("StudentService", "Failed to search students", err)
	}

	var students []model.Student
	if err := db.Where(where, args...).
		Order("name ASC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&students).Error; err != nil {
		return nil, PageMeta{}, internalError("StudentService", "Failed to search students", err)
	}

	views, err := s.expand(db, students)
	if err != nil {
		return nil, PageMeta{}, internalError("StudentService", "Failed to fetch student courses", err)
	}

	return views, page.pageMeta(total), nil
}

// ListByShift returns every student of a shift, sorted by name
func (s *StudentService) ListByShift(ctx context.Context, shift string) ([]StudentView, error) {
	parsed, err := parseShift(shift)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var students []model.Student
	if err := db.Where("shift = ?", parsed).Order("name ASC").Find(&students).Error; err != nil {
		return nil, internalError("StudentService", "Failed to fetch students", err)
	}

	views, err := s.expand(db, students)
	if err != nil {
		return nil, internalError("StudentService", "Failed to fetch student courses", err)
	}
	return views, nil
}

// Stats computes student aggregates in a single query
func (s *StudentService) Stats(ctx context.Context) (*StudentStats, error) {
	return cached(ctx, s.cache, StudentStatsKey, func() (*StudentStats, error) {
		var row studentStatsRow
		err := s.db.WithContext(ctx).Raw(`
			SELECT
				COUNT(*) AS total_students,
				COALESCE(SUM(CASE WHEN shift = ? THEN 1 ELSE 0 END), 0) AS morning_shift,
				COALESCE(SUM(CASE WHEN shift = ? THEN 1 ELSE 0 END), 0) AS evening_shift,
				COALESCE(SUM(CASE WHEN EXISTS (
					SELECT 1 FROM course_students WHERE course_students.student_id = students.id
				) THEN 1 ELSE 0 END), 0) AS with_courses
			FROM students`, string(model.ShiftMorning), string(model.ShiftEvening)).Scan(&row).Error
		if err != nil {
			return nil, internalError("StudentService", "Failed to compute student stats", err)
		}

		return &StudentStats{
			TotalStudents:  row.TotalStudents,
			MorningShift:   row.MorningShift,
			EveningShift:   row.EveningShift,
			WithCourses:    row.WithCourses,
			WithoutCourses: row.TotalStudents - row.WithCourses,
		}, nil
	})
}

func (s *StudentService) view(ctx context.Context, id uuid.UUID) (*StudentView, error) {
	db := s.db.WithContext(ctx)

	var student model.Student
	if err := db.First(&student, "id = ?", id).Error; err != nil {
		return nil, storeError("StudentService", "Student", "Failed to fetch student", err)
	}

	views, err := s.expand(db, []model.Student{student})
	if err != nil {
		return nil, internalError("StudentService", "Failed to fetch student courses", err)
	}
	return &views[0], nil
}

func (s *StudentService) expand(db *gorm.DB, students []model.Student) ([]StudentView, error) {
	ids := make([]uuid.UUID, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	courses, err := loadStudentCourses(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, StudentView{Student: student, Courses: orEmpty(courses[student.ID])})
	}
	return views, nil
}

// parseShift validates a shift value
func parseShift(value string) (string, error) {
	shift := model.Shift(strings.ToLower(strings.TrimSpace(value)))
	if !shift.IsValid() {
		return "", validationError("shift must be one of: morning, evening")
	}
	return string(shift), nil
}

// ensureStudentEmailAvailable fails with a conflict if another student uses email
func ensureStudentEmailAvailable(tx *gorm.DB, email string, exceptID uuid.UUID) error {
	query := tx.Model(&model.Student{}).Where("email = ?", email)
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflictError("Student with email '%s' already exists", email)
	}
	return nil
}

// RefreshStats drops the cached stats and recomputes them
func (s *StudentService) RefreshStats(ctx context.Context) (*StudentStats, error) {
	invalidate(ctx, s.cache, StudentStatsKey)
	return s.Stats(ctx)
}
