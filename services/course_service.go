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
	"gorm.io/gorm/clause"
)

// CourseService handles course CRUD, search and the course-side teacher assignment
type CourseService struct {
	db        *gorm.DB
	cache     cache.Cache
	validator *validation.Validator
}

// NewCourseService creates a new course service. c may be nil.
func NewCourseService(db *gorm.DB, c cache.Cache) *CourseService {
	return &CourseService{
		db:        db,
		cache:     c,
		validator: validation.NewValidator(),
	}
}

// CourseView is a course with its teachers expanded
type CourseView struct {
	model.Course
	Teachers []TeacherSummary `json:"teachers"`
}

// CourseDetailView is a course with teachers and students expanded
type CourseDetailView struct {
	CourseView
	Students []StudentSummary `json:"students"`
}

// CourseStats holds the course aggregates
type CourseStats struct {
	TotalCourses           int64 `json:"totalCourses"`
	CoursesWithTeachers    int64 `json:"coursesWithTeachers"`
	CoursesWithoutTeachers int64 `json:"coursesWithoutTeachers"`
}

type courseStatsRow struct {
	TotalCourses        int64
	CoursesWithTeachers int64
}

// CreateCourseInput represents the request to create a course
type CreateCourseInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ImageURL    string   `json:"imageUrl"`
	TeacherIDs  []string `json:"teacherIds"`
}

// UpdateCourseInput represents a partial course update. Nil fields are left untouched.
type UpdateCourseInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	TeacherIDs  *[]string `json:"teacherIds"`
}

// Create persists a new course and assigns its teachers
func (s *CourseService) Create(ctx context.Context, input CreateCourseInput) (*CourseView, error) {
	input.Title = validation.SanitizeString(input.Title)
	input.Description = validation.SanitizeString(input.Description)
	input.ImageURL = validation.SanitizeString(input.ImageURL)

	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}

	teacherIDs, err := parseIDs(input.TeacherIDs, "teacher")
	if err != nil {
		return nil, err
	}

	course := model.Course{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTitleAvailable(tx, input.Title, uuid.Nil); err != nil {
			return err
		}
		if err := ensureExist(tx, "teachers", "teacher", teacherIDs); err != nil {
			return err
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		if len(teacherIDs) == 0 {
			return nil
		}

		links := make([]model.CourseTeacher, 0, len(teacherIDs))
		for _, teacherID := range teacherIDs {
			links = append(links, model.CourseTeacher{CourseID: course.ID, TeacherID: teacherID})
		}
		return tx.Omit(clause.Associations).Create(&links).Error
	})
	if err != nil {
		return nil, storeError("CourseService", "Course", "Failed to create course", err)
	}

	invalidate(ctx, s.cache, CourseStatsKey, CourseDropdownKey)

	return s.view(ctx, course.ID)
}

// List returns a page of courses ordered by creation time
func (s *CourseService) List(ctx context.Context, page Page, sortDesc bool) ([]CourseView, ListMeta, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Course{}).Count(&total).Error; err != nil {
		return nil, ListMeta{}, internalError("CourseService", "Failed to count courses", err)
	}

	order := "created_at DESC"
	if !sortDesc {
		order = "created_at ASC"
	}

	var courses []model.Course
	if err := db.Order(order).Order("id ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&courses).Error; err != nil {
		return nil, ListMeta{}, internalError("CourseService", "Failed to fetch courses", err)
	}

	views, err := s.expand(db, courses)
	if err != nil {
		return nil, ListMeta{}, internalError("CourseService", "Failed to fetch course teachers", err)
	}

	return views, page.listMeta(total), nil
}

// ListAllForDropdown returns every course as {id, title, imageUrl}, sorted by title
func (s *CourseService) ListAllForDropdown(ctx context.Context) ([]CourseCard, error) {
	return cached(ctx, s.cache, CourseDropdownKey, func() ([]CourseCard, error) {
		cards := []CourseCard{}
		if err := s.db.WithContext(ctx).Model(&model.Course{}).
			Select("id, title, image_url").
			Order("title ASC").
			Scan(&cards).Error; err != nil {
			return nil, internalError("CourseService", "Failed to fetch courses", err)
		}
		return cards, nil
	})
}

// GetByID returns a course with its teachers and students
func (s *CourseService) GetByID(ctx context.Context, id string) (*CourseDetailView, error) {
	courseID, err := parseID(id, "course")
	if err != nil {
		return nil, err
	}

	view, err := s.view(ctx, courseID)
	if err != nil {
		return nil, err
	}

	students, err := loadCourseStudents(s.db.WithContext(ctx), courseID)
	if err != nil {
		return nil, internalError("CourseService", "Failed to fetch course students", err)
	}

	return &CourseDetailView{CourseView: *view, Students: students}, nil
}

// Search matches query literally and case-insensitively against title and description
func (s *CourseService) Search(ctx context.Context, query string, page Page) ([]CourseView, PageMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, PageMeta{}, validationError("Search query is required")
	}

	db := s.db.WithContext(ctx)
	where, args := queryHelper.ContainsClause(query, "title", "description")

	var total int64
	if err := db.Model(&model.Course{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, PageMeta{}, internalError("CourseService", "Failed to search courses", err)
	}

	var courses []model.Course
	if err := db.Where(where, args...).
		Order("created_at DESC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&courses).Error; err != nil {
		return nil, PageMeta{}, internalError("CourseService", "Failed to search courses", err)
	}

	views, err := s.expand(db, courses)
	if err != nil {
		return nil, PageMeta{}, internalError("CourseService", "Failed to fetch course teachers", err)
	}

	return views, page.pageMeta(total), nil
}

// Update applies a partial update. A present teacherIds replaces the teacher set.
func (s *CourseService) Update(ctx context.Context, id string, input UpdateCourseInput) (*CourseView, error) {
	courseID, err := parseID(id, "course")
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := validation.SanitizeString(*input.Title)
		if title == "" {
			return nil, validationError("title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description := validation.SanitizeString(*input.Description)
		if description == "" {
			return nil, validationError("description cannot be empty")
		}
		updates["description"] = description
	}
	if input.ImageURL != nil {
		updates["image_url"] = validation.SanitizeString(*input.ImageURL)
	}

	var teacherIDs []uuid.UUID
	if input.TeacherIDs != nil {
		if teacherIDs, err = parseIDs(*input.TeacherIDs, "teacher"); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			return err
		}

		if title, ok := updates["title"].(string); ok && title != course.Title {
			if err := ensureTitleAvailable(tx, title, course.ID); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			updates["version"] = gorm.Expr("version + 1")
			result := tx.Model(&model.Course{}).
				Where("id = ? AND version = ?", course.ID, course.Version).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return conflictError("Course was modified concurrently, please retry")
			}
		}

		if input.TeacherIDs != nil {
			if _, err := syncTeacherAssignment(tx, course.ID, teacherIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError("CourseService", "Course", "Failed to update course", err)
	}

	invalidate(ctx, s.cache, CourseStatsKey, CourseDropdownKey)

	return s.view(ctx, courseID)
}

// Delete removes a course that has no teachers and no students
func (s *CourseService) Delete(ctx context.Context, id string) error {
	courseID, err := parseID(id, "course")
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			return err
		}

		var teacherCount int64
		if err := tx.Model(&model.CourseTeacher{}).Where("course_id = ?", courseID).Count(&teacherCount).Error; err != nil {
			return err
		}
		if teacherCount > 0 {
			return conflictError("Cannot delete course: it has %d teacher(s) assigned", teacherCount)
		}

		var studentCount int64
		if err := tx.Model(&model.CourseStudent{}).Where("course_id = ?", courseID).Count(&studentCount).Error; err != nil {
			return err
		}
		if studentCount > 0 {
			return conflictError("Cannot delete course: it has %d student(s) enrolled", studentCount)
		}

		return tx.Delete(&course).Error
	})
	if err != nil {
		return storeError("CourseService", "Course", "Failed to delete course", err)
	}

	invalidate(ctx, s.cache, CourseStatsKey, CourseDropdownKey)
	return nil
}

// Stats computes course aggregates in a single query
func (s *CourseService) Stats(ctx context.Context) (*CourseStats, error) {
	return cached(ctx, s.cache, CourseStatsKey, func() (*CourseStats, error) {
		var row courseStatsRow
		err := s.db.WithContext(ctx).Raw(`
			SELECT
				COUNT(*) AS total_courses,
				COALESCE(SUM(CASE WHEN EXISTS (
					SELECT 1 FROM course_teachers WHERE course_teachers.course_id = courses.id
				) THEN 1 ELSE 0 END), 0) AS courses_with_teachers
			FROM courses`).Scan(&row).Error
		if err != nil {
			return nil, internalError("CourseService", "Failed to compute course stats", err)
		}

		return &CourseStats{
			TotalCourses:           row.TotalCourses,
			CoursesWithTeachers:    row.CoursesWithTeachers,
			CoursesWithoutTeachers: row.TotalCourses - row.CoursesWithTeachers,
		}, nil
	})
}

// ListByTeacher returns the courses a teacher is assigned to
func (s *CourseService) ListByTeacher(ctx context.Context, teacherID string) ([]CourseView, error) {
	id, err := parseID(teacherID, "teacher")
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&model.Teacher{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return nil, internalError("CourseService", "Failed to fetch teacher", err)
	}
	if exists == 0 {
		return nil, notFoundError("Teacher")
	}

	var courses []model.Course
	if err := db.Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
		Model(&model.CourseTeacher{}).Select("course_id").Where("teacher_id = ?", id)).
		Order("title ASC").
		Find(&courses).Error; err != nil {
		return nil, internalError("CourseService", "Failed to fetch teacher courses", err)
	}

	views, err := s.expand(db, courses)
	if err != nil {
		return nil, internalError("CourseService", "Failed to fetch course teachers", err)
	}
	return views, nil
}

// view loads one course with its teachers expanded
func (s *CourseService) view(ctx context.Context, id uuid.UUID) (*CourseView, error) {
	db := s.db.WithContext(ctx)

	var course model.Course
	if err := db.First(&course, "id = ?", id).Error; err != nil {
		return nil, storeError("CourseService", "Course", "Failed to fetch course", err)
	}

	views, err := s.expand(db, []model.Course{course})
	if err != nil {
		return nil, internalError("CourseService", "Failed to fetch course teachers", err)
	}
	return &views[0], nil
}

func (s *CourseService) expand(db *gorm.DB, courses []model.Course) ([]CourseView, error) {
	ids := make([]uuid.UUID, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID)
	}

	teachers, err := loadCourseTeachers(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, CourseView{Course: course, Teachers: orEmpty(teachers[course.ID])})
	}
	return views, nil
}

// ensureTitleAvailable fails with a conflict if another course uses title
func ensureTitleAvailable(tx *gorm.DB, title string, exceptID uuid.UUID) error {
	query := tx.Model(&model.Course{}).Where("title = ?", title)
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflictError("Course with title '%s' already exists", title)
	}
	return nil
}

// RefreshStats drops the cached stats and recomputes them
func (s *CourseService) RefreshStats(ctx context.Context) (*CourseStats, error) {
	invalidate(ctx, s.cache, CourseStatsKey)
	return s.Stats(ctx)
}
