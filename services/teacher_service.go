package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/model"
	"github.com/sahilchouksey/school-admin-api/utils/cache"
	"github.com/sahilchouksey/school-admin-api/utils/validation"
	"gorm.io/gorm"
)

// TeacherService handles teacher CRUD and the teacher-side course assignment
type TeacherService struct {
	db        *gorm.DB
	cache     cache.Cache
	validator *validation.Validator
}

// NewTeacherService creates a new teacher service. c may be nil.
func NewTeacherService(db *gorm.DB, c cache.Cache) *TeacherService {
	return &TeacherService{
		db:        db,
		cache:     c,
		validator: validation.NewValidator(),
	}
}

// TeacherView is a teacher with courses expanded to {id, title}
type TeacherView struct {
	model.Teacher
	Courses []CourseRef `json:"courses"`
}

// TeacherListItem is a teacher as returned by List
type TeacherListItem struct {
	TeacherView
	StudentCount int64 `json:"studentCount"`
}

// ShiftCounts breaks a student total down by shift
type ShiftCounts struct {
	Morning int64 `json:"morning"`
	Evening int64 `json:"evening"`
}

// TeacherStats holds the aggregates for one teacher's students
type TeacherStats struct {
	TotalStudents   int64       `json:"totalStudents"`
	StudentsByShift ShiftCounts `json:"studentsByShift"`
}

// TeacherDetail is a teacher with course details, students and stats
type TeacherDetail struct {
	TeacherView
	CourseDetails []CourseDetail   `json:"courseDetails"`
	Students      []StudentSummary `json:"students"`
	Stats         TeacherStats     `json:"stats"`
}

// ShiftGroups holds students grouped by shift
type ShiftGroups struct {
	Morning []StudentSummary `json:"morning"`
	Evening []StudentSummary `json:"evening"`
}

// TeacherStudents lists the students assigned to a teacher
type TeacherStudents struct {
	TeacherID     uuid.UUID        `json:"teacherId"`
	TotalStudents int              `json:"totalStudents"`
	Students      []StudentSummary `json:"students"`
	ByShift       ShiftGroups      `json:"byShift"`
}

// TeacherFilter narrows List. Empty fields are ignored.
type TeacherFilter struct {
	Post     string
	CourseID string
}

// CreateTeacherInput represents the request to create a teacher
type CreateTeacherInput struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone" validate:"required"`
	Post      string   `json:"post" validate:"required"`
	Address   string   `json:"address"`
	Avatar    string   `json:"avatar"`
	CourseIDs []string `json:"courseIds"`
}

// UpdateTeacherInput represents a partial teacher update. Nil fields are left untouched.
type UpdateTeacherInput struct {
	Name      *string   `json:"name"`
	Email     *string   `json:"email" validate:"omitnil,email"`
	Phone     *string   `json:"phone"`
	Post      *string   `json:"post"`
	Address   *string   `json:"address"`
	Avatar    *string   `json:"avatar"`
	CourseIDs *[]string `json:"courseIds"`
}

type teacherStatsRow struct {
	TotalStudents int64
	Morning       int64
	Evening       int64
}

// Create persists a new teacher and assigns its courses
func (s *TeacherService) Create(ctx context.Context, input CreateTeacherInput) (*TeacherView, error) {
	input.Name = validation.SanitizeString(input.Name)
	input.Email = validation.SanitizeString(input.Email)
	input.Phone = validation.SanitizeString(input.Phone)
	input.Post = validation.SanitizeString(input.Post)
	input.Address = validation.SanitizeString(input.Address)
	input.Avatar = validation.SanitizeString(input.Avatar)

	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}

	courseIDs, err := parseIDs(input.CourseIDs, "course")
	if err != nil {
		return nil, err
	}

	teacher := model.Teacher{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Post:    input.Post,
		Address: input.Address,
		Avatar:  input.Avatar,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTeacherContactAvailable(tx, teacher.Email, teacher.Phone, uuid.Nil); err != nil {
			return err
		}
		if err := ensureExist(tx, "courses", "course", courseIDs); err != nil {
			return err
		}
		if err := tx.Create(&teacher).Error; err != nil {
			return err
		}
		return syncCourseAssignment(tx, teacher.ID, courseIDs)
	})
	if err != nil {
		return nil, storeError("TeacherService", "Teacher", "Failed to create teacher", err)
	}

	invalidate(ctx, s.cache, TeacherDropdownKey, CourseStatsKey)

	return s.view(ctx, teacher.ID)
}

// List returns a page of teachers with their student counts
func (s *TeacherService) List(ctx context.Context, page Page, filter TeacherFilter) ([]TeacherListItem, ListMeta, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&model.Teacher{})
	if post := strings.TrimSpace(filter.Post); post != "" {
		query = query.Where("post = ?", post)
	}
	if filter.CourseID != "" {
		courseID, err := parseID(filter.CourseID, "course")
		if err != nil {
			return nil, ListMeta{}, err
		}
		query = query.Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&model.CourseTeacher{}).Select("teacher_id").Where("course_id = ?", courseID))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, ListMeta{}, internalError("TeacherService", "Failed to count teachers", err)
	}

	var teachers []model.Teacher
	if err := query.Order("created_at DESC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&teachers).Error; err != nil {
		return nil, ListMeta{}, internalError("TeacherService", "Failed to fetch teachers", err)
	}

	views, err := s.expand(db, teachers)
	if err != nil {
		return nil, ListMeta{}, internalError("TeacherService", "Failed to fetch teacher courses", err)
	}

	ids := make([]uuid.UUID, 0, len(teachers))
	for _, teacher := range teachers {
		ids = append(ids, teacher.ID)
	}
	counts, err := countTeacherStudents(db, ids)
	if err != nil {
		return nil, ListMeta{}, internalError("TeacherService", "Failed to count teacher students", err)
	}

	items := make([]TeacherListItem, 0, len(views))
	for _, view := range views {
		items = append(items, TeacherListItem{TeacherView: view, StudentCount: counts[view.ID]})
	}

	return items, page.listMeta(total), nil
}

// ListAllForDropdown returns every teacher as {id, name, post, avatar}, sorted by name
func (s *TeacherService) ListAllForDropdown(ctx context.Context) ([]TeacherOption, error) {
	return cached(ctx, s.cache, TeacherDropdownKey, func() ([]TeacherOption, error) {
		options := []TeacherOption{}
		if err := s.db.WithContext(ctx).Model(&model.Teacher{}).
			Select("id, name, post, avatar").
			Order("name ASC").
			Scan(&options).Error; err != nil {
			return nil, internalError("TeacherService", "Failed to fetch teachers", err)
		}
		return options, nil
	})
}

// GetByID returns a teacher with its course details, students and stats
func (s *TeacherService) GetByID(ctx context.Context, id string) (*TeacherDetail, error) {
	teacherID, err := parseID(id, "teacher")
	if err != nil {
		return nil, err
	}

	view, err := s.view(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	details, err := loadTeacherCourseDetails(db, teacherID)
	if err != nil {
		return nil, internalError("TeacherService", "Failed to fetch teacher courses", err)
	}

	students, err := loadTeacherStudents(db, teacherID)
	if err != nil {
		return nil, internalError("TeacherService", "Failed to fetch teacher students", err)
	}

	return &TeacherDetail{
		TeacherView:   *view,
		CourseDetails: details,
		Students:      students,
		Stats:         statsFromStudents(students),
	}, nil
}

// Students returns the students assigned to a teacher, grouped by shift
func (s *TeacherService) Students(ctx context.Context, id string) (*TeacherStudents, error) {
	teacherID, err := s.requireTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	students, err := loadTeacherStudents(s.db.WithContext(ctx), teacherID)
	if err != nil {
		return nil, internalError("TeacherService", "Failed to fetch teacher students", err)
	}

	groups := ShiftGroups{Morning: []StudentSummary{}, Evening: []StudentSummary{}}
	for _, student := range students {
		switch student.Shift {
		case model.ShiftMorning:
			groups.Morning = append(groups.Morning, student)
		case model.ShiftEvening:
			groups.Evening = append(groups.Evening, student)
		}
	}

	return &TeacherStudents{
		TeacherID:     teacherID,
		TotalStudents: len(students),
		Students:      students,
		ByShift:       groups,
	}, nil
}

// Courses returns the course detail list of a teacher
func (s *TeacherService) Courses(ctx context.Context, id string) ([]CourseDetail, error) {
	teacherID, err := s.requireTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := loadTeacherCourseDetails(s.db.WithContext(ctx), teacherID)
	if err != nil {
		return nil, internalError("TeacherService", "Failed to fetch teacher courses", err)
	}
	return details, nil
}

// Update applies a partial update. A present courseIds replaces the course set.
func (s *TeacherService) Update(ctx context.Context, id string, input UpdateTeacherInput) (*TeacherView, error) {
	teacherID, err := parseID(id, "teacher")
	if err != nil {
		return nil, err
	}

	input.Email = validation.SanitizeOptional(input.Email)
	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"name":  input.Name,
		"email": input.Email,
		"phone": input.Phone,
		"post":  input.Post,
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
		var teacher model.Teacher
		if err := tx.First(&teacher, "id = ?", teacherID).Error; err != nil {
			return err
		}

		email, _ := updates["email"].(string)
		phone, _ := updates["phone"].(string)
		if email == teacher.Email {
			email = ""
		}
		if phone == teacher.Phone {
			phone = ""
		}
		if err := ensureTeacherContactAvailable(tx, email, phone, teacher.ID); err != nil {
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&teacher).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.CourseIDs != nil {
			return syncCourseAssignment(tx, teacher.ID, courseIDs)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("TeacherService", "Teacher", "Failed to update teacher", err)
	}

	invalidate(ctx, s.cache, TeacherDropdownKey, CourseStatsKey)

	return s.view(ctx, teacherID)
}

// Delete removes a teacher that has no courses and no students
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	teacherID, err := parseID(id, "teacher")
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher model.Teacher
		if err := tx.First(&teacher, "id = ?", teacherID).Error; err != nil {
			return err
		}

		var titles []string
		if err := tx.Model(&model.Course{}).
			Where("id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Model(&model.CourseTeacher{}).Select("course_id").Where("teacher_id = ?", teacherID)).
			Order("title ASC").
			Pluck("title", &titles).Error; err != nil {
			return err
		}
		if len(titles) > 0 {
			return conflictError("Cannot delete teacher: assigned to %d course(s): %s", len(titles), strings.Join(titles, ", "))
		}

		var studentCount int64
		if err := tx.Model(&model.Student{}).
			Where("id IN (?)", teacherStudentIDs(tx.Session(&gorm.Session{NewDB: true}), teacherID)).
			Count(&studentCount).Error; err != nil {
			return err
		}
		if studentCount > 0 {
			return conflictError("Cannot delete teacher: %d student(s) are still assigned", studentCount)
		}

		return tx.Delete(&teacher).Error
	})
	if err != nil {
		return storeError("TeacherService", "Teacher", "Failed to delete teacher", err)
	}

	invalidate(ctx, s.cache, TeacherDropdownKey)
	return nil
}

// Stats returns the student total and shift breakdown of one teacher
func (s *TeacherService) Stats(ctx context.Context, id string) (*TeacherStats, error) {
	teacherID, err := s.requireTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var row teacherStatsRow
	err = db.Model(&model.Student{}).
		Select(`COUNT(*) AS total_students,
			COALESCE(SUM(CASE WHEN students.shift = ? THEN 1 ELSE 0 END), 0) AS morning,
			COALESCE(SUM(CASE WHEN students.shift = ? THEN 1 ELSE 0 END), 0) AS evening`,
			string(model.ShiftMorning), string(model.ShiftEvening)).
		Where("students.id IN (?)", teacherStudentIDs(db.Session(&gorm.Session{NewDB: true}), teacherID)).
		Scan(&row).Error
	if err != nil {
		return nil, internalError("TeacherService", "Failed to compute teacher stats", err)
	}

	return &TeacherStats{
		TotalStudents:   row.TotalStudents,
		StudentsByShift: ShiftCounts{Morning: row.Morning, Evening: row.Evening},
	}, nil
}

// requireTeacher parses id and checks the teacher exists
func (s *TeacherService) requireTeacher(ctx context.Context, id string) (uuid.UUID, error) {
	teacherID, err := parseID(id, "teacher")
	if err != nil {
		return uuid.Nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Teacher{}).Where("id = ?", teacherID).Count(&count).Error; err != nil {
		return uuid.Nil, internalError("TeacherService", "Failed to fetch teacher", err)
	}
	if count == 0 {
		return uuid.Nil, notFoundError("Teacher")
	}
	return teacherID, nil
}

func (s *TeacherService) view(ctx context.Context, id uuid.UUID) (*TeacherView, error) {
	db := s.db.WithContext(ctx)

	var teacher model.Teacher
	if err := db.First(&teacher, "id = ?", id).Error; err != nil {
		return nil, storeError("TeacherService", "Teacher", "Failed to fetch teacher", err)
	}

	views, err := s.expand(db, []model.Teacher{teacher})
	if err != nil {
		return nil, internalError("TeacherService", "Failed to fetch teacher courses", err)
	}
	return &views[0], nil
}

func (s *TeacherService) expand(db *gorm.DB, teachers []model.Teacher) ([]TeacherView, error) {
	ids := make([]uuid.UUID, 0, len(teachers))
	for _, teacher := range teachers {
		ids = append(ids, teacher.ID)
	}

	courses, err := loadTeacherCourses(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]TeacherView, 0, len(teachers))
	for _, teacher := range teachers {
		views = append(views, TeacherView{Teacher: teacher, Courses: orEmpty(courses[teacher.ID])})
	}
	return views, nil
}

func statsFromStudents(students []StudentSummary) TeacherStats {
	stats := TeacherStats{TotalStudents: int64(len(students))}
	for _, student := range students {
		switch student.Shift {
		case model.ShiftMorning:
			stats.StudentsByShift.Morning++
		case model.ShiftEvening:
			stats.StudentsByShift.Evening++
		}
	}
	return stats
}

// ensureTeacherContactAvailable fails with a conflict if another teacher
// uses email or phone. Empty values are not checked.
func ensureTeacherContactAvailable(tx *gorm.DB, email, phone string, exceptID uuid.UUID) error {
	check := func(column, value string) error {
		if value == "" {
			return nil
		}
		query := tx.Model(&model.Teacher{}).Where(column+" = ?", value)
		if exceptID != uuid.Nil {
			query = query.Where("id <> ?", exceptID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflictError("Teacher with this %s already exists", column)
		}
		return nil
	}

	if err := check("email", email); err != nil {
		return err
	}
	return check("phone", phone)
}
