package services

import (
	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/model"
	"gorm.io/gorm"
)

// Projections of related entities. Each call site gets exactly the fields
// listed here; nothing is preloaded implicitly.

// TeacherSummary is a teacher as shown inside a course
type TeacherSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Post  string    `json:"post"`
}

// StudentSummary is a student as shown inside a course or teacher
type StudentSummary struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Shift model.Shift `json:"shift"`
}

// CourseRef is a course as shown inside a teacher
type CourseRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// CourseCard is a course as shown inside a student and in dropdowns
type CourseCard struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	ImageURL string    `json:"imageUrl"`
}

// CourseDetail is a course as shown in a teacher's course details
type CourseDetail struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
}

// TeacherOption is a dropdown entry for a teacher
type TeacherOption struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Post   string    `json:"post"`
	Avatar string    `json:"avatar"`
}

// StudentOption is a dropdown entry for a student
type StudentOption struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Avatar string      `json:"avatar"`
	Shift  model.Shift `json:"shift"`
}

type courseTeacherRow struct {
	CourseID uuid.UUID
	ID       uuid.UUID
	Name     string
	Email    string
	Post     string
}

// loadCourseTeachers returns the teachers of every course, keyed by course id
func loadCourseTeachers(db *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID][]TeacherSummary, error) {
	result := make(map[uuid.UUID][]TeacherSummary, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	var rows []courseTeacherRow
	err := db.Table("course_teachers").
		Select("course_teachers.course_id, teachers.id, teachers.name, teachers.email, teachers.post").
		Joins("JOIN teachers ON teachers.id = course_teachers.teacher_id").
		Where("course_teachers.course_id IN ?", courseIDs).
		Order("teachers.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.CourseID] = append(result[row.CourseID], TeacherSummary{
			ID:    row.ID,
			Name:  row.Name,
			Email: row.Email,
			Post:  row.Post,
		})
	}
	return result, nil
}

type courseStudentRow struct {
	CourseID uuid.UUID
	ID       uuid.UUID
	Name     string
	Email    string
	Shift    model.Shift
}

// loadCourseStudents returns the enrolled students of one course
func loadCourseStudents(db *gorm.DB, courseID uuid.UUID) ([]StudentSummary, error) {
	var rows []courseStudentRow
	err := db.Table("course_students").
		Select("course_students.course_id, students.id, students.name, students.email, students.shift").
		Joins("JOIN students ON students.id = course_students.student_id").
		Where("course_students.course_id = ?", courseID).
		Order("students.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	students := make([]StudentSummary, 0, len(rows))
	for _, row := range rows {
		students = append(students, StudentSummary{
			ID:    row.ID,
			Name:  row.Name,
			Email: row.Email,
			Shift: row.Shift,
		})
	}
	return students, nil
}

type teacherCourseRow struct {
	TeacherID   uuid.UUID
	ID          uuid.UUID
	Title       string
	Description string
	ImageURL    string
}

func queryTeacherCourses(db *gorm.DB, teacherIDs []uuid.UUID) ([]teacherCourseRow, error) {
	var rows []teacherCourseRow
	err := db.Table("course_teachers").
		Select("course_teachers.teacher_id, courses.id, courses.title, courses.description, courses.image_url").
		Joins("JOIN courses ON courses.id = course_teachers.course_id").
		Where("course_teachers.teacher_id IN ?", teacherIDs).
		Order("courses.title ASC").
		Scan(&rows).Error
	return rows, err
}

// loadTeacherCourses returns {id, title} of every teacher's courses, keyed by teacher id
func loadTeacherCourses(db *gorm.DB, teacherIDs []uuid.UUID) (map[uuid.UUID][]CourseRef, error) {
	result := make(map[uuid.UUID][]CourseRef, len(teacherIDs))
	if len(teacherIDs) == 0 {
		return result, nil
	}

	rows, err := queryTeacherCourses(db, teacherIDs)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.TeacherID] = append(result[row.TeacherID], CourseRef{ID: row.ID, Title: row.Title})
	}
	return result, nil
}

// loadTeacherCourseDetails returns the full course detail list of one teacher
func loadTeacherCourseDetails(db *gorm.DB, teacherID uuid.UUID) ([]CourseDetail, error) {
	rows, err := queryTeacherCourses(db, []uuid.UUID{teacherID})
	if err != nil {
		return nil, err
	}

	details := make([]CourseDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, CourseDetail{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			ImageURL:    row.ImageURL,
		})
	}
	return details, nil
}

type studentCourseRow struct {
	StudentID uuid.UUID
	ID        uuid.UUID
	Title     string
	ImageURL  string
}

// loadStudentCourses returns the courses of every student, keyed by student id
func loadStudentCourses(db *gorm.DB, studentIDs []uuid.UUID) (map[uuid.UUID][]CourseCard, error) {
	result := make(map[uuid.UUID][]CourseCard, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}

	var rows []studentCourseRow
	err := db.Table("course_students").
		Select("course_students.student_id, courses.id, courses.title, courses.image_url").
		Joins("JOIN courses ON courses.id = course_students.course_id").
		Where("course_students.student_id IN ?", studentIDs).
		Order("courses.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.StudentID] = append(result[row.StudentID], CourseCard{
			ID:       row.ID,
			Title:    row.Title,
			ImageURL: row.ImageURL,
		})
	}
	return result, nil
}

// teacherStudentIDs selects the students enrolled in any course taught by the teacher
func teacherStudentIDs(db *gorm.DB, teacherID uuid.UUID) *gorm.DB {
	return db.Table("course_students").
		Select("course_students.student_id").
		Joins("JOIN course_teachers ON course_teachers.course_id = course_students.course_id").
		Where("course_teachers.teacher_id = ?", teacherID)
}

// loadTeacherStudents returns the distinct students assigned to a teacher, sorted by name
func loadTeacherStudents(db *gorm.DB, teacherID uuid.UUID) ([]StudentSummary, error) {
	students := []StudentSummary{}
	err := db.Model(&model.Student{}).
		Select("students.id, students.name, students.email, students.shift").
		Where("students.id IN (?)", teacherStudentIDs(db.Session(&gorm.Session{NewDB: true}), teacherID)).
		Order("students.name ASC").
		Scan(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

type teacherStudentCountRow struct {
	TeacherID    uuid.UUID
	StudentCount int64
}

// countTeacherStudents counts the distinct students of every teacher in one grouped query
func countTeacherStudents(db *gorm.DB, teacherIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	result := make(map[uuid.UUID]int64, len(teacherIDs))
	if len(teacherIDs) == 0 {
		return result, nil
	}

	var rows []teacherStudentCountRow
	err := db.Table("course_teachers").
		Select("course_teachers.teacher_id, COUNT(DISTINCT course_students.student_id) AS student_count").
		Joins("JOIN course_students ON course_students.course_id = course_teachers.course_id").
		Where("course_teachers.teacher_id IN ?", teacherIDs).
		Group("course_teachers.teacher_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.TeacherID] = row.StudentCount
	}
	return result, nil
}

// orEmpty keeps JSON arrays from rendering as null
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
