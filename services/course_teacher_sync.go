package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncResult describes the delta applied to a course's teacher set
type SyncResult struct {
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
	Final   []uuid.UUID `json:"final"`
}

// parseIDs parses and deduplicates ids, keeping first occurrence order
func parseIDs(raw []string, entity string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, invalidIDError(entity)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(raw string, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalidIDError(entity)
	}
	return id, nil
}

// diffIDs returns target − current and current − target
func diffIDs(current, target []uuid.UUID) (added, removed []uuid.UUID) {
	inCurrent := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		inCurrent[id] = struct{}{}
	}
	inTarget := make(map[uuid.UUID]struct{}, len(target))
	for _, id := range target {
		inTarget[id] = struct{}{}
	}

	added = []uuid.UUID{}
	for _, id := range target {
		if _, ok := inCurrent[id]; !ok {
			added = append(added, id)
		}
	}
	removed = []uuid.UUID{}
	for _, id := range current {
		if _, ok := inTarget[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// ensureExist rejects ids that have no row in table
func ensureExist(tx *gorm.DB, table string, entity string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uuid.UUID
	if err := tx.Table(table).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	missing := make([]string, 0, len(ids)-len(found))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return validationError("unknown %s id(s): %s", entity, strings.Join(missing, ", "))
}

// bumpCourseVersion is the compare-and-swap guarding every write to a
// course's teacher set. It fails with a conflict if another writer got there first.
func bumpCourseVersion(tx *gorm.DB, course *model.Course) error {
	result := tx.Model(&model.Course{}).
		Where("id = ? AND version = ?", course.ID, course.Version).
		UpdateColumn("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflictError("Course was modified concurrently, please retry")
	}
	course.Version++
	return nil
}

// syncTeacherAssignment replaces the teacher set of a course with teacherIDs.
// It must run inside a transaction.
func syncTeacherAssignment(tx *gorm.DB, courseID uuid.UUID, teacherIDs []uuid.UUID) (*SyncResult, error) {
	var course model.Course
	if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
		return nil, err
	}

	if err := ensureExist(tx, "teachers", "teacher", teacherIDs); err != nil {
		return nil, err
	}

	if err := bumpCourseVersion(tx, &course); err != nil {
		return nil, err
	}

	var current []uuid.UUID
	if err := tx.Model(&model.CourseTeacher{}).
		Where("course_id = ?", courseID).
		Order("assigned_at ASC, teacher_id ASC").
		Pluck("teacher_id", &current).Error; err != nil {
		return nil, err
	}

	added, removed := diffIDs(current, teacherIDs)

	if len(removed) > 0 {
		if err := tx.Where("course_id = ? AND teacher_id IN ?", courseID, removed).
			Delete(&model.CourseTeacher{}).Error; err != nil {
			return nil, err
		}
	}

	if len(added) > 0 {
		links := make([]model.CourseTeacher, 0, len(added))
		for _, teacherID := range added {
			links = append(links, model.CourseTeacher{CourseID: courseID, TeacherID: teacherID})
		}
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&links).Error; err != nil {
			return nil, err
		}
	}

	final := make([]uuid.UUID, len(teacherIDs))
	copy(final, teacherIDs)

	return &SyncResult{Added: added, Removed: removed, Final: final}, nil
}

// syncCourseAssignment is the teacher-side mirror of syncTeacherAssignment.
// Every course gaining or losing the teacher gets its version bumped so a
// concurrent course-side sync detects the change.
func syncCourseAssignment(tx *gorm.DB, teacherID uuid.UUID, courseIDs []uuid.UUID) error {
	if err := ensureExist(tx, "courses", "course", courseIDs); err != nil {
		return err
	}

	// Lock every course whose link to this teacher may change before reading
	// the current set, so a concurrent course-side sync cannot interleave.
	linked := tx.Session(&gorm.Session{NewDB: true}).
		Model(&model.CourseTeacher{}).
		Select("course_id").
		Where("teacher_id = ?", teacherID)
	lock := tx.Model(&model.Course{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN (?)", linked)
	if len(courseIDs) > 0 {
		lock = lock.Or("id IN ?", courseIDs)
	}
	var locked []uuid.UUID
	if err := lock.Pluck("id", &locked).Error; err != nil {
		return err
	}

	var current []uuid.UUID
	if err := tx.Model(&model.CourseTeacher{}).
		Where("teacher_id = ?", teacherID).
		Pluck("course_id", &current).Error; err != nil {
		return err
	}

	added, removed := diffIDs(current, courseIDs)

	if len(removed) > 0 {
		if err := tx.Where("teacher_id = ? AND course_id IN ?", teacherID, removed).
			Delete(&model.CourseTeacher{}).Error; err != nil {
			return err
		}
	}

	if len(added) > 0 {
		links := make([]model.CourseTeacher, 0, len(added))
		for _, courseID := range added {
			links = append(links, model.CourseTeacher{CourseID: courseID, TeacherID: teacherID})
		}
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&links).Error; err != nil {
			return err
		}
	}

	affected := append(added, removed...)
	if len(affected) > 0 {
		if err := tx.Model(&model.Course{}).
			Where("id IN ?", affected).
			UpdateColumn("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

// syncStudentEnrollment replaces the course set of a student
func syncStudentEnrollment(tx *gorm.DB, studentID uuid.UUID, courseIDs []uuid.UUID) error {
	if err := ensureExist(tx, "courses", "course", courseIDs); err != nil {
		return err
	}

	var current []uuid.UUID
	if err := tx.Model(&model.CourseStudent{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &current).Error; err != nil {
		return err
	}

	added, removed := diffIDs(current, courseIDs)

	if len(removed) > 0 {
		if err := tx.Where("student_id = ? AND course_id IN ?", studentID, removed).
			Delete(&model.CourseStudent{}).Error; err != nil {
			return err
		}
	}

	if len(added) > 0 {
		links := make([]model.CourseStudent, 0, len(added))
		for _, courseID := range added {
			links = append(links, model.CourseStudent{CourseID: courseID, StudentID: studentID})
		}
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&links).Error; err != nil {
			return err
		}
	}
	return nil
}

// SyncTeacherAssignment replaces the teacher set of a course and reports the delta.
// Unknown teacher ids are rejected before anything is written.
func (s *CourseService) SyncTeacherAssignment(ctx context.Context, courseID string, teacherIDs []string) (*SyncResult, error) {
	id, err := parseID(courseID, "course")
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(teacherIDs, "teacher")
	if err != nil {
		return nil, err
	}

	var result *SyncResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var syncErr error
		result, syncErr = syncTeacherAssignment(tx, id, ids)
		return syncErr
	})
	if err != nil {
		return nil, storeError("CourseService", "Course", "Failed to sync course teachers", err)
	}

	invalidate(ctx, s.cache, CourseStatsKey)
	return result, nil
}
