package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/model"
	"gorm.io/gorm"
)

func TestScenario_TeacherCourseAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	teacherA := f.teacher(t, "Teacher A")
	courseX := f.course(t, "Course X", teacherA.ID.String())

	if got := teacherSummaryIDs(courseX.Teachers); len(got) != 1 || got[0] != teacherA.ID.String() {
		t.Fatalf("course X teachers = %v, want [A]", got)
	}
	teacher, err := f.teachers.GetByID(ctx, teacherA.ID.String())
	if err != nil {
		t.Fatalf("get teacher: %v", err)
	}
	if got := courseRefIDs(teacher.Courses); len(got) != 1 || got[0] != courseX.ID.String() {
		t.Fatalf("teacher A courses = %v, want [X]", got)
	}

	err = f.teachers.Delete(ctx, teacherA.ID.String())
	assertKind(t, err, ErrConflict)

	empty := []string{}
	updated, err := f.courses.Update(ctx, courseX.ID.String(), UpdateCourseInput{TeacherIDs: &empty})
	if err != nil {
		t.Fatalf("clear teachers: %v", err)
	}
	if len(updated.Teachers) != 0 {
		t.Errorf("course X should have no teachers, got %v", updated.Teachers)
	}
	teacher, err = f.teachers.GetByID(ctx, teacherA.ID.String())
	if err != nil {
		t.Fatalf("get teacher: %v", err)
	}
	if len(teacher.Courses) != 0 {
		t.Errorf("teacher A should have no courses, got %v", teacher.Courses)
	}

	if err := f.teachers.Delete(ctx, teacherA.ID.String()); err != nil {
		t.Fatalf("delete after clearing: %v", err)
	}
}

func TestSyncTeacherAssignment_Delta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.teacher(t, "Alice")
	b := f.teacher(t, "Bob")
	c := f.teacher(t, "Carol")
	course := f.course(t, "Physics", a.ID.String(), b.ID.String())

	result, err := f.courses.SyncTeacherAssignment(ctx, course.ID.String(), []string{b.ID.String(), c.ID.String()})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Added) != 1 || result.Added[0] != c.ID {
		t.Errorf("added = %v, want [C]", result.Added)
	}
	if len(result.Removed) != 1 || result.Removed[0] != a.ID {
		t.Errorf("removed = %v, want [A]", result.Removed)
	}
	if len(result.Final) != 2 || result.Final[0] != b.ID || result.Final[1] != c.ID {
		t.Errorf("final = %v, want [B C]", result.Final)
	}

	// Both directions read the same rows
	for _, teacher := range []*TeacherView{a, b, c} {
		view, err := f.teachers.GetByID(ctx, teacher.ID.String())
		if err != nil {
			t.Fatalf("get teacher: %v", err)
		}
		has := contains(courseRefIDs(view.Courses), course.ID.String())
		want := teacher.ID != a.ID
		if has != want {
			t.Errorf("teacher %s has course = %v, want %v", teacher.Name, has, want)
		}
	}
}

func TestSyncTeacherAssignment_IdempotentAndDeduplicated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.teacher(t, "Alice")
	b := f.teacher(t, "Bob")
	course := f.course(t, "Chemistry")

	target := []string{a.ID.String(), b.ID.String(), a.ID.String()}

	first, err := f.courses.SyncTeacherAssignment(ctx, course.ID.String(), target)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if len(first.Added) != 2 || len(first.Final) != 2 {
		t.Fatalf("duplicates should be dropped: %+v", first)
	}

	second, err := f.courses.SyncTeacherAssignment(ctx, course.ID.String(), target)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(second.Added) != 0 || len(second.Removed) != 0 {
		t.Errorf("second sync should be a no-op, got %+v", second)
	}

	var links int64
	f.db.Model(&model.CourseTeacher{}).Where("course_id = ?", course.ID).Count(&links)
	if links != 2 {
		t.Errorf("expected 2 links, got %d", links)
	}
}

func TestSyncTeacherAssignment_RejectsUnknownTeacher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.teacher(t, "Alice")
	course := f.course(t, "Biology", a.ID.String())

	_, err := f.courses.SyncTeacherAssignment(ctx, course.ID.String(), []string{uuid.NewString()})
	assertKind(t, err, ErrValidation)

	view, err := f.courses.GetByID(ctx, course.ID.String())
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got := teacherSummaryIDs(view.Teachers); len(got) != 1 || got[0] != a.ID.String() {
		t.Errorf("nothing should be written, teachers = %v", got)
	}
}

func TestSyncTeacherAssignment_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.courses.SyncTeacherAssignment(ctx, "not-a-uuid", nil)
	assertKind(t, err, ErrInvalidID)

	_, err = f.courses.SyncTeacherAssignment(ctx, uuid.NewString(), nil)
	assertKind(t, err, ErrNotFound)

	course := f.course(t, "History")
	_, err = f.courses.SyncTeacherAssignment(ctx, course.ID.String(), []string{"bogus"})
	assertKind(t, err, ErrInvalidID)
}

func TestBumpCourseVersion_StaleWriterConflicts(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, "Geography")

	var stale model.Course
	if err := f.db.First(&stale, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("load course: %v", err)
	}

	// A concurrent writer commits first
	if _, err := f.courses.SyncTeacherAssignment(context.Background(), course.ID.String(), nil); err != nil {
		t.Fatalf("sync: %v", err)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return bumpCourseVersion(tx, &stale)
	})
	assertKind(t, err, ErrConflict)
}

func TestTeacherSideAssignment_BumpsCourseVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := f.course(t, "Music")
	before := course.Version

	teacher := f.teacher(t, "Dana", course.ID.String())

	view, err := f.courses.GetByID(ctx, course.ID.String())
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if view.Version != before+1 {
		t.Errorf("version = %d, want %d", view.Version, before+1)
	}
	if got := teacherSummaryIDs(view.Teachers); len(got) != 1 || got[0] != teacher.ID.String() {
		t.Errorf("course teachers = %v, want [Dana]", got)
	}
}

func TestTeacherSideAssignment_ReplacesCourseSideLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dana := f.teacher(t, "Dana")
	music := f.course(t, "Music")
	art := f.course(t, "Art")

	// Course side links Dana to Music
	if _, err := f.courses.SyncTeacherAssignment(ctx, music.ID.String(), []string{dana.ID.String()}); err != nil {
		t.Fatalf("course-side sync: %v", err)
	}
	linked, err := f.courses.GetByID(ctx, music.ID.String())
	if err != nil {
		t.Fatalf("get music: %v", err)
	}

	// Teacher side replaces Music with Art
	courseIDs := []string{art.ID.String()}
	if _, err := f.teachers.Update(ctx, dana.ID.String(), UpdateTeacherInput{CourseIDs: &courseIDs}); err != nil {
		t.Fatalf("teacher-side sync: %v", err)
	}

	musicAfter, err := f.courses.GetByID(ctx, music.ID.String())
	if err != nil {
		t.Fatalf("get music: %v", err)
	}
	if len(musicAfter.Teachers) != 0 {
		t.Errorf("music teachers = %v, want none", teacherSummaryIDs(musicAfter.Teachers))
	}
	if musicAfter.Version != linked.Version+1 {
		t.Errorf("music version = %d, want %d", musicAfter.Version, linked.Version+1)
	}

	artAfter, err := f.courses.GetByID(ctx, art.ID.String())
	if err != nil {
		t.Fatalf("get art: %v", err)
	}
	if got := teacherSummaryIDs(artAfter.Teachers); len(got) != 1 || got[0] != dana.ID.String() {
		t.Errorf("art teachers = %v, want [Dana]", got)
	}

	// Clearing a teacher with no remaining target courses
	empty := []string{}
	if _, err := f.teachers.Update(ctx, dana.ID.String(), UpdateTeacherInput{CourseIDs: &empty}); err != nil {
		t.Fatalf("clear teacher courses: %v", err)
	}
	courses, err := f.teachers.Courses(ctx, dana.ID.String())
	if err != nil {
		t.Fatalf("teacher courses: %v", err)
	}
	if len(courses) != 0 {
		t.Errorf("expected no courses after clearing, got %d", len(courses))
	}
}

func TestDiffIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	added, removed := diffIDs([]uuid.UUID{a, b}, []uuid.UUID{b, c})
	if len(added) != 1 || added[0] != c {
		t.Errorf("added = %v", added)
	}
	if len(removed) != 1 || removed[0] != a {
		t.Errorf("removed = %v", removed)
	}

	added, removed = diffIDs(nil, nil)
	if added == nil || removed == nil {
		t.Error("empty deltas should be non-nil slices")
	}
}
