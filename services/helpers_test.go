package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sahilchouksey/school-admin-api/database/databasetest"
	"github.com/sahilchouksey/school-admin-api/utils/cache"
	"gorm.io/gorm"
)

// memoryCache is an in-process cache.Cache for tests
type memoryCache struct {
	data    map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	m.deletes++
	return nil
}

type fixture struct {
	db       *gorm.DB
	courses  *CourseService
	teachers *TeacherService
	students *StudentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	db := databasetest.Open(t)
	return &fixture{
		db:       db,
		courses:  NewCourseService(db, c),
		teachers: NewTeacherService(db, c),
		students: NewStudentService(db, c),
	}
}

func (f *fixture) teacher(t *testing.T, name string, courseIDs ...string) *TeacherView {
	t.Helper()
	n := len(name)
	teacher, err := f.teachers.Create(context.Background(), CreateTeacherInput{
		Name:      name,
		Email:     fmt.Sprintf("%s.%d@school.test", slug(name), n),
		Phone:     fmt.Sprintf("+1-%s-%d", slug(name), n),
		Post:      "Professor",
		CourseIDs: courseIDs,
	})
	if err != nil {
		t.Fatalf("create teacher %s: %v", name, err)
	}
	return teacher
}

func (f *fixture) course(t *testing.T, title string, teacherIDs ...string) *CourseView {
	t.Helper()
	course, err := f.courses.Create(context.Background(), CreateCourseInput{
		Title:       title,
		Description: title + " description",
		TeacherIDs:  teacherIDs,
	})
	if err != nil {
		t.Fatalf("create course %s: %v", title, err)
	}
	return course
}

func (f *fixture) student(t *testing.T, name, shift string, courseIDs ...string) *StudentView {
	t.Helper()
	student, err := f.students.Create(context.Background(), CreateStudentInput{
		Name:      name,
		Email:     slug(name) + "@student.test",
		Phone:     "+2-" + slug(name),
		Shift:     shift,
		CourseIDs: courseIDs,
	})
	if err != nil {
		t.Fatalf("create student %s: %v", name, err)
	}
	return student
}

func slug(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func courseRefIDs(refs []CourseRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID.String())
	}
	return ids
}

func teacherSummaryIDs(teachers []TeacherSummary) []string {
	ids := make([]string, 0, len(teachers))
	for _, teacher := range teachers {
		ids = append(ids, teacher.ID.String())
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
