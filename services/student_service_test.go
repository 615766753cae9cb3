package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/model"
)

func TestStudentCreate_RejectsUnknownShift(t *testing.T) {
	f := newFixture(t)

	_, err := f.students.Create(context.Background(), CreateStudentInput{
		Name:  "Sam",
		Email: "sam@student.test",
		Phone: "+200",
		Shift: "afternoon",
	})
	assertKind(t, err, ErrValidation)
	if err.Error() != "shift must be one of: morning, evening" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestStudentCreate_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := CreateStudentInput{Name: "Sam", Email: "sam@student.test", Phone: "+200", Shift: "morning"}
	if _, err := f.students.Create(ctx, input); err != nil {
		t.Fatalf("first create: %v", err)
	}

	input.Name = "Sam Two"
	_, err := f.students.Create(ctx, input)
	assertKind(t, err, ErrConflict)

	var count int64
	f.db.Model(&model.Student{}).Count(&count)
	if count != 1 {
		t.Errorf("student count changed to %d", count)
	}
}

func TestStudentCreateGetByID_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := f.course(t, "Math")
	created, err := f.students.Create(ctx, CreateStudentInput{
		Name:      "Sam",
		Email:     "sam@student.test",
		Phone:     "+200",
		Shift:     "evening",
		Address:   "2 Side St",
		Avatar:    "https://img.test/sam.png",
		CourseIDs: []string{course.ID.String()},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.students.GetByID(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Sam" || got.Email != "sam@student.test" || got.Phone != "+200" ||
		got.Shift != model.ShiftEvening || got.Address != "2 Side St" || got.Avatar != "https://img.test/sam.png" {
		t.Errorf("scalar fields differ: %+v", got.Student)
	}
	if len(got.Courses) != 1 || got.Courses[0].Title != "Math" {
		t.Errorf("courses should be expanded, got %+v", got.Courses)
	}

	_, err = f.students.Create(ctx, CreateStudentInput{
		Name: "Eve", Email: "eve@student.test", Phone: "+201", Shift: "morning",
		CourseIDs: []string{uuid.NewString()},
	})
	assertKind(t, err, ErrValidation)

	_, err = f.students.GetByID(ctx, "x")
	assertKind(t, err, ErrInvalidID)
	_, err = f.students.GetByID(ctx, uuid.NewString())
	assertKind(t, err, ErrNotFound)
}

func TestStudentList_ShiftFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.student(t, "Ann", "morning")
	f.student(t, "Ben", "evening")
	f.student(t, "Cat", "morning")

	views, meta, err := f.students.List(ctx, NewPage(1, 10, DefaultStudentLimit), StudentFilter{Shift: "morning"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 2 || len(views) != 2 {
		t.Errorf("expected 2 morning students, got %d (%+v)", len(views), meta)
	}

	_, _, err = f.students.List(ctx, NewPage(1, 10, DefaultStudentLimit), StudentFilter{Shift: "weekend"})
	assertKind(t, err, ErrValidation)

	_, meta, err = f.students.List(ctx, NewPage(2, 2, DefaultStudentLimit), StudentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 3 || meta.TotalPages != 2 || meta.CurrentPage != 2 {
		t.Errorf("unexpected meta %+v", meta)
	}
}

func TestStudentUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	math := f.course(t, "Math")
	art := f.course(t, "Art")
	sam := f.student(t, "Sam", "morning", math.ID.String())
	tia := f.student(t, "Tia", "evening")

	bad := "night"
	_, err := f.students.Update(ctx, sam.ID.String(), UpdateStudentInput{Shift: &bad})
	assertKind(t, err, ErrValidation)

	_, err = f.students.Update(ctx, sam.ID.String(), UpdateStudentInput{Email: &tia.Email})
	assertKind(t, err, ErrConflict)

	shift := "evening"
	courses := []string{art.ID.String(), art.ID.String()}
	updated, err := f.students.Update(ctx, sam.ID.String(), UpdateStudentInput{Shift: &shift, CourseIDs: &courses})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Shift != model.ShiftEvening || updated.Name != "Sam" {
		t.Errorf("unexpected student %+v", updated.Student)
	}
	if len(updated.Courses) != 1 || updated.Courses[0].ID != art.ID {
		t.Errorf("enrollments should be replaced, got %+v", updated.Courses)
	}

	_, err = f.students.Update(ctx, uuid.NewString(), UpdateStudentInput{Shift: &shift})
	assertKind(t, err, ErrNotFound)
}

func TestStudentDelete_RemovesEnrollments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := f.course(t, "Math")
	sam := f.student(t, "Sam", "morning", course.ID.String())

	if err := f.students.Delete(ctx, sam.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var links int64
	f.db.Model(&model.CourseStudent{}).Where("student_id = ?", sam.ID).Count(&links)
	if links != 0 {
		t.Errorf("enrollments should be removed, got %d", links)
	}

	// The course is deletable once its only student is gone
	if err := f.courses.Delete(ctx, course.ID.String()); err != nil {
		t.Errorf("course delete: %v", err)
	}

	err := f.students.Delete(ctx, sam.ID.String())
	assertKind(t, err, ErrNotFound)
}

func TestStudentSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.students.Create(ctx, CreateStudentInput{
		Name: "Ann", Email: "ann@student.test", Phone: "+300", Shift: "morning", Address: "Baker_Street 221",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.student(t, "Ben", "evening")
	f.student(t, "Bakerx", "morning")

	tests := []struct {
		query string
		want  int
	}{
		{"ANN", 1},
		{"+300", 1},
		{"baker_", 1},
		{"evening", 1},
		{"student.test", 3},
		{"%", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			views, meta, err := f.students.Search(ctx, tt.query, NewPage(1, 10, DefaultStudentLimit))
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(views) != tt.want || meta.Total != int64(tt.want) {
				t.Errorf("search %q matched %d, want %d", tt.query, len(views), tt.want)
			}
		})
	}

	_, _, err := f.students.Search(ctx, "", NewPage(1, 10, DefaultStudentLimit))
	assertKind(t, err, ErrValidation)
}

func TestStudentListByShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.student(t, "Zara", "evening")
	f.student(t, "Adam", "evening")
	f.student(t, "Mia", "morning")

	views, err := f.students.ListByShift(ctx, "evening")
	if err != nil {
		t.Fatalf("list by shift: %v", err)
	}
	if len(views) != 2 || views[0].Name != "Adam" || views[1].Name != "Zara" {
		t.Errorf("unexpected students %+v", views)
	}

	_, err = f.students.ListByShift(ctx, "afternoon")
	assertKind(t, err, ErrValidation)
}

func TestStudentStats(t *testing.T) {
	memory := newMemoryCache()
	f := newFixtureWithCache(t, memory)
	ctx := context.Background()

	course := f.course(t, "Math")
	f.student(t, "Ann", "morning", course.ID.String())
	f.student(t, "Ben", "evening")
	f.student(t, "Cat", "morning")

	stats, err := f.students.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := StudentStats{TotalStudents: 3, MorningShift: 2, EveningShift: 1, WithCourses: 1, WithoutCourses: 2}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	f.student(t, "Dan", "evening")
	stats, _ = f.students.Stats(ctx)
	if stats.TotalStudents != 4 {
		t.Errorf("stats should be invalidated on create, got %+v", *stats)
	}

	refreshed, err := f.students.RefreshStats(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.EveningShift != 2 {
		t.Errorf("unexpected refreshed stats %+v", *refreshed)
	}
}

func TestStudentListAllForDropdown(t *testing.T) {
	f := newFixture(t)

	f.student(t, "Zed", "morning")
	f.student(t, "Amy", "evening")

	options, err := f.students.ListAllForDropdown(context.Background())
	if err != nil {
		t.Fatalf("dropdown: %v", err)
	}
	if len(options) != 2 || options[0].Name != "Amy" || options[0].Shift != model.ShiftEvening {
		t.Errorf("unexpected options %+v", options)
	}
}
