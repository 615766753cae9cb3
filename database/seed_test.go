package database_test

import (
	"testing"

	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/database/databasetest"
	"github.com/sahilchouksey/school-admin-api/model"
)

func TestRunSeeds_IsIdempotent(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	db := databasetest.Open(t)

	if err := database.RunSeeds(db); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := database.RunSeeds(db); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	counts := map[string]struct {
		model    interface{}
		expected int64
	}{
		"courses":         {&model.Course{}, 4},
		"teachers":        {&model.Teacher{}, 3},
		"students":        {&model.Student{}, 4},
		"course_teachers": {&model.CourseTeacher{}, 4},
		"course_students": {&model.CourseStudent{}, 4},
		"admins":          {&model.Admin{}, 0},
	}

	for name, tc := range counts {
		var got int64
		if err := db.Model(tc.model).Count(&got).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if got != tc.expected {
			t.Errorf("expected %d %s, got %d", tc.expected, name, got)
		}
	}
}

func TestGORMStore_HealthCheckAndClose(t *testing.T) {
	db := databasetest.Open(t)
	store := database.NewGORMStore(db)

	if err := store.HealthCheck(); err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if store.GetDB() != db {
		t.Fatal("GetDB should return the wrapped connection")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := store.HealthCheck(); err == nil {
		t.Fatal("health check should fail after close")
	}
}
