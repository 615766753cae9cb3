package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/config"
	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/handlers"
	admin_handlers "github.com/sahilchouksey/school-admin-api/handlers/admin"
	course_handlers "github.com/sahilchouksey/school-admin-api/handlers/course"
	student_handlers "github.com/sahilchouksey/school-admin-api/handlers/student"
	teacher_handlers "github.com/sahilchouksey/school-admin-api/handlers/teacher"
	"github.com/sahilchouksey/school-admin-api/services"
	"github.com/sahilchouksey/school-admin-api/utils"
	"github.com/sahilchouksey/school-admin-api/utils/auth"
	"github.com/sahilchouksey/school-admin-api/utils/cache"
	"github.com/sahilchouksey/school-admin-api/utils/middleware"
)

// Dependencies holds everything the routes need. RedisCache may be nil.
type Dependencies struct {
	Store      database.Storage
	Courses    *services.CourseService
	Teachers   *services.TeacherService
	Students   *services.StudentService
	RedisCache *cache.RedisCache
	Env        *config.EnviornmentVariable

	// DisableAccessLog turns off the request logger, used by tests
	DisableAccessLog bool
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	// Initialize JWT manager with config
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: deps.Env.JWT_SECRET,
		Expiry: 24 * time.Hour, // Access token expires in 24 hours
		Issuer: deps.Env.JWT_ISSUER,
	})

	db := deps.Store.GetDB()

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if deps.RedisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.RedisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	courseHandler := course_handlers.NewCourseHandler(deps.Courses)
	teacherHandler := teacher_handlers.NewTeacherHandler(deps.Teachers)
	studentHandler := student_handlers.NewStudentHandler(deps.Students)
	adminHandler := admin_handlers.NewAdminHandler(services.NewAdminService(db, jwtManager), bruteForceProtection)

	// Apply security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    deps.Env.ALLOWED_ORIGINS,
		RateLimitRequests: deps.Env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   1 * time.Minute, // per minute
		DisableLogger:     deps.DisableAccessLog,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, deps.Store))

	api := app.Group("/api")

	// Admin routes
	admins := api.Group("/admins")
	admins.Post("/register", adminHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		admins.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), adminHandler.Login)
	} else {
		admins.Post("/login", adminHandler.Login)
	}

	admins.Get("/me", authMiddleware.Required(), adminHandler.Me)

	// Courses routes. Static paths are registered before /:id.
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/all", courseHandler.ListAllCourses)
	courses.Get("/search", courseHandler.SearchCourses)
	courses.Get("/stats", courseHandler.GetCourseStats)
	courses.Get("/stats/overview", courseHandler.GetCourseStats)
	courses.Get("/teacher/:teacherId", courseHandler.ListCoursesByTeacher)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Put("/:id/teachers", courseHandler.AssignTeachers)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)

	// Teachers routes
	teachers := api.Group("/teachers")
	teachers.Get("/", teacherHandler.ListTeachers)
	teachers.Get("/all", teacherHandler.ListAllTeachers)
	teachers.Get("/:id/students", teacherHandler.GetTeacherStudents)
	teachers.Get("/:id/course", teacherHandler.GetTeacherCourses)
	teachers.Get("/:id/stats", teacherHandler.GetTeacherStats)
	teachers.Get("/:id", teacherHandler.GetTeacher)
	teachers.Post("/", teacherHandler.CreateTeacher)
	teachers.Put("/:id", teacherHandler.UpdateTeacher)
	teachers.Delete("/:id", teacherHandler.DeleteTeacher)

	// Students routes
	students := api.Group("/students")
	students.Get("/", studentHandler.ListStudents)
	students.Get("/all", studentHandler.ListAllStudents)
	students.Get("/search", studentHandler.SearchStudents)
	students.Get("/stats/overview", studentHandler.GetStudentStats)
	students.Get("/shift/:shift", studentHandler.ListStudentsByShift)
	students.Get("/:id", studentHandler.GetStudent)
	students.Post("/", studentHandler.CreateStudent)
	students.Put("/:id", studentHandler.UpdateStudent)
	students.Delete("/:id", studentHandler.DeleteStudent)
}
