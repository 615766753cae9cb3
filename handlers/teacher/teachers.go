package teacher

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/services"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// TeacherHandler handles teacher-related requests
type TeacherHandler struct {
	teachers *services.TeacherService
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(teachers *services.TeacherService) *TeacherHandler {
	return &TeacherHandler{
		teachers: teachers,
	}
}

// ListTeachers handles GET /api/teachers
func (h *TeacherHandler) ListTeachers(c *fiber.Ctx) error {
	page := services.ParsePage(c.Query("page"), c.Query("limit"), services.DefaultTeacherLimit)
	filter := services.TeacherFilter{
		Post:     c.Query("post"),
		CourseID: c.Query("courseId"),
	}

	teachers, meta, err := h.teachers.List(c.UserContext(), page, filter)
	if err != nil {
		return response.FromError(c, err, "Failed to fetch teachers")
	}

	return response.List(c, teachers, len(teachers), meta)
}

// ListAllTeachers handles GET /api/teachers/all
func (h *TeacherHandler) ListAllTeachers(c *fiber.Ctx) error {
	teachers, err := h.teachers.ListAllForDropdown(c.UserContext())
	if err != nil {
		return response.FromError(c, err, "Failed to fetch teachers")
	}

	return response.All(c, teachers, len(teachers))
}

// GetTeacher handles GET /api/teachers/:id
func (h *TeacherHandler) GetTeacher(c *fiber.Ctx) error {
	teacher, err := h.teachers.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch teacher")
	}

	return response.Success(c, teacher)
}

// GetTeacherStudents handles GET /api/teachers/:id/students
func (h *TeacherHandler) GetTeacherStudents(c *fiber.Ctx) error {
	students, err := h.teachers.Students(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch teacher students")
	}

	return response.Success(c, students)
}

// GetTeacherCourses handles GET /api/teachers/:id/course
func (h *TeacherHandler) GetTeacherCourses(c *fiber.Ctx) error {
	courses, err := h.teachers.Courses(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch teacher courses")
	}

	return response.All(c, courses, len(courses))
}

// GetTeacherStats handles GET /api/teachers/:id/stats
func (h *TeacherHandler) GetTeacherStats(c *fiber.Ctx) error {
	stats, err := h.teachers.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch teacher statistics")
	}

	return response.Success(c, stats)
}

// CreateTeacher handles POST /api/teachers
func (h *TeacherHandler) CreateTeacher(c *fiber.Ctx) error {
	var req services.CreateTeacherInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	teacher, err := h.teachers.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to create teacher")
	}

	return response.Created(c, "Teacher created successfully", teacher)
}

// UpdateTeacher handles PUT /api/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *fiber.Ctx) error {
	var req services.UpdateTeacherInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	teacher, err := h.teachers.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return response.FromError(c, err, "Failed to update teacher")
	}

	return response.SuccessWithMessage(c, "Teacher updated successfully", teacher)
}

// DeleteTeacher handles DELETE /api/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *fiber.Ctx) error {
	if err := h.teachers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.FromError(c, err, "Failed to delete teacher")
	}

	return response.SuccessWithMessage(c, "Teacher deleted successfully", nil)
}
