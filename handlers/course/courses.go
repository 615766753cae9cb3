package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/services"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	courses *services.CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{
		courses: courses,
	}
}

// AssignTeachersRequest represents the request body for PUT /api/courses/:id/teachers.
// teacherIds is required; an empty list clears the assignment.
type AssignTeachersRequest struct {
	TeacherIDs *[]string `json:"teacherIds"`
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page := services.ParsePage(c.Query("page"), c.Query("limit"), services.DefaultCourseLimit)
	sortDesc := c.Query("sort", "desc") != "asc"

	courses, meta, err := h.courses.List(c.UserContext(), page, sortDesc)
	if err != nil {
		return response.FromError(c, err, "Failed to fetch courses")
	}

	return response.List(c, courses, len(courses), meta)
}

// ListAllCourses handles GET /api/courses/all
func (h *CourseHandler) ListAllCourses(c *fiber.Ctx) error {
	courses, err := h.courses.ListAllForDropdown(c.UserContext())
	if err != nil {
		return response.FromError(c, err, "Failed to fetch courses")
	}

	return response.All(c, courses, len(courses))
}

// SearchCourses handles GET /api/courses/search
func (h *CourseHandler) SearchCourses(c *fiber.Ctx) error {
	term := c.Query("q")
	page := services.ParsePage(c.Query("page"), c.Query("limit"), services.DefaultCourseLimit)

	courses, meta, err := h.courses.Search(c.UserContext(), term, page)
	if err != nil {
		return response.FromError(c, err, "Failed to search courses")
	}

	return response.Search(c, courses, meta, term)
}

// GetCourseStats handles GET /api/courses/stats and /api/courses/stats/overview
func (h *CourseHandler) GetCourseStats(c *fiber.Ctx) error {
	stats, err := h.courses.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err, "Failed to fetch course statistics")
	}

	return response.Success(c, stats)
}

// ListCoursesByTeacher handles GET /api/courses/teacher/:teacherId
func (h *CourseHandler) ListCoursesByTeacher(c *fiber.Ctx) error {
	courses, err := h.courses.ListByTeacher(c.UserContext(), c.Params("teacherId"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch courses")
	}

	return response.All(c, courses, len(courses))
}

// GetCourse handles GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courses.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req services.CreateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	course, err := h.courses.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to create course")
	}

	return response.Created(c, "Course created successfully", course)
}

// UpdateCourse handles PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	var req services.UpdateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	course, err := h.courses.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return response.FromError(c, err, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// AssignTeachers handles PUT /api/courses/:id/teachers
func (h *CourseHandler) AssignTeachers(c *fiber.Ctx) error {
	var req AssignTeachersRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.TeacherIDs == nil {
		return response.BadRequest(c, "teacherIds is required")
	}

	result, err := h.courses.SyncTeacherAssignment(c.UserContext(), c.Params("id"), *req.TeacherIDs)
	if err != nil {
		return response.FromError(c, err, "Failed to assign teachers")
	}

	return response.SuccessWithMessage(c, "Course teachers updated successfully", result)
}

// DeleteCourse handles DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.courses.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.FromError(c, err, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
