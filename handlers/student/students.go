package student

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/services"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// StudentHandler handles student-related requests
type StudentHandler struct {
	students *services.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students *services.StudentService) *StudentHandler {
	return &StudentHandler{
		students: students,
	}
}

// ListStudents handles GET /api/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page := services.ParsePage(c.Query("page"), c.Query("limit"), services.DefaultStudentLimit)

	students, meta, err := h.students.List(c.UserContext(), page, services.StudentFilter{Shift: c.Query("shift")})
	if err != nil {
		return response.FromError(c, err, "Failed to fetch students")
	}

	return response.List(c, students, len(students), meta)
}

// ListAllStudents handles GET /api/students/all
func (h *StudentHandler) ListAllStudents(c *fiber.Ctx) error {
	students, err := h.students.ListAllForDropdown(c.UserContext())
	if err != nil {
		return response.FromError(c, err, "Failed to fetch students")
	}

	return response.All(c, students, len(students))
}

// SearchStudents handles GET /api/students/search
func (h *StudentHandler) SearchStudents(c *fiber.Ctx) error {
	term := c.Query("q")
	page := services.ParsePage(c.Query("page"), c.Query("limit"), services.DefaultStudentLimit)

	students, meta, err := h.students.Search(c.UserContext(), term, page)
	if err != nil {
		return response.FromError(c, err, "Failed to search students")
	}

	return response.Search(c, students, meta, term)
}

// GetStudentStats handles GET /api/students/stats/overview
func (h *StudentHandler) GetStudentStats(c *fiber.Ctx) error {
	stats, err := h.students.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err, "Failed to fetch student statistics")
	}

	return response.Success(c, stats)
}

// ListStudentsByShift handles GET /api/students/shift/:shift
func (h *StudentHandler) ListStudentsByShift(c *fiber.Ctx) error {
	students, err := h.students.ListByShift(c.UserContext(), c.Params("shift"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch students")
	}

	return response.All(c, students, len(students))
}

// GetStudent handles GET /api/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	student, err := h.students.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// CreateStudent handles POST /api/students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req services.CreateStudentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	student, err := h.students.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to create student")
	}

	return response.Created(c, "Student created successfully", student)
}

// UpdateStudent handles PUT /api/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	var req services.UpdateStudentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	student, err := h.students.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return response.FromError(c, err, "Failed to update student")
	}

	return response.SuccessWithMessage(c, "Student updated successfully", student)
}

// DeleteStudent handles DELETE /api/students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	if err := h.students.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.FromError(c, err, "Failed to delete student")
	}

	return response.SuccessWithMessage(c, "Student deleted successfully", nil)
}
