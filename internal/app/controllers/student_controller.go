package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/services"
	"github.com/yigit/escola/internal/middleware"
	"github.com/yigit/escola/internal/pkg/helpers"
	"github.com/yigit/escola/internal/pkg/session"
)

// NoPhotoPath is the placeholder shown for students without a photo
const NoPhotoPath = "/static/img/no-photo.svg"

// StudentController handles the student pages
type StudentController struct {
	pages
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, sessions *session.Manager, uploadLimit int64, logger zerolog.Logger) *StudentController {
	return &StudentController{
		pages:          newPages(sessions, uploadLimit, logger),
		studentService: studentService,
	}
}

// Index lists students page by page, filtered by the search query
func (c *StudentController) Index(ctx *gin.Context) {
	result, err := c.studentService.List(ctx.Request.Context(), ctx.Query("search"), helpers.ParsePage(ctx))
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "students/index.html", gin.H{
		"Title":      "Alunos",
		"Active":     "students",
		"Students":   result.Students,
		"Search":     result.Search,
		"Pagination": result.Pagination,
		"BasePath":   "/students",
	})
}

// New renders the empty student form
func (c *StudentController) New(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "students/form.html", gin.H{
		"Title":  "Novo aluno",
		"Active": "students",
		"Action": "/students/new",
	})
}

// bindStudent reads the form fields and the optional photo
func bindStudent(ctx *gin.Context) (dto.StudentForm, *dto.PhotoUpload, error) {
	var form dto.StudentForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		return form, nil, err
	}
	photo, err := middleware.ReadUpload(ctx, "foto")
	return form, photo, err
}

// Create stores a new student
func (c *StudentController) Create(ctx *gin.Context) {
	form, photo, err := bindStudent(ctx)
	if err != nil {
		c.fail(ctx, err, "/students/new")
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), form, photo)
	if err != nil {
		c.fail(ctx, err, "/students/new")
		return
	}

	c.redirect(ctx, "/students", session.FlashSuccess, fmt.Sprintf("Aluno %s cadastrado com sucesso!", student.Name))
}

// Show renders the detail page with the student's pets
func (c *StudentController) Show(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "students/detail.html", gin.H{
		"Title":   student.Name,
		"Active":  "students",
		"Student": student,
	})
}

// Edit renders the form filled with the stored student
func (c *StudentController) Edit(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "students/form.html", gin.H{
		"Title":   "Editar aluno",
		"Active":  "students",
		"Action":  fmt.Sprintf("/students/%d/edit", id),
		"Student": student,
	})
}

// Update stores the changes of a student
func (c *StudentController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}
	back := fmt.Sprintf("/students/%d/edit", id)

	form, photo, err := bindStudent(ctx)
	if err != nil {
		c.fail(ctx, err, back)
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), id, form, photo)
	if err != nil {
		c.fail(ctx, err, back)
		return
	}

	c.redirect(ctx, "/students", session.FlashSuccess, fmt.Sprintf("Aluno %s atualizado com sucesso!", student.Name))
}

// Delete removes a student and its pets
func (c *StudentController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}

	student, err := c.studentService.Delete(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, err, "/students")
		return
	}

	c.redirect(ctx, "/students", session.FlashSuccess, fmt.Sprintf("Aluno %s excluído com sucesso!", student.Name))
}

// Photo serves the stored photo, or redirects to the placeholder
func (c *StudentController) Photo(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}

	photo, err := c.studentService.GetPhoto(ctx.Request.Context(), id)
	if err != nil {
		c.failPage(ctx, err)
		return
	}
	if photo == nil {
		ctx.Redirect(http.StatusFound, NoPhotoPath)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", photo.Filename))
	ctx.Data(http.StatusOK, photo.ContentType, photo.Data)
}

// Export returns every student as JSON
func (c *StudentController) Export(ctx *gin.Context) {
	students, err := c.studentService.ExportJSON(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to export students")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, students)
}
