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

// PetController handles the pet pages
type PetController struct {
	pages
	petService     *services.PetService
	studentService *services.StudentService
}

// NewPetController creates a new PetController
func NewPetController(petService *services.PetService, studentService *services.StudentService, sessions *session.Manager, logger zerolog.Logger) *PetController {
	return &PetController{
		pages:          newPages(sessions, 0, logger),
		petService:     petService,
		studentService: studentService,
	}
}

// Index lists pets page by page, filtered by the search query
func (c *PetController) Index(ctx *gin.Context) {
	result, err := c.petService.List(ctx.Request.Context(), ctx.Query("search"), helpers.ParsePage(ctx))
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "pets/index.html", gin.H{
		"Title":      "Pets",
		"Active":     "pets",
		"Pets":       result.Pets,
		"Search":     result.Search,
		"Pagination": result.Pagination,
		"BasePath":   "/pets",
	})
}

func (c *PetController) renderForm(ctx *gin.Context, data gin.H) {
	students, err := c.studentService.Options(ctx.Request.Context())
	if err != nil {
		c.failPage(ctx, err)
		return
	}
	data["Active"] = "pets"
	data["Students"] = students
	c.render(ctx, http.StatusOK, "pets/form.html", data)
}

// New renders the empty pet form
func (c *PetController) New(ctx *gin.Context) {
	c.renderForm(ctx, gin.H{
		"Title":   "Novo pet",
		"Action":  "/pets/new",
		"OwnerID": int64(0),
	})
}

// Create stores a new pet
func (c *PetController) Create(ctx *gin.Context) {
	var form dto.PetForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.fail(ctx, err, "/pets/new")
		return
	}

	pet, err := c.petService.Create(ctx.Request.Context(), form)
	if err != nil {
		c.fail(ctx, err, "/pets/new")
		return
	}

	c.redirect(ctx, "/pets", session.FlashSuccess, fmt.Sprintf("Pet %s cadastrado com sucesso!", pet.Nickname))
}

// Edit renders the form filled with the stored pet
func (c *PetController) Edit(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}

	pet, err := c.petService.Get(ctx.Request.Context(), id)
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.renderForm(ctx, gin.H{
		"Title":   "Editar pet",
		"Action":  fmt.Sprintf("/pets/%d/edit", id),
		"Pet":     pet,
		"OwnerID": pet.StudentID,
	})
}

// Update stores the changes of a pet
func (c *PetController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}
	back := fmt.Sprintf("/pets/%d/edit", id)

	var form dto.PetForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.fail(ctx, err, back)
		return
	}

	pet, err := c.petService.Update(ctx.Request.Context(), id, form)
	if err != nil {
		c.fail(ctx, err, back)
		return
	}

	c.redirect(ctx, "/pets", session.FlashSuccess, fmt.Sprintf("Pet %s atualizado com sucesso!", pet.Nickname))
}

// Delete removes a pet
func (c *PetController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		c.notFound(ctx)
		return
	}

	pet, err := c.petService.Delete(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, err, "/pets")
		return
	}

	c.redirect(ctx, "/pets", session.FlashSuccess, fmt.Sprintf("Pet %s excluído com sucesso!", pet.Nickname))
}

// ByOwner returns the pets of one student as JSON
func (c *PetController) ByOwner(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		ctx.JSON(http.StatusOK, []dto.PetExport{})
		return
	}

	pets, err := c.petService.ListByOwner(ctx.Request.Context(), studentID)
	if err != nil {
		c.logger.Error().Err(err).Int64("studentID", studentID).Msg("Failed to list pets by owner")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pets)
}

// Export returns every pet as JSON
func (c *PetController) Export(ctx *gin.Context) {
	pets, err := c.petService.ExportJSON(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to export pets")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pets)
}
