package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/services"
)

// EnclosureController handles the enclosures checklist
type EnclosureController struct {
	forms formHandlers[models.Enclosure, *models.Enclosure]
}

// NewEnclosureController creates a new EnclosureController
func NewEnclosureController(service *services.EnclosureService) *EnclosureController {
	return &EnclosureController{
		forms: formHandlers[models.Enclosure, *models.Enclosure]{
			ops: service,
			messages: formMessages{
				created: "Enclosures created successfully",
				fetched: "Enclosures fetched successfully",
				updated: "Enclosures updated successfully",
			},
		},
	}
}

// Create saves the enclosures checklist
// @Summary Create enclosures
// @Tags enclosures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Enclosure true "Enclosures"
// @Success 201 {object} dto.APIResponse{data=models.Enclosure}
// @Failure 409 {object} dto.ErrorResponse "Enclosures already exist"
// @Router /enclosures/create [post]
func (c *EnclosureController) Create(ctx *gin.Context) {
	c.forms.create(ctx)
}

// Get returns the checklist, or an unchecked default when none is saved
// @Summary Get enclosures
// @Tags enclosures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Enclosure}
// @Router /enclosures/get [get]
func (c *EnclosureController) Get(ctx *gin.Context) {
	c.forms.get(ctx)
}

// Update merges the body into the stored checklist
// @Summary Update enclosures
// @Tags enclosures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Enclosure true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Enclosure}
// @Failure 404 {object} dto.ErrorResponse "Enclosures not found"
// @Router /enclosures/update [put]
func (c *EnclosureController) Update(ctx *gin.Context) {
	c.forms.update(ctx)
}
