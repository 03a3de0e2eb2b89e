package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/middleware"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
)

// AcademicController handles the academic details form
type AcademicController struct {
	service *services.AcademicService
	forms   formHandlers[models.AcademicDetails, *models.AcademicDetails]
}

// NewAcademicController creates a new AcademicController
func NewAcademicController(service *services.AcademicService) *AcademicController {
	return &AcademicController{
		service: service,
		forms: formHandlers[models.AcademicDetails, *models.AcademicDetails]{
			ops: service,
			messages: formMessages{
				created: "Academic details created successfully",
				fetched: "Academic details fetched successfully",
				updated: "Academic details updated successfully",
			},
		},
	}
}

// Create saves the academic details form
// @Summary Create academic details
// @Tags academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AcademicDetails true "Academic details"
// @Success 201 {object} dto.APIResponse{data=models.AcademicDetails}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Academic details already exist"
// @Router /academic/create [post]
func (c *AcademicController) Create(ctx *gin.Context) {
	c.forms.create(ctx)
}

// Get returns the academic details form
// @Summary Get academic details
// @Tags academic
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.AcademicDetails}
// @Failure 404 {object} dto.ErrorResponse "Academic details not found"
// @Router /academic/get [get]
func (c *AcademicController) Get(ctx *gin.Context) {
	c.forms.get(ctx)
}

// Update merges the body into the stored academic details
// @Summary Update academic details
// @Tags academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AcademicDetails true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.AcademicDetails}
// @Failure 404 {object} dto.ErrorResponse "Academic details not found"
// @Router /academic/update [put]
func (c *AcademicController) Update(ctx *gin.Context) {
	c.forms.update(ctx)
}

// UploadDocument stores a qualification, experience or publication PDF
// @Summary Upload academic document
// @Tags academic
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "PDF up to 5MB"
// @Param documentType formData string true "qualification, experience or publication"
// @Param index formData int true "Index into the matching list"
// @Success 200 {object} dto.APIResponse{data=dto.AcademicUploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid document type or index"
// @Failure 404 {object} dto.ErrorResponse "Academic details not found"
// @Router /academic/upload-document [post]
func (c *AcademicController) UploadDocument(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	fh, err := formFile(ctx, "document")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	index, err := strconv.Atoi(strings.TrimSpace(ctx.PostForm("index")))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid index"))
		return
	}

	resp, err := c.service.UploadDocument(ctx.Request.Context(), userID, ctx.PostForm("documentType"), index, fh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Document uploaded successfully", resp))
}
