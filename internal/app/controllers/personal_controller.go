package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/middleware"
)

// PersonalController handles the personal details form
type PersonalController struct {
	service *services.PersonalService
	forms   formHandlers[models.PersonalDetails, *models.PersonalDetails]
}

// NewPersonalController creates a new PersonalController
func NewPersonalController(service *services.PersonalService) *PersonalController {
	return &PersonalController{
		service: service,
		forms: formHandlers[models.PersonalDetails, *models.PersonalDetails]{
			ops: service,
			messages: formMessages{
				created: "Personal details created successfully",
				fetched: "Personal details fetched successfully",
				updated: "Personal details updated successfully",
			},
		},
	}
}

// Create saves the personal details form
// @Summary Create personal details
// @Tags personal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PersonalDetails true "Personal details"
// @Success 201 {object} dto.APIResponse{data=models.PersonalDetails}
// @Failure 400 {object} dto.ErrorResponse "Missing required fields"
// @Failure 409 {object} dto.ErrorResponse "Personal details already exist"
// @Router /personal/create [post]
func (c *PersonalController) Create(ctx *gin.Context) {
	c.forms.create(ctx)
}

// Get returns the personal details form
// @Summary Get personal details
// @Tags personal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.PersonalDetails}
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Router /personal/get [get]
func (c *PersonalController) Get(ctx *gin.Context) {
	c.forms.get(ctx)
}

// Update merges the body into the stored personal details
// @Summary Update personal details
// @Tags personal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PersonalDetails true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.PersonalDetails}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Failure 409 {object} dto.ErrorResponse "Application already submitted"
// @Router /personal/update [put]
func (c *PersonalController) Update(ctx *gin.Context) {
	c.forms.update(ctx)
}

// UploadPhoto stores the applicant photo
// @Summary Upload photo
// @Tags personal
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "JPG, PNG or GIF image up to 2MB"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or wrong type of file"
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Failure 500 {object} dto.ErrorResponse "Upload failed"
// @Router /personal/upload-photo [post]
func (c *PersonalController) UploadPhoto(ctx *gin.Context) {
	handleUpload(ctx, "photo", "Photo uploaded successfully", c.service.UploadPhoto)
}

// UploadSignature stores the applicant signature
// @Summary Upload signature
// @Tags personal
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param signature formData file true "JPG, PNG or GIF image up to 2MB"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or wrong type of file"
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Router /personal/upload-signature [post]
func (c *PersonalController) UploadSignature(ctx *gin.Context) {
	handleUpload(ctx, "signature", "Signature uploaded successfully", c.service.UploadSignature)
}

// UploadDemandDraft stores the demand draft PDF
// @Summary Upload demand draft
// @Tags personal
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "PDF up to 5MB"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or wrong type of file"
// @Router /personal/upload-demand-draft [post]
func (c *PersonalController) UploadDemandDraft(ctx *gin.Context) {
	handleUpload(ctx, "document", "Demand draft uploaded successfully", c.service.UploadDemandDraft)
}

// UploadTransactionScreenshot stores the fee transaction screenshot
// @Summary Upload transaction screenshot
// @Tags personal
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "JPG, PNG or GIF image up to 2MB"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or wrong type of file"
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Router /personal/upload-transaction-screenshot [post]
func (c *PersonalController) UploadTransactionScreenshot(ctx *gin.Context) {
	handleUpload(ctx, "document", "Transaction screenshot uploaded successfully", c.service.UploadTransactionScreenshot)
}

// UpdateTransactionDetails replaces the fee transaction details
// @Summary Update transaction details
// @Tags personal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TransactionDetails true "Transaction details"
// @Success 200 {object} dto.APIResponse{data=models.PersonalDetails}
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Router /personal/update-transaction-details [put]
func (c *PersonalController) UpdateTransactionDetails(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req models.TransactionDetails
	if err := middleware.DecodeJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	personal, err := c.service.UpdateTransactionDetails(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Transaction details updated successfully", personal))
}

// UpdateDeclaration replaces the declaration
// @Summary Update declaration
// @Tags personal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Declaration true "Declaration"
// @Success 200 {object} dto.APIResponse{data=models.PersonalDetails}
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Router /personal/update-declaration [put]
func (c *PersonalController) UpdateDeclaration(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req models.Declaration
	if err := middleware.DecodeJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	personal, err := c.service.UpdateDeclaration(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Declaration updated successfully", personal))
}
