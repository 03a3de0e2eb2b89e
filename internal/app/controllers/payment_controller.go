package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/services"
)

// PaymentController handles the payment form
type PaymentController struct {
	service *services.PaymentService
	forms   formHandlers[models.Payment, *models.Payment]
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{
		service: service,
		forms: formHandlers[models.Payment, *models.Payment]{
			ops: service,
			messages: formMessages{
				created: "Payment details saved successfully",
				fetched: "Payment details fetched successfully",
				updated: "Payment details updated successfully",
			},
		},
	}
}

// Create saves the payment form
// @Summary Create payment details
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Payment true "Payment details"
// @Success 201 {object} dto.APIResponse{data=models.Payment}
// @Failure 400 {object} dto.ErrorResponse "Missing required fields"
// @Failure 409 {object} dto.ErrorResponse "Payment details already exist"
// @Router /payment/create [post]
func (c *PaymentController) Create(ctx *gin.Context) {
	c.forms.create(ctx)
}

// Get returns the payment form
// @Summary Get payment details
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Payment}
// @Failure 404 {object} dto.ErrorResponse "Payment details not found"
// @Router /payment/get [get]
func (c *PaymentController) Get(ctx *gin.Context) {
	c.forms.get(ctx)
}

// Update merges the body into the stored payment
// @Summary Update payment details
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Payment true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Payment}
// @Failure 404 {object} dto.ErrorResponse "Payment details not found"
// @Router /payment/update [put]
func (c *PaymentController) Update(ctx *gin.Context) {
	c.forms.update(ctx)
}

// UploadScreenshot stores the payment screenshot
// @Summary Upload payment screenshot
// @Tags payment
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "JPG, PNG or GIF image up to 2MB"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or wrong type of file"
// @Failure 500 {object} dto.ErrorResponse "Upload failed"
// @Router /payment/upload-screenshot [post]
func (c *PaymentController) UploadScreenshot(ctx *gin.Context) {
	handleUpload(ctx, "document", "Transaction screenshot uploaded successfully", c.service.UploadScreenshot)
}
