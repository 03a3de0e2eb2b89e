package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/middleware"
)

// ApplicationController covers the application as a whole
type ApplicationController struct {
	service *services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(service *services.ApplicationService) *ApplicationController {
	return &ApplicationController{service: service}
}

// Status reports progress through the wizard
// @Summary Application status
// @Tags application
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationStatusResponse}
// @Router /application/status [get]
func (c *ApplicationController) Status(ctx *gin.Context) {
	user, err := middleware.CurrentUser(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status, err := c.service.Status(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Application status fetched successfully", status))
}

// Submit locks the application
// @Summary Submit application
// @Tags application
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.PersonalDetails}
// @Failure 400 {object} dto.ErrorResponse "Application is incomplete"
// @Failure 409 {object} dto.ErrorResponse "Application already submitted"
// @Router /application/submit [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	personal, err := c.service.Submit(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Application submitted successfully", personal))
}

// Print returns the application as a PDF
// @Summary Print application
// @Description Summary pages followed by every uploaded document; documents that cannot be loaded are replaced by a placeholder page
// @Tags application
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "Personal details not found"
// @Router /application/print [get]
func (c *ApplicationController) Print(ctx *gin.Context) {
	user, err := middleware.CurrentUser(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pdf, err := c.service.Print(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, printFilename(user.ApplicationID)))
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}

func printFilename(applicationID string) string {
	if applicationID == "" {
		return "application.pdf"
	}
	return "application-" + strings.ReplaceAll(applicationID, "/", "-") + ".pdf"
}
