package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/controllers"
	"github.com/nitn/phd-admission/internal/middleware"
)

// Controllers groups the HTTP handlers
type Controllers struct {
	Auth        *controllers.AuthController
	Personal    *controllers.PersonalController
	Academic    *controllers.AcademicController
	Payment     *controllers.PaymentController
	Enclosure   *controllers.EnclosureController
	Application *controllers.ApplicationController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl *Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) {
	api := router.Group("/api")

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	if limiter != nil {
		auth.Use(limiter.Handler())
	}
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh-token", ctrl.Auth.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", ctrl.Auth.Logout)
	authenticated.GET("/auth/current-user", ctrl.Auth.CurrentUser)

	personal := authenticated.Group("/personal")
	{
		personal.POST("/create", ctrl.Personal.Create)
		personal.GET("/get", ctrl.Personal.Get)
		personal.PUT("/update", ctrl.Personal.Update)
		personal.POST("/upload-photo", ctrl.Personal.UploadPhoto)
		personal.POST("/upload-signature", ctrl.Personal.UploadSignature)
		personal.POST("/upload-demand-draft", ctrl.Personal.UploadDemandDraft)
		personal.POST("/upload-transaction-screenshot", ctrl.Personal.UploadTransactionScreenshot)
		personal.PUT("/update-transaction-details", ctrl.Personal.UpdateTransactionDetails)
		personal.PUT("/update-declaration", ctrl.Personal.UpdateDeclaration)
	}

	academic := authenticated.Group("/academic")
	{
		academic.POST("/create", ctrl.Academic.Create)
		academic.GET("/get", ctrl.Academic.Get)
		academic.PUT("/update", ctrl.Academic.Update)
		academic.POST("/upload-document", ctrl.Academic.UploadDocument)
	}

	payment := authenticated.Group("/payment")
	{
		payment.POST("/create", ctrl.Payment.Create)
		payment.GET("/get", ctrl.Payment.Get)
		payment.PUT("/update", ctrl.Payment.Update)
		payment.POST("/upload-screenshot", ctrl.Payment.UploadScreenshot)
	}

	enclosures := authenticated.Group("/enclosures")
	{
		enclosures.POST("/create", ctrl.Enclosure.Create)
		enclosures.GET("/get", ctrl.Enclosure.Get)
		enclosures.PUT("/update", ctrl.Enclosure.Update)
	}

	application := authenticated.Group("/application")
	{
		application.GET("/status", ctrl.Application.Status)
		application.POST("/submit", ctrl.Application.Submit)
		application.GET("/print", ctrl.Application.Print)
	}

	router.NoRoute(middleware.NotFoundHandler)
}
