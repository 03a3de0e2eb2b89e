// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/middleware"
	"github.com/rs/zerolog"
)

// CookieConfig controls the auth cookies
type CookieConfig struct {
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	cookies     CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, cookies CookieConfig, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

// setCookie writes an httpOnly cookie. SameSite=None needs Secure, so plain HTTP falls back to Lax.
func (c *AuthController) setCookie(ctx *gin.Context, name, value string, maxAge int) {
	if c.cookies.Secure {
		ctx.SetSameSite(http.SameSiteNoneMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}
	ctx.SetCookie(name, value, maxAge, "/", "", c.cookies.Secure, true)
}

func (c *AuthController) setSessionCookies(ctx *gin.Context, resp *dto.AuthResponse) {
	c.setCookie(ctx, middleware.AccessTokenCookie, resp.AccessToken, int(c.authService.AccessTokenTTL()))
	c.setCookie(ctx, middleware.RefreshTokenCookie, resp.RefreshToken, int(c.authService.RefreshTokenTTL()))
}

// Register handles applicant registration
// @Summary Register a new applicant
// @Description Creates an account, assigns the next application id and signs the applicant in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "User registered successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := middleware.DecodeJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookies(ctx, resp)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("User registered successfully", resp))
}

// Login handles applicant login
// @Summary Applicant login
// @Description Authenticates an applicant and sets the accessToken and refreshToken cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 404 {object} dto.ErrorResponse "User does not exist"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := middleware.DecodeJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookies(ctx, resp)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("User logged in successfully", resp))
}

// RefreshToken issues a new access token
// @Summary Refresh access token
// @Description Exchanges the refresh token from the refreshToken cookie or the request body for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token when no cookie is sent"
// @Success 200 {object} dto.APIResponse{data=dto.RefreshResponse} "Access token refreshed"
// @Failure 401 {object} dto.ErrorResponse "Missing, invalid or stale refresh token"
// @Router /auth/refresh-token [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	token, _ := ctx.Cookie(middleware.RefreshTokenCookie)
	if token == "" && ctx.Request.ContentLength != 0 {
		var req dto.RefreshTokenRequest
		if err := middleware.DecodeJSON(ctx, &req); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		token = req.RefreshToken
	}

	resp, err := c.authService.Refresh(ctx.Request.Context(), token)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setCookie(ctx, middleware.AccessTokenCookie, resp.AccessToken, int(c.authService.AccessTokenTTL()))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Access token refreshed", resp))
}

// Logout ends the session
// @Summary Logout
// @Description Invalidates the stored refresh token and clears the auth cookies
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "User logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setCookie(ctx, middleware.AccessTokenCookie, "", -1)
	c.setCookie(ctx, middleware.RefreshTokenCookie, "", -1)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("User logged out", nil))
}

// CurrentUser returns the signed-in applicant
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User} "Current user"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/current-user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	user, err := middleware.CurrentUser(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Current user fetched successfully", user))
}
