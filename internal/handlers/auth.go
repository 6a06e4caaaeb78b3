package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"carexpert-server/internal/config"
	"carexpert-server/internal/middleware"
	"carexpert-server/internal/models"
	"carexpert-server/internal/utils"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// SignupRequest represents the request body for account creation. Doctors
// supply the profile fields patients don't have.
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=patient doctor"`

	// Doctor-only fields
	Specialty       string   `json:"specialty"`
	ClinicLocation  string   `json:"clinicLocation"`
	Experience      int      `json:"experience"`
	Education       string   `json:"education"`
	ConsultationFee float64  `json:"consultationFee"`
	Languages       []string `json:"languages"`

	// Patient-only fields
	MedicalHistory string `json:"medicalHistory"`
}

// Signup handles account creation.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Role == string(models.RoleDoctor) && req.Specialty == "" {
		utils.BadRequest(c, "Doctors must provide a specialty")
		return
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FullName:        req.FullName,
		Email:           req.Email,
		Role:            models.Role(req.Role),
		Specialty:       req.Specialty,
		ClinicLocation:  req.ClinicLocation,
		Experience:      req.Experience,
		Education:       req.Education,
		ConsultationFee: req.ConsultationFee,
		Languages:       req.Languages,
		MedicalHistory:  req.MedicalHistory,
	}

	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "Account created successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken string               `json:"accessToken"`
	User        models.UserSanitized `json:"user"`
}

// Login handles user login. The session is delivered as HTTP-only cookies so
// the browser clients authenticate with withCredentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}
	// Store refresh token in DB
	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	h.setSessionCookies(c, accessToken, refreshTokenString)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken: accessToken,
		User:        user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken handles refreshing an access token using a refresh token.
// Tokens rotate on every refresh.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// Try the HTTP-only cookie first, fall back to the request body
	refreshTokenString, err := c.Cookie(refreshTokenCookie)
	if err != nil || refreshTokenString == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		refreshTokenString = req.RefreshToken
	}

	claims, err := utils.ValidateToken(refreshTokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	// Check if refresh token is revoked or still valid in DB
	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		refreshTokenString, claims.UserID, false, time.Now()).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.InternalServerError(c, "Failed to find user associated with token: "+err.Error())
		return
	}

	// Revoke the old refresh token
	storedToken.IsRevoked = true
	if err := h.DB.Save(&storedToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	newAccessToken, newRefreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	newRefreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&newRefreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store new refresh token: "+err.Error())
		return
	}

	h.setSessionCookies(c, newAccessToken, newRefreshTokenString)

	utils.Success(c, "Access token refreshed successfully", LoginResponse{
		AccessToken: newAccessToken,
		User:        user.Sanitize(),
	})
}

// Logout revokes the refresh token and clears the session cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshTokenString, err := c.Cookie(refreshTokenCookie)
	if err == nil && refreshTokenString != "" {
		h.DB.Model(&models.RefreshToken{}).
			Where("token = ?", refreshTokenString).
			Update("is_revoked", true)
	}

	secure := h.Cfg.Environment != "development"
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", secure, true)

	utils.Success(c, "Logged out successfully", nil)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	secure := h.Cfg.Environment != "development"
	c.SetCookie(
		middleware.AccessTokenCookie,
		accessToken,
		h.Cfg.JWTExpirationMinutes*60,
		"/",
		"",
		secure,
		true,
	)
	c.SetCookie(
		refreshTokenCookie,
		refreshToken,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		secure,
		true,
	)
}
