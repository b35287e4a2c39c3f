package handlers

import (
	"net/http"
	"time"

	"github.com/flavorlab/reimburse-assistant/config"
	"github.com/flavorlab/reimburse-assistant/middleware"
	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		DB:  db,
		Cfg: cfg,
	}
}

// LoginRequest carries the identity form. Re-submitting overwrites the
// whole stored profile.
type LoginRequest struct {
	Name       string `json:"name" binding:"required"`
	StudentID  string `json:"student_id" binding:"required"`
	Supervisor string `json:"supervisor"`
	Phone      string `json:"phone"`
}

// Login upserts the caller's profile and issues tokens. The super-admin
// identity is the single hard-coded student id from config; everyone else
// authenticates as a regular user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := models.UserProfile{
		Name:       req.Name,
		StudentID:  req.StudentID,
		Supervisor: req.Supervisor,
		Phone:      req.Phone,
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "supervisor", "phone", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile", "code": "StoreFailure"})
		return
	}

	role := "user"
	if req.StudentID == h.Cfg.SuperAdminID {
		role = "admin"
	}

	accessToken, err := middleware.GenerateToken(req.StudentID, role, h.Cfg.JWTSecret, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	refreshToken, err := middleware.GenerateToken(req.StudentID, role, h.Cfg.JWTRefreshSecret, 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"profile":       profile,
		"is_admin":      role == "admin",
	})
}

// RefreshToken request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate refresh token using the refresh secret
	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.Cfg.JWTRefreshSecret), nil
	})

	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token", "code": "InvalidToken"})
		return
	}

	// The profile must still exist; deleting profiles is not supported,
	// but the token may predate a database reset.
	var profile models.UserProfile
	if err := h.DB.Where("student_id = ?", claims.StudentID).First(&profile).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found"})
		return
	}

	accessToken, err := middleware.GenerateToken(claims.StudentID, claims.Role, h.Cfg.JWTSecret, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	refreshToken, err := middleware.GenerateToken(claims.StudentID, claims.Role, h.Cfg.JWTRefreshSecret, 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// GetProfile returns the caller's stored profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	studentID, _ := contextIdentity(c)

	var profile models.UserProfile
	if err := h.DB.Where("student_id = ?", studentID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
