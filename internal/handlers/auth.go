package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medichain-server/internal/config"
	"medichain-server/internal/middleware"
	"medichain-server/internal/models"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Minter *services.IdentityMinter
	Anchor services.Anchor
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, minter *services.IdentityMinter, anchor services.Anchor) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Minter: minter, Anchor: anchor}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name           string `json:"name" binding:"required,min=2"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Role           string `json:"role" binding:"required,oneof=PATIENT DOCTOR ADMIN"`
	Specialization string `json:"specialization"`
	DepartmentID   string `json:"departmentId"`
}

// Register handles user registration. An identity is minted on the ledger
// first; if minting fails the registration fails and no user row is created.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	identity, err := h.Minter.Mint(c.Request.Context())
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Role:      models.Role(req.Role),
		Status:    models.StatusActive,
		DID:       identity.DID,
		PublicKey: identity.PublicKey,
	}

	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch user.Role {
		case models.RolePatient:
			return tx.Create(&models.PatientProfile{UserID: user.ID}).Error
		case models.RoleDoctor:
			profile := models.DoctorProfile{
				UserID:         user.ID,
				Specialization: req.Specialization,
			}
			if req.DepartmentID != "" {
				profile.DepartmentID = &req.DepartmentID
			}
			return tx.Create(&profile).Error
		}
		return nil
	})
	if err != nil {
		// The email pre-check above races with concurrent registrations; the
		// unique index is the authority, so a duplicate-key failure here is
		// still a duplicate email, not a server fault.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "User with this email already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	h.Anchor.AnchorBestEffort(c.Request.Context(), h.Anchor.AuditTopic(), services.Event{
		Name:     "user_registered",
		ActorDID: user.DID,
	})

	utils.Created(c, "User registered successfully", gin.H{
		"user":       user.Sanitize(),
		"accountRef": identity.AccountRef,
	})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
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

	if user.Status == models.StatusSuspended {
		utils.Forbidden(c, "Account is suspended")
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

	// Login audit is informational only.
	h.Anchor.AnchorBestEffort(c.Request.Context(), h.Anchor.AuditTopic(), services.Event{
		Name:     "user_login",
		ActorDID: user.DID,
	})

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for refreshing tokens.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken rotates a refresh token into a new token pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	var stored models.RefreshToken
	if err := h.DB.Where("token = ? AND is_revoked = ?", req.RefreshToken, false).First(&stored).Error; err != nil {
		utils.Unauthorized(c, "Refresh token not recognized")
		return
	}
	if stored.ExpiresAt.Before(time.Now()) {
		utils.Unauthorized(c, "Refresh token expired")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.Unauthorized(c, "User not found")
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	// Rotate: revoke the old token and store the new one.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&stored).Update("is_revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(&models.RefreshToken{
			UserID:    user.ID,
			Token:     refreshTokenString,
			ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		}).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to rotate refresh token: "+err.Error())
		return
	}

	utils.Success(c, "Token refreshed", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

// Logout revokes the caller's refresh tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke tokens: "+err.Error())
		return
	}

	utils.Success(c, "Logged out successfully", nil)
}

// GetProfile returns the authenticated user with their role profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Preload("DoctorProfile.Department").
		First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, "Profile fetched successfully", user)
}

// PatientProfileUpdate is the profile update body accepted from patients.
type PatientProfileUpdate struct {
	Name        string     `json:"name"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	BloodType   string     `json:"bloodType"`
	Allergies   string     `json:"allergies"`
}

// DoctorProfileUpdate is the profile update body accepted from doctors.
type DoctorProfileUpdate struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// AdminProfileUpdate is the profile update body accepted from admins.
type AdminProfileUpdate struct {
	Name string `json:"name"`
}

// UpdateProfile dispatches the update body by the caller's role rather than
// inspecting which fields happen to be present.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	switch role {
	case models.RolePatient:
		var req PatientProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if req.Name != "" {
				if err := tx.Model(&user).Update("name", req.Name).Error; err != nil {
					return err
				}
			}
			updates := map[string]interface{}{}
			if req.DateOfBirth != nil {
				updates["date_of_birth"] = req.DateOfBirth
			}
			if req.BloodType != "" {
				updates["blood_type"] = req.BloodType
			}
			if req.Allergies != "" {
				updates["allergies"] = req.Allergies
			}
			if len(updates) == 0 {
				return nil
			}
			return tx.Model(&models.PatientProfile{}).Where("user_id = ?", userID).Updates(updates).Error
		})
		if err != nil {
			utils.InternalServerError(c, "Failed to update profile: "+err.Error())
			return
		}

	case models.RoleDoctor:
		var req DoctorProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if req.Name != "" {
				if err := tx.Model(&user).Update("name", req.Name).Error; err != nil {
					return err
				}
			}
			if req.Specialization != "" {
				return tx.Model(&models.DoctorProfile{}).
					Where("user_id = ?", userID).
					Update("specialization", req.Specialization).Error
			}
			return nil
		})
		if err != nil {
			utils.InternalServerError(c, "Failed to update profile: "+err.Error())
			return
		}

	default:
		var req AdminProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
		if req.Name != "" {
			if err := h.DB.Model(&user).Update("name", req.Name).Error; err != nil {
				utils.InternalServerError(c, "Failed to update profile: "+err.Error())
				return
			}
		}
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
