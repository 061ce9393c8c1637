package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medichain-server/internal/middleware"
	"medichain-server/internal/models"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

// AdminHandler handles department management, doctor verification, and
// system statistics.
type AdminHandler struct {
	DB     *gorm.DB
	Minter *services.IdentityMinter
	Anchor services.Anchor
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, minter *services.IdentityMinter, anchor services.Anchor) *AdminHandler {
	return &AdminHandler{DB: db, Minter: minter, Anchor: anchor}
}

// CreateDepartmentRequest represents the request body for creating a
// department.
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,min=3"`
	Description string `json:"description" binding:"max=200"`
}

// CreateDepartment creates a department. Anchoring is best-effort: the
// department commits even if the ledger call fails.
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	adminDID, _ := middleware.GetUserDIDFromContext(c)

	department := models.Department{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   adminID,
	}
	if err := h.DB.Create(&department).Error; err != nil {
		utils.InternalServerError(c, "Failed to create department: "+err.Error())
		return
	}

	h.Anchor.AnchorBestEffort(c.Request.Context(), h.Anchor.AuditTopic(), services.Event{
		Name:     "department_created",
		ActorDID: adminDID,
		EntityID: department.ID,
	})

	utils.Created(c, "Department created successfully", department)
}

// ListDepartments returns all departments with their doctor counts.
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	var departments []models.Department
	if err := h.DB.Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
		return
	}

	type departmentWithCount struct {
		models.Department
		DoctorCount int64 `json:"doctorCount"`
	}

	out := make([]departmentWithCount, 0, len(departments))
	for _, dept := range departments {
		var count int64
		if err := h.DB.Model(&models.DoctorProfile{}).
			Where("department_id = ?", dept.ID).
			Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Failed to count doctors: "+err.Error())
			return
		}
		out = append(out, departmentWithCount{Department: dept, DoctorCount: count})
	}

	utils.Success(c, "Departments fetched successfully", out)
}

// VerifyDoctor marks a doctor as verified, minting an identity if the user
// does not yet carry a DID. The approval anchor is best-effort.
func (h *AdminHandler) VerifyDoctor(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)
	adminDID, _ := middleware.GetUserDIDFromContext(c)
	doctorID := c.Param("doctorId")

	var profile models.DoctorProfile
	if err := h.DB.Preload("User").First(&profile, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if profile.IsVerified {
		utils.Conflict(c, "Doctor is already verified")
		return
	}

	now := time.Now()
	if err := h.DB.Model(&profile).Updates(map[string]interface{}{
		"is_verified": true,
		"verified_by": adminID,
		"verified_at": now,
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to verify doctor: "+err.Error())
		return
	}

	doctorDID := profile.User.DID
	if doctorDID == "" {
		identity, err := h.Minter.Mint(c.Request.Context())
		if err != nil {
			// Verification is already committed, so report it as done and
			// leave the DID to be assigned on a later attempt.
			utils.Success(c, "Doctor verified; identity assignment deferred", gin.H{
				"doctor":  profile,
				"warning": "ledger identity could not be minted: " + err.Error(),
			})
			return
		}
		if err := h.DB.Model(&models.User{}).
			Where("id = ?", profile.UserID).
			Updates(map[string]interface{}{
				"did":        identity.DID,
				"public_key": identity.PublicKey,
			}).Error; err != nil {
			utils.InternalServerError(c, "Failed to assign identity: "+err.Error())
			return
		}
		doctorDID = identity.DID
	}

	h.Anchor.AnchorBestEffort(c.Request.Context(), h.Anchor.AuditTopic(), services.Event{
		Name:       "doctor_approved",
		ActorDID:   adminDID,
		SubjectDID: doctorDID,
		EntityID:   profile.ID,
	})

	utils.Success(c, "Doctor verified successfully", profile)
}

// ListUnverifiedDoctors returns doctors awaiting verification.
func (h *AdminHandler) ListUnverifiedDoctors(c *gin.Context) {
	var profiles []models.DoctorProfile
	if err := h.DB.Preload("User").Preload("Department").
		Where("is_verified = ?", false).
		Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Unverified doctors fetched successfully", profiles)
}

// SystemStats returns overall counts for the admin dashboard.
func (h *AdminHandler) SystemStats(c *gin.Context) {
	var (
		totalPatients    int64
		verifiedDoctors  int64
		pendingDoctors   int64
		totalRecords     int64
		totalDepartments int64
	)

	if err := h.DB.Model(&models.PatientProfile{}).Count(&totalPatients).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.DoctorProfile{}).Where("is_verified = ?", true).Count(&verifiedDoctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to count doctors: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.DoctorProfile{}).Where("is_verified = ?", false).Count(&pendingDoctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to count pending doctors: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.MedicalRecord{}).Count(&totalRecords).Error; err != nil {
		utils.InternalServerError(c, "Failed to count records: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.Department{}).Count(&totalDepartments).Error; err != nil {
		utils.InternalServerError(c, "Failed to count departments: "+err.Error())
		return
	}

	utils.Success(c, "System stats fetched successfully", gin.H{
		"totalPatients":    totalPatients,
		"verifiedDoctors":  verifiedDoctors,
		"pendingApprovals": pendingDoctors,
		"totalRecords":     totalRecords,
		"departments":      totalDepartments,
	})
}
