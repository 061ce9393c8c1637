package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
)

// ConsentRepository is the GORM-backed consent store.
type ConsentRepository struct {
	DB *gorm.DB
}

// NewConsentRepository creates a ConsentRepository.
func NewConsentRepository(db *gorm.DB) *ConsentRepository {
	return &ConsentRepository{DB: db}
}

// CreateBatch inserts the whole fan-out in one transaction: all rows commit
// or none do.
func (r *ConsentRepository) CreateBatch(ctx context.Context, consents []*models.Consent) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, consent := range consents {
			if err := tx.Create(consent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Internal("create consents", err)
	}
	return nil
}

func (r *ConsentRepository) FindByID(ctx context.Context, id string) (*models.Consent, error) {
	var consent models.Consent
	if err := r.DB.WithContext(ctx).First(&consent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("consent not found")
		}
		return nil, domain.Internal("find consent", err)
	}
	return &consent, nil
}

// Deactivate performs the single true-to-false transition. The WHERE clause
// on is_active makes concurrent revokes race-safe: only one caller observes
// a transition.
func (r *ConsentRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.Consent{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, domain.Internal("deactivate consent", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ConsentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Consent, error) {
	var consents []models.Consent
	if err := r.DB.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&consents).Error; err != nil {
		return nil, domain.Internal("list consents", err)
	}
	return consents, nil
}

func (r *ConsentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Consent, error) {
	var consents []models.Consent
	if err := r.DB.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at desc").
		Find(&consents).Error; err != nil {
		return nil, domain.Internal("list consents", err)
	}
	return consents, nil
}

// ListActiveForDoctorRecord returns active consents linking the doctor and
// record. Expiry is deliberately not filtered here; effectiveness is decided
// by the caller against its own clock.
func (r *ConsentRepository) ListActiveForDoctorRecord(ctx context.Context, doctorID, recordID string) ([]models.Consent, error) {
	var consents []models.Consent
	if err := r.DB.WithContext(ctx).
		Where("doctor_id = ? AND record_id = ? AND is_active = ?", doctorID, recordID, true).
		Find(&consents).Error; err != nil {
		return nil, domain.Internal("list active consents", err)
	}
	return consents, nil
}
