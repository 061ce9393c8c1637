package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
)

// AccessRequestRepository is the GORM-backed access request store.
type AccessRequestRepository struct {
	DB *gorm.DB
}

// NewAccessRequestRepository creates an AccessRequestRepository.
func NewAccessRequestRepository(db *gorm.DB) *AccessRequestRepository {
	return &AccessRequestRepository{DB: db}
}

func (r *AccessRequestRepository) Create(ctx context.Context, request *models.AccessRequest) error {
	if err := r.DB.WithContext(ctx).Create(request).Error; err != nil {
		return domain.Internal("create access request", err)
	}
	return nil
}

func (r *AccessRequestRepository) FindByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	var request models.AccessRequest
	if err := r.DB.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("access request not found")
		}
		return nil, domain.Internal("find access request", err)
	}
	return &request, nil
}

// Transition moves a PENDING request to a terminal status, creating the
// consent in the same transaction when one is supplied. The guarded UPDATE
// makes double responses race-safe: the second caller sees no transition and
// nothing else is written.
func (r *AccessRequestRepository) Transition(ctx context.Context, requestID string, to models.AccessRequestStatus, consent *models.Consent) (bool, error) {
	transitioned := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AccessRequest{}).
			Where("id = ? AND status = ?", requestID, models.AccessRequestPending).
			Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		transitioned = true
		if consent != nil {
			if err := tx.Create(consent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, domain.Internal("transition access request", err)
	}
	return transitioned, nil
}

func (r *AccessRequestRepository) ListByPatient(ctx context.Context, patientID string) ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	if err := r.DB.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&requests).Error; err != nil {
		return nil, domain.Internal("list access requests", err)
	}
	return requests, nil
}

func (r *AccessRequestRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	if err := r.DB.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at desc").
		Find(&requests).Error; err != nil {
		return nil, domain.Internal("list access requests", err)
	}
	return requests, nil
}
