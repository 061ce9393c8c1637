package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
)

// RecordRepository is the GORM-backed medical record store.
type RecordRepository struct {
	DB *gorm.DB
}

// NewRecordRepository creates a RecordRepository.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{DB: db}
}

func (r *RecordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	if err := r.DB.WithContext(ctx).Create(record).Error; err != nil {
		return domain.Internal("create record", err)
	}
	return nil
}

func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	if err := r.DB.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("record not found")
		}
		return nil, domain.Internal("find record", err)
	}
	return &record, nil
}

func (r *RecordRepository) ListOwned(ctx context.Context, patientID string, ids []string) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	if err := r.DB.WithContext(ctx).
		Where("patient_id = ? AND id IN ?", patientID, ids).
		Find(&records).Error; err != nil {
		return nil, domain.Internal("list owned records", err)
	}
	return records, nil
}

func (r *RecordRepository) ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	if err := r.DB.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&records).Error; err != nil {
		return nil, domain.Internal("list records", err)
	}
	return records, nil
}

func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	if err := r.DB.WithContext(ctx).Delete(&models.MedicalRecord{}, "id = ?", id).Error; err != nil {
		return domain.Internal("delete record", err)
	}
	return nil
}
