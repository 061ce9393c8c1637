package repository

import (
	"context"

	"gorm.io/gorm"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
)

// AuditEventRepository is the GORM-backed mirror of anchored events.
type AuditEventRepository struct {
	DB *gorm.DB
}

// NewAuditEventRepository creates an AuditEventRepository.
func NewAuditEventRepository(db *gorm.DB) *AuditEventRepository {
	return &AuditEventRepository{DB: db}
}

func (r *AuditEventRepository) Save(ctx context.Context, event *models.AuditEvent) error {
	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return domain.Internal("save audit event", err)
	}
	return nil
}

// ListByDID returns events where the DID appears as actor or subject, newest
// first.
func (r *AuditEventRepository) ListByDID(ctx context.Context, did string, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var events []models.AuditEvent
	if err := r.DB.WithContext(ctx).
		Where("actor_did = ? OR subject_did = ?", did, did).
		Order("created_at desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, domain.Internal("list audit events", err)
	}
	return events, nil
}
