package repository

import (
	"github.com/chapterledger/ChapterLedger/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook audit repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// CreateIfNotExists inserts the audit row unless one with the same
// external event id already exists. The unique index resolves concurrent
// inserts for the same id: exactly one caller observes created=true.
// Runs in its own commit boundary so the audit trail survives downstream
// failures.
func (r *webhookRepository) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "external_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("external_event_id = ?", event.ExternalEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// GetByExternalID retrieves an audit row by the gateway's event id
func (r *webhookRepository) GetByExternalID(externalID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.Where("external_event_id = ?", externalID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// MarkProcessed flips the processed flag and stores an outcome note.
func (r *webhookRepository) MarkProcessed(id uint, notes string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed": true,
		"notes":     notes,
	}).Error
}
