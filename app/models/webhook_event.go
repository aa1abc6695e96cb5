package models

import "time"

// WebhookEvent stores inbound gateway notifications with deduplication
// metadata for idempotent processing. ExternalEventID is unique; a row
// with Processed=true means side effects were durably applied and must
// not be applied again. Legacy rows logged before dedupe existed carry
// an empty external id.
type WebhookEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExternalEventID string    `gorm:"type:varchar(191);not null;default:'';uniqueIndex:ux_webhook_events_external_id" json:"external_event_id"`
	EventType       string    `gorm:"type:varchar(64);not null;index" json:"event_type"`
	Payload         string    `gorm:"type:longtext;not null" json:"payload"`
	ReceivedAt      time.Time `gorm:"autoCreateTime;index" json:"received_at"`
	Processed       bool      `gorm:"default:false;index" json:"processed"`
	Notes           string    `gorm:"type:varchar(255)" json:"notes"`
}
