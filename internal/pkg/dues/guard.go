package dues

import (
	"log"
	"strconv"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
)

// defaultMaxEventAge bounds how old an event timestamp may be before the
// event is rejected outright. Overridable via WEBHOOK_MAX_AGE (seconds).
const defaultMaxEventAge = time.Hour

// MaxEventAge returns the configured acceptance window for inbound
// gateway events.
func MaxEventAge() time.Duration {
	raw := env.GetEnv("WEBHOOK_MAX_AGE", "")
	if raw == "" {
		return defaultMaxEventAge
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		log.Printf("[DUES] invalid WEBHOOK_MAX_AGE %q, using default", raw)
		return defaultMaxEventAge
	}
	return time.Duration(secs) * time.Second
}

// Admit runs the idempotency guard for one inbound event. The staleness
// check runs before the duplicate check so an old event is rejected even
// on its first delivery. On admission it returns the stored audit row,
// which may be a previously stored but unprocessed row: because the
// ledger insert and the processed flip commit together, an unprocessed
// row means the earlier attempt never wrote a payment and reprocessing
// is safe.
func (s *Service) Admit(event *InboundEvent, now time.Time) (*models.WebhookEvent, error) {
	if !event.OccurredAt.IsZero() && now.Sub(event.OccurredAt) > s.maxEventAge {
		return nil, ErrStaleEvent
	}

	row := &models.WebhookEvent{
		ExternalEventID: event.ExternalEventID,
		EventType:       event.EventType,
		Payload:         event.RawPayload,
		ReceivedAt:      now,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(row)
	if err != nil {
		return nil, storageErr("webhook event insert", err)
	}
	if !created && stored.Processed {
		return nil, ErrDuplicateEvent
	}
	if !created {
		log.Printf("[DUES] re-admitting unprocessed event %s", event.ExternalEventID)
	}
	return stored, nil
}
