package controllers

import (
	"errors"
	"log"

	"github.com/chapterledger/ChapterLedger/internal/pkg/dues"
	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
)

// HandleStripeWebhook receives gateway notifications. Response codes
// steer the gateway's retry behavior: 2xx stops retries, 4xx marks a
// permanent rejection, 5xx requests a retry. Anything already recorded
// or unfixable by retrying must answer 2xx.
func HandleStripeWebhook(c *fiber.Ctx) error {
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	if secret == "" {
		log.Printf("STRIPE_WEBHOOK_SECRET is not configured, rejecting webhook")
		return serverError(c, "webhook endpoint not configured")
	}

	payload := c.Body()
	signature := c.Get("Stripe-Signature")
	if !dues.VerifyStripeWebhookSignature(payload, signature, secret) {
		return badRequest(c, "invalid signature")
	}

	event, err := dues.ParseStripeEvent(payload)
	if err != nil {
		return badRequest(c, "unparseable event payload")
	}

	// Only completed checkouts carry money; acknowledge everything else
	// so the gateway does not keep redelivering event types we ignore.
	if event.EventType != dues.EventTypeCheckoutCompleted {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}

	result, err := getDuesService().ProcessGatewayEvent(event)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":        "processed",
			"plan_archived": result.PlanArchived,
		})
	case errors.Is(err, dues.ErrDuplicateEvent):
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "duplicate"})
	case errors.Is(err, dues.ErrStaleEvent):
		return badRequest(c, "event outside acceptance window")
	case errors.Is(err, dues.ErrMemberNotFound),
		errors.Is(err, dues.ErrInvalidAmount),
		errors.Is(err, dues.ErrPlanMismatch):
		// Terminal business rejections: retrying cannot fix them, so
		// acknowledge and leave the audit row for manual follow-up.
		log.Printf("webhook event %s needs attention: %v", event.ExternalEventID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "needs_attention"})
	default:
		log.Printf("webhook event %s failed: %v", event.ExternalEventID, err)
		return serverError(c, "event processing failed")
	}
}
