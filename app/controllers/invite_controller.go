package controllers

import (
	"log"
	"strings"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
	"github.com/chapterledger/ChapterLedger/internal/pkg/mail"
	"github.com/chapterledger/ChapterLedger/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

type createInviteRequest struct {
	Role          string `json:"role"`
	Email         string `json:"email"`
	ExpiresInDays int    `json:"expires_in_days"`
}

// HandleCreateInvite mints a single-use registration invite and mails it
// when an email address is given.
func HandleCreateInvite(c *fiber.Ctx) error {
	var req createInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	role := req.Role
	if role == "" {
		role = models.ROLE_MEMBER
	}
	switch role {
	case models.ROLE_MEMBER, models.ROLE_TREASURER, models.ROLE_SECRETARY,
		models.ROLE_VICE_1, models.ROLE_VICE_2, models.ROLE_PRESIDENT:
	default:
		return badRequest(c, "invalid role for invite")
	}

	days := req.ExpiresInDays
	if days <= 0 {
		days = 14
	}

	invite := models.NewInviteCode(role, usercontext.GetMemberID(c), days)
	if err := getRepositories().Invite.Create(invite); err != nil {
		return serverError(c, "invite creation failed")
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		signupURL := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/") + "/register"
		go func() {
			if err := mail.SendInviteMail(email, invite.Code, signupURL); err != nil {
				log.Printf("invite mail to %s failed: %v", email, err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(invite)
}

// HandleListInvites returns invites, newest first.
func HandleListInvites(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	repos := getRepositories()

	invites, err := repos.Invite.List(offset, limit)
	if err != nil {
		return serverError(c, "invite lookup failed")
	}
	count, err := repos.Invite.Count()
	if err != nil {
		return serverError(c, "invite count failed")
	}
	return c.JSON(fiber.Map{
		"invites": invites,
		"total":   count,
	})
}

// HandleDeleteInvite revokes an unredeemed invite.
func HandleDeleteInvite(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil || id == 0 {
		return badRequest(c, "invalid invite id")
	}
	if err := getRepositories().Invite.Delete(id); err != nil {
		return serverError(c, "invite deletion failed")
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
