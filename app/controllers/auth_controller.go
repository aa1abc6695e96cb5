package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/internal/pkg/session"
	"github.com/chapterledger/ChapterLedger/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a member account from a redeemable invite code.
// The invite determines the role the account starts with.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Password) < 8 {
		return badRequest(c, "password must be at least 8 characters")
	}

	repos := getRepositories()

	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	invite, err := repos.Invite.GetByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return badRequest(c, "invalid invite code")
	}
	if err != nil {
		return serverError(c, "invite lookup failed")
	}
	if !invite.IsRedeemable(time.Now()) {
		return badRequest(c, "invite code is used or expired")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := repos.Member.GetByEmail(email); err == nil {
		return badRequest(c, "email is already registered")
	}

	member, err := models.CreateMember(strings.TrimSpace(req.Name), email, req.Password, invite.Role)
	if err != nil {
		return badRequest(c, "invalid member data: "+err.Error())
	}
	if err := repos.Member.Create(member); err != nil {
		return serverError(c, "member creation failed")
	}
	if err := repos.Invite.MarkUsed(invite, member.ID); err != nil {
		return serverError(c, "invite redemption failed")
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

// HandleLogin verifies credentials and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	member, err := getRepositories().Member.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil || !member.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "invalid email or password",
		})
	}
	if !member.Active {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "account is deactivated",
		})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return serverError(c, "session could not be created")
	}
	sess.Set(usercontext.KeyMemberID, member.ID)
	sess.Set(usercontext.KeyMemberName, member.Name)
	sess.Set(usercontext.KeyMemberRole, member.Role)
	if err := sess.Save(); err != nil {
		return serverError(c, "session could not be saved")
	}

	return c.JSON(member)
}

// HandleLogout destroys the current session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"status": "logged_out"})
}

// HandleMe returns the logged-in member's profile.
func HandleMe(c *fiber.Ctx) error {
	member, err := getRepositories().Member.GetByID(usercontext.GetMemberID(c))
	if err != nil {
		return notFound(c, "member not found")
	}
	return c.JSON(member)
}
