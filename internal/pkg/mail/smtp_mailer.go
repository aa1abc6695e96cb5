package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendInviteMail delivers a registration invite code.
func SendInviteMail(to, code string, signupURL string) error {
	subject := "Your ChapterLedger Invite Code"
	body := fmt.Sprintf(
		"<p>You have been invited to register.</p>"+
			"<p>Your invite code: <strong>%s</strong></p>"+
			"<p>Sign up at: <a href=\"%s\">%s</a></p>",
		code, signupURL, signupURL,
	)
	return SendMail(to, subject, body)
}

// SendPlanCompletedMail notifies a member that their payment plan has
// been completed and archived.
func SendPlanCompletedMail(to, name string) error {
	subject := "Payment Plan Completed"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Congratulations - your payment plan is complete and has been archived. "+
			"Thank you for keeping your dues current.</p>",
		name,
	)
	return SendMail(to, subject, body)
}
