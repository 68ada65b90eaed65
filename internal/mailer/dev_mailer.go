package mailer

import (
	"github.com/vendora/vendora/pkg/logger"
)

// DevMailer logs OTP codes instead of sending mail.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendOTPEmail(toEmail, toName, otp string) error {
	logger.Info("[DEV MAIL] OTP Email",
		"to", toEmail,
		"name", toName,
		"otp", otp,
	)
	return nil
}
