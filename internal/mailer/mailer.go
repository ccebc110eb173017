package mailer

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/resend/resend-go/v2"
)

// Config carries everything the mailer needs. Passed explicitly at
// construction; the mailer never reads ambient configuration.
type Config struct {
	APIKey    string
	From      string
	FromName  string
	OTPExpiry time.Duration
}

// Mailer sends transactional mail through Resend. With no API key it
// runs in dev mode and logs the OTP instead of sending.
type Mailer struct {
	cfg    Config
	client *resend.Client
}

func New(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.APIKey != "" {
		m.client = resend.NewClient(cfg.APIKey)
	}
	return m
}

// GenerateOTP returns a 6-digit one-time code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendOTP mails a password-reset code to the given address.
func (m *Mailer) SendOTP(toEmail, code string) error {
	if m.client == nil {
		log.Printf("[DEV MODE] OTP for %s: %s", toEmail, code)
		return nil
	}
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From),
		To:      []string{toEmail},
		Subject: "Password Reset Code",
		Html:    m.otpBody(code),
	}
	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

func (m *Mailer) otpBody(code string) string {
	minutes := int(m.cfg.OTPExpiry.Minutes())
	return fmt.Sprintf(`<html><body style="font-family:Arial,sans-serif;color:#333">
<h2>Password Reset Request</h2>
<p>Use the following one-time code to reset your password:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:5px;font-family:monospace">%s</p>
<p><strong>This code expires in %d minutes.</strong></p>
<p style="color:#e74c3c;font-size:14px">If you did not request this reset, ignore this email.</p>
<p style="color:#888;font-size:12px">%s</p>
</body></html>`, code, minutes, m.cfg.FromName)
}
