package email

import (
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"strings"
)

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// LoadSMTPConfigFromEnv loads SMTP configuration from environment variables
func LoadSMTPConfigFromEnv() (*SMTPConfig, error) {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	sender := os.Getenv("SMTP_SENDER_EMAIL")

	if host == "" || portStr == "" || sender == "" {
		return nil, fmt.Errorf("SMTP_HOST, SMTP_PORT, and SMTP_SENDER_EMAIL must be set")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	return &SMTPConfig{
		Host:     host,
		Port:     port,
		Username: username, // Username can be empty for some SMTP servers
		Password: password, // Password can be empty for some SMTP servers
		Sender:   sender,
	}, nil
}

// ReportVerifiedMessage carries the content of the "your report was verified"
// notification.
type ReportVerifiedMessage struct {
	OwnerName         string
	Category          string
	Location          string
	VerificationCount int
	VerifierNames     []string
	ReportURL         string
}

// MonthlySummaryMessage carries the content of the opt-in monthly activity
// summary.
type MonthlySummaryMessage struct {
	RecipientName          string
	ReportsVerified        int
	VerificationsSubmitted int
	PointsEarned           int
}

// SendReportVerifiedEmail notifies a report owner that their report reached
// the verification threshold.
func SendReportVerifiedEmail(toEmail string, msg ReportVerifiedMessage) error {
	greeting := "Hi"
	if msg.OwnerName != "" {
		greeting = "Hi " + msg.OwnerName
	}

	verifiers := ""
	if len(msg.VerifierNames) > 0 {
		verifiers = fmt.Sprintf("<p>Verified by: %s</p>", strings.Join(msg.VerifierNames, ", "))
	}

	subject := "Your report has been verified by the community"
	body := fmt.Sprintf(`
<html>
<body>
    <p>%s,</p>
    <p>Good news &mdash; your %s report near %s has been confirmed by %d community members and is now marked as verified.</p>
    %s
    <p><a href="%s">View your report</a></p>
    <p><small>(This is an automated message. You can turn these emails off in your notification settings.)</small></p>
</body>
</html>
`, greeting, msg.Category, msg.Location, msg.VerificationCount, verifiers, msg.ReportURL)

	return send(toEmail, subject, body)
}

// SendMonthlySummaryEmail sends the opt-in monthly activity summary.
func SendMonthlySummaryEmail(toEmail string, msg MonthlySummaryMessage) error {
	greeting := "Hi"
	if msg.RecipientName != "" {
		greeting = "Hi " + msg.RecipientName
	}

	subject := "Your monthly community impact summary"
	body := fmt.Sprintf(`
<html>
<body>
    <p>%s,</p>
    <p>Here is what happened with your reports this month:</p>
    <ul>
        <li>Reports verified: %d</li>
        <li>Verifications you submitted: %d</li>
        <li>Points earned: %d</li>
    </ul>
    <p><small>(This is an automated message. You can turn these emails off in your notification settings.)</small></p>
</body>
</html>
`, greeting, msg.ReportsVerified, msg.VerificationsSubmitted, msg.PointsEarned)

	return send(toEmail, subject, body)
}

// send delivers one HTML message through the configured SMTP server.
func send(toEmail, subject, body string) error {
	config, err := LoadSMTPConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load SMTP config: %w", err)
	}

	// Construct email message with CRLF line endings
	msg := []byte(strings.Join([]string{
		"To: " + toEmail,
		"From: " + config.Sender,
		"Subject: " + subject,
		"MIME-version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n"))

	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	if err := smtp.SendMail(addr, auth, config.Sender, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
