package utils

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"teamspace/config"
)

// SendJoinRequestDecisionEmail notifies a user that their request to
// join a team was approved or declined.
func SendJoinRequestDecisionEmail(to, teamName string, approved bool) error {
	subject := fmt.Sprintf("Your request to join %s", teamName)
	verdict := "approved"
	if !approved {
		verdict = "declined"
	}
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Team join request %s</h2>
			<p>Your request to join the team <b>%s</b> has been %s.</p>
		</body>
		</html>
	`, verdict, teamName, verdict)

	return sendEmail(to, subject, body)
}

// SendMemberRemovedEmail notifies a user that they were removed from a team.
func SendMemberRemovedEmail(to, teamName string) error {
	subject := fmt.Sprintf("You have been removed from %s", teamName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<p>You are no longer a member of the team <b>%s</b>.</p>
		</body>
		</html>
	`, teamName)

	return sendEmail(to, subject, body)
}

func sendEmail(to, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		// Mail is optional in development; skip silently.
		return nil
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port %q: %w", cfg.SMTPPort, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
