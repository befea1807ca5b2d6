// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

// NotificationService sends fire-and-forget customer mail. Every send is
// best-effort: callers run it on a goroutine via Notify and a failure never
// aborts the transition that triggered it.
type NotificationService struct {
	config *config.Config
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

// Notify runs fn asynchronously, logging and swallowing any error.
func (s *NotificationService) Notify(event string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			logrus.WithError(err).WithField("event", event).Warn("Notification failed")
		}
	}()
}

func (s *NotificationService) SendPolicyActivatedEmail(policy *models.Policy, customer *models.Customer) error {
	if !s.config.Email.NotifyOnActivation {
		return nil
	}

	data := map[string]interface{}{
		"CustomerName": customer.CustomerName,
		"PolicyNumber": policy.PolicyNumber,
		"StartDate":    policy.PolicyStartDate.Format("02 Jan 2006"),
		"EndDate":      policy.PolicyEndDate.Format("02 Jan 2006"),
		"Premium":      fmt.Sprintf("%.2f", policy.TotalPremiumPayable),
	}

	subject := fmt.Sprintf("Your policy %s is now active", policy.PolicyNumber)
	body, err := s.renderTemplate(policyActivatedTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(customer.Email, subject, body)
}

func (s *NotificationService) SendClaimSettledEmail(claim *models.Claim, customer *models.Customer) error {
	if !s.config.Email.NotifyOnSettlement {
		return nil
	}

	amount := 0.0
	if claim.SettlementAmount != nil {
		amount = *claim.SettlementAmount
	}

	data := map[string]interface{}{
		"CustomerName":     customer.CustomerName,
		"ClaimNumber":      claim.ClaimNumber,
		"PolicyNumber":     claim.PolicyNumber,
		"SettlementAmount": fmt.Sprintf("%.2f", amount),
	}

	subject := fmt.Sprintf("Claim %s has been settled", claim.ClaimNumber)
	body, err := s.renderTemplate(claimSettledTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(customer.Email, subject, body)
}

func (s *NotificationService) renderTemplate(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" || to == "" {
		// Mail not configured or customer has no address; nothing to send
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body,
	))

	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg); err != nil {
		return apperrors.External("smtp", err)
	}
	return nil
}

const policyActivatedTemplate = `
<p>Dear {{.CustomerName}},</p>
<p>Your vehicle insurance policy <strong>{{.PolicyNumber}}</strong> is now active.</p>
<p>Coverage period: {{.StartDate}} to {{.EndDate}}<br>
Total premium: {{.Premium}}</p>
<p>Thank you for insuring with us.</p>
`

const claimSettledTemplate = `
<p>Dear {{.CustomerName}},</p>
<p>Your claim <strong>{{.ClaimNumber}}</strong> against policy {{.PolicyNumber}} has been settled.</p>
<p>Settlement amount: {{.SettlementAmount}}</p>
`
