// Package email renders and delivers notification emails.
package email

import (
	"context"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"
)

// Sender delivers the notification emails the CRM sends.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail string, data LeadAssignedData) error
	SendStageSLABreachedEmail(ctx context.Context, toEmail string, data StageSLABreachedData) error
}

// LeadAssignedData fills the lead assigned template.
type LeadAssignedData struct {
	RecipientName string
	LeadName      string
	AssignedBy    string
}

// StageSLABreachedData fills the SLA reminder template.
type StageSLABreachedData struct {
	RecipientName string
	LeadName      string
	StageName     string
	SLAHours      int
}

// New returns an SMTP sender, or a NoopSender when SMTP is not configured.
func New(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.IsEmailEnabled() {
		log.Warn("SMTP_HOST not set, notification emails are disabled")
		return NoopSender{log: log}
	}
	return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
}

// NoopSender only logs what would have been sent.
type NoopSender struct {
	log *logger.Logger
}

func (s NoopSender) SendLeadAssignedEmail(_ context.Context, toEmail string, data LeadAssignedData) error {
	if s.log != nil {
		s.log.Debug("email skipped", "template", "lead_assigned", "to", toEmail, "lead", data.LeadName)
	}
	return nil
}

func (s NoopSender) SendStageSLABreachedEmail(_ context.Context, toEmail string, data StageSLABreachedData) error {
	if s.log != nil {
		s.log.Debug("email skipped", "template", "stage_sla_breached", "to", toEmail, "lead", data.LeadName)
	}
	return nil
}
