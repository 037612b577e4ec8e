// Package notification sends emails in response to lead events. Domain
// modules publish events and never talk to the mail provider directly.
package notification

import (
	"context"
	"errors"

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	leadsdomain "crm_backend/internal/leads/domain"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// UserDirectory resolves the users a notification goes to.
type UserDirectory interface {
	GetUser(ctx context.Context, companyID, userID uuid.UUID) (leadsdomain.User, error)
}

// Module handles notification event subscriptions.
type Module struct {
	sender email.Sender
	users  UserDirectory
	log    *logger.Logger
}

// New creates a new notification module.
func New(sender email.Sender, users UserDirectory, log *logger.Logger) *Module {
	return &Module{sender: sender, users: users, log: log}
}

// RegisterHandlers subscribes the module to the events it notifies about.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.LeadStageSLABreached{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case events.LeadStageSLABreached:
		return m.handleStageSLABreached(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	if e.ActorID != nil && *e.ActorID == e.AssignedTo {
		return nil
	}
	recipient, ok, err := m.recipient(ctx, e.CompanyID, e.AssignedTo)
	if !ok || err != nil {
		return err
	}

	data := email.LeadAssignedData{RecipientName: recipient.Name, LeadName: e.LeadName}
	if e.ActorID != nil {
		if actor, found, _ := m.recipient(ctx, e.CompanyID, *e.ActorID); found {
			data.AssignedBy = actor.Name
		}
	}

	if err := m.sender.SendLeadAssignedEmail(ctx, recipient.Email, data); err != nil {
		m.log.Error("failed to send lead assigned email", "leadId", e.LeadID, "userId", e.AssignedTo, "error", err)
		return err
	}
	m.log.Info("lead assigned email sent", "leadId", e.LeadID, "userId", e.AssignedTo)
	return nil
}

func (m *Module) handleStageSLABreached(ctx context.Context, e events.LeadStageSLABreached) error {
	if e.AssignedTo == nil {
		m.log.Info("sla breach without assignee, no email sent", "leadId", e.LeadID, "stageId", e.StageID)
		return nil
	}
	recipient, ok, err := m.recipient(ctx, e.CompanyID, *e.AssignedTo)
	if !ok || err != nil {
		return err
	}

	err = m.sender.SendStageSLABreachedEmail(ctx, recipient.Email, email.StageSLABreachedData{
		RecipientName: recipient.Name,
		LeadName:      e.LeadName,
		StageName:     e.StageName,
		SLAHours:      e.SLAHours,
	})
	if err != nil {
		m.log.Error("failed to send sla breach email", "leadId", e.LeadID, "userId", *e.AssignedTo, "error", err)
		return err
	}
	m.log.Info("sla breach email sent", "leadId", e.LeadID, "userId", *e.AssignedTo)
	return nil
}

// recipient loads a user with an email address. A user that left the
// company is skipped without error.
func (m *Module) recipient(ctx context.Context, companyID, userID uuid.UUID) (leadsdomain.User, bool, error) {
	user, err := m.users.GetUser(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, leadsdomain.ErrUserNotFound) {
			m.log.Warn("notification recipient not found", "userId", userID, "companyId", companyID)
			return leadsdomain.User{}, false, nil
		}
		return leadsdomain.User{}, false, err
	}
	if user.Email == "" {
		return leadsdomain.User{}, false, nil
	}
	return user, true, nil
}

var _ events.Handler = (*Module)(nil)
