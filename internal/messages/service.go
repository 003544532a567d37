package messages

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
	"github.com/meridian-advisory/meridian/jobs"
)

// ClientResolver maps a user account to the client profile it owns.
type ClientResolver interface {
	ResolveByUser(ctx context.Context, userID int64) (authz.ClientRef, error)
}

// EmployeeDirectory maps employee profiles to user accounts.
type EmployeeDirectory interface {
	UserIDFor(ctx context.Context, employeeID int64) (int64, error)
}

// UserDirectory resolves notification addresses.
type UserDirectory interface {
	Email(ctx context.Context, userID int64) (string, error)
}

// MailQueue submits notification emails to the background queue.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service handles partner messaging. A conversation is only permitted between
// a client and the employee currently assigned to that client; the pairing is
// verified from repository data on every send, since the evaluator's
// references do not carry the reverse employee-to-client relation.
type Service struct {
	logger    *slog.Logger
	repo      RepositoryPort
	clients   ClientResolver
	employees EmployeeDirectory
	users     UserDirectory
	mail      MailQueue
	evaluator authz.Evaluator
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, clients ClientResolver, employees EmployeeDirectory, users UserDirectory, mail MailQueue) *Service {
	return &Service{logger: logger, repo: repo, clients: clients, employees: employees, users: users, mail: mail}
}

// Send delivers a message to the principal's advisory partner and queues an
// email notification for the recipient.
func (s *Service) Send(ctx context.Context, principal *authz.Principal, recipientUserID int64, body string) (Message, error) {
	if principal == nil {
		return Message{}, httpx.ErrUnauthorized
	}
	if recipientUserID == principal.ID {
		return Message{}, httpx.ErrValidation
	}
	if err := s.authorizePartner(ctx, principal, recipientUserID); err != nil {
		return Message{}, err
	}
	msg, err := s.repo.Create(ctx, principal.ID, recipientUserID, body)
	if err != nil {
		return Message{}, err
	}
	s.notify(ctx, msg)
	return msg, nil
}

// Conversation returns the history between the principal and a partner.
func (s *Service) Conversation(ctx context.Context, principal *authz.Principal, otherUserID int64) ([]Message, error) {
	if principal == nil {
		return nil, httpx.ErrUnauthorized
	}
	if err := s.authorizePartner(ctx, principal, otherUserID); err != nil {
		return nil, err
	}
	return s.repo.Conversation(ctx, principal.ID, otherUserID)
}

// Inbox returns messages addressed to the principal.
func (s *Service) Inbox(ctx context.Context, principal *authz.Principal) ([]Message, error) {
	if principal == nil {
		return nil, httpx.ErrUnauthorized
	}
	if !s.evaluator.HasPermission(principal, authz.PermMessagePartner, nil) {
		return nil, httpx.ErrForbidden
	}
	return s.repo.ListInbox(ctx, principal.ID)
}

// MarkRead stamps a received message as read.
func (s *Service) MarkRead(ctx context.Context, principal *authz.Principal, id int64) error {
	if principal == nil {
		return httpx.ErrUnauthorized
	}
	return s.repo.MarkRead(ctx, id, principal.ID)
}

// authorizePartner verifies the sender-recipient pairing. Clients pass the
// evaluator's ownership predicate against their own profile and may only
// address their assigned employee's account; employees pass the assignment
// predicate against the recipient's profile. Admins pass unconditionally.
func (s *Service) authorizePartner(ctx context.Context, principal *authz.Principal, otherUserID int64) error {
	if principal.Role == authz.RoleAdmin {
		return nil
	}

	if ref, err := s.clients.ResolveByUser(ctx, principal.ID); err == nil {
		if !s.evaluator.HasPermission(principal, authz.PermMessagePartner, ref) {
			return httpx.ErrForbidden
		}
		if ref.AssignedEmployeeID == 0 {
			return httpx.ErrForbidden
		}
		partnerUserID, err := s.employees.UserIDFor(ctx, ref.AssignedEmployeeID)
		if err != nil {
			return err
		}
		if otherUserID != partnerUserID {
			return httpx.ErrForbidden
		}
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if principal.EmployeeID != 0 {
		ref, err := s.clients.ResolveByUser(ctx, otherUserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return httpx.ErrForbidden
			}
			return err
		}
		if !s.evaluator.HasPermission(principal, authz.PermMessagePartner, ref) {
			return httpx.ErrForbidden
		}
		return nil
	}
	return httpx.ErrForbidden
}

// notify queues the email best effort; a full queue never blocks the send.
func (s *Service) notify(ctx context.Context, msg Message) {
	if s.mail == nil || s.users == nil {
		return
	}
	to, err := s.users.Email(ctx, msg.RecipientUserID)
	if err != nil {
		s.logger.Warn("resolve recipient address", "message_id", msg.ID, "error", err)
		return
	}
	_, err = s.mail.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      to,
		Subject: "New message from your advisory team",
		Body:    "You have received a new message. Sign in to read and reply.",
	})
	if err != nil {
		s.logger.Warn("enqueue message notification", "message_id", msg.ID, "error", err)
	}
}
