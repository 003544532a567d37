package messages

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
	"github.com/meridian-advisory/meridian/jobs"
)

type memoryMessageRepo struct {
	messages map[int64]Message
	nextID   int64
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{messages: make(map[int64]Message)}
}

func (r *memoryMessageRepo) Create(ctx context.Context, senderUserID, recipientUserID int64, body string) (Message, error) {
	r.nextID++
	m := Message{ID: r.nextID, SenderUserID: senderUserID, RecipientUserID: recipientUserID, Body: body, CreatedAt: time.Now()}
	r.messages[m.ID] = m
	return m, nil
}

func (r *memoryMessageRepo) Conversation(ctx context.Context, userA, userB int64) ([]Message, error) {
	var out []Message
	for _, m := range r.messages {
		if (m.SenderUserID == userA && m.RecipientUserID == userB) || (m.SenderUserID == userB && m.RecipientUserID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMessageRepo) ListInbox(ctx context.Context, userID int64) ([]Message, error) {
	var out []Message
	for _, m := range r.messages {
		if m.RecipientUserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMessageRepo) MarkRead(ctx context.Context, id, recipientUserID int64) error {
	m, ok := r.messages[id]
	if !ok || m.RecipientUserID != recipientUserID {
		return shared.ErrNotFound
	}
	now := time.Now()
	m.ReadAt = &now
	r.messages[id] = m
	return nil
}

var _ RepositoryPort = (*memoryMessageRepo)(nil)

type stubClientResolver struct {
	byUser map[int64]authz.ClientRef
}

func (s *stubClientResolver) ResolveByUser(ctx context.Context, userID int64) (authz.ClientRef, error) {
	ref, ok := s.byUser[userID]
	if !ok {
		return authz.ClientRef{}, shared.ErrNotFound
	}
	return ref, nil
}

type stubEmployeeDirectory struct {
	userIDs map[int64]int64
}

func (s *stubEmployeeDirectory) UserIDFor(ctx context.Context, employeeID int64) (int64, error) {
	id, ok := s.userIDs[employeeID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

type stubUserDirectory struct{}

func (stubUserDirectory) Email(ctx context.Context, userID int64) (string, error) {
	return "user@example.com", nil
}

type captureMailQueue struct {
	payloads []jobs.SendEmailPayload
}

func (q *captureMailQueue) EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	q.payloads = append(q.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

// Fixture: user 30 owns client profile 1, assigned to employee 10 whose user
// account is 2. Employee 11 (user 3) is assigned elsewhere.
func messagingFixture() (*Service, *memoryMessageRepo, *captureMailQueue) {
	repo := newMemoryMessageRepo()
	clients := &stubClientResolver{byUser: map[int64]authz.ClientRef{
		30: {ID: 1, OwnerUserID: 30, AssignedEmployeeID: 10},
	}}
	employees := &stubEmployeeDirectory{userIDs: map[int64]int64{10: 2, 11: 3}}
	mail := &captureMailQueue{}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, clients, employees, stubUserDirectory{}, mail)
	return svc, repo, mail
}

func clientPrincipal() *authz.Principal {
	return &authz.Principal{ID: 30, Role: authz.RoleClient}
}

func advisorPrincipal() *authz.Principal {
	return &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10, Grants: authz.NewSet(authz.PermMessagePartner)}
}

func TestSendClientToAssignedAdvisor(t *testing.T) {
	svc, _, mail := messagingFixture()

	msg, err := svc.Send(context.Background(), clientPrincipal(), 2, "Can we review my allocation?")
	require.NoError(t, err)
	require.Equal(t, int64(30), msg.SenderUserID)
	require.Equal(t, int64(2), msg.RecipientUserID)
	require.Len(t, mail.payloads, 1)
	require.Equal(t, "user@example.com", mail.payloads[0].To)

	// Any other employee's account is off limits.
	_, err = svc.Send(context.Background(), clientPrincipal(), 3, "hello")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// Messaging yourself is rejected outright.
	_, err = svc.Send(context.Background(), clientPrincipal(), 30, "note to self")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSendAdvisorToAssignedClient(t *testing.T) {
	svc, _, _ := messagingFixture()

	_, err := svc.Send(context.Background(), advisorPrincipal(), 30, "Rebalance proposal attached.")
	require.NoError(t, err)

	// The messaging permission is a custom grant; the bare employee role
	// cannot send.
	bare := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10}
	_, err = svc.Send(context.Background(), bare, 30, "hi")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// A granted employee assigned elsewhere still fails the pairing.
	other := &authz.Principal{ID: 3, Role: authz.RoleEmployee, EmployeeID: 11, Grants: authz.NewSet(authz.PermMessagePartner)}
	_, err = svc.Send(context.Background(), other, 30, "hi")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// Employees cannot message users with no client profile.
	_, err = svc.Send(context.Background(), advisorPrincipal(), 99, "hi")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestSendAdminBypassesPairing(t *testing.T) {
	svc, _, _ := messagingFixture()

	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}
	_, err := svc.Send(context.Background(), admin, 3, "compliance notice")
	require.NoError(t, err)
}

func TestSendUnassignedClientHasNoPartner(t *testing.T) {
	repo := newMemoryMessageRepo()
	clients := &stubClientResolver{byUser: map[int64]authz.ClientRef{
		30: {ID: 1, OwnerUserID: 30, AssignedEmployeeID: 0},
	}}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, clients, &stubEmployeeDirectory{}, stubUserDirectory{}, nil)

	_, err := svc.Send(context.Background(), clientPrincipal(), 2, "anyone there?")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestConversationAndInbox(t *testing.T) {
	svc, _, _ := messagingFixture()

	_, err := svc.Send(context.Background(), clientPrincipal(), 2, "first")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), advisorPrincipal(), 30, "second")
	require.NoError(t, err)

	conv, err := svc.Conversation(context.Background(), clientPrincipal(), 2)
	require.NoError(t, err)
	require.Len(t, conv, 2)

	inbox, err := svc.Inbox(context.Background(), advisorPrincipal())
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "first", inbox[0].Body)

	// Guests hold no messaging permission at all.
	_, err = svc.Inbox(context.Background(), &authz.Principal{ID: 5, Role: authz.RoleGuest})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.Conversation(context.Background(), nil, 2)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestMarkReadRecipientOnly(t *testing.T) {
	svc, repo, _ := messagingFixture()
	msg, err := svc.Send(context.Background(), clientPrincipal(), 2, "first")
	require.NoError(t, err)

	// The sender cannot mark their own message read.
	err = svc.MarkRead(context.Background(), clientPrincipal(), msg.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.MarkRead(context.Background(), advisorPrincipal(), msg.ID)
	require.NoError(t, err)
	require.NotNil(t, repo.messages[msg.ID].ReadAt)
}
