package investments

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// ClientResolver maps a client profile to its ownership reference. The
// investments module uses it to apply the assigned-employee predicate, which
// lives on the client, to holdings of that client.
type ClientResolver interface {
	Resolve(ctx context.Context, clientID int64) (authz.ClientRef, error)
}

// Service handles portfolio business logic. Employee access to a holding is
// always checked through the owning client's reference; owner access goes
// through the holding's own reference.
type Service struct {
	repo      RepositoryPort
	clients   ClientResolver
	audit     *shared.AuditLogger
	evaluator authz.Evaluator
	printer   *message.Printer
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, clients ClientResolver, audit *shared.AuditLogger) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		audit:   audit,
		printer: message.NewPrinter(language.English),
	}
}

// Create records a new holding for a client. Only the assigned employee or an
// admin may book holdings.
func (s *Service) Create(ctx context.Context, principal *authz.Principal, params CreateParams) (Investment, error) {
	ref, err := s.clients.Resolve(ctx, params.ClientID)
	if err != nil {
		return Investment{}, err
	}
	if !s.evaluator.HasPermission(principal, authz.PermCreateInvestment, ref) {
		return Investment{}, httpx.ErrForbidden
	}
	inv, err := s.repo.Create(ctx, params, ref.OwnerUserID)
	if err != nil {
		return Investment{}, err
	}
	s.recordAudit(ctx, principal, "investments.create", inv.ID, map[string]any{"client_id": params.ClientID, "symbol": params.Symbol})
	return inv, nil
}

// Get returns one holding: the owning client, the assigned employee, or an
// admin.
func (s *Service) Get(ctx context.Context, principal *authz.Principal, id int64) (Investment, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Investment{}, err
	}
	if err := s.authorize(ctx, principal, authz.PermViewInvestment, inv); err != nil {
		return Investment{}, err
	}
	return inv, nil
}

// Update edits quantity and price of a holding. Holdings are employee-managed;
// owning clients lack the edit permission and stop at the general gate.
func (s *Service) Update(ctx context.Context, principal *authz.Principal, id int64, params UpdateParams) (Investment, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Investment{}, err
	}
	if err := s.authorize(ctx, principal, authz.PermEditInvestment, inv); err != nil {
		return Investment{}, err
	}
	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Investment{}, err
	}
	s.recordAudit(ctx, principal, "investments.edit", id, nil)
	return updated, nil
}

// ListMine returns the holdings owned by the principal's user account.
func (s *Service) ListMine(ctx context.Context, principal *authz.Principal) ([]Investment, error) {
	if principal == nil {
		return nil, httpx.ErrUnauthorized
	}
	if !s.evaluator.HasPermission(principal, authz.PermViewInvestment, nil) {
		return nil, httpx.ErrForbidden
	}
	return s.repo.ListByOwner(ctx, principal.ID)
}

// ListByClient returns the holdings of one client profile, for the assigned
// employee, the owning user, or an admin.
func (s *Service) ListByClient(ctx context.Context, principal *authz.Principal, clientID int64) ([]Investment, error) {
	ref, err := s.clients.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !s.evaluator.HasPermission(principal, authz.PermViewInvestment, ref) {
		return nil, httpx.ErrForbidden
	}
	return s.repo.ListByClient(ctx, clientID)
}

// Summarize aggregates a client's portfolio value per currency, with totals
// formatted for display.
func (s *Service) Summarize(ctx context.Context, principal *authz.Principal, clientID int64) (Summary, error) {
	holdings, err := s.ListByClient(ctx, principal, clientID)
	if err != nil {
		return Summary{}, err
	}
	totals := make(map[string]float64)
	for _, inv := range holdings {
		totals[inv.Currency] += inv.Value()
	}
	currencies := make([]string, 0, len(totals))
	for cur := range totals {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)
	summary := Summary{ClientID: clientID}
	for _, cur := range currencies {
		summary.Totals = append(summary.Totals, CurrencyTotal{
			Currency:  cur,
			Value:     totals[cur],
			Formatted: s.printer.Sprintf("%s %.2f", cur, totals[cur]),
		})
	}
	return summary, nil
}

// authorize allows the action when either the holding's own reference or the
// owning client's reference satisfies the evaluator.
func (s *Service) authorize(ctx context.Context, principal *authz.Principal, perm authz.Permission, inv Investment) error {
	if s.evaluator.HasPermission(principal, perm, inv.Ref()) {
		return nil
	}
	ref, err := s.clients.Resolve(ctx, inv.ClientID)
	if err != nil {
		return err
	}
	if s.evaluator.HasPermission(principal, perm, ref) {
		return nil
	}
	return httpx.ErrForbidden
}

func (s *Service) recordAudit(ctx context.Context, principal *authz.Principal, action string, investmentID int64, meta map[string]any) {
	if s.audit == nil || principal == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "investment",
		EntityID: strconv.FormatInt(investmentID, 10),
		Meta:     meta,
	})
}
