package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-support-agent/internal/domain"
	"github.com/spec-kit/voice-support-agent/internal/events"
	"github.com/spec-kit/voice-support-agent/internal/repository"
	"github.com/spec-kit/voice-support-agent/pkg/phone"
	"github.com/spec-kit/voice-support-agent/pkg/util"
)

// ErrInvalidPhone signals a phone string that cannot be canonicalized.
var ErrInvalidPhone = errors.New("invalid phone number")

// SupportService coordinates the support record store: customers, orders,
// tickets, comments and agent assignment. Each operation is a single logical
// unit of work; there are no transactions spanning operations.
type SupportService struct {
	customers  repository.CustomerRepository
	orders     repository.OrderRepository
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	agents     repository.AgentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SupportDependencies bundles repositories for the support service.
type SupportDependencies struct {
	CustomerRepo repository.CustomerRepository
	OrderRepo    repository.OrderRepository
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	AgentRepo    repository.AgentRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload. Email or Mobile
// identifies the customer; the rest is optional detail.
type TicketCreateInput struct {
	Email       string
	Mobile      string
	Subject     string
	Description string
	Phone       string
	Address     string
	OrderID     *int64
}

// TicketCreation is the result of the end-to-end ticket flow.
type TicketCreation struct {
	Customer *domain.Customer
	Ticket   *domain.Ticket
	Agent    *domain.SupportAgent
}

// NewSupportService constructs the service.
func NewSupportService(deps SupportDependencies) *SupportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{
		customers:  deps.CustomerRepo,
		orders:     deps.OrderRepo,
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		agents:     deps.AgentRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// FindCustomerByPhone looks up a customer by canonical phone.
func (s *SupportService) FindCustomerByPhone(ctx context.Context, canonical string) (*domain.Customer, error) {
	customer, err := s.customers.GetByPhone(ctx, canonical)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("customer", map[string]any{"phone": canonical})
	}
	return customer, err
}

// FindCustomerByEmail looks up a customer by e-mail.
func (s *SupportService) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customer, err := s.customers.GetByEmail(ctx, phone.NormalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("customer", map[string]any{"email": email})
	}
	return customer, err
}

// VerifyMobile normalizes a spoken mobile number and resolves the customer
// behind it. Returns ErrInvalidPhone when the number cannot be canonicalized.
func (s *SupportService) VerifyMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	canonical := phone.Normalize(mobile)
	if canonical == "" {
		return nil, ErrInvalidPhone
	}
	return s.FindCustomerByPhone(ctx, canonical)
}

// CreateCustomer inserts a new customer record. Phone, when given, must
// already be canonical.
func (s *SupportService) CreateCustomer(ctx context.Context, name, email string, phoneNumber, address *string) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:    strings.TrimSpace(name),
		Email:   phone.NormalizeEmail(email),
		Phone:   phoneNumber,
		Address: address,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// CreateTicket opens a ticket for a known customer. Every call produces a new
// ticket; callers wanting dedup must check first.
func (s *SupportService) CreateTicket(ctx context.Context, customerID int64, subject, description string, orderID *int64) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		CustomerID:  customerID,
		OrderID:     orderID,
		Subject:     strings.TrimSpace(subject),
		Description: strings.TrimSpace(description),
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusOpen,
		Category:    domain.TicketCategoryOther,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CustomerID: customerID,
			Subject:    ticket.Subject,
			Priority:   ticket.Priority,
		},
	})
	return ticket, nil
}

// CreateTicketForContact runs the full flow the assistant uses: resolve the
// customer by e-mail or mobile, create them on first contact, open the ticket,
// then best-effort assign an available agent.
func (s *SupportService) CreateTicketForContact(ctx context.Context, input TicketCreateInput) (*TicketCreation, error) {
	customer, err := s.resolveOrCreateCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	ticket, err := s.CreateTicket(ctx, customer.ID, input.Subject, input.Description, input.OrderID)
	if err != nil {
		return nil, err
	}

	agent, err := s.AssignFirstAvailableAgent(ctx, ticket.ID)
	if err != nil {
		// Ticket exists either way; assignment stays pending.
		s.logger.Warn("agent assignment failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		agent = nil
	}

	return &TicketCreation{Customer: customer, Ticket: ticket, Agent: agent}, nil
}

func (s *SupportService) resolveOrCreateCustomer(ctx context.Context, input TicketCreateInput) (*domain.Customer, error) {
	var canonical string
	if input.Mobile != "" {
		canonical = phone.Normalize(input.Mobile)
		if canonical == "" {
			return nil, ErrInvalidPhone
		}
	} else if input.Phone != "" {
		// Optional phone on an e-mail-keyed ticket still has to be canonical
		// before it is stored.
		canonical = phone.Normalize(input.Phone)
	}

	email := phone.NormalizeEmail(input.Email)

	if email != "" {
		customer, err := s.customers.GetByEmail(ctx, email)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if canonical != "" {
		customer, err := s.customers.GetByPhone(ctx, canonical)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	if email == "" && canonical == "" {
		return nil, util.NewValidationError("customer email or mobile required", nil)
	}

	name := customerNameFromEmail(email)
	var phonePtr, addressPtr *string
	if canonical != "" {
		phonePtr = &canonical
	}
	if addr := strings.TrimSpace(input.Address); addr != "" {
		addressPtr = &addr
	}
	return s.CreateCustomer(ctx, name, email, phonePtr, addressPtr)
}

// AssignFirstAvailableAgent writes the first available agent onto the ticket.
// Returns (nil, nil) when no agent is available.
func (s *SupportService) AssignFirstAvailableAgent(ctx context.Context, ticketID int64) (*domain.SupportAgent, error) {
	agent, err := s.agents.FirstAvailable(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.tickets.AssignAgent(ctx, ticketID, agent.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Payload: events.TicketAssignedPayload{
			AgentID:   agent.ID,
			AgentName: agent.Name,
		},
	})
	return agent, nil
}

// AddComment appends a comment after verifying the ticket exists. A missing
// ticket yields a not-found error and no insert.
func (s *SupportService) AddComment(ctx context.Context, ticketID int64, comment, author string) (*domain.TicketComment, error) {
	exists, err := s.tickets.Exists(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}

	record := &domain.TicketComment{
		TicketID:   ticketID,
		Comment:    strings.TrimSpace(comment),
		AuthorType: domain.NormalizeAuthorType(author),
	}
	if err := s.comments.Create(ctx, record); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticketID,
		Payload: events.CommentAddedPayload{
			AuthorType:  record.AuthorType,
			BodyPreview: preview(record.Comment, 80),
		},
	})
	return record, nil
}

// GetTicketStatus composes the full status answer for a ticket: the ticket
// joined with customer, optional agent and the most recent comment.
func (s *SupportService) GetTicketStatus(ctx context.Context, ticketID int64) (*domain.TicketStatusView, error) {
	view, err := s.tickets.GetStatusView(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if err != nil {
		return nil, err
	}
	latest, err := s.comments.LatestByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	view.LatestComment = latest
	return view, nil
}

// ListTicketComments returns the full comment history of a ticket in
// chronological order.
func (s *SupportService) ListTicketComments(ctx context.Context, ticketID int64) ([]domain.TicketComment, error) {
	exists, err := s.tickets.Exists(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	return s.comments.ListByTicket(ctx, ticketID)
}

// UpdateTicketStatus overwrites the lifecycle state of a ticket.
func (s *SupportService) UpdateTicketStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error {
	if !domain.ValidTicketStatus(status) {
		return util.NewValidationError("unknown ticket status", map[string]any{"status": string(status)})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if err != nil {
		return err
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, status); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: ticket.Status,
			NewStatus: status,
		},
	})
	return nil
}

// GetOrderStatus fetches a single order.
func (s *SupportService) GetOrderStatus(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("order", map[string]any{"id": orderID})
	}
	return order, err
}

// ListRecentOrders resolves the customer by mobile and returns up to limit
// orders, newest first.
func (s *SupportService) ListRecentOrders(ctx context.Context, mobile string, limit int) (*domain.Customer, []domain.Order, error) {
	customer, err := s.VerifyMobile(ctx, mobile)
	if err != nil {
		return nil, nil, err
	}
	orders, err := s.orders.ListRecentByCustomer(ctx, customer.ID, limit)
	if err != nil {
		return nil, nil, err
	}
	return customer, orders, nil
}

func (s *SupportService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func customerNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email != "" {
		return email
	}
	return "customer"
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
