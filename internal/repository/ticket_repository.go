package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-support-agent/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Tickets are never deleted.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Exists(ctx context.Context, id int64) (bool, error)
	AssignAgent(ctx context.Context, ticketID, agentID int64) error
	UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error
	GetStatusView(ctx context.Context, id int64) (*domain.TicketStatusView, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Create inserts the ticket and captures the generated identifier directly
// from the insert, so concurrent sessions for the same customer cannot read
// back someone else's row.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, order_id, subject, description, priority, status, category)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.OrderID,
		ticket.Subject,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.Category,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, customer_id, order_id, subject, description, priority, status, category,
               created_at, resolved_at, assigned_agent_id
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.OrderID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Category,
		&ticket.CreatedAt,
		&ticket.ResolvedAt,
		&ticket.AssignedAgentID,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketRepository) AssignAgent(ctx context.Context, ticketID, agentID int64) error {
	const query = `UPDATE tickets SET assigned_agent_id=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, agentID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateStatus overwrites the ticket status and stamps resolved_at when the
// ticket reaches a terminal state.
func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error {
	const query = `
        UPDATE tickets
        SET status=$1,
            resolved_at = CASE WHEN $1 IN ('resolved','closed') THEN NOW() ELSE resolved_at END
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetStatusView joins the ticket with its customer and optional agent. The
// latest comment is attached by the service layer.
func (r *ticketRepository) GetStatusView(ctx context.Context, id int64) (*domain.TicketStatusView, error) {
	const query = `
        SELECT t.id, t.customer_id, t.order_id, t.subject, t.description, t.priority, t.status,
               t.category, t.created_at, t.resolved_at, t.assigned_agent_id,
               c.name, c.email, sa.name
        FROM tickets t
        JOIN customers c ON t.customer_id = c.id
        LEFT JOIN support_agents sa ON t.assigned_agent_id = sa.id
        WHERE t.id=$1`

	var view domain.TicketStatusView
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&view.Ticket.ID,
		&view.Ticket.CustomerID,
		&view.Ticket.OrderID,
		&view.Ticket.Subject,
		&view.Ticket.Description,
		&view.Ticket.Priority,
		&view.Ticket.Status,
		&view.Ticket.Category,
		&view.Ticket.CreatedAt,
		&view.Ticket.ResolvedAt,
		&view.Ticket.AssignedAgentID,
		&view.CustomerName,
		&view.CustomerEmail,
		&view.AgentName,
	); err != nil {
		return nil, err
	}
	return &view, nil
}
