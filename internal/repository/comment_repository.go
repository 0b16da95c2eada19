package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-support-agent/internal/domain"
)

// CommentRepository stores ticket comments. Comments are append-only.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	LatestByTicket(ctx context.Context, ticketID int64) (*domain.TicketComment, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketComment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, comment, author_type)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.Comment,
		comment.AuthorType,
	).Scan(&comment.ID, &comment.CreatedAt)
}

// LatestByTicket returns the most recent comment, or nil when the ticket has
// none.
func (r *commentRepository) LatestByTicket(ctx context.Context, ticketID int64) (*domain.TicketComment, error) {
	const query = `
        SELECT id, ticket_id, comment, author_type, created_at
        FROM ticket_comments
        WHERE ticket_id=$1
        ORDER BY created_at DESC
        LIMIT 1`

	var comment domain.TicketComment
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.Comment,
		&comment.AuthorType,
		&comment.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketComment, error) {
	const query = `
        SELECT id, ticket_id, comment, author_type, created_at
        FROM ticket_comments
        WHERE ticket_id=$1
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketComment
	for rows.Next() {
		var comment domain.TicketComment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.Comment,
			&comment.AuthorType,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
