package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-support-agent/internal/domain"
)

// AgentRepository handles persistence for support agents. Agents are managed
// elsewhere; this service reads them and never toggles availability.
type AgentRepository interface {
	FirstAvailable(ctx context.Context) (*domain.SupportAgent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

// FirstAvailable picks one available agent, first by storage order. Ties are
// arbitrary on purpose.
func (r *agentRepository) FirstAvailable(ctx context.Context) (*domain.SupportAgent, error) {
	const query = `
        SELECT id, name, email, phone, available
        FROM support_agents
        WHERE available = TRUE
        ORDER BY id
        LIMIT 1`

	var agent domain.SupportAgent
	if err := r.pool.QueryRow(ctx, query).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.Phone,
		&agent.Available,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}
