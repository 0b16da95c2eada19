package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketCategory classifies the reported issue.
type TicketCategory string

const (
	TicketCategoryDeliveryDelay TicketCategory = "delivery_delay"
	TicketCategoryQualityIssue  TicketCategory = "quality_issue"
	TicketCategoryWrongItems    TicketCategory = "wrong_items"
	TicketCategoryMissingItems  TicketCategory = "missing_items"
	TicketCategoryRefund        TicketCategory = "refund"
	TicketCategoryOther         TicketCategory = "other"
)

// Ticket is the aggregate for support requests. Tickets are never deleted.
type Ticket struct {
	ID              int64
	CustomerID      int64
	OrderID         *int64
	Subject         string
	Description     string
	Priority        TicketPriority
	Status          TicketStatus
	Category        TicketCategory
	CreatedAt       time.Time
	ResolvedAt      *time.Time
	AssignedAgentID *int64
}

// ValidTicketStatus reports whether s is a known lifecycle state.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketStatusView is the composed status answer for a single ticket: the
// ticket joined with its customer, optional assigned agent and most recent
// comment.
type TicketStatusView struct {
	Ticket        Ticket
	CustomerName  string
	CustomerEmail string
	AgentName     *string
	LatestComment *TicketComment
}
