package domain

import "time"

// CommentAuthorType indicates who authored a comment.
type CommentAuthorType string

const (
	AuthorTypeCustomer CommentAuthorType = "customer"
	AuthorTypeAgent    CommentAuthorType = "agent"
	AuthorTypeSystem   CommentAuthorType = "system"
)

// TicketComment is an append-only note attached to a ticket.
type TicketComment struct {
	ID         int64
	TicketID   int64
	Comment    string
	AuthorType CommentAuthorType
	CreatedAt  time.Time
}

// NormalizeAuthorType maps free-form author input to a known author type,
// defaulting to agent as the schema does.
func NormalizeAuthorType(raw string) CommentAuthorType {
	switch CommentAuthorType(raw) {
	case AuthorTypeCustomer, AuthorTypeAgent, AuthorTypeSystem:
		return CommentAuthorType(raw)
	}
	return AuthorTypeAgent
}
