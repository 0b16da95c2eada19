package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/voice-support-agent/internal/domain"
	"github.com/spec-kit/voice-support-agent/internal/service"
	"github.com/spec-kit/voice-support-agent/pkg/util"
)

// SupportStore is the slice of the support service the tools need. Narrow on
// purpose so tests can stub it.
type SupportStore interface {
	VerifyMobile(ctx context.Context, mobile string) (*domain.Customer, error)
	CreateTicketForContact(ctx context.Context, input service.TicketCreateInput) (*service.TicketCreation, error)
	GetTicketStatus(ctx context.Context, ticketID int64) (*domain.TicketStatusView, error)
	AddComment(ctx context.Context, ticketID int64, comment, author string) (*domain.TicketComment, error)
	GetOrderStatus(ctx context.Context, orderID int64) (*domain.Order, error)
	ListRecentOrders(ctx context.Context, mobile string, limit int) (*domain.Customer, []domain.Order, error)
}

// WeatherClient answers current-conditions lookups.
type WeatherClient interface {
	Current(ctx context.Context, location string) (string, error)
}

const spokenTimeLayout = "02 Jan 2006, 03:04 PM"

// RegisterSupportTools declares the full tool surface the conversational
// model may invoke. now is injectable for tests; pass time.Now in production.
func RegisterSupportTools(registry *Registry, store SupportStore, weather WeatherClient, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	registry.Register(Tool{
		Name:        "get_weather",
		Description: "Returns current weather conditions for a location.",
		Parameters: objectSchema(map[string]any{
			"location": stringParam("The location to get the weather for"),
		}, "location"),
		FailureText: "Sorry, I couldn't get the weather right now. Please try again in a moment.",
		Handler: func(ctx context.Context, args Args) (string, error) {
			location := args.String("location")
			if location == "" {
				return "Which location would you like the weather for?", nil
			}
			conditions, err := weather.Current(ctx, location)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("The weather in %s is %s.", location, conditions), nil
		},
	})

	registry.Register(Tool{
		Name:        "get_current_datetime",
		Description: "Returns the current date and time.",
		Parameters:  objectSchema(map[string]any{}),
		Handler: func(ctx context.Context, args Args) (string, error) {
			return fmt.Sprintf("The current date and time is %s.", now().Format("2006-01-02 15:04:05")), nil
		},
	})

	registry.Register(Tool{
		Name:        "create_ticket",
		Description: "Creates a support ticket for a customer identified by email address.",
		Parameters: objectSchema(map[string]any{
			"customer_email": stringParam("Customer's email address"),
			"subject":        stringParam("Subject of the support ticket"),
			"description":    stringParam("Detailed description of the issue"),
			"phone":          stringParam("Customer phone number, optional"),
			"address":        stringParam("Customer address, optional"),
			"order_id":       intParam("Related order ID, optional"),
		}, "customer_email", "subject", "description"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			input := service.TicketCreateInput{
				Email:       args.String("customer_email"),
				Subject:     args.String("subject"),
				Description: args.String("description"),
				Phone:       args.String("phone"),
				Address:     args.String("address"),
			}
			if orderID, ok := args.Int("order_id"); ok {
				input.OrderID = &orderID
			}
			created, err := store.CreateTicketForContact(ctx, input)
			if err != nil {
				return ticketCreateFailureText(err, args.String("phone"))
			}
			return fmt.Sprintf("Created ticket #%d for %s. Assigned to: %s. You will receive updates about this ticket over WhatsApp.",
				created.Ticket.ID, created.Customer.Email, assignedName(created.Agent)), nil
		},
	})

	registry.Register(Tool{
		Name:        "create_ticket_by_mobile",
		Description: "Creates a support ticket for a customer identified by mobile number.",
		Parameters: objectSchema(map[string]any{
			"mobile":            stringParam("Customer's mobile number"),
			"issue_description": stringParam("Description of the customer's issue"),
		}, "mobile", "issue_description"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			issue := args.String("issue_description")
			created, err := store.CreateTicketForContact(ctx, service.TicketCreateInput{
				Mobile:      args.String("mobile"),
				Subject:     issue,
				Description: issue,
			})
			if err != nil {
				return ticketCreateFailureText(err, args.String("mobile"))
			}
			return fmt.Sprintf("Ticket #%d created for your issue: '%s'. Assigned to: %s. You will receive updates about this ticket over WhatsApp.",
				created.Ticket.ID, issue, assignedName(created.Agent)), nil
		},
	})

	registry.Register(Tool{
		Name:        "get_ticket_status",
		Description: "Retrieves the status and details of a support ticket.",
		Parameters: objectSchema(map[string]any{
			"ticket_id": intParam("The ID of the ticket to check"),
		}, "ticket_id"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			ticketID, ok := args.Int("ticket_id")
			if !ok {
				return "I need a ticket number to look that up.", nil
			}
			view, err := store.GetTicketStatus(ctx, ticketID)
			if util.IsNotFound(err) {
				return fmt.Sprintf("No ticket found with ID %d", ticketID), nil
			}
			if err != nil {
				return "", err
			}
			return formatTicketStatus(view), nil
		},
	})

	registry.Register(Tool{
		Name:        "add_ticket_comment",
		Description: "Adds a comment to an existing support ticket.",
		Parameters: objectSchema(map[string]any{
			"ticket_id": intParam("The ID of the ticket to comment on"),
			"comment":   stringParam("The comment to add"),
			"author":    stringParam("Who is adding the comment: customer, agent or system"),
		}, "ticket_id", "comment"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			ticketID, ok := args.Int("ticket_id")
			if !ok {
				return "I need a ticket number to add that comment.", nil
			}
			_, err := store.AddComment(ctx, ticketID, args.String("comment"), args.String("author"))
			if util.IsNotFound(err) {
				return fmt.Sprintf("No ticket found with ID %d", ticketID), nil
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Comment added to ticket #%d", ticketID), nil
		},
	})

	registry.Register(Tool{
		Name:        "get_order_status",
		Description: "Retrieves the status of a food order.",
		Parameters: objectSchema(map[string]any{
			"order_id": intParam("The ID of the order to check"),
		}, "order_id"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			orderID, ok := args.Int("order_id")
			if !ok {
				return "I need an order number to look that up.", nil
			}
			order, err := store.GetOrderStatus(ctx, orderID)
			if util.IsNotFound(err) {
				return fmt.Sprintf("No order found with ID %d", orderID), nil
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Order #%d for restaurant %s is currently %s.",
				order.ID, order.RestaurantName, order.Status), nil
		},
	})

	registry.Register(Tool{
		Name:        "verify_mobile_number",
		Description: "Verifies a customer's mobile number and greets them when found.",
		Parameters: objectSchema(map[string]any{
			"mobile": stringParam("Customer's mobile number for verification"),
		}, "mobile"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			mobile := args.String("mobile")
			customer, err := store.VerifyMobile(ctx, mobile)
			if errors.Is(err, service.ErrInvalidPhone) {
				return fmt.Sprintf("Invalid phone number format: %s", mobile), nil
			}
			if util.IsNotFound(err) {
				return fmt.Sprintf("No customer found with mobile %s.", mobile), nil
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Hi %s, we found your account details. How can I assist you today?", customer.Name), nil
		},
	})

	registry.Register(Tool{
		Name:        "get_recent_orders",
		Description: "Retrieves recent orders for a customer identified by mobile number.",
		Parameters: objectSchema(map[string]any{
			"mobile": stringParam("Customer's mobile number"),
			"limit":  intParam("Number of recent orders to return, default 5"),
		}, "mobile"),
		Handler: func(ctx context.Context, args Args) (string, error) {
			mobile := args.String("mobile")
			limit, ok := args.Int("limit")
			if !ok || limit <= 0 {
				limit = 5
			}
			customer, orders, err := store.ListRecentOrders(ctx, mobile, int(limit))
			if errors.Is(err, service.ErrInvalidPhone) {
				return fmt.Sprintf("Invalid phone number format: %s", mobile), nil
			}
			if util.IsNotFound(err) {
				return fmt.Sprintf("No customer found with mobile %s.", mobile), nil
			}
			if err != nil {
				return "", err
			}
			return formatRecentOrders(customer, orders), nil
		},
	})
}

func assignedName(agent *domain.SupportAgent) string {
	if agent == nil {
		return "pending assignment"
	}
	return agent.Name
}

func ticketCreateFailureText(err error, rawPhone string) (string, error) {
	if errors.Is(err, service.ErrInvalidPhone) {
		return fmt.Sprintf("Invalid phone number format: %s", rawPhone), nil
	}
	var domainErr *util.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == "VALIDATION_FAILED" {
		return "I need your email address or mobile number to open a ticket.", nil
	}
	return "", err
}

func formatTicketStatus(view *domain.TicketStatusView) string {
	ticket := view.Ticket
	agentName := "Unassigned"
	if view.AgentName != nil && *view.AgentName != "" {
		agentName = *view.AgentName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket #%d\n", ticket.ID)
	fmt.Fprintf(&b, "Status: %s\n", ticket.Status)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", view.CustomerName, view.CustomerEmail)
	fmt.Fprintf(&b, "Subject: %s\n", ticket.Subject)
	fmt.Fprintf(&b, "Priority: %s\n", ticket.Priority)
	fmt.Fprintf(&b, "Category: %s\n", ticket.Category)
	fmt.Fprintf(&b, "Created: %s\n", ticket.CreatedAt.Format(spokenTimeLayout))
	fmt.Fprintf(&b, "Assigned to: %s\n", agentName)
	if view.LatestComment != nil {
		fmt.Fprintf(&b, "Latest comment: %s\n", view.LatestComment.Comment)
	}
	return b.String()
}

func formatRecentOrders(customer *domain.Customer, orders []domain.Order) string {
	if len(orders) == 0 {
		return fmt.Sprintf("Hi %s, you don't have any recent orders.", customer.Name)
	}

	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		lines = append(lines, fmt.Sprintf("Order #%d from %s\nStatus: %s\nDate: %s\nTotal: ₹%.2f",
			order.ID, order.RestaurantName, order.Status,
			order.OrderedAt.Format(spokenTimeLayout), order.OrderTotal))
	}

	return fmt.Sprintf("Hi %s, here are your %d most recent orders:\n\n%s",
		customer.Name, len(orders), strings.Join(lines, "\n\n"))
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringParam(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intParam(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}
