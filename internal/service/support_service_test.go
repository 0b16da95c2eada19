package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voice-support-agent/internal/domain"
	"github.com/spec-kit/voice-support-agent/internal/events"
	"github.com/spec-kit/voice-support-agent/pkg/util"
)

type stubCustomerRepo struct {
	byPhone map[string]*domain.Customer
	byEmail map[string]*domain.Customer
	created []*domain.Customer
	err     error
}

func (r *stubCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	if r.err != nil {
		return r.err
	}
	customer.ID = int64(len(r.created) + 100)
	r.created = append(r.created, customer)
	return nil
}

func (r *stubCustomerRepo) GetByPhone(_ context.Context, phoneNumber string) (*domain.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	if c, ok := r.byPhone[phoneNumber]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	if c, ok := r.byEmail[email]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

type stubOrderRepo struct {
	orders    map[int64]*domain.Order
	recent    []domain.Order
	lastLimit int
}

func (r *stubOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, pgx.ErrNoRows
}

// ListRecentByCustomer mirrors the ORDER BY ordered_at DESC LIMIT contract of
// the real query: recent is held newest-first and truncated to limit.
func (r *stubOrderRepo) ListRecentByCustomer(_ context.Context, _ int64, limit int) ([]domain.Order, error) {
	r.lastLimit = limit
	if limit > 0 && len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

type stubTicketRepo struct {
	tickets   map[int64]*domain.Ticket
	nextID    int64
	assigned  map[int64]int64
	statuses  map[int64]domain.TicketStatus
	createErr error
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{
		tickets:  map[int64]*domain.Ticket{},
		nextID:   1,
		assigned: map[int64]int64{},
		statuses: map[int64]domain.TicketStatus{},
	}
}

func (r *stubTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if r.createErr != nil {
		return r.createErr
	}
	ticket.ID = r.nextID
	r.nextID++
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *stubTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	if t, ok := r.tickets[id]; ok {
		return t, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubTicketRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.tickets[id]
	return ok, nil
}

func (r *stubTicketRepo) AssignAgent(_ context.Context, ticketID, agentID int64) error {
	if _, ok := r.tickets[ticketID]; !ok {
		return pgx.ErrNoRows
	}
	r.assigned[ticketID] = agentID
	return nil
}

func (r *stubTicketRepo) UpdateStatus(_ context.Context, ticketID int64, status domain.TicketStatus) error {
	if _, ok := r.tickets[ticketID]; !ok {
		return pgx.ErrNoRows
	}
	r.statuses[ticketID] = status
	return nil
}

func (r *stubTicketRepo) GetStatusView(_ context.Context, id int64) (*domain.TicketStatusView, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.TicketStatusView{Ticket: *t, CustomerName: "Asha"}, nil
}

type stubCommentRepo struct {
	comments []*domain.TicketComment
	latest   *domain.TicketComment
}

func (r *stubCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	comment.ID = int64(len(r.comments) + 1)
	r.comments = append(r.comments, comment)
	return nil
}

func (r *stubCommentRepo) LatestByTicket(_ context.Context, _ int64) (*domain.TicketComment, error) {
	return r.latest, nil
}

func (r *stubCommentRepo) ListByTicket(_ context.Context, _ int64) ([]domain.TicketComment, error) {
	out := make([]domain.TicketComment, 0, len(r.comments))
	for _, c := range r.comments {
		out = append(out, *c)
	}
	return out, nil
}

type stubAgentRepo struct {
	available *domain.SupportAgent
	err       error
}

func (r *stubAgentRepo) FirstAvailable(_ context.Context) (*domain.SupportAgent, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.available == nil {
		return nil, pgx.ErrNoRows
	}
	return r.available, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type fixture struct {
	customers  *stubCustomerRepo
	orders     *stubOrderRepo
	tickets    *stubTicketRepo
	comments   *stubCommentRepo
	agents     *stubAgentRepo
	dispatcher *recordingDispatcher
	service    *SupportService
}

func newFixture() *fixture {
	f := &fixture{
		customers:  &stubCustomerRepo{byPhone: map[string]*domain.Customer{}, byEmail: map[string]*domain.Customer{}},
		orders:     &stubOrderRepo{orders: map[int64]*domain.Order{}},
		tickets:    newStubTicketRepo(),
		comments:   &stubCommentRepo{},
		agents:     &stubAgentRepo{},
		dispatcher: &recordingDispatcher{},
	}
	f.service = NewSupportService(SupportDependencies{
		CustomerRepo: f.customers,
		OrderRepo:    f.orders,
		TicketRepo:   f.tickets,
		CommentRepo:  f.comments,
		AgentRepo:    f.agents,
		Dispatcher:   f.dispatcher,
	})
	return f
}

func TestVerifyMobile(t *testing.T) {
	f := newFixture()
	known := &domain.Customer{ID: 7, Name: "Asha", Email: "asha@example.com"}
	f.customers.byPhone["+91-9876543210"] = known

	t.Run("known customer via spoken digits", func(t *testing.T) {
		customer, err := f.service.VerifyMobile(context.Background(), "98765 43210")
		require.NoError(t, err)
		assert.Equal(t, int64(7), customer.ID)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := f.service.VerifyMobile(context.Background(), "9123456789")
		assert.True(t, util.IsNotFound(err))
	})

	t.Run("malformed number", func(t *testing.T) {
		_, err := f.service.VerifyMobile(context.Background(), "12345")
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})
}

func TestCreateTicketForContactNewCustomer(t *testing.T) {
	f := newFixture()
	f.agents.available = &domain.SupportAgent{ID: 3, Name: "Ravi", Available: true}

	creation, err := f.service.CreateTicketForContact(context.Background(), TicketCreateInput{
		Email:       "Priya.K@Example.com",
		Subject:     "Order arrived cold",
		Description: "The food was cold on delivery.",
	})
	require.NoError(t, err)

	require.Len(t, f.customers.created, 1)
	assert.Equal(t, "priya.k@example.com", creation.Customer.Email)
	assert.Equal(t, "priya.k", creation.Customer.Name)

	require.NotNil(t, creation.Ticket)
	assert.Equal(t, domain.TicketStatusOpen, creation.Ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, creation.Ticket.Priority)

	require.NotNil(t, creation.Agent)
	assert.Equal(t, int64(3), f.tickets.assigned[creation.Ticket.ID])

	types := make([]events.EventType, 0, len(f.dispatcher.published))
	for _, e := range f.dispatcher.published {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketAssigned}, types)
}

func TestCreateTicketForContactExistingMobile(t *testing.T) {
	f := newFixture()
	f.customers.byPhone["+91-9876543210"] = &domain.Customer{ID: 11, Name: "Asha"}

	creation, err := f.service.CreateTicketForContact(context.Background(), TicketCreateInput{
		Mobile:      "+91 98765 43210",
		Subject:     "Missing item",
		Description: "One dish missing from the order.",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), creation.Customer.ID)
	assert.Empty(t, f.customers.created)
	// No agent configured; the ticket still stands with assignment pending.
	assert.Nil(t, creation.Agent)
}

func TestCreateTicketForContactNoContact(t *testing.T) {
	f := newFixture()
	_, err := f.service.CreateTicketForContact(context.Background(), TicketCreateInput{
		Subject: "Help",
	})
	require.Error(t, err)
	assert.Empty(t, f.tickets.tickets)
}

func TestCreateTicketForContactAssignmentFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.customers.byEmail["asha@example.com"] = &domain.Customer{ID: 5, Email: "asha@example.com"}
	f.agents.err = errors.New("agents table unavailable")

	creation, err := f.service.CreateTicketForContact(context.Background(), TicketCreateInput{
		Email:       "asha@example.com",
		Subject:     "Late delivery",
		Description: "Two hours and counting.",
	})
	require.NoError(t, err)
	assert.Nil(t, creation.Agent)
	require.NotNil(t, creation.Ticket)
}

func TestAddComment(t *testing.T) {
	f := newFixture()
	f.tickets.tickets[1] = &domain.Ticket{ID: 1, Status: domain.TicketStatusOpen}

	t.Run("appends to existing ticket", func(t *testing.T) {
		comment, err := f.service.AddComment(context.Background(), 1, "  Called the rider.  ", "agent")
		require.NoError(t, err)
		assert.Equal(t, "Called the rider.", comment.Comment)
		assert.Equal(t, domain.AuthorTypeAgent, comment.AuthorType)
	})

	t.Run("missing ticket inserts nothing", func(t *testing.T) {
		before := len(f.comments.comments)
		_, err := f.service.AddComment(context.Background(), 99, "hello", "agent")
		assert.True(t, util.IsNotFound(err))
		assert.Len(t, f.comments.comments, before)
	})
}

func TestGetTicketStatusIncludesLatestComment(t *testing.T) {
	f := newFixture()
	f.tickets.tickets[4] = &domain.Ticket{ID: 4, Status: domain.TicketStatusInProgress}
	f.comments.latest = &domain.TicketComment{ID: 9, TicketID: 4, Comment: "Investigating"}

	view, err := f.service.GetTicketStatus(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, view.LatestComment)
	assert.Equal(t, "Investigating", view.LatestComment.Comment)
}

func TestUpdateTicketStatus(t *testing.T) {
	f := newFixture()
	f.tickets.tickets[2] = &domain.Ticket{ID: 2, Status: domain.TicketStatusOpen}

	t.Run("valid transition publishes old and new", func(t *testing.T) {
		err := f.service.UpdateTicketStatus(context.Background(), 2, domain.TicketStatusResolved)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, f.tickets.statuses[2])

		last := f.dispatcher.published[len(f.dispatcher.published)-1]
		payload, ok := last.Payload.(events.TicketStatusChangedPayload)
		require.True(t, ok)
		assert.Equal(t, domain.TicketStatusOpen, payload.OldStatus)
		assert.Equal(t, domain.TicketStatusResolved, payload.NewStatus)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := f.service.UpdateTicketStatus(context.Background(), 2, domain.TicketStatus("escalated"))
		require.Error(t, err)
	})

	t.Run("missing ticket", func(t *testing.T) {
		err := f.service.UpdateTicketStatus(context.Background(), 404, domain.TicketStatusClosed)
		assert.True(t, util.IsNotFound(err))
	})
}

func TestListRecentOrders(t *testing.T) {
	f := newFixture()
	f.customers.byPhone["+91-9876543210"] = &domain.Customer{ID: 1, Name: "Asha"}
	f.orders.recent = []domain.Order{{ID: 2, RestaurantName: "Dosa House"}, {ID: 1, RestaurantName: "Biryani Hub"}}

	customer, orders, err := f.service.ListRecentOrders(context.Background(), "9876543210", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), customer.ID)
	require.Len(t, orders, 2)
	assert.Equal(t, 5, f.orders.lastLimit)
}

func TestListRecentOrdersTruncatesToLimit(t *testing.T) {
	f := newFixture()
	f.customers.byPhone["+91-9876543210"] = &domain.Customer{ID: 1, Name: "Asha"}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 7; i >= 1; i-- {
		f.orders.recent = append(f.orders.recent, domain.Order{
			ID:        int64(i),
			OrderedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	_, orders, err := f.service.ListRecentOrders(context.Background(), "9876543210", 5)
	require.NoError(t, err)
	require.Len(t, orders, 5)
	assert.Equal(t, int64(7), orders[0].ID)
	for i := 1; i < len(orders); i++ {
		assert.True(t, orders[i].OrderedAt.Before(orders[i-1].OrderedAt))
	}
}

func TestListTicketComments(t *testing.T) {
	f := newFixture()
	f.tickets.tickets[3] = &domain.Ticket{ID: 3, Status: domain.TicketStatusOpen}
	f.comments.comments = []*domain.TicketComment{
		{ID: 1, TicketID: 3, Comment: "Called the rider"},
		{ID: 2, TicketID: 3, Comment: "Refund issued"},
	}

	t.Run("returns history in order", func(t *testing.T) {
		comments, err := f.service.ListTicketComments(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "Called the rider", comments[0].Comment)
	})

	t.Run("missing ticket", func(t *testing.T) {
		_, err := f.service.ListTicketComments(context.Background(), 404)
		assert.True(t, util.IsNotFound(err))
	})
}

func TestStoreFailureIsNotNotFound(t *testing.T) {
	f := newFixture()
	f.customers.err = errors.New("connection refused")

	_, err := f.service.VerifyMobile(context.Background(), "9876543210")
	require.Error(t, err)
	assert.False(t, util.IsNotFound(err))
}
