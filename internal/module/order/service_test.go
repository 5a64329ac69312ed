package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/datalake/server/internal/shared/events"
	"github.com/datalake/server/internal/shared/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateOrder(ctx context.Context, order *Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockRepository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListOrders(ctx context.Context, filter *OrderFilter, offset, limit int) ([]*Order, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]*Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) UpdateOrder(ctx context.Context, order *Order, replaceItems bool) error {
	return m.Called(ctx, order, replaceItems).Error(0)
}

func (m *mockRepository) DeleteOrder(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.events = append(p.events, e)
}

type recordingMetrics struct {
	statuses []string
}

func (m *recordingMetrics) RecordOrderStatus(status string) {
	m.statuses = append(m.statuses, status)
}

func newTestService(repo Repository) (*Service, *recordingPublisher, *recordingMetrics) {
	pub := &recordingPublisher{}
	rec := &recordingMetrics{}
	return NewService(repo, pub, rec, nil), pub, rec
}

func pendingOrder() *Order {
	items := BuildItems([]ItemRequest{{ProductID: "P1", ProductName: "Pen", Quantity: 2, UnitPrice: 5}})
	o := &Order{ID: 1, OrderID: "ORD_ABC", CustomerID: "CUST_1", Status: OrderStatusPending, Items: items}
	o.applyTotals(CalculateTotals(items))
	return o
}

func TestService_CreateOrder(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	svc, pub, rec := newTestService(repo)

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:      "CUST_1",
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "1 Main St",
		Items: []ItemRequest{
			{ProductID: "P1", ProductName: "Pen", Quantity: 2, UnitPrice: 5},
		},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderID, "ORD_"))
	assert.Len(t, order.OrderID, len("ORD_")+12)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, 10.0, order.Subtotal)
	assert.Equal(t, 1.0, order.Tax)
	assert.Equal(t, 21.0, order.TotalAmount)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeOrderCreated, pub.events[0].EventType())
	assert.Equal(t, []string{"pending"}, rec.statuses)
	repo.AssertExpectations(t)
}

func TestService_ListOrders(t *testing.T) {
	repo := new(mockRepository)
	filter := &OrderFilter{CustomerID: "CUST_1"}
	repo.On("ListOrders", mock.Anything, filter, 10, 10).Return([]*Order{pendingOrder()}, int64(11), nil)
	svc, _, _ := newTestService(repo)

	resp, err := svc.ListOrders(context.Background(), filter, pagination.New(10, 10, 10, 100))

	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.Size)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "ORD_ABC", resp.Orders[0].ID)
}

func TestService_ListOrders_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestService(new(mockRepository))
	bad := OrderStatus("lost")

	_, err := svc.ListOrders(context.Background(), &OrderFilter{Status: &bad}, pagination.New(0, 10, 10, 100))

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_UpdateOrder_ReplacesItems(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetOrder", mock.Anything, "ORD_ABC").Return(pendingOrder(), nil)
	repo.On("UpdateOrder", mock.Anything, mock.AnythingOfType("*order.Order"), true).Return(nil)
	svc, pub, _ := newTestService(repo)

	order, err := svc.UpdateOrder(context.Background(), "ORD_ABC", &UpdateOrderRequest{
		Items: []ItemRequest{{ProductID: "P2", ProductName: "Pad", Quantity: 1, UnitPrice: 20}},
	})

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 20.0, order.Subtotal)
	assert.Equal(t, 32.0, order.TotalAmount)
	assert.Empty(t, pub.events)
	repo.AssertExpectations(t)
}

func TestService_UpdateOrder_ItemsRequirePending(t *testing.T) {
	repo := new(mockRepository)
	o := pendingOrder()
	o.Status = OrderStatusShipped
	repo.On("GetOrder", mock.Anything, "ORD_ABC").Return(o, nil)
	svc, _, _ := newTestService(repo)

	_, err := svc.UpdateOrder(context.Background(), "ORD_ABC", &UpdateOrderRequest{
		Items: []ItemRequest{{ProductID: "P2", ProductName: "Pad", Quantity: 1, UnitPrice: 20}},
	})

	assert.ErrorIs(t, err, ErrOrderNotPending)
	repo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateStatus(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetOrder", mock.Anything, "ORD_ABC").Return(pendingOrder(), nil)
	repo.On("UpdateOrder", mock.Anything, mock.AnythingOfType("*order.Order"), false).Return(nil)
	svc, pub, rec := newTestService(repo)

	order, err := svc.UpdateStatus(context.Background(), "ORD_ABC", OrderStatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, order.Status)
	require.Len(t, pub.events, 1)
	changed := pub.events[0].(*events.OrderStatusChangedEvent)
	assert.Equal(t, "pending", changed.From)
	assert.Equal(t, "confirmed", changed.To)
	assert.Equal(t, []string{"confirmed"}, rec.statuses)
}

func TestService_UpdateStatus_InvalidTransition(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetOrder", mock.Anything, "ORD_ABC").Return(pendingOrder(), nil)
	svc, pub, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), "ORD_ABC", OrderStatusDelivered)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, pub.events)
}

func TestService_DeleteOrder(t *testing.T) {
	repo := new(mockRepository)
	repo.On("DeleteOrder", mock.Anything, "ORD_ZZZ").Return(ErrOrderNotFound)
	svc, _, _ := newTestService(repo)

	err := svc.DeleteOrder(context.Background(), "ORD_ZZZ")

	assert.True(t, errors.Is(err, ErrOrderNotFound))
}
