package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/service"
	"github.com/apsx/clinic-api/internal/utils"
)

// fakeOrderRepo is an in-memory OrderRepository keyed by (shop, id).
type fakeOrderRepo struct {
	orders map[int64]*models.Order
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order), nextID: 1}
}

func (f *fakeOrderRepo) Search(ctx context.Context, shopID int64, req *models.OrderSearchRequest) ([]*models.Order, int64, error) {
	var matches []*models.Order
	for _, o := range f.orders {
		if o.ShopID != shopID {
			continue
		}
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		matches = append(matches, o)
	}
	return matches, int64(len(matches)), nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, shopID, id int64) (*models.Order, error) {
	if o, ok := f.orders[id]; ok && o.ShopID == shopID {
		copied := *o
		return &copied, nil
	}
	return nil, utils.NewNotFoundError("Order", id)
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = f.nextID
	f.nextID++
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error {
	if existing, ok := f.orders[order.ID]; ok && existing.ShopID == order.ShopID {
		copied := *order
		f.orders[order.ID] = &copied
		return nil
	}
	return utils.NewNotFoundError("Order", order.ID)
}

func (f *fakeOrderRepo) Delete(ctx context.Context, shopID, id int64) error {
	if o, ok := f.orders[id]; ok && o.ShopID == shopID {
		delete(f.orders, id)
		return nil
	}
	return utils.NewNotFoundError("Order", id)
}

// fakeCustomerRepo knows a fixed set of (shop, customer) pairs.
type fakeCustomerRepo struct {
	customers map[int64]int64 // customer ID -> shop ID
}

func (f *fakeCustomerRepo) GetByID(ctx context.Context, shopID, id int64) (*models.Customer, error) {
	if owner, ok := f.customers[id]; ok && owner == shopID {
		return &models.Customer{ID: id, ShopID: shopID}, nil
	}
	return nil, utils.NewNotFoundError("Customer", id)
}

func newTestOrderService() (*service.OrderService, *fakeOrderRepo) {
	orders := newFakeOrderRepo()
	customers := &fakeCustomerRepo{customers: map[int64]int64{3: 7}}
	return service.NewOrderService(orders, customers), orders
}

func TestOrderService_Create(t *testing.T) {
	svc, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0001",
		Date:       "2026-08-30",
		Total:      1000.0,
		Discount:   150.0,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ShopID)
	assert.Equal(t, 850.0, order.Net)
	assert.Equal(t, models.OrderStatusDraft, order.Status)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), order.Date)
}

func TestOrderService_Create_UnknownCustomer(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 9999,
		Code:       "OR-0002",
		Date:       "2026-08-30",
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.ParseError(err).StatusCode)
}

func TestOrderService_Create_CustomerFromOtherShop(t *testing.T) {
	svc, _ := newTestOrderService()

	// Customer 3 belongs to shop 7, but the caller's token is scoped to 8.
	_, err := svc.Create(context.Background(), 8, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0003",
		Date:       "2026-08-30",
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.ParseError(err).StatusCode)
}

func TestOrderService_Create_DiscountExceedsTotal(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0004",
		Date:       "2026-08-30",
		Total:      100.0,
		Discount:   200.0,
	})

	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestOrderService_Update_RecomputesNet(t *testing.T) {
	svc, _ := newTestOrderService()

	created, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0005",
		Date:       "2026-08-30",
		Total:      1000.0,
		Discount:   0.0,
	})
	require.NoError(t, err)

	newDiscount := 250.0
	updated, err := svc.Update(context.Background(), 7, created.ID, &models.UpdateOrderRequest{
		Discount: &newDiscount,
	})

	require.NoError(t, err)
	assert.Equal(t, 750.0, updated.Net)
}

func TestOrderService_Update_PaidOrderLocked(t *testing.T) {
	svc, repo := newTestOrderService()

	created, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0006",
		Date:       "2026-08-30",
		Total:      500.0,
		Status:     models.OrderStatusPaid,
	})
	require.NoError(t, err)

	newTotal := 600.0
	_, err = svc.Update(context.Background(), 7, created.ID, &models.UpdateOrderRequest{
		Total: &newTotal,
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.ParseError(err).StatusCode)

	// And deletion is refused too.
	err = svc.Delete(context.Background(), 7, created.ID)
	require.Error(t, err)
	assert.Len(t, repo.orders, 1)
}

func TestOrderService_Delete(t *testing.T) {
	svc, repo := newTestOrderService()

	created, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0007",
		Date:       "2026-08-30",
		Total:      100.0,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 7, created.ID))
	assert.Empty(t, repo.orders)
}

func TestOrderService_ShopIsolation(t *testing.T) {
	svc, _ := newTestOrderService()

	created, err := svc.Create(context.Background(), 7, &models.CreateOrderRequest{
		CustomerID: 3,
		Code:       "OR-0008",
		Date:       "2026-08-30",
		Total:      100.0,
	})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 99, created.ID)
	assert.True(t, utils.IsNotFoundError(err))

	err = svc.Delete(context.Background(), 99, created.ID)
	assert.True(t, utils.IsNotFoundError(err))
}
