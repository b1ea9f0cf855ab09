package service

import (
	"context"
	"time"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/repository"
	"github.com/apsx/clinic-api/internal/utils"
)

// OrderService handles order operations. Every operation is scoped by the
// shop taken from the caller's token.
type OrderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repository.OrderRepository, customerRepo repository.CustomerRepository) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// Search retrieves orders matching the request filters within the shop.
func (s *OrderService) Search(ctx context.Context, shopID int64, req *models.OrderSearchRequest) (*models.OrderSearchResponse, error) {
	orders, total, err := s.orderRepo.Search(ctx, shopID, req)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return &models.OrderSearchResponse{
		Orders:   orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetByID retrieves a single order within the shop.
func (s *OrderService) GetByID(ctx context.Context, shopID, id int64) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, shopID, id)
}

// Create validates the referenced customer and inserts a new order. The net
// amount is derived from total and discount, never taken from the client.
func (s *OrderService) Create(ctx context.Context, shopID int64, req *models.CreateOrderRequest) (*models.Order, error) {
	if _, err := s.customerRepo.GetByID(ctx, shopID, req.CustomerID); err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.NewBadRequestError("Referenced customer does not exist")
		}
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, utils.NewValidationError("order_date", "Invalid date format")
	}

	if req.Discount > req.Total {
		return nil, utils.NewValidationError("order_discount", "Discount cannot exceed total")
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusDraft
	}

	order := &models.Order{
		ShopID:     shopID,
		CustomerID: req.CustomerID,
		Code:       req.Code,
		Date:       date,
		Total:      req.Total,
		Discount:   req.Discount,
		Net:        utils.RoundTo(req.Total-req.Discount, 2),
		Status:     status,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(ctx, shopID, order.ID)
}

// Update applies the provided fields to an order within the shop and
// returns the fresh row.
func (s *OrderService) Update(ctx context.Context, shopID, id int64, req *models.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusPaid {
		return nil, utils.NewBadRequestError("Paid orders cannot be modified")
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, shopID, *req.CustomerID); err != nil {
			if utils.IsNotFoundError(err) {
				return nil, utils.NewBadRequestError("Referenced customer does not exist")
			}
			return nil, err
		}
		order.CustomerID = *req.CustomerID
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, utils.NewValidationError("order_date", "Invalid date format")
		}
		order.Date = date
	}
	if req.Total != nil {
		order.Total = *req.Total
	}
	if req.Discount != nil {
		order.Discount = *req.Discount
	}
	if req.Status != nil {
		order.Status = *req.Status
	}

	if order.Discount > order.Total {
		return nil, utils.NewValidationError("order_discount", "Discount cannot exceed total")
	}
	order.Net = utils.RoundTo(order.Total-order.Discount, 2)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(ctx, shopID, id)
}

// Delete removes an order within the shop. Paid orders must be cancelled
// first so the books stay consistent.
func (s *OrderService) Delete(ctx context.Context, shopID, id int64) error {
	order, err := s.orderRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return err
	}

	if order.Status == models.OrderStatusPaid {
		return utils.NewBadRequestError("Paid orders cannot be deleted")
	}

	return s.orderRepo.Delete(ctx, shopID, id)
}
