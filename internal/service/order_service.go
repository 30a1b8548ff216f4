package service

import (
	"context"

	"storefront/internal/admin"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// ListOrders fetches orders newest first, then filters, searches and sorts
// them. Stats cover every fetched order.
func (s *orderService) ListOrders(ctx context.Context, q admin.Query) (*OrderList, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch orders")
		return nil, model.ErrFetch.Wrap(err)
	}

	shown := admin.Apply(orders, q)

	s.logger.Debug().
		Int("fetched", len(orders)).
		Int("shown", len(shown)).
		Str("status", q.Status).
		Str("sort", string(q.SortKey)).
		Msg("orders listed")

	return &OrderList{
		Orders:  shown,
		Showing: len(shown),
		Total:   len(orders),
		Stats:   admin.Summarize(orders),
		Query:   q,
	}, nil
}
