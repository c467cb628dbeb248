package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/applitech/orders-service/internal/catalog"
	"github.com/applitech/orders-service/internal/domain"
)

// StockMonitor consumes order.created events and warns when an ordered
// product's stock has dropped to or below the threshold. Stock decrements
// have no floor, so the level it reports can be negative.
type StockMonitor struct {
	catalog   *catalog.Repository
	threshold int
	logger    *slog.Logger
}

func NewStockMonitor(catalogRepo *catalog.Repository, threshold int, logger *slog.Logger) *StockMonitor {
	return &StockMonitor{
		catalog:   catalogRepo,
		threshold: threshold,
		logger:    logger,
	}
}

func (m *StockMonitor) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	m.logger.Info("checking stock for order", "order_id", event.OrderID)

	for _, item := range event.Items {
		stock, err := m.catalog.GetStock(ctx, item.ProductID)
		if err != nil {
			return fmt.Errorf("get stock for product %s: %w", item.ProductID, err)
		}

		if stock <= m.threshold {
			m.logger.Warn("product stock low", "product_id", item.ProductID, "count_in_stock", stock, "threshold", m.threshold)
		}
	}

	return nil
}
