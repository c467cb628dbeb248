package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/applitech/orders-service/internal/domain"
)

// ProductNotFoundError reports an order item referencing a product that does
// not exist in the catalog.
type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %s not found", e.ID)
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order, its items and the stock decrements in a single
// transaction: a missing product or any store fault rolls everything back.
// Item unit prices and the order total are captured from the catalog here and
// never recomputed afterwards. The stock decrement is a relative UPDATE, so
// concurrent orders against the same product cannot lose updates; there is no
// floor, stock may go negative.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i := range order.Items {
		var price decimal.Decimal
		err := tx.QueryRowContext(ctx, `
			SELECT price FROM products WHERE id = $1
		`, order.Items[i].ProductID).Scan(&price)
		if err == sql.ErrNoRows {
			return &ProductNotFoundError{ID: order.Items[i].ProductID}
		}
		if err != nil {
			return err
		}
		order.Items[i].ID = uuid.New().String()
		order.Items[i].Price = price
	}

	order.ID = uuid.New().String()
	order.TotalPrice = domain.OrderTotal(order.Items)
	order.DateOrdered = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, shipping_address1, shipping_address2,
			city, zip, country, phone, status, total_price, date_ordered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, order.ID, order.User.ID, order.ShippingAddress1, order.ShippingAddress2,
		order.City, order.Zip, order.Country, order.Phone, order.Status,
		order.TotalPrice, order.DateOrdered)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products SET count_in_stock = count_in_stock - $2
			WHERE id = $1
		`, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID returns the order with the user name resolved and every item
// expanded down to its product and category, or (nil, nil) when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.user_id, u.name, o.shipping_address1, o.shipping_address2,
			o.city, o.zip, o.country, o.phone, o.status, o.total_price, o.date_ordered
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id).Scan(&order.ID, &order.User.ID, &order.User.Name,
		&order.ShippingAddress1, &order.ShippingAddress2, &order.City,
		&order.Zip, &order.Country, &order.Phone, &order.Status,
		&order.TotalPrice, &order.DateOrdered)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.expandedItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}

	return order, nil
}

// GetItem returns the order item with the given id, or (nil, nil) when absent.
func (r *OrderRepository) GetItem(ctx context.Context, id string) (*domain.OrderItem, error) {
	item := &domain.OrderItem{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, quantity, price
		FROM order_items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Price)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return item, nil
}

// List returns every order, newest first, with user names resolved. Items
// carry product references only; use GetByID or ListByUser for the nested
// product and category expansion.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.user_id, u.name, o.shipping_address1, o.shipping_address2,
			o.city, o.zip, o.country, o.phone, o.status, o.total_price, o.date_ordered
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.date_ordered DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.User.ID, &order.User.Name,
			&order.ShippingAddress1, &order.ShippingAddress2, &order.City,
			&order.Zip, &order.Country, &order.Phone, &order.Status,
			&order.TotalPrice, &order.DateOrdered); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// ListByUser returns the given user's orders, newest first, with items
// expanded down to products and categories.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.user_id, u.name, o.shipping_address1, o.shipping_address2,
			o.city, o.zip, o.country, o.phone, o.status, o.total_price, o.date_ordered
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.date_ordered DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.User.ID, &order.User.Name,
			&order.ShippingAddress1, &order.ShippingAddress2, &order.City,
			&order.Zip, &order.Country, &order.Phone, &order.Status,
			&order.TotalPrice, &order.DateOrdered); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	expanded, err := r.expandedItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for orderID, items := range expanded {
		orderMap[orderID].Items = items
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// expandedItems fetches the items of the given orders joined with their
// products and categories, keyed by order id.
func (r *OrderRepository) expandedItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.id, oi.product_id, oi.quantity, oi.price,
			p.name, p.price, p.count_in_stock,
			c.id, c.name, c.icon, c.color
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		product := &domain.Product{}
		var categoryID, categoryName, categoryIcon, categoryColor sql.NullString

		if err := rows.Scan(&orderID, &item.ID, &item.ProductID, &item.Quantity, &item.Price,
			&product.Name, &product.Price, &product.CountInStock,
			&categoryID, &categoryName, &categoryIcon, &categoryColor); err != nil {
			return nil, err
		}

		product.ID = item.ProductID
		if categoryID.Valid {
			product.CategoryID = categoryID.String
			product.Category = &domain.Category{
				ID:    categoryID.String,
				Name:  categoryName.String,
				Icon:  categoryIcon.String,
				Color: categoryColor.String,
			}
		}
		item.Product = product
		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateStatus changes only the status column and returns the updated order,
// or (nil, nil) when the id does not resolve.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes the order and every item it owns in one transaction. It
// reports whether an order row was actually deleted.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM order_items WHERE order_id = $1
	`, id)
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM orders WHERE id = $1
	`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// TotalSales sums total_price over all orders. An empty order set is not an
// error and yields zero.
func (r *OrderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_price), 0) FROM orders
	`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Count returns the number of orders. Zero is a valid result.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
	`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
