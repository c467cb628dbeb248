package catalog

import (
	"context"
	"database/sql"

	"github.com/applitech/orders-service/internal/domain"
)

// Repository provides read access to the product catalog. Stock mutation for
// order placement happens inside the order transaction, not here.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}
	var categoryID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, count_in_stock, category_id
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.Price, &product.CountInStock, &categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	product.CategoryID = categoryID.String

	return product, nil
}

func (r *Repository) GetStock(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT count_in_stock
		FROM products
		WHERE id = $1
	`, id).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
