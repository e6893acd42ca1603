package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound indicates no product exists for the identifier.
var ErrProductNotFound = errors.New("product not found")

// Repository persists the product catalog.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	ListActive(ctx context.Context) ([]Product, error)
}

// PostgresRepository stores products in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a catalog repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productSelect = `SELECT id, name, product_type, provider, value, price, active, created_at FROM products`

// Get fetches one product by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.db.QueryRow(ctx, productSelect+` WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListActive returns the purchasable catalog ordered for display.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, productSelect+` WHERE active = TRUE ORDER BY provider, product_type, value`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.ProductType, &p.Provider, &p.Value, &p.Price, &p.Active, &p.CreatedAt)
	if err != nil {
		return Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
