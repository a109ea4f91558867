package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

// PostgresStore keeps products and cart items in PostgreSQL.
// The schema lives in migrations/ and is applied by cmd/migrator.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgresStore creates a connection pool for dsn and pings it
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	s := NewPostgresStore(pool)
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetAll(ctx context.Context) ([]models.Product, error) {
	const query = `
		SELECT product_id, product_title, price, quantity, product_image
		FROM products
		ORDER BY product_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Product])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return products, nil
}

// InsertProducts inserts in one transaction. Explicit IDs advance the identity sequence.
func (s *PostgresStore) InsertProducts(ctx context.Context, products []models.Product) (txErr error) {
	if len(products) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	for _, p := range products {
		if p.ProductID == 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO products (product_title, price, quantity, product_image)
				VALUES ($1, $2, $3, $4)`,
				p.ProductTitle, p.Price, p.Quantity, p.ProductImage)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO products (product_id, product_title, price, quantity, product_image)
				VALUES ($1, $2, $3, $4, $5)`,
				p.ProductID, p.ProductTitle, p.Price, p.Quantity, p.ProductImage)
		}
		if err != nil {
			return fmt.Errorf("tx.Exec insert product %q: %w", p.ProductTitle, err)
		}
	}

	_, err = tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('products', 'product_id'), MAX(product_id))
		FROM products`)
	if err != nil {
		return fmt.Errorf("tx.Exec setval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddItem(ctx context.Context, item models.CartItem) error {
	const query = `
		INSERT INTO cart_items (cart_item_id, shop_cart_id, product_name, price, quantity, added_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		item.CartItemID, item.ShopCartID, item.ProductName, item.Price, item.Quantity, item.AddedAt)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListItems(ctx context.Context, shopCartID string) ([]models.CartItem, error) {
	const query = `
		SELECT cart_item_id::text AS cart_item_id, shop_cart_id, product_name, price, quantity, added_at
		FROM cart_items
		WHERE shop_cart_id = $1
		ORDER BY added_at, cart_item_id`

	rows, err := s.pool.Query(ctx, query, shopCartID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CartItem])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database is unavailable: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}
