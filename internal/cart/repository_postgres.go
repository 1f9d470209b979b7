package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/medicine-store-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	upsertCartQuery = `
		INSERT INTO carts (user_id, updated_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`
	upsertItemQuery = `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
	touchCartQuery   = `UPDATE carts SET updated_at = $2 WHERE user_id = $1`
	deleteItemQuery  = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`
	setQuantityQuery = `UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`
	getCartQuery     = `SELECT updated_at FROM carts WHERE user_id = $1`
	lockCartQuery    = `SELECT updated_at FROM carts WHERE user_id = $1 FOR UPDATE`
	listItemsQuery   = `
		SELECT product_id, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_id
	`
	clearItemsQuery = `DELETE FROM cart_items WHERE user_id = $1`
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AddItem(ctx context.Context, userID string, productID int64, qty int, now time.Time) (Cart, error) {
	var out Cart
	err := database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertCartQuery, userID, now); err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertItemQuery, userID, productID, qty, now); err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}
		c, err := loadCart(ctx, tx, getCartQuery, userID)
		out = c
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (Cart, error) {
	return loadCart(ctx, r.db, getCartQuery, userID)
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, userID string, productID int64, now time.Time) (Cart, error) {
	var out Cart
	err := database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if err := touchCart(ctx, tx, userID, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteItemQuery, userID, productID); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		c, err := loadCart(ctx, tx, getCartQuery, userID)
		out = c
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

func (r *PostgresRepository) UpdateQuantity(ctx context.Context, userID string, productID int64, qty int, now time.Time) (Cart, error) {
	var out Cart
	err := database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if err := touchCart(ctx, tx, userID, now); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, setQuantityQuery, userID, productID, qty)
		if err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}
		if affected == 0 {
			return ErrItemNotFound
		}
		c, err := loadCart(ctx, tx, getCartQuery, userID)
		out = c
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// LockItems reads the user's cart inside tx, holding a row lock on it until
// the transaction ends so concurrent checkouts of one cart run one at a time.
func LockItems(ctx context.Context, tx *sql.Tx, userID string) (Cart, error) {
	return loadCart(ctx, tx, lockCartQuery, userID)
}

// ClearItems empties the user's cart inside tx.
func ClearItems(ctx context.Context, tx *sql.Tx, userID string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, clearItemsQuery, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return touchCart(ctx, tx, userID, now)
}

func touchCart(ctx context.Context, tx *sql.Tx, userID string, now time.Time) error {
	result, err := tx.ExecContext(ctx, touchCartQuery, userID, now)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	if affected == 0 {
		return ErrCartNotFound
	}
	return nil
}

func loadCart(ctx context.Context, q querier, headQuery, userID string) (Cart, error) {
	c := Cart{UserID: userID, Items: []Item{}}
	if err := q.QueryRowContext(ctx, headQuery, userID).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}

	rows, err := q.QueryContext(ctx, listItemsQuery, userID)
	if err != nil {
		return Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, fmt.Errorf("rows error: %w", err)
	}
	return c, nil
}
