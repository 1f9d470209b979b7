package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/medicine-store-backend/internal/cart"
	"github.com/wichananm65/medicine-store-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `id, user_id, total_amount, payment_status, order_status, payment_id, shipping_address, created_at, updated_at`

	productPricesQuery = `SELECT id, price FROM products WHERE id = ANY($1::bigint[])`
	insertOrderQuery   = `
		INSERT INTO orders (user_id, total_amount, payment_status, order_status, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	insertItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`
	listOrdersQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC
	`
	listUserOrdersQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	getOrderQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`
	listItemsQuery = `
		SELECT order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1::bigint[])
		ORDER BY id
	`
	updateStatusQuery = `
		UPDATE orders
		SET order_status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4
	`
	confirmPaymentQuery = `
		UPDATE orders
		SET payment_status = $1, order_status = $2, payment_id = $3, updated_at = $4
		WHERE id = $5
	`
	deleteOrderQuery = `DELETE FROM orders WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Checkout locks the cart row, prices the lines, writes the order and clears
// the cart in one transaction. Deadlocks and serialization failures are
// retried.
func (r *PostgresRepository) Checkout(ctx context.Context, userID string, address *string, now time.Time) (Order, error) {
	var created Order
	err := database.WithRetry(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		c, err := cart.LockItems(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}

		prices, err := loadPrices(ctx, tx, c.ProductIDs())
		if err != nil {
			return err
		}
		o, err := NewFromCart(c, prices, address, now)
		if err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx, insertOrderQuery,
			o.UserID,
			o.TotalAmount,
			string(o.PaymentStatus),
			string(o.OrderStatus),
			o.ShippingAddress,
			o.CreatedAt,
			o.UpdatedAt,
		).Scan(&o.ID); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, it := range o.Items {
			if _, err := tx.ExecContext(ctx, insertItemQuery, o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		if err := cart.ClearItems(ctx, tx, userID, now); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

func loadPrices(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx, productPricesQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load product prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]decimal.Decimal, len(ids))
	for rows.Next() {
		var id int64
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan product price: %w", err)
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

func (r *PostgresRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersQuery)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.collect(ctx, rows)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listUserOrdersQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", userID, err)
	}
	return r.collect(ctx, rows)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, orderStatus Status, paymentStatus PaymentStatus, now time.Time) (Order, error) {
	if err := r.exec(ctx, updateStatusQuery, string(orderStatus), string(paymentStatus), now, id); err != nil {
		return Order{}, fmt.Errorf("update order %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepository) ConfirmPayment(ctx context.Context, id int64, paymentID string, now time.Time) (Order, error) {
	if err := r.exec(ctx, confirmPaymentQuery, string(PaymentSuccess), string(StatusCompleted), paymentID, now, id); err != nil {
		return Order{}, fmt.Errorf("confirm payment for order %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Delete removes the order; its items go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if err := r.exec(ctx, deleteOrderQuery, id); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	return nil
}

// exec runs a single-row statement and reports ErrNotFound when nothing
// matched.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) collect(ctx context.Context, rows *sql.Rows) ([]Order, error) {
	out, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scanOrders(rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, listItemsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var it LineItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	o := Order{Items: []LineItem{}}
	var paymentStatus, orderStatus string
	var paymentID, address sql.NullString

	if err := scanner.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&paymentStatus,
		&orderStatus,
		&paymentID,
		&address,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return Order{}, err
	}

	o.PaymentStatus = PaymentStatus(paymentStatus)
	o.OrderStatus = Status(orderStatus)
	if paymentID.Valid {
		o.PaymentID = &paymentID.String
	}
	if address.Valid {
		o.ShippingAddress = &address.String
	}
	return o, nil
}
