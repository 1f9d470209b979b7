package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var orderRowColumns = []string{"id", "user_id", "total_amount", "payment_status", "order_status", "payment_id", "shipping_address", "created_at", "updated_at"}

func TestPostgresCheckout_InsertsOrderAndClearsCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery("FROM cart_items").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity"}).AddRow(1, 2).AddRow(2, 1))
	mock.ExpectQuery("SELECT id, price FROM products").WithArgs(pq.Array([]int64{1, 2})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).AddRow(1, "10.00").AddRow(2, "5.00"))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("u1", sqlmock.AnyArg(), "Pending", "Pending", sqlmock.AnyArg(), now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(int64(11), int64(1), 2, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(int64(11), int64(2), 1, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("DELETE FROM cart_items").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE carts").WithArgs("u1", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, err := repo.Checkout(context.Background(), "u1", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID != 11 || !o.TotalAmount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected order %+v", o)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCheckout_EmptyCartRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery("FROM cart_items").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity"}))
	mock.ExpectRollback()

	if _, err := repo.Checkout(context.Background(), "u1", nil, now); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCheckout_RetriesSerializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("u1").WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("u1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := repo.Checkout(context.Background(), "u1", nil, now); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after retry, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet_AttachesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM orders").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(3, "u1", "25.00", "Success", "Completed", "pay_1", nil, now, now))
	mock.ExpectQuery("FROM order_items").WithArgs(pq.Array([]int64{3})).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "quantity", "price"}).AddRow(3, 1, 2, "10.00").AddRow(3, 2, 1, "5.00"))

	o, err := repo.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.Items) != 2 || o.PaymentID == nil || *o.PaymentID != "pay_1" || o.ShippingAddress != nil {
		t.Fatalf("unexpected order %+v", o)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateStatus_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM orders").WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.UpdateStatus(context.Background(), 8, StatusShipped, PaymentSuccess, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), 8); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
