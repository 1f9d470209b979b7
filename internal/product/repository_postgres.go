package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `id, name, description, type, category, manufacturer, price, discount, image, brand, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id
	`
	searchProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 ESCAPE '\'
		   OR description ILIKE $1 ESCAPE '\'
		   OR category ILIKE $1 ESCAPE '\'
		   OR COALESCE(manufacturer, '') ILIKE $1 ESCAPE '\'
		ORDER BY id
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	listProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1::bigint[])
	`
	insertProductQuery = `
		INSERT INTO products (name, description, type, category, manufacturer, price, discount, image, brand, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			type = $3,
			category = $4,
			manufacturer = $5,
			price = $6,
			discount = $7,
			image = $8,
			brand = $9,
			updated_at = $10
		WHERE id = $11
	`
	deleteProductQuery  = `DELETE FROM products WHERE id = $1`
	listCategoriesQuery = `SELECT DISTINCT category FROM products ORDER BY category`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, search string) ([]Product, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if search == "" {
		rows, err = r.db.QueryContext(ctx, listProductsQuery)
	} else {
		rows, err = r.db.QueryContext(ctx, searchProductsQuery, likePattern(search))
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list products by ids: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx,
		insertProductQuery,
		p.Name,
		p.Description,
		p.Type,
		p.Category,
		p.Manufacturer,
		p.Price,
		p.Discount,
		p.Image,
		p.Brand,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, p Product) (Product, error) {
	result, err := r.db.ExecContext(ctx,
		updateProductQuery,
		p.Name,
		p.Description,
		p.Type,
		p.Category,
		p.Manufacturer,
		p.Price,
		p.Discount,
		p.Image,
		p.Brand,
		p.UpdatedAt,
		id,
	)
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a literal substring into an ILIKE pattern.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

func collect(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var manufacturer sql.NullString
	var image sql.NullString
	var brand sql.NullString

	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Type,
		&p.Category,
		&manufacturer,
		&p.Price,
		&p.Discount,
		&image,
		&brand,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}

	if manufacturer.Valid {
		p.Manufacturer = &manufacturer.String
	}
	if image.Valid {
		p.Image = &image.String
	}
	if brand.Valid {
		p.Brand = &brand.String
	}
	return p, nil
}
