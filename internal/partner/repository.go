package partner

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

type Repository interface {
	Create(ctx context.Context, p Partner) (Partner, error)
	List(ctx context.Context) ([]Partner, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	partners []Partner
	nextID   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{partners: make([]Partner, 0), nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, p Partner) (Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.partners = append(r.partners, p)
	return p, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Partner, len(r.partners))
	copy(out, r.partners)
	return out, nil
}

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertPartnerQuery = `
		INSERT INTO partners (name, email, phone, store_details, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	listPartnersQuery = `
		SELECT id, name, email, phone, store_details, created_at
		FROM partners
		ORDER BY id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p Partner) (Partner, error) {
	err := r.db.QueryRowContext(ctx, insertPartnerQuery, p.Name, p.Email, p.Phone, p.StoreDetails, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return Partner{}, fmt.Errorf("create partner: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Partner, error) {
	rows, err := r.db.QueryContext(ctx, listPartnersQuery)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	out := make([]Partner, 0)
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.StoreDetails, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
