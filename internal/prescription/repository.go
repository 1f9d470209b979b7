package prescription

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/wichananm65/medicine-store-backend/internal/database"
)

type Repository interface {
	Create(ctx context.Context, p Prescription) (Prescription, error)
	List(ctx context.Context) ([]Prescription, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  []Prescription
	nextID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make([]Prescription, 0), nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, p Prescription) (Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.items = append(r.items, p)
	return p, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Prescription, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertPrescriptionQuery = `
		INSERT INTO prescriptions (user_id, original_name, stored_name, preview_name, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	listPrescriptionsQuery = `
		SELECT id, user_id, original_name, stored_name, preview_name, content_type, size_bytes, uploaded_at
		FROM prescriptions
		ORDER BY uploaded_at DESC, id DESC
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p Prescription) (Prescription, error) {
	err := r.db.QueryRowContext(ctx, insertPrescriptionQuery,
		p.UserID,
		p.OriginalName,
		p.StoredName,
		p.PreviewName,
		p.ContentType,
		p.Size,
		p.UploadedAt,
	).Scan(&p.ID)
	if database.IsUniqueViolation(err) {
		return Prescription{}, ErrDuplicateName
	}
	if err != nil {
		return Prescription{}, fmt.Errorf("create prescription: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Prescription, error) {
	rows, err := r.db.QueryContext(ctx, listPrescriptionsQuery)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	out := make([]Prescription, 0)
	for rows.Next() {
		var p Prescription
		var userID, preview sql.NullString
		if err := rows.Scan(&p.ID, &userID, &p.OriginalName, &p.StoredName, &preview, &p.ContentType, &p.Size, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		if userID.Valid {
			p.UserID = &userID.String
		}
		if preview.Valid {
			p.PreviewName = &preview.String
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
