package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no transaction matched the lookup for the user.
var ErrNotFound = errors.New("transaction not found")

// Repository persists budget entries.
type Repository interface {
	Create(ctx context.Context, tx Transaction) error
	ListByUser(ctx context.Context, userID, category string) ([]Transaction, error)
	Update(ctx context.Context, tx Transaction) error
	Delete(ctx context.Context, userID, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed transaction repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new entry.
func (r *PostgresRepository) Create(ctx context.Context, tx Transaction) error {
	txID, err := uuid.Parse(tx.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(tx.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO transactions (id, user_id, type, category, amount, description, date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txID, userID, tx.Type, tx.Category, tx.Amount, tx.Description, tx.Date.UTC(), tx.CreatedAt.UTC())
	return err
}

// ListByUser fetches a user's entries, newest first, optionally filtered by category.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID, category string) ([]Transaction, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, type, category, amount, description, date, created_at
        FROM transactions WHERE user_id = $1`
	args := []any{uid}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Transaction
	for rows.Next() {
		var (
			id        uuid.UUID
			ownerID   uuid.UUID
			date      time.Time
			createdAt time.Time
			tx        Transaction
		)
		if err := rows.Scan(&id, &ownerID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &date, &createdAt); err != nil {
			return nil, err
		}
		tx.ID = id.String()
		tx.UserID = ownerID.String()
		tx.Date = date.UTC()
		tx.CreatedAt = createdAt.UTC()
		result = append(result, tx)
	}
	return result, rows.Err()
}

// Update rewrites an entry owned by the user. A zero Date keeps the stored
// date.
func (r *PostgresRepository) Update(ctx context.Context, tx Transaction) error {
	txID, err := uuid.Parse(tx.ID)
	if err != nil {
		return ErrNotFound
	}
	uid, err := uuid.Parse(tx.UserID)
	if err != nil {
		return ErrNotFound
	}

	var date *time.Time
	if !tx.Date.IsZero() {
		d := tx.Date.UTC()
		date = &d
	}

	cmd, err := r.db.Exec(ctx, `UPDATE transactions
        SET type = $1, category = $2, amount = $3, description = $4, date = COALESCE($5, date)
        WHERE id = $6 AND user_id = $7`,
		tx.Type, tx.Category, tx.Amount, tx.Description, date, txID, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry owned by the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	txID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, txID, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
