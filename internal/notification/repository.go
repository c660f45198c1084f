package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no notification matches the lookup.
var ErrNotFound = errors.New("notification not found")

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	Get(ctx context.Context, id string) (Notification, error)
	// ListForUser returns the user's own notifications plus system-wide
	// ones, newest first. unreadOnly filters to unread.
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed notification repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n Notification) error {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications (id, user_id, title, message, type, read, created_at)
        VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)`,
		id, n.UserID, n.Title, n.Message, string(n.Type), n.Read, n.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Notification, error) {
	nID, err := uuid.Parse(id)
	if err != nil {
		return Notification{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, user_id, title, message, type, read, created_at
        FROM notifications WHERE id = $1`, nID)
	return scanNotification(row)
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	query := `SELECT id, user_id, title, message, type, read, created_at
        FROM notifications WHERE (user_id = $1 OR user_id IS NULL)`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, uID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	nID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, nID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return 0, nil
	}
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE (user_id = $1 OR user_id IS NULL) AND read = FALSE`, uID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanNotification(row interface{ Scan(dest ...any) error }) (Notification, error) {
	var (
		id        uuid.UUID
		userID    *uuid.UUID
		typ       string
		createdAt time.Time
		n         Notification
	)
	if err := row.Scan(&id, &userID, &n.Title, &n.Message, &typ, &n.Read, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, ErrNotFound
		}
		return Notification{}, err
	}
	n.ID = id.String()
	if userID != nil {
		n.UserID = userID.String()
	}
	n.Type = Type(typ)
	n.CreatedAt = createdAt.UTC()
	return n, nil
}
