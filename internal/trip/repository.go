package trip

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no trip matches the lookup.
var ErrNotFound = errors.New("trip not found")

// Repository persists trips.
type Repository interface {
	Create(ctx context.Context, trip Trip) error
	Get(ctx context.Context, id string) (Trip, error)
	List(ctx context.Context) ([]Trip, error)
	ListByPassenger(ctx context.Context, passengerID string) ([]Trip, error)
	Update(ctx context.Context, trip Trip) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed trip repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tripColumns = `id, passenger_id, route_id, bus_id, start_station, end_station, status, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, trip Trip) error {
	ids, err := parseTripIDs(trip)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO trips (id, passenger_id, route_id, bus_id, start_station, end_station, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ids[0], ids[1], ids[2], ids[3], trip.StartStation, trip.EndStation, string(trip.Status),
		trip.CreatedAt.UTC(), trip.UpdatedAt.UTC())
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Trip, error) {
	tripID, err := uuid.Parse(id)
	if err != nil {
		return Trip{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, tripID)
	return scanTrip(row)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (r *PostgresRepository) ListByPassenger(ctx context.Context, passengerID string) ([]Trip, error) {
	pID, err := uuid.Parse(passengerID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trips WHERE passenger_id = $1 ORDER BY created_at DESC`, pID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, trip Trip) error {
	tripID, err := uuid.Parse(trip.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE trips SET start_station = $1, end_station = $2, status = $3, updated_at = $4
        WHERE id = $5`, trip.StartStation, trip.EndStation, string(trip.Status), trip.UpdatedAt.UTC(), tripID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tripID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func parseTripIDs(trip Trip) ([4]uuid.UUID, error) {
	var ids [4]uuid.UUID
	for i, raw := range []string{trip.ID, trip.PassengerID, trip.RouteID, trip.BusID} {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return ids, err
		}
		ids[i] = parsed
	}
	return ids, nil
}

func scanTrip(row interface{ Scan(dest ...any) error }) (Trip, error) {
	var (
		id          uuid.UUID
		passengerID uuid.UUID
		routeID     uuid.UUID
		busID       uuid.UUID
		status      string
		createdAt   time.Time
		updatedAt   time.Time
		t           Trip
	)
	if err := row.Scan(&id, &passengerID, &routeID, &busID, &t.StartStation, &t.EndStation, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trip{}, ErrNotFound
		}
		return Trip{}, err
	}
	t.ID = id.String()
	t.PassengerID = passengerID.String()
	t.RouteID = routeID.String()
	t.BusID = busID.String()
	t.Status = Status(status)
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}

func collectTrips(rows pgx.Rows) ([]Trip, error) {
	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}
