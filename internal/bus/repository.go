package bus

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no bus matches the lookup.
var ErrNotFound = errors.New("bus not found")

// Repository persists buses. AssignDriver and UnassignDriver are the only
// writes that touch the driver reference; both are atomic so no reader ever
// observes two buses pointing at the same driver.
type Repository interface {
	Create(ctx context.Context, bus Bus) error
	Get(ctx context.Context, id string) (Bus, error)
	GetByPlate(ctx context.Context, plate string) (Bus, error)
	List(ctx context.Context) ([]Bus, error)
	ListByDriver(ctx context.Context, driverID string) ([]Bus, error)
	Update(ctx context.Context, bus Bus) error
	Delete(ctx context.Context, id string) error

	// AssignDriver clears any bus currently pointing at driverID and sets
	// the driver on the target bus in one atomic step.
	AssignDriver(ctx context.Context, busID, driverID string) error
	// UnassignDriver clears the driver reference on every bus pointing at
	// driverID and returns how many were cleared.
	UnassignDriver(ctx context.Context, driverID string) (int64, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed bus repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const busColumns = `id, plate_number, capacity, route_desc, organization_id, driver_id, created_at`

// Create inserts a bus record.
func (r *PostgresRepository) Create(ctx context.Context, bus Bus) error {
	busID, err := uuid.Parse(bus.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO buses (id, plate_number, capacity, route_desc, organization_id, driver_id, created_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, NULLIF($6, '')::uuid, $7)`,
		busID, bus.PlateNumber, bus.Capacity, bus.RouteDesc, bus.OrganizationID, bus.DriverID, bus.CreatedAt.UTC())
	return err
}

// Get fetches a bus by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Bus, error) {
	busID, err := uuid.Parse(id)
	if err != nil {
		return Bus{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+busColumns+` FROM buses WHERE id = $1`, busID)
	return scanBus(row)
}

// GetByPlate fetches a bus by its unique plate number.
func (r *PostgresRepository) GetByPlate(ctx context.Context, plate string) (Bus, error) {
	row := r.db.QueryRow(ctx, `SELECT `+busColumns+` FROM buses WHERE plate_number = $1`, plate)
	return scanBus(row)
}

// List returns every bus.
func (r *PostgresRepository) List(ctx context.Context) ([]Bus, error) {
	rows, err := r.db.Query(ctx, `SELECT `+busColumns+` FROM buses ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBuses(rows)
}

// ListByDriver returns the buses currently assigned to a driver. The
// assignment invariant keeps this at zero or one, but the query does not
// assume it.
func (r *PostgresRepository) ListByDriver(ctx context.Context, driverID string) ([]Bus, error) {
	id, err := uuid.Parse(driverID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+busColumns+` FROM buses WHERE driver_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBuses(rows)
}

// Update overwrites a stored bus without touching its driver reference.
func (r *PostgresRepository) Update(ctx context.Context, bus Bus) error {
	busID, err := uuid.Parse(bus.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE buses SET plate_number = $1, capacity = $2, route_desc = $3, organization_id = NULLIF($4, '')::uuid
        WHERE id = $5`,
		bus.PlateNumber, bus.Capacity, bus.RouteDesc, bus.OrganizationID, busID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a bus by primary key.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	busID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM buses WHERE id = $1`, busID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignDriver runs both updates inside one transaction so the window where
// two buses reference the same driver never becomes visible.
func (r *PostgresRepository) AssignDriver(ctx context.Context, busID, driverID string) error {
	bID, err := uuid.Parse(busID)
	if err != nil {
		return ErrNotFound
	}
	dID, err := uuid.Parse(driverID)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE buses SET driver_id = NULL WHERE driver_id = $1 AND id <> $2`, dID, bID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `UPDATE buses SET driver_id = $1 WHERE id = $2`, dID, bID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// UnassignDriver clears every bus pointing at driverID in a single statement.
func (r *PostgresRepository) UnassignDriver(ctx context.Context, driverID string) (int64, error) {
	dID, err := uuid.Parse(driverID)
	if err != nil {
		return 0, nil
	}
	cmd, err := r.db.Exec(ctx, `UPDATE buses SET driver_id = NULL WHERE driver_id = $1`, dID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBus(row rowScanner) (Bus, error) {
	var (
		id        uuid.UUID
		orgID     *uuid.UUID
		driverID  *uuid.UUID
		createdAt time.Time
		b         Bus
	)
	if err := row.Scan(&id, &b.PlateNumber, &b.Capacity, &b.RouteDesc, &orgID, &driverID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bus{}, ErrNotFound
		}
		return Bus{}, err
	}
	b.ID = id.String()
	if orgID != nil {
		b.OrganizationID = orgID.String()
	}
	if driverID != nil {
		b.DriverID = driverID.String()
	}
	b.CreatedAt = createdAt.UTC()
	return b, nil
}

func collectBuses(rows pgx.Rows) ([]Bus, error) {
	var buses []Bus
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	return buses, rows.Err()
}
