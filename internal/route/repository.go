package route

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no route matches the lookup.
var ErrNotFound = errors.New("route not found")

// Repository persists routes and the route-bus association.
type Repository interface {
	Create(ctx context.Context, route Route) error
	Get(ctx context.Context, id string) (Route, error)
	List(ctx context.Context) ([]Route, error)
	ListByBus(ctx context.Context, busID string) ([]Route, error)
	Update(ctx context.Context, route Route) error
	Delete(ctx context.Context, id string) error
	AttachBus(ctx context.Context, routeID, busID string) error
	DetachBus(ctx context.Context, routeID, busID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed route repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, route Route) error {
	routeID, err := uuid.Parse(route.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO routes (id, code, start_station, end_station, distance_km, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		routeID, route.Code, route.StartStation, route.EndStation, route.DistanceKM, route.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Route, error) {
	routeID, err := uuid.Parse(id)
	if err != nil {
		return Route{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, code, start_station, end_station, distance_km, created_at
        FROM routes WHERE id = $1`, routeID)
	route, err := scanRoute(row)
	if err != nil {
		return Route{}, err
	}
	route.BusIDs, err = r.busIDs(ctx, routeID)
	return route, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Route, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, start_station, end_station, distance_km, created_at
        FROM routes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range routes {
		id, _ := uuid.Parse(routes[i].ID)
		busIDs, err := r.busIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		routes[i].BusIDs = busIDs
	}
	return routes, nil
}

func (r *PostgresRepository) ListByBus(ctx context.Context, busID string) ([]Route, error) {
	bID, err := uuid.Parse(busID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT r.id, r.code, r.start_station, r.end_station, r.distance_km, r.created_at
        FROM routes r JOIN route_bus rb ON rb.route_id = r.id WHERE rb.bus_id = $1 ORDER BY r.created_at`, bID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var routes []Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, route Route) error {
	routeID, err := uuid.Parse(route.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE routes SET code = $1, start_station = $2, end_station = $3, distance_km = $4
        WHERE id = $5`, route.Code, route.StartStation, route.EndStation, route.DistanceKM, routeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	routeID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM route_bus WHERE route_id = $1`, routeID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM routes WHERE id = $1`, routeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) AttachBus(ctx context.Context, routeID, busID string) error {
	rID, err := uuid.Parse(routeID)
	if err != nil {
		return ErrNotFound
	}
	bID, err := uuid.Parse(busID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO route_bus (route_id, bus_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, rID, bID)
	return err
}

func (r *PostgresRepository) DetachBus(ctx context.Context, routeID, busID string) error {
	rID, err := uuid.Parse(routeID)
	if err != nil {
		return ErrNotFound
	}
	bID, err := uuid.Parse(busID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM route_bus WHERE route_id = $1 AND bus_id = $2`, rID, bID)
	return err
}

func (r *PostgresRepository) busIDs(ctx context.Context, routeID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT bus_id FROM route_bus WHERE route_id = $1`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}

func scanRoute(row interface{ Scan(dest ...any) error }) (Route, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		route     Route
	)
	if err := row.Scan(&id, &route.Code, &route.StartStation, &route.EndStation, &route.DistanceKM, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Route{}, ErrNotFound
		}
		return Route{}, err
	}
	route.ID = id.String()
	route.CreatedAt = createdAt.UTC()
	return route, nil
}
