package organization

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/movesmart/transit/internal/apperr"
)

// ErrNotFound is returned when no organization matches the lookup.
var ErrNotFound = errors.New("organization not found")

// Organization is a transit operator owning buses.
type Organization struct {
	ID            string
	Name          string
	Address       string
	ContactNumber string
	Email         string
	CreatedAt     time.Time
}

// Repository persists organizations.
type Repository interface {
	Create(ctx context.Context, org Organization) error
	Get(ctx context.Context, id string) (Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, org Organization) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed organization repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, org Organization) error {
	orgID, err := uuid.Parse(org.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO organizations (id, name, address, contact_number, email, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		orgID, org.Name, org.Address, org.ContactNumber, org.Email, org.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Organization, error) {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return Organization{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, address, contact_number, email, created_at
        FROM organizations WHERE id = $1`, orgID)
	return scanOrganization(row)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Organization, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address, contact_number, email, created_at
        FROM organizations ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orgs []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, org Organization) error {
	orgID, err := uuid.Parse(org.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE organizations SET name = $1, address = $2, contact_number = $3, email = $4
        WHERE id = $5`, org.Name, org.Address, org.ContactNumber, org.Email, orgID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrganization(row interface{ Scan(dest ...any) error }) (Organization, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		org       Organization
	)
	if err := row.Scan(&id, &org.Name, &org.Address, &org.ContactNumber, &org.Email, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, err
	}
	org.ID = id.String()
	org.CreatedAt = createdAt.UTC()
	return org, nil
}

type memoryRepository struct {
	mu   sync.RWMutex
	orgs map[string]Organization
}

// NewMemoryRepository builds an in-memory organization store.
func NewMemoryRepository() Repository {
	return &memoryRepository{orgs: make(map[string]Organization)}
}

func (r *memoryRepository) Create(_ context.Context, org Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgs[org.ID] = org
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.orgs[id]
	if !ok {
		return Organization{}, ErrNotFound
	}
	return org, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orgs := make([]Organization, 0, len(r.orgs))
	for _, org := range r.orgs {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].CreatedAt.Before(orgs[j].CreatedAt) })
	return orgs, nil
}

func (r *memoryRepository) Update(_ context.Context, org Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return ErrNotFound
	}
	r.orgs[org.ID] = org
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[id]; !ok {
		return ErrNotFound
	}
	delete(r.orgs, id)
	return nil
}

// Service manages organization lifecycle.
type Service struct {
	repo Repository
}

// NewService creates an organization service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create an organization.
type CreateInput struct {
	Name          string
	Address       string
	ContactNumber string
	Email         string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Organization, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Organization{}, apperr.Validation("name is required and cannot be empty")
	}
	org := Organization{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(input.Name),
		Address:       strings.TrimSpace(input.Address),
		ContactNumber: strings.TrimSpace(input.ContactNumber),
		Email:         strings.TrimSpace(input.Email),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return Organization{}, err
	}
	return org, nil
}

func (s *Service) Get(ctx context.Context, id string) (Organization, error) {
	org, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Organization{}, apperr.NotFound("Organization not found with ID: " + id)
	}
	return org, err
}

func (s *Service) List(ctx context.Context) ([]Organization, error) {
	return s.repo.List(ctx)
}

// Update applies non-empty overrides to a stored organization.
func (s *Service) Update(ctx context.Context, id string, input CreateInput) (Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	if v := strings.TrimSpace(input.Name); v != "" {
		org.Name = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		org.Address = v
	}
	if v := strings.TrimSpace(input.ContactNumber); v != "" {
		org.ContactNumber = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		org.Email = v
	}
	if err := s.repo.Update(ctx, org); err != nil {
		return Organization{}, err
	}
	return org, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Organization not found with ID: " + id)
		}
		return err
	}
	return nil
}
