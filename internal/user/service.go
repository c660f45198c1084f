package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

const minPasswordLength = 6

// BusAssignments is the slice of the bus domain the user service needs:
// clearing a driver's bus assignment before the driver account is deleted.
type BusAssignments interface {
	UnassignDriver(ctx context.Context, driverID string) (int64, error)
}

// Service manages user lifecycle and credentials.
type Service struct {
	repo  Repository
	buses BusAssignments
}

// NewService creates a user service. buses may be nil until wired.
func NewService(repo Repository, buses BusAssignments) *Service {
	return &Service{repo: repo, buses: buses}
}

// CreateInput captures data required to create a user.
type CreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     identity.Role
}

// Create validates input, enforces email/phone uniqueness independently,
// hashes the password and stores the user. The raw password is never stored
// or logged.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)

	if name == "" {
		return User{}, apperr.Validation("userName is required and cannot be empty")
	}
	if phone == "" {
		return User{}, apperr.Validation("userPhoneNumber is required and cannot be empty")
	}
	if len(input.Password) < minPasswordLength {
		return User{}, apperr.Validation(fmt.Sprintf("userPassword must be at least %d characters long", minPasswordLength))
	}
	role := input.Role
	if role == "" {
		role = identity.RoleUser
	}
	if _, err := identity.ParseRole(string(role)); err != nil {
		return User{}, apperr.Validation(err.Error())
	}

	if email != "" {
		if _, err := s.repo.FindByEmail(ctx, email); err == nil {
			return User{}, apperr.Validation("Email already registered")
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
	}
	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return User{}, apperr.Validation("Phone number already registered")
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("User not found with ID: " + id)
	}
	return u, err
}

// FindByIdentifier resolves a login identifier, matching the email field
// first and the phone field second.
func (s *Service) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	u, err := s.repo.FindByEmail(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	u, err = s.repo.FindByPhone(ctx, identifier)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("User not found with email or phone: " + identifier)
	}
	return u, err
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListByRole returns users holding a given role.
func (s *Service) ListByRole(ctx context.Context, role identity.Role) ([]User, error) {
	return s.repo.ListByRole(ctx, role)
}

// UpdateInput carries optional overrides; nil fields keep the stored value.
type UpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	Role     *string
}

// Update applies field overrides to a stored user, re-checking uniqueness for
// any changed email or phone.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	updated := existing

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			updated.Name = name
		}
	}
	if input.Email != nil {
		updated.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		if phone := strings.TrimSpace(*input.Phone); phone != "" {
			updated.Phone = phone
		}
	}
	if input.Role != nil && strings.TrimSpace(*input.Role) != "" {
		role, err := identity.ParseRole(*input.Role)
		if err != nil {
			return User{}, apperr.Validation(err.Error())
		}
		updated.Role = role
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < minPasswordLength {
			return User{}, apperr.Validation(fmt.Sprintf("userPassword must be at least %d characters long", minPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		updated.PasswordHash = hash
	}

	if err := s.checkUniqueness(ctx, existing, updated); err != nil {
		return User{}, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return User{}, err
	}
	return updated, nil
}

// UpdateProfile lets the authenticated user change their own name, email and
// phone; role and password are untouched.
func (s *Service) UpdateProfile(ctx context.Context, id string, name, email, phone *string) (User, error) {
	return s.Update(ctx, id, UpdateInput{Name: name, Email: email, Phone: phone})
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(oldPassword)); err != nil {
		return User{}, apperr.InvalidCredentials()
	}
	if len(newPassword) < minPasswordLength {
		return User{}, apperr.Validation(fmt.Sprintf("New password must be at least %d characters long", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = hash
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// VerifyPassword reports whether raw matches the stored hash.
func (s *Service) VerifyPassword(u User, raw string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(raw)) == nil
}

// Delete removes a user. A user assigned as a driver is first unassigned
// from every bus so no bus is left pointing at a missing driver.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == identity.RoleDriver && s.buses != nil {
		if _, err := s.buses.UnassignDriver(ctx, u.ID); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found with ID: " + id)
		}
		return err
	}
	return nil
}

func (s *Service) checkUniqueness(ctx context.Context, existing, updated User) error {
	if updated.Email != existing.Email && updated.Email != "" {
		if other, err := s.repo.FindByEmail(ctx, updated.Email); err == nil && other.ID != existing.ID {
			return apperr.Validation("Email already registered by another user")
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if updated.Phone != existing.Phone {
		if other, err := s.repo.FindByPhone(ctx, updated.Phone); err == nil && other.ID != existing.ID {
			return apperr.Validation("Phone number already registered by another user")
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}
