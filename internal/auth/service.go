package auth

import (
	"context"
	"strings"
	"time"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/user"
)

// Service handles login and registration and issues tokens on success.
type Service struct {
	users *user.Service
	buses *bus.Service
	codec *Codec
}

// NewService creates the authentication service.
func NewService(users *user.Service, buses *bus.Service, codec *Codec) *Service {
	return &Service{users: users, buses: buses, codec: codec}
}

// TokenResult is an issued token plus its remaining lifetime in seconds.
type TokenResult struct {
	Token     string
	ExpiresIn int64
}

// Login verifies credentials and issues a token. Unknown identifier and
// wrong password produce the identical error so callers cannot probe which
// identifiers exist.
func (s *Service) Login(ctx context.Context, identifier, password string) (user.User, TokenResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return user.User{}, TokenResult{}, apperr.Validation("userEmail is required")
	}
	if password == "" {
		return user.User{}, TokenResult{}, apperr.Validation("password is required")
	}

	u, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return user.User{}, TokenResult{}, apperr.InvalidCredentials()
	}
	if !s.users.VerifyPassword(u, password) {
		return user.User{}, TokenResult{}, apperr.InvalidCredentials()
	}

	token, err := s.issue(u)
	if err != nil {
		return user.User{}, TokenResult{}, err
	}
	return u, token, nil
}

// RegisterInput captures data for the registration endpoints.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// Register creates an account and issues a token. ADMIN is refused here on
// purpose; the privileged /register/admin endpoint exists for that, which
// keeps admin creation auditable and separately protectable.
func (s *Service) Register(ctx context.Context, input RegisterInput) (user.User, TokenResult, error) {
	role := identity.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		if strings.EqualFold(strings.TrimSpace(input.Role), string(identity.RoleAdmin)) {
			return user.User{}, TokenResult{}, apperr.Validation("ADMIN registration is not allowed through this endpoint. Use /api/auth/register/admin instead.")
		}
		parsed, err := identity.ParseRole(input.Role)
		if err != nil {
			return user.User{}, TokenResult{}, apperr.Validation(err.Error())
		}
		role = parsed
	}
	return s.create(ctx, input, role)
}

// RegisterAdmin creates an ADMIN account through the dedicated endpoint.
func (s *Service) RegisterAdmin(ctx context.Context, input RegisterInput) (user.User, TokenResult, error) {
	return s.create(ctx, input, identity.RoleAdmin)
}

// RegisterDriver creates a DRIVER account and binds it to an unassigned bus
// identified by plate number.
func (s *Service) RegisterDriver(ctx context.Context, input RegisterInput, busPlateNumber string) (user.User, TokenResult, error) {
	plate := strings.TrimSpace(busPlateNumber)
	if plate == "" {
		return user.User{}, TokenResult{}, apperr.Validation("busPlateNumber is required and cannot be empty")
	}

	b, err := s.buses.GetByPlate(ctx, plate)
	if err != nil {
		return user.User{}, TokenResult{}, err
	}
	if b.Assigned() {
		return user.User{}, TokenResult{}, apperr.Validation("Bus with plate number " + plate + " is already assigned to a driver")
	}

	u, token, err := s.create(ctx, input, identity.RoleDriver)
	if err != nil {
		return user.User{}, TokenResult{}, err
	}
	if _, err := s.buses.AssignDriver(ctx, b.ID, u.ID); err != nil {
		return user.User{}, TokenResult{}, err
	}
	return u, token, nil
}

func (s *Service) create(ctx context.Context, input RegisterInput, role identity.Role) (user.User, TokenResult, error) {
	u, err := s.users.Create(ctx, user.CreateInput{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		Role:     role,
	})
	if err != nil {
		return user.User{}, TokenResult{}, err
	}
	token, err := s.issue(u)
	if err != nil {
		return user.User{}, TokenResult{}, err
	}
	return u, token, nil
}

// issue signs a token whose subject is the user's login identifier and whose
// role claim reflects the role at issuance time. A later role change does
// not affect tokens already in flight; they age out at the TTL horizon.
func (s *Service) issue(u user.User) (TokenResult, error) {
	token, exp, err := s.codec.Issue(u.Identifier(), map[string]string{"role": string(u.Role)})
	if err != nil {
		return TokenResult{}, err
	}
	return TokenResult{Token: token, ExpiresIn: int64(time.Until(exp).Seconds())}, nil
}
