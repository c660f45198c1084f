package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/auth"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/user"
)

const principalLocalsKey = "principal"

// Authenticate verifies bearer tokens and binds the resolved principal to
// the request. Per request the steps run strictly in order: public-path
// check, token extraction, verification, identity resolution, principal
// binding. A missing token is not an error here; AccessPolicy decides later
// whether the route tolerates an anonymous caller.
func Authenticate(codec *auth.Codec, users *user.Service, publicPrefixes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		path := c.Path()
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return c.Next()
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		verified, err := codec.Verify(token)
		if err != nil {
			// Uniform message: expiry, tampering and malformed input are
			// indistinguishable to the caller.
			return apperr.InvalidToken().WithCause(err)
		}

		u, err := users.FindByIdentifier(c.UserContext(), verified.Subject)
		if err != nil {
			// Subject no longer resolves; treat as unauthenticated and let
			// the policy reject the request if the route needs a principal.
			return c.Next()
		}

		principal := identity.Principal{UserID: u.ID, Identifier: verified.Subject, Role: u.Role}
		c.Locals(principalLocalsKey, principal)
		c.SetUserContext(identity.WithPrincipal(c.UserContext(), principal))
		return c.Next()
	}
}

// PrincipalFrom returns the principal bound to the request, if any.
func PrincipalFrom(c *fiber.Ctx) (identity.Principal, bool) {
	principal, ok := c.Locals(principalLocalsKey).(identity.Principal)
	return principal, ok
}
