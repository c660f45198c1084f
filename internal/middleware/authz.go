package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

// Rule binds a path pattern and HTTP method to a role requirement. A pattern
// is either an exact path or a prefix ending in "/*". An empty Method
// matches every method. Public rules skip authorization entirely; a rule
// with no roles admits any authenticated principal.
type Rule struct {
	Method string
	Path   string
	Roles  []identity.Role
	Public bool
}

// Policy is an ordered rule table evaluated first-match-wins. Requests that
// match no rule require some authenticated principal.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from ordered rules.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

func (p *Policy) match(method, path string) (Rule, bool) {
	// Fiber routes "/api/trips/" to the same handler as "/api/trips", so the
	// rule table must see one canonical form or exact rules could be
	// sidestepped with a trailing slash.
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if matchPath(rule.Path, path) {
			return rule, true
		}
	}
	return Rule{}, false
}

func matchPath(pattern, path string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

// Authorize evaluates the policy against the principal bound by
// Authenticate. OPTIONS requests are always public so cross-origin
// preflights never fail. An anonymous caller on a protected rule gets 401;
// an authenticated caller lacking the role gets 403. The distinction is
// kept on purpose.
func Authorize(policy *Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		rule, matched := policy.match(c.Method(), c.Path())
		if matched && rule.Public {
			return c.Next()
		}

		principal, authenticated := PrincipalFrom(c)
		if !authenticated {
			return apperr.Unauthorized("Authentication required")
		}
		if matched && len(rule.Roles) > 0 && !principal.HasRole(rule.Roles...) {
			return apperr.Forbidden("Access denied: insufficient permissions")
		}
		return c.Next()
	}
}
