package api

import (
	"strings"

	"github.com/example/task-tracker/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// actorKey holds the authenticated user's ID in the request locals.
const actorKey = "actorID"

// RequireActor rejects requests without a valid bearer token. Accepted
// requests carry the caller's user ID for the task handlers.
func RequireActor(actors auth.ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c.Get(fiber.HeaderAuthorization))
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(failed(problem))
		}

		actor, err := actors.ResolveActor(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(failed("Invalid or expired token"))
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// problem is the client-facing message when the header is unusable.
func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "Authorization header is required"
	}
	rest, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", "Invalid authorization header format. Use: Bearer <token>"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", "Token is required"
	}
	return token, ""
}

// actorID returns the user ID recorded by RequireActor.
func actorID(c *fiber.Ctx) string {
	actor, _ := c.Locals(actorKey).(string)
	return actor
}
