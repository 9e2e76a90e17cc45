package middleware

import (
	"github.com/fadilmartias/talent-match/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ActorHeader carries the authenticated profile id, set by the auth proxy in
// front of the service.
const ActorHeader = "X-Actor-ID"

const actorKey = "actor_id"

// RequireActor rejects requests without a valid actor id.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(ActorHeader)
		if raw == "" {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "missing " + ActorHeader + " header",
			})
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "invalid " + ActorHeader + " header",
			}, err)
		}
		c.Locals(actorKey, id)
		return c.Next()
	}
}

// ActorID returns the id stored by RequireActor, or uuid.Nil.
func ActorID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(actorKey).(uuid.UUID)
	return id
}
