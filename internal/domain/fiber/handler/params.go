package handler

import (
	"github.com/fadilmartias/talent-match/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseUUID(c.Params(name), name)
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, util.NewFormError("invalid "+field, map[string]string{field: "must be a valid UUID"})
	}
	return id, nil
}
