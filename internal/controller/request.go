package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the JSON body; an empty body leaves out untouched.
func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func queryInt(ctx *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be an integer")
	}
	return n, nil
}

// queryBool accepts true/1/yes and false/0/no; anything else means no filter.
func queryBool(ctx *fiber.Ctx, key string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(ctx.Query(key))) {
	case "true", "1", "yes":
		v = true
	case "false", "0", "no":
		v = false
	default:
		return nil
	}
	return &v
}

// queryTime accepts RFC3339 timestamps or plain dates (YYYY-MM-DD, UTC).
func queryTime(ctx *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be an RFC3339 timestamp")
}
