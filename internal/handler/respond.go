package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/internal/service"
)

// Response envelope shared by all endpoints.
type envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

func respondData(c *fiber.Ctx, data any) error {
	return c.JSON(envelope{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(envelope{Success: true, Data: data, Message: message})
}

func respondList(c *fiber.Ctx, data any, count int) error {
	return c.JSON(envelope{Success: true, Data: data, Count: &count})
}

func respondPage(c *fiber.Ctx, data any, p model.Pagination) error {
	return c.JSON(envelope{Success: true, Data: data, Pagination: &p})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Success: false, Message: message})
}

// respondValidation enumerates every violated field, not just the first.
func respondValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(envelope{
		Success: false,
		Message: "Validation error",
		Errors:  formatValidationErrors(err),
	})
}

// formatValidationErrors converts validator errors into one message
// per violated field. Field names come from the json tag (registered
// in the validator package).
func formatValidationErrors(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{"invalid request"}
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "notblank":
			msgs = append(msgs, fmt.Sprintf("%s cannot be blank", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s cannot exceed %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "hexcolor":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid hex color code", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return msgs
}

// respondServiceError maps domain failures onto status codes and logs
// anything unexpected. Not-found covers malformed ids as well.
func respondServiceError(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, service.ErrLevelNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrItemNotFound):
		return respondError(c, fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateOrder),
		errors.Is(err, service.ErrLevelOverlap),
		errors.Is(err, service.ErrTaskFull):
		return respondError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDateOrder),
		errors.Is(err, service.ErrTaskExpired),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrInvalidRequest):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		return respondError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// query parameter helpers

func queryBoolPtr(c *fiber.Ctx, key string) *bool {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	b := v == "true"
	return &b
}

func queryIntPtr(c *fiber.Ctx, key string) *int {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func queryIntDefault(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// pageWindow parses page/limit with defaults and returns the offset.
func pageWindow(c *fiber.Ctx, defaultLimit int) (page, limit, offset int) {
	page = queryIntDefault(c, "page", 1)
	limit = queryIntDefault(c, "limit", defaultLimit)
	return page, limit, (page - 1) * limit
}
