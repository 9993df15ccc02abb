// Package http provides the fiber surface of the billing engine: shared
// response helpers and the session API the back-office UI talks to.
package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kiranalabs/lib-billing/billing"
)

// ErrorResponse is the error body schema shared by all handlers.
type ErrorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// OK sends an HTTP 200 OK response with a custom body.
func OK(c *fiber.Ctx, s any) error {
	return c.Status(http.StatusOK).JSON(s)
}

// Created sends an HTTP 201 Created response with a custom body.
func Created(c *fiber.Ctx, s any) error {
	return c.Status(http.StatusCreated).JSON(s)
}

// NoContent sends an HTTP 204 No Content response without a body.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// BadRequest sends an HTTP 400 Bad Request with a structured error body.
func BadRequest(c *fiber.Ctx, code, field, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: code, Field: field, Message: message})
}

// NotFound sends an HTTP 404 Not Found with a structured error body.
func NotFound(c *fiber.Ctx, code, message string) error {
	return c.Status(http.StatusNotFound).JSON(ErrorResponse{Code: code, Message: message})
}

// WriteDomainError maps a billing domain error onto the appropriate
// status code and structured body. Non-domain errors become a generic 500.
func WriteDomainError(c *fiber.Ctx, err error) error {
	var domainErr billing.DomainError
	if !errors.As(err, &domainErr) {
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    "internal_error",
			Message: "internal server error",
		})
	}

	body := ErrorResponse{
		Code:    string(domainErr.Code),
		Field:   domainErr.Field,
		Message: domainErr.Message,
	}

	return c.Status(statusFor(domainErr.Code)).JSON(body)
}

func statusFor(code billing.ErrorCode) int {
	switch code {
	case billing.ErrorInvalidInput, billing.ErrorValidationFailed:
		return http.StatusBadRequest
	case billing.ErrorNotFound:
		return http.StatusNotFound
	case billing.ErrorSessionClosed:
		return http.StatusGone
	case billing.ErrorCalculationFailed, billing.ErrorResolutionFailed, billing.ErrorSubmissionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
