package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hoplink/hoplink/internal"
)

// Response is the envelope every dashboard API call returns. Data is an
// explicit null on failures and on calls with nothing to return.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: "success", Message: message, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Status: "error", Message: message, Data: nil})
}

// CNAMEInstructions tell the domain owner which record to create.
type CNAMEInstructions struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type domainPayload struct {
	ID             string            `json:"id"`
	Domain         string            `json:"domain"`
	Subdomain      string            `json:"subdomain"`
	Method         string            `json:"method"`
	Status         string            `json:"status"`
	VerifiedAt     *time.Time        `json:"verified_at"`
	LastVerifiedAt *time.Time        `json:"last_verified_at"`
	CreatedAt      time.Time         `json:"created_at"`
	Instructions   CNAMEInstructions `json:"instructions"`
}

func toDomainPayload(rec *internal.DomainVerification) domainPayload {
	return domainPayload{
		ID:             rec.ID,
		Domain:         rec.Domain,
		Subdomain:      rec.Subdomain,
		Method:         rec.Method,
		Status:         string(rec.Status),
		VerifiedAt:     rec.VerifiedAt,
		LastVerifiedAt: rec.LastVerifiedAt,
		CreatedAt:      rec.CreatedAt,
		Instructions: CNAMEInstructions{
			Name:  rec.Subdomain,
			Value: rec.CNAMETarget,
		},
	}
}
