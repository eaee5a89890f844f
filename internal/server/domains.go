package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hoplink/hoplink/internal"
	"github.com/hoplink/hoplink/internal/verify"
)

type addDomainRequest struct {
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
}

func (s *Server) handleAddDomain(c *fiber.Ctx) error {
	var req addDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}

	rec, err := s.domains.Add(c.Context(), accountID(c), req.Domain, req.Subdomain)
	switch {
	case errors.Is(err, verify.ErrInvalidDomain):
		return fail(c, fiber.StatusBadRequest, "invalid domain syntax")
	case errors.Is(err, verify.ErrInvalidSub):
		return fail(c, fiber.StatusBadRequest, "invalid subdomain syntax")
	case errors.Is(err, verify.ErrDuplicateDomain):
		return fail(c, fiber.StatusBadRequest, "domain already registered")
	case err != nil:
		slog.Error("add domain failed", "domain", req.Domain, "err", err)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	return ok(c, fiber.StatusCreated, "domain registered, pending verification", toDomainPayload(rec))
}

func (s *Server) handleVerifyDomain(c *fiber.Ctx) error {
	rec, err := s.domains.Verify(c.Context(), accountID(c), c.Params("id"))
	if errors.Is(err, verify.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "domain verification not found")
	} else if err != nil {
		slog.Error("verify domain failed", "id", c.Params("id"), "err", err)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	msg := "domain verified"
	if rec.Status != internal.StatusVerified {
		msg = "verification failed, check your CNAME record and retry"
	}
	return ok(c, fiber.StatusOK, msg, toDomainPayload(rec))
}

func (s *Server) handleListDomains(c *fiber.Ctx) error {
	recs, err := s.domains.List(c.Context(), accountID(c))
	if err != nil {
		slog.Error("list domains failed", "err", err)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	payload := make([]domainPayload, 0, len(recs))
	for i := range recs {
		payload = append(payload, toDomainPayload(&recs[i]))
	}
	return ok(c, fiber.StatusOK, "domains", payload)
}

func (s *Server) handleGetDomain(c *fiber.Ctx) error {
	rec, err := s.domains.Get(c.Context(), accountID(c), c.Params("id"))
	if errors.Is(err, verify.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "domain verification not found")
	} else if err != nil {
		slog.Error("get domain failed", "id", c.Params("id"), "err", err)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
	return ok(c, fiber.StatusOK, "domain", toDomainPayload(rec))
}

func (s *Server) handleDeleteDomain(c *fiber.Ctx) error {
	err := s.domains.Delete(c.Context(), accountID(c), c.Params("id"))
	if errors.Is(err, verify.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "domain verification not found")
	} else if err != nil {
		slog.Error("delete domain failed", "id", c.Params("id"), "err", err)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
	return ok(c, fiber.StatusOK, "domain deleted", nil)
}
