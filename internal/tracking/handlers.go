package tracking

import (
	"errors"

	"backend-rucktracker/internal/session"
	"backend-rucktracker/internal/telemetry"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		var req StartRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserID == "" || req.UserWeightKg <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and user_weight_kg required")
		}
		info, err := svc.StartSession(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	})

	r.Post("/sessions/:id/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix telemetry.LocationFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := svc.SubmitFix(c.Params("id"), fix)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(result)
	})

	r.Post("/sessions/:id/pause", authMiddleware, func(c *fiber.Ctx) error {
		result, err := svc.Pause(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(result)
	})

	r.Post("/sessions/:id/resume", authMiddleware, func(c *fiber.Ctx) error {
		result, err := svc.Resume(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(result)
	})

	r.Post("/sessions/:id/idle", authMiddleware, func(c *fiber.Ctx) error {
		var req IdleDecision
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, stop, err := svc.ConfirmIdle(c.Context(), c.Params("id"), req.End)
		if err != nil {
			return sessionError(err)
		}
		if stop != nil {
			return c.JSON(stop)
		}
		return c.JSON(result)
	})

	r.Post("/sessions/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		resp, err := svc.Stop(c.Context(), c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(resp)
	})

	r.Get("/sessions/:id/snapshot", func(c *fiber.Ctx) error {
		snap, err := svc.Snapshot(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snap)
	})
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSessionEnded),
		errors.Is(err, session.ErrNotPaused),
		errors.Is(err, session.ErrAlreadyPaused),
		errors.Is(err, session.ErrNoIdlePending):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
