package history

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			if v, ok := c.Locals("user_id").(string); ok {
				userID = v
			}
		}
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}

		sessions, err := svc.ListSessions(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sessions)
	})

	r.Get("/sessions/:id", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.GetSession(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.JSON(sess)
	})

	r.Delete("/sessions/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteSession(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
