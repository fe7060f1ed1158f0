package handler

import (
	"github.com/gofiber/fiber/v2"
)

// FiberHandler adapts the Router to a fiber handler.
func FiberHandler(r *Router) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := r.Handle(c.UserContext(), Request{
			Method:         c.Method(),
			Path:           c.Path(),
			PathParameters: c.AllParams(),
			Body:           string(c.Body()),
		})

		for k, v := range resp.Headers {
			c.Set(k, v)
		}
		return c.Status(resp.StatusCode).SendString(resp.Body)
	}
}

// RegisterRoutes mounts the product routes on app. guard runs in front of
// the mutating routes; anything unmatched still reaches the Router so it
// answers with the standard bad-request body.
func RegisterRoutes(app *fiber.App, r *Router, guard fiber.Handler) {
	h := FiberHandler(r)

	app.Get("/product/:id", h)
	app.Post("/product", guard, h)
	app.Put("/product/:id/transfer", guard, h)
	app.Put("/product/:id/status", guard, h)

	app.Use(h)
}
