package middleware

import (
	"strconv"
	"time"

	"go-flowershop-admin/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records every request by route pattern, so /orders/1 and
// /orders/2 share one series.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := ""
		if route := c.Route(); route != nil {
			path = route.Path
		}
		m.ObserveRequest(c.Method(), path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
