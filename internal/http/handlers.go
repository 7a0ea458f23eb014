package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/service"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/strategy"
)

// PlanComparison is the compare-all response body.
type PlanComparison struct {
	PricePlanComparisons map[string]domain.Decimal `json:"pricePlanComparisons"`
}

func Register(app *fiber.App, svcs *service.Services) {
	app.Use(requestLogger)
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	readings := app.Group("/readings")
	readings.Post("/store", func(c *fiber.Ctx) error {
		var body domain.MeterReadings
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if err := svcs.Readings.Store(c.UserContext(), body); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	readings.Get("/meters", func(c *fiber.Ctx) error {
		meters, err := svcs.Readings.Meters(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"smartMeterIds": meters})
	})
	readings.Get("/read/:smartMeterId", func(c *fiber.Ctx) error {
		items, ok, err := svcs.Readings.Readings(c.UserContext(), c.Params("smartMeterId"))
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return notFound(c)
		}
		return c.JSON(items)
	})

	plans := app.Group("/price-plans")
	plans.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(svcs.PricePlans.Catalog().Plans())
	})
	plans.Get("/compare-all/:smartMeterId", func(c *fiber.Ctx) error {
		costs, ok, err := svcs.PricePlans.CostsPerPlan(c.UserContext(), c.Params("smartMeterId"))
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return notFound(c)
		}
		return c.JSON(PlanComparison{PricePlanComparisons: costs})
	})
	plans.Get("/recommend/:smartMeterId", func(c *fiber.Ctx) error {
		limit, err := intQuery(c, "limit", 0)
		if err != nil {
			return writeError(c, err)
		}
		recommended, ok, err := svcs.PricePlans.Recommend(c.UserContext(), c.Params("smartMeterId"), limit)
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return notFound(c)
		}
		return c.JSON(recommended)
	})
	plans.Get("/usage/:smartMeterId", func(c *fiber.Ctx) error {
		day, err := intQuery(c, "day", 1)
		if err != nil {
			return writeError(c, err)
		}
		summary, ok, err := svcs.PricePlans.UsageSummary(c.UserContext(), c.Params("smartMeterId"), day)
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return notFound(c)
		}
		return c.JSON(summary)
	})
	plans.Post("/reports/:smartMeterId", func(c *fiber.Ctx) error {
		if svcs.Reports == nil {
			return reportsDisabled(c)
		}
		report, ok, err := svcs.Reports.Publish(c.UserContext(), c.Params("smartMeterId"))
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return notFound(c)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	})
	plans.Get("/reports/:smartMeterId", func(c *fiber.Ctx) error {
		if svcs.Reports == nil {
			return reportsDisabled(c)
		}
		keys, err := svcs.Reports.List(c.UserContext(), c.Params("smartMeterId"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"reports": keys})
	})
	plans.Get("/:planName", func(c *fiber.Ctx) error {
		plan, ok := svcs.PricePlans.Catalog().Lookup(c.Params("planName"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown price plan " + c.Params("planName")})
		}
		return c.JSON(plan)
	})
}

var errBadQuery = errors.New("invalid query parameter")

func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errBadQuery
	}
	return v, nil
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no readings for smart meter " + c.Params("smartMeterId")})
}

func reportsDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cloud services are disabled"})
}

func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, service.ErrInvalidDays),
		errors.Is(err, service.ErrInvalidReadings):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrMetersUnsupported):
		status = fiber.StatusNotImplemented
	case errors.Is(err, strategy.ErrEmptyReadingSet),
		errors.Is(err, strategy.ErrDegenerateTimeRange):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return err
}
