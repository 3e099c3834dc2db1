package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"employee-directory/internal/apperror"
	"employee-directory/internal/audit"
	"employee-directory/internal/employee"
	"employee-directory/internal/metrics"
)

type Deps struct {
	Employees   employee.Store
	DB          *gorm.DB
	Metrics     *metrics.Metrics
	CORSOrigins []string
	// AccessLog turns on the per-request log line.
	AccessLog bool
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "employee-directory",
		ErrorHandler: ErrorHandler,
	})

	// metrics wraps recover so recovered panics are counted as 500s
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
	}
	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(deps.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/healthcheck", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api")
	registerEmployees(api, deps.Employees)
	// unprefixed paths, kept for clients that call /employees directly
	registerEmployees(app, deps.Employees)

	api.Get("/departments", employee.ListDepartmentsHandler())
	if deps.DB != nil {
		api.Get("/audit-logs", audit.ListAuditLogsHandler(deps.DB))
	}

	return app
}

// registerEmployees wires the employee routes; the fixed paths go before
// "/:id".
func registerEmployees(r fiber.Router, store employee.Store) {
	r.Get("/employees", employee.ListEmployeesHandler(store))
	r.Get("/employees/search", employee.ListEmployeesHandler(store))
	r.Get("/employees/export", employee.ExportEmployeesHandler(store))
	r.Post("/employees", employee.CreateEmployeeHandler(store))
	r.Get("/employees/:id", employee.GetEmployeeHandler(store))
	r.Put("/employees/:id", employee.UpdateEmployeeHandler(store))
	r.Patch("/employees/:id", employee.UpdateEmployeeHandler(store))
	r.Delete("/employees/:id", employee.DeleteEmployeeHandler(store))
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	var validation *apperror.ValidationError
	var notFound *apperror.NotFoundError
	var fe *fiber.Error

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": validation.Fields,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": notFound.Error(),
		})
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	log.Errorf("unexpected error on %s %s: %v", c.Method(), c.OriginalURL(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
