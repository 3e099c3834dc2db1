package employee

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"employee-directory/internal/apperror"
	"employee-directory/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store is the part of Repository the HTTP layer needs.
type Store interface {
	Create(ctx context.Context, in CreateInput) (models.Employee, error)
	Get(ctx context.Context, id uint) (models.Employee, error)
	Find(ctx context.Context, filter Filter) ([]models.Employee, error)
	Update(ctx context.Context, id uint, in UpdateInput) (models.Employee, error)
	Delete(ctx context.Context, id uint) error
}

// EmployeeRequest is the body of POST, PUT and PATCH. Salary accepts a JSON
// number or a numeric string.
type EmployeeRequest struct {
	Name       *string         `json:"name"`
	Email      *string         `json:"email"`
	Position   *string         `json:"position"`
	Department *string         `json:"department"`
	Phone      *string         `json:"phone"`
	DateJoined *string         `json:"date_joined"`
	Salary     json.RawMessage `json:"salary"`
}

type DepartmentResponse struct {
	Code  models.Department `json:"code"`
	Label string            `json:"label"`
}

// GET /api/employees?q=&department=&joined_from=&joined_to=
func ListEmployeesHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return err
		}

		employees, err := store.Find(c.UserContext(), filter)
		if err != nil {
			return err
		}

		res := make([]Response, 0, len(employees))
		for _, e := range employees {
			res = append(res, ToResponse(e))
		}
		return c.JSON(res)
	}
}

// GET /api/employees/export
func ExportEmployeesHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return err
		}

		employees, err := store.Find(c.UserContext(), filter)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteWorkbook(&buf, employees); err != nil {
			return err
		}

		c.Attachment("employees.xlsx")
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}
}

// GET /api/employees/:id
func GetEmployeeHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		employee, err := store.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(employee))
	}
}

// POST /api/employees
func CreateEmployeeHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := parseBody(c)
		if err != nil {
			return err
		}

		employee, err := store.Create(c.UserContext(), in.ApplyTo(CreateInput{}))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(employee))
	}
}

// PUT|PATCH /api/employees/:id
func UpdateEmployeeHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		in, err := parseBody(c)
		if err != nil {
			return err
		}

		employee, err := store.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(employee))
	}
}

// DELETE /api/employees/:id
func DeleteEmployeeHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := store.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/departments
func ListDepartmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := make([]DepartmentResponse, 0, len(models.Departments))
		for _, d := range models.Departments {
			res = append(res, DepartmentResponse{Code: d, Label: d.Label()})
		}
		return c.JSON(res)
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid employee id")
	}
	return uint(id), nil
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	filter := Filter{Query: c.Query("q")}
	fields := apperror.FieldErrors{}

	if raw := c.Query("department"); raw != "" {
		if d, ok := models.ParseDepartment(raw); ok {
			filter.Department = &d
		} else {
			fields.Add("department", fmtChoice(raw))
		}
	}
	if raw := c.Query("joined_from"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			filter.JoinedFrom = &t
		} else {
			fields.Add("joined_from", msgDateFormat)
		}
	}
	if raw := c.Query("joined_to"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			filter.JoinedTo = &t
		} else {
			fields.Add("joined_to", msgDateFormat)
		}
	}

	if len(fields) > 0 {
		return Filter{}, apperror.NewValidation(fields)
	}
	return filter, nil
}

// parseBody decodes the request into an UpdateInput. Values that cannot be
// typed (bad dates, non-numeric salaries) are reported per field; the
// remaining rules are checked by the repository.
func parseBody(c *fiber.Ctx) (UpdateInput, error) {
	var body EmployeeRequest
	if err := c.BodyParser(&body); err != nil {
		return UpdateInput{}, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	in := UpdateInput{
		Name:     body.Name,
		Email:    body.Email,
		Position: body.Position,
		Phone:    body.Phone,
	}
	fields := apperror.FieldErrors{}

	if body.Department != nil {
		d := models.Department(*body.Department)
		in.Department = &d
	}

	if body.DateJoined != nil {
		t, err := time.Parse(dateLayout, strings.TrimSpace(*body.DateJoined))
		if err != nil {
			fields.Add("date_joined", msgDateFormat)
		} else {
			in.DateJoined = &t
		}
	}

	if len(body.Salary) > 0 && string(body.Salary) != "null" {
		salary, err := parseSalary(body.Salary)
		if err != nil {
			fields.Add("salary", msgInvalidNum)
		} else {
			in.Salary = &salary
		}
	}

	if len(fields) > 0 {
		return UpdateInput{}, apperror.NewValidation(fields)
	}
	return in, nil
}

func parseSalary(raw json.RawMessage) (decimal.Decimal, error) {
	text := string(raw)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Decimal{}, err
		}
	}
	return decimal.NewFromString(strings.TrimSpace(text))
}
