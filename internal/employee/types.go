package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"employee-directory/internal/models"
)

const dateLayout = "2006-01-02"

// CreateInput carries every writable field. The json tags name fields in
// validation errors.
type CreateInput struct {
	Name       string            `json:"name" validate:"required,max=100"`
	Email      string            `json:"email" validate:"required,max=254,email"`
	Position   string            `json:"position" validate:"required,max=100"`
	Department models.Department `json:"department" validate:"required,department"`
	Phone      string            `json:"phone" validate:"max=20"`
	DateJoined *time.Time        `json:"date_joined" validate:"required"`
	Salary     *decimal.Decimal  `json:"salary" validate:"required"`
}

// UpdateInput is a partial update: nil fields keep their stored value.
type UpdateInput struct {
	Name       *string
	Email      *string
	Position   *string
	Department *models.Department
	Phone      *string
	DateJoined *time.Time
	Salary     *decimal.Decimal
}

type Filter struct {
	// Query is matched case-insensitively against name, department and
	// position. Empty means no filtering.
	Query      string
	Department *models.Department
	JoinedFrom *time.Time
	JoinedTo   *time.Time
}

type Response struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Position        string            `json:"position"`
	Department      models.Department `json:"department"`
	DepartmentLabel string            `json:"department_label"`
	Phone           string            `json:"phone"`
	DateJoined      string            `json:"date_joined"`
	Salary          string            `json:"salary"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func ToResponse(e models.Employee) Response {
	return Response{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Position:        e.Position,
		Department:      e.Department,
		DepartmentLabel: e.Department.Label(),
		Phone:           e.Phone,
		DateJoined:      e.DateJoined.Format(dateLayout),
		Salary:          e.Salary.StringFixed(2),
		CreatedAt:       e.CreatedAt.UTC(),
		UpdatedAt:       e.UpdatedAt.UTC(),
	}
}

func (in CreateInput) normalize() CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Position = strings.TrimSpace(in.Position)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func (in CreateInput) model() models.Employee {
	e := models.Employee{
		Name:       in.Name,
		Email:      in.Email,
		Position:   in.Position,
		Department: in.Department,
		Phone:      in.Phone,
	}
	in.copyTo(&e)
	return e
}

// copyTo writes the validated input onto an existing record, leaving id and
// timestamps alone.
func (in CreateInput) copyTo(e *models.Employee) {
	e.Name = in.Name
	e.Email = in.Email
	e.Position = in.Position
	e.Department = in.Department
	e.Phone = in.Phone
	if in.DateJoined != nil {
		e.DateJoined = *in.DateJoined
	}
	if in.Salary != nil {
		e.Salary = *in.Salary
	}
}

func inputFrom(e models.Employee) CreateInput {
	dateJoined := e.DateJoined
	salary := e.Salary
	return CreateInput{
		Name:       e.Name,
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
		Phone:      e.Phone,
		DateJoined: &dateJoined,
		Salary:     &salary,
	}
}

// ApplyTo overlays the set fields of u onto base.
func (u UpdateInput) ApplyTo(base CreateInput) CreateInput {
	if u.Name != nil {
		base.Name = *u.Name
	}
	if u.Email != nil {
		base.Email = *u.Email
	}
	if u.Position != nil {
		base.Position = *u.Position
	}
	if u.Department != nil {
		base.Department = *u.Department
	}
	if u.Phone != nil {
		base.Phone = *u.Phone
	}
	if u.DateJoined != nil {
		base.DateJoined = u.DateJoined
	}
	if u.Salary != nil {
		base.Salary = u.Salary
	}
	return base
}
