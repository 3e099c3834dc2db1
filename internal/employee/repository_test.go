package employee_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"employee-directory/internal/apperror"
	"employee-directory/internal/audit"
	"employee-directory/internal/database/testdb"
	"employee-directory/internal/employee"
	"employee-directory/internal/models"
)

func newRepository(t *testing.T) (*employee.Repository, *gorm.DB) {
	db := testdb.New(t)
	return employee.NewRepository(db), db
}

func input(name, email, position string, department models.Department) employee.CreateInput {
	joined := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	salary := decimal.RequireFromString("85000.50")
	return employee.CreateInput{
		Name:       name,
		Email:      email,
		Position:   position,
		Department: department,
		Phone:      "+1 555 0100",
		DateJoined: &joined,
		Salary:     &salary,
	}
}

func mustCreate(c *qt.C, repo *employee.Repository, in employee.CreateInput) models.Employee {
	created, err := repo.Create(context.Background(), in)
	c.Assert(err, qt.IsNil)
	return created
}

func names(employees []models.Employee) []string {
	out := make([]string, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.Name)
	}
	return out
}

func validationFields(c *qt.C, err error) apperror.FieldErrors {
	var verr *apperror.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue, qt.Commentf("expected ValidationError, got %v", err))
	return verr.Fields
}

func assertNotFound(c *qt.C, err error) {
	var notFound *apperror.NotFoundError
	c.Assert(err, qt.ErrorAs, &notFound)
	c.Assert(notFound.Resource, qt.Equals, "employee")
}

func TestCreateThenGet(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	in := input("Alice Finance", "alice@example.com", "Controller", models.DepartmentFinance)
	created := mustCreate(c, repo, in)

	c.Assert(created.ID, qt.Not(qt.Equals), uint(0))
	c.Assert(created.CreatedAt.IsZero(), qt.IsFalse)
	c.Assert(created.UpdatedAt.Equal(created.CreatedAt), qt.IsTrue)

	got, err := repo.Get(ctx, created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.ID, qt.Equals, created.ID)
	c.Assert(got.Name, qt.Equals, in.Name)
	c.Assert(got.Email, qt.Equals, in.Email)
	c.Assert(got.Position, qt.Equals, in.Position)
	c.Assert(got.Department, qt.Equals, in.Department)
	c.Assert(got.Phone, qt.Equals, in.Phone)
	c.Assert(got.DateJoined.Equal(*in.DateJoined), qt.IsTrue, qt.Commentf("date_joined %v", got.DateJoined))
	c.Assert(got.Salary.Equal(*in.Salary), qt.IsTrue, qt.Commentf("salary %v", got.Salary))
	c.Assert(got.CreatedAt.Equal(created.CreatedAt), qt.IsTrue)
	c.Assert(got.UpdatedAt.Equal(created.UpdatedAt), qt.IsTrue)
}

func TestCreateTrimsWhitespace(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)

	created := mustCreate(c, repo, input("  Alice  ", " alice@example.com ", " Controller ", models.DepartmentFinance))

	c.Assert(created.Name, qt.Equals, "Alice")
	c.Assert(created.Email, qt.Equals, "alice@example.com")
	c.Assert(created.Position, qt.Equals, "Controller")
}

func TestCreateDuplicateEmail(t *testing.T) {
	c := qt.New(t)
	repo, db := newRepository(t)
	ctx := context.Background()

	mustCreate(c, repo, input("Alice", "same@example.com", "Controller", models.DepartmentFinance))

	_, err := repo.Create(ctx, input("Bob", "same@example.com", "Developer", models.DepartmentIT))
	fields := validationFields(c, err)
	c.Assert(fields["email"], qt.DeepEquals, []string{"employee with this email already exists."})

	all, err := repo.List(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(names(all), qt.DeepEquals, []string{"Alice"})

	logs, err := audit.List(ctx, db, audit.Filter{EntityType: "employee"})
	c.Assert(err, qt.IsNil)
	c.Assert(logs, qt.HasLen, 1)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *employee.CreateInput)
		field   string
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(in *employee.CreateInput) { in.Name = "   " },
			field:   "name",
			message: "This field is required.",
		},
		{
			name:    "name too long",
			mutate:  func(in *employee.CreateInput) { in.Name = strings.Repeat("x", 101) },
			field:   "name",
			message: "Ensure this field has no more than 100 characters.",
		},
		{
			name:    "missing email",
			mutate:  func(in *employee.CreateInput) { in.Email = "" },
			field:   "email",
			message: "This field is required.",
		},
		{
			name:    "malformed email",
			mutate:  func(in *employee.CreateInput) { in.Email = "not-an-email" },
			field:   "email",
			message: "Enter a valid email address.",
		},
		{
			name:    "missing position",
			mutate:  func(in *employee.CreateInput) { in.Position = "" },
			field:   "position",
			message: "This field is required.",
		},
		{
			name:    "unknown department",
			mutate:  func(in *employee.CreateInput) { in.Department = "LEGAL" },
			field:   "department",
			message: `"LEGAL" is not a valid choice.`,
		},
		{
			name:    "lower-case department",
			mutate:  func(in *employee.CreateInput) { in.Department = "it" },
			field:   "department",
			message: `"it" is not a valid choice.`,
		},
		{
			name:    "padded department",
			mutate:  func(in *employee.CreateInput) { in.Department = " IT" },
			field:   "department",
			message: `" IT" is not a valid choice.`,
		},
		{
			name:    "phone too long",
			mutate:  func(in *employee.CreateInput) { in.Phone = strings.Repeat("1", 21) },
			field:   "phone",
			message: "Ensure this field has no more than 20 characters.",
		},
		{
			name:    "missing date joined",
			mutate:  func(in *employee.CreateInput) { in.DateJoined = nil },
			field:   "date_joined",
			message: "This field is required.",
		},
		{
			name:    "missing salary",
			mutate:  func(in *employee.CreateInput) { in.Salary = nil },
			field:   "salary",
			message: "This field is required.",
		},
		{
			name: "salary with three decimals",
			mutate: func(in *employee.CreateInput) {
				s := decimal.RequireFromString("100.125")
				in.Salary = &s
			},
			field:   "salary",
			message: "Ensure that there are no more than 2 decimal places.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			repo, _ := newRepository(t)

			in := input("Alice", "alice@example.com", "Controller", models.DepartmentFinance)
			tt.mutate(&in)

			_, err := repo.Create(context.Background(), in)
			fields := validationFields(c, err)
			c.Assert(fields[tt.field], qt.DeepEquals, []string{tt.message})

			all, err := repo.List(context.Background())
			c.Assert(err, qt.IsNil)
			c.Assert(all, qt.HasLen, 0)
		})
	}
}

func TestCreateReportsEveryInvalidField(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)

	_, err := repo.Create(context.Background(), employee.CreateInput{})
	fields := validationFields(c, err)

	for _, field := range []string{"name", "email", "position", "department", "date_joined", "salary"} {
		c.Assert(fields[field], qt.DeepEquals, []string{"This field is required."}, qt.Commentf("field %s", field))
	}
	c.Assert(fields["phone"], qt.IsNil)
}

func TestGetMissing(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)

	_, err := repo.Get(context.Background(), 42)
	assertNotFound(c, err)
}

func TestListOrderedByName(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)

	mustCreate(c, repo, input("Charlie", "charlie@example.com", "Clerk", models.DepartmentOperations))
	mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))
	mustCreate(c, repo, input("Bob", "bob@example.com", "Developer", models.DepartmentIT))

	all, err := repo.List(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(names(all), qt.DeepEquals, []string{"Alice", "Bob", "Charlie"})
}

func seedSearch(c *qt.C, repo *employee.Repository) {
	mustCreate(c, repo, input("Alice Finance", "alice@example.com", "Controller", models.DepartmentFinance))
	mustCreate(c, repo, input("Bob IT", "bob@example.com", "Developer", models.DepartmentIT))
	mustCreate(c, repo, input("IT Ivan", "ivan@example.com", "IT support", models.DepartmentIT))
	mustCreate(c, repo, input("Maria", "maria@example.com", "Hiring lead", models.DepartmentHR))
	mustCreate(c, repo, input("Émile Zola", "emile@example.com", "Novelist", models.DepartmentMarketing))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query    string
		expected []string
	}{
		{query: "fin", expected: []string{"Alice Finance"}},
		{query: "FIN", expected: []string{"Alice Finance"}},
		{query: "develop", expected: []string{"Bob IT"}},
		// matches name, department and position of Ivan but he appears once
		{query: "it", expected: []string{"Bob IT", "IT Ivan"}},
		{query: "hr", expected: []string{"Maria"}},
		{query: "ali", expected: []string{"Alice Finance"}},
		{query: "Émile", expected: []string{"Émile Zola"}},
		{query: "ZOLA", expected: []string{"Émile Zola"}},
		{query: "mile z", expected: []string{"Émile Zola"}},
		{query: "nobody", expected: []string{}},
		{query: "%", expected: []string{}},
		{query: "_", expected: []string{}},
		{query: `\`, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := qt.New(t)
			repo, _ := newRepository(t)
			seedSearch(c, repo)

			found, err := repo.Search(context.Background(), tt.query)
			c.Assert(err, qt.IsNil)
			c.Assert(names(found), qt.DeepEquals, tt.expected)
		})
	}
}

func TestSearchExample(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	alice := mustCreate(c, repo, input("Alice Finance", "alice@example.com", "Controller", models.DepartmentFinance))
	mustCreate(c, repo, input("Bob IT", "bob@example.com", "Developer", models.DepartmentIT))

	for _, q := range []string{"fin", "A"} {
		found, err := repo.Search(ctx, q)
		c.Assert(err, qt.IsNil)
		c.Assert(found, qt.HasLen, 1, qt.Commentf("query %q", q))
		c.Assert(found[0].ID, qt.Equals, alice.ID)
	}
}

func TestSearchEmptyEqualsList(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()
	seedSearch(c, repo)

	all, err := repo.List(ctx)
	c.Assert(err, qt.IsNil)

	found, err := repo.Search(ctx, "")
	c.Assert(err, qt.IsNil)
	c.Assert(names(found), qt.DeepEquals, names(all))
}

func TestSearchResultProperties(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	seedSearch(c, repo)

	for _, q := range []string{"i", "an", "o", "T", "er"} {
		found, err := repo.Search(context.Background(), q)
		c.Assert(err, qt.IsNil)

		seen := map[uint]bool{}
		for i, e := range found {
			c.Assert(seen[e.ID], qt.IsFalse, qt.Commentf("duplicate id %d for %q", e.ID, q))
			seen[e.ID] = true

			if i > 0 {
				c.Assert(found[i-1].Name <= e.Name, qt.IsTrue, qt.Commentf("order for %q", q))
			}

			lq := strings.ToLower(q)
			matched := strings.Contains(strings.ToLower(e.Name), lq) ||
				strings.Contains(strings.ToLower(string(e.Department)), lq) ||
				strings.Contains(strings.ToLower(e.Position), lq)
			c.Assert(matched, qt.IsTrue, qt.Commentf("%s does not match %q", e.Name, q))
		}
	}
}

func TestFindByDepartment(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	seedSearch(c, repo)

	it := models.DepartmentIT
	found, err := repo.Find(context.Background(), employee.Filter{Department: &it})
	c.Assert(err, qt.IsNil)
	c.Assert(names(found), qt.DeepEquals, []string{"Bob IT", "IT Ivan"})

	found, err = repo.Find(context.Background(), employee.Filter{Department: &it, Query: "support"})
	c.Assert(err, qt.IsNil)
	c.Assert(names(found), qt.DeepEquals, []string{"IT Ivan"})
}

func TestUpdatePartial(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	created := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))

	position := "CFO"
	salary := decimal.RequireFromString("120000")
	updated, err := repo.Update(ctx, created.ID, employee.UpdateInput{Position: &position, Salary: &salary})
	c.Assert(err, qt.IsNil)

	c.Assert(updated.ID, qt.Equals, created.ID)
	c.Assert(updated.Name, qt.Equals, "Alice")
	c.Assert(updated.Email, qt.Equals, "alice@example.com")
	c.Assert(updated.Position, qt.Equals, "CFO")
	c.Assert(updated.Salary.Equal(salary), qt.IsTrue)
	c.Assert(updated.CreatedAt.Equal(created.CreatedAt), qt.IsTrue)
	c.Assert(updated.UpdatedAt.Before(updated.CreatedAt), qt.IsFalse)
	c.Assert(updated.UpdatedAt.Before(created.UpdatedAt), qt.IsFalse)

	got, err := repo.Get(ctx, created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Position, qt.Equals, "CFO")
	c.Assert(got.Department, qt.Equals, models.DepartmentFinance)
}

func TestUpdateKeepsOwnEmail(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)

	created := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))

	email := "alice@example.com"
	_, err := repo.Update(context.Background(), created.ID, employee.UpdateInput{Email: &email})
	c.Assert(err, qt.IsNil)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))
	bob := mustCreate(c, repo, input("Bob", "bob@example.com", "Developer", models.DepartmentIT))

	email := "alice@example.com"
	_, err := repo.Update(ctx, bob.ID, employee.UpdateInput{Email: &email})
	fields := validationFields(c, err)
	c.Assert(fields["email"], qt.DeepEquals, []string{"employee with this email already exists."})

	got, err := repo.Get(ctx, bob.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Email, qt.Equals, "bob@example.com")
}

func TestUpdateRejectsInvalidDepartment(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	created := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))

	department := models.Department("LEGAL")
	_, err := repo.Update(ctx, created.ID, employee.UpdateInput{Department: &department})
	fields := validationFields(c, err)
	c.Assert(fields["department"], qt.DeepEquals, []string{`"LEGAL" is not a valid choice.`})

	got, err := repo.Get(ctx, created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Department, qt.Equals, models.DepartmentFinance)
	c.Assert(got.UpdatedAt.Equal(created.UpdatedAt), qt.IsTrue)
}

func TestUpdateMissing(t *testing.T) {
	c := qt.New(t)
	repo, db := newRepository(t)
	ctx := context.Background()

	mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))
	before, err := repo.List(ctx)
	c.Assert(err, qt.IsNil)

	name := "Ghost"
	_, err = repo.Update(ctx, 999, employee.UpdateInput{Name: &name})
	assertNotFound(c, err)

	after, err := repo.List(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(names(after), qt.DeepEquals, names(before))
	c.Assert(after[0].UpdatedAt.Equal(before[0].UpdatedAt), qt.IsTrue)

	logs, err := audit.List(ctx, db, audit.Filter{EntityType: "employee"})
	c.Assert(err, qt.IsNil)
	c.Assert(logs, qt.HasLen, 1)
}

func TestDelete(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	created := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))

	c.Assert(repo.Delete(ctx, created.ID), qt.IsNil)

	_, err := repo.Get(ctx, created.ID)
	assertNotFound(c, err)

	for range 2 {
		err = repo.Delete(ctx, created.ID)
		assertNotFound(c, err)
	}
}

func TestDeleteFreesEmail(t *testing.T) {
	c := qt.New(t)
	repo, _ := newRepository(t)
	ctx := context.Background()

	created := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))
	c.Assert(repo.Delete(ctx, created.ID), qt.IsNil)

	again := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))
	c.Assert(again.ID, qt.Not(qt.Equals), uint(0))
}

func TestMutationsAreAudited(t *testing.T) {
	c := qt.New(t)
	repo, db := newRepository(t)
	ctx := context.Background()

	created := mustCreate(c, repo, input("Alice", "alice@example.com", "Controller", models.DepartmentFinance))
	name := "Alice Smith"
	_, err := repo.Update(ctx, created.ID, employee.UpdateInput{Name: &name})
	c.Assert(err, qt.IsNil)
	c.Assert(repo.Delete(ctx, created.ID), qt.IsNil)

	logs, err := audit.List(ctx, db, audit.Filter{EntityType: "employee", EntityID: created.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(logs, qt.HasLen, 3)

	c.Assert(logs[0].Action, qt.Equals, models.AuditActionDelete)
	c.Assert(logs[0].AfterData, qt.Equals, "null")
	c.Assert(logs[0].BeforeData, qt.Contains, `"name":"Alice Smith"`)

	c.Assert(logs[1].Action, qt.Equals, models.AuditActionUpdate)
	c.Assert(logs[1].BeforeData, qt.Contains, `"name":"Alice"`)
	c.Assert(logs[1].AfterData, qt.Contains, `"name":"Alice Smith"`)

	c.Assert(logs[2].Action, qt.Equals, models.AuditActionCreate)
	c.Assert(logs[2].BeforeData, qt.Equals, "null")
	c.Assert(logs[2].Description, qt.Equals, `Employee "Alice" created`)
}
