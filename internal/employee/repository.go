package employee

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"employee-directory/internal/apperror"
	"employee-directory/internal/audit"
	"employee-directory/internal/models"
)

const (
	resourceName = "employee"

	// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
	uniqueViolation = "23505"

	// Both sides are folded by the database so non-ASCII letters compare
	// under the same rules.
	searchCondition = `(LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(department) LIKE LOWER(?) ESCAPE '\' OR LOWER(position) LIKE LOWER(?) ESCAPE '\')`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, in CreateInput) (models.Employee, error) {
	in = in.normalize()
	if fields := validateInput(in); fields != nil {
		return models.Employee{}, apperror.NewValidation(fields)
	}

	employee := in.model()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, employee.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&employee).Error; err != nil {
			return mapDatabaseError(err, "creating employee")
		}
		return audit.Write(tx, audit.LogOptions{
			EntityType:  resourceName,
			EntityID:    employee.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Employee %q created", employee.Name),
			After:       ToResponse(employee),
		})
	})
	if err != nil {
		return models.Employee{}, err
	}
	return employee, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (models.Employee, error) {
	return load(r.db.WithContext(ctx), id)
}

// List returns every employee ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Employee, error) {
	return r.Find(ctx, Filter{})
}

// Search matches query as a case-insensitive substring of name, department
// or position. An empty query lists everything.
func (r *Repository) Search(ctx context.Context, query string) ([]models.Employee, error) {
	return r.Find(ctx, Filter{Query: query})
}

// Find runs one statement, so a record matching several fields is returned
// once and ordering stays with the database.
func (r *Repository) Find(ctx context.Context, filter Filter) ([]models.Employee, error) {
	q := r.db.WithContext(ctx).Model(&models.Employee{})

	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(filter.Query) + "%"
		q = q.Where(searchCondition, pattern, pattern, pattern)
	}
	if filter.Department != nil {
		q = q.Where("department = ?", *filter.Department)
	}
	if filter.JoinedFrom != nil {
		q = q.Where("date_joined >= ?", *filter.JoinedFrom)
	}
	if filter.JoinedTo != nil {
		q = q.Where("date_joined <= ?", *filter.JoinedTo)
	}

	var employees []models.Employee
	if err := q.Order("name ASC").Order("id ASC").Find(&employees).Error; err != nil {
		return nil, errors.Wrap(err, "selecting employees")
	}
	return employees, nil
}

func (r *Repository) Update(ctx context.Context, id uint, in UpdateInput) (models.Employee, error) {
	var updated models.Employee
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employee, err := load(tx, id)
		if err != nil {
			return err
		}
		before := ToResponse(employee)

		merged := in.ApplyTo(inputFrom(employee)).normalize()
		if fields := validateInput(merged); fields != nil {
			return apperror.NewValidation(fields)
		}
		if merged.Email != employee.Email {
			if err := ensureEmailFree(tx, merged.Email, id); err != nil {
				return err
			}
		}

		merged.copyTo(&employee)
		if err := tx.Save(&employee).Error; err != nil {
			return mapDatabaseError(err, "updating employee")
		}

		updated = employee
		return audit.Write(tx, audit.LogOptions{
			EntityType:  resourceName,
			EntityID:    employee.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Employee %q updated", employee.Name),
			Before:      before,
			After:       ToResponse(employee),
		})
	})
	if err != nil {
		return models.Employee{}, err
	}
	return updated, nil
}

// Delete removes the record for good; deleting a missing id is NotFound
// every time.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employee, err := load(tx, id)
		if err != nil {
			return err
		}

		res := tx.Delete(&models.Employee{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting employee")
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound(resourceName, id)
		}

		return audit.Write(tx, audit.LogOptions{
			EntityType:  resourceName,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Employee %q deleted", employee.Name),
			Before:      ToResponse(employee),
		})
	})
}

func load(db *gorm.DB, id uint) (models.Employee, error) {
	var employee models.Employee
	if err := db.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Employee{}, apperror.NotFound(resourceName, id)
		}
		return models.Employee{}, errors.Wrap(err, "selecting employee")
	}
	return employee, nil
}

// ensureEmailFree is the friendly check; the unique index still decides
// when two creates race.
func ensureEmailFree(tx *gorm.DB, email string, excludeID uint) error {
	q := tx.Model(&models.Employee{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return apperror.Field("email", msgEmailTaken)
	}
	return nil
}

func mapDatabaseError(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.Field("email", msgEmailTaken)
	}
	return errors.Wrap(err, action)
}
