package audit

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"employee-directory/internal/models"
)

type LogOptions struct {
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Filter struct {
	EntityType string
	EntityID   uint
}

// Write records a mutation. Pass the transaction that performed it so the
// log row commits or rolls back together with the change.
func Write(tx *gorm.DB, opts LogOptions) error {
	// jsonb rejects the empty string, absent snapshots are stored as null.
	beforeStr, err := snapshot(opts.Before)
	if err != nil {
		return err
	}
	afterStr, err := snapshot(opts.After)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return errors.Wrap(err, "writing audit log")
	}
	return nil
}

// List returns matching entries, newest first.
func List(ctx context.Context, db *gorm.DB, filter Filter) ([]models.AuditLog, error) {
	q := db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != 0 {
		q = q.Where("entity_id = ?", filter.EntityID)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "selecting audit logs")
	}
	return logs, nil
}

func snapshot(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding audit snapshot")
	}
	return string(b), nil
}
