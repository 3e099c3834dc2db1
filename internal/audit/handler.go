package audit

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"employee-directory/internal/models"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Before      json.RawMessage    `json:"before"`
	After       json.RawMessage    `json:"after"`
}

// GET /api/audit-logs?entity_type=employee&entity_id=1
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := Filter{EntityType: c.Query("entity_type")}

		if raw := c.Query("entity_id"); raw != "" {
			id := c.QueryInt("entity_id")
			if id <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid entity_id")
			}
			filter.EntityID = uint(id)
		}

		logs, err := List(c.UserContext(), db, filter)
		if err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				Before:      json.RawMessage(l.BeforeData),
				After:       json.RawMessage(l.AfterData),
			})
		}

		return c.JSON(resp)
	}
}
