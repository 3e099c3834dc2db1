package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID         uint            `gorm:"primaryKey"`
	Name       string          `gorm:"size:100;not null;index"`
	Email      string          `gorm:"size:254;not null;uniqueIndex"`
	Position   string          `gorm:"size:100;not null"`
	Department Department      `gorm:"size:20;not null;index"`
	Phone      string          `gorm:"size:20"` // optional
	DateJoined time.Time       `gorm:"type:date;not null"`
	Salary     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
