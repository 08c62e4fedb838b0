package models

import (
	"time"

	"gorm.io/datatypes"
)

// RegradeRun records one execution of the bulk regrade operation. Report
// carries per-row failure details for runs that could not update every row.
type RegradeRun struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ActorID     uint           `gorm:"not null" json:"actor_id"`
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt  time.Time      `gorm:"not null" json:"finished_at"`
	RowsUpdated int            `gorm:"not null" json:"rows_updated"`
	RowsFailed  int            `gorm:"not null" json:"rows_failed"`
	Report      datatypes.JSON `gorm:"type:json" json:"report"`
	CreatedAt   time.Time      `json:"created_at"`
}
