package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the onboarding schema.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&outcomeRecord{})
}

// Outcome schema mirrors the onboarding audit journal adapter.
type outcomeRecord struct {
	ID              int64          `gorm:"primaryKey;autoIncrement;column:id"`
	SessionID       string         `gorm:"column:session_id;size:64;index"`
	ProviderID      int64          `gorm:"column:provider_id;index"`
	CategoryID      int64          `gorm:"column:category_id"`
	ServiceID       int64          `gorm:"column:service_id"`
	Operation       string         `gorm:"column:operation;type:varchar(32)"`
	Kind            string         `gorm:"column:kind;type:varchar(16);index"`
	Reason          string         `gorm:"column:reason"`
	CorrectiveSteps pq.StringArray `gorm:"column:corrective_steps;type:text[]"`
	RecordedAt      time.Time      `gorm:"column:recorded_at;index"`
}

func (outcomeRecord) TableName() string { return "onboarding_outcomes" }
