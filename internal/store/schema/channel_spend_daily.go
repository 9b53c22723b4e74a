package schema

import "time"

// ChannelSpendDaily represents the channel_spend_daily table - per-day spend
// amounts, the finer-grained alternative to Channel.BudgetSpend
type ChannelSpendDaily struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions spend rows per project
	ProjectID string `gorm:"column:project_id;not null;type:text;uniqueIndex:idx_spend_daily_project_channel_date,priority:1"`
	// ChannelID references the channel the spend belongs to
	ChannelID string `gorm:"column:channel_id;not null;type:text;uniqueIndex:idx_spend_daily_project_channel_date,priority:2"`
	// Date is the spend day
	Date time.Time `gorm:"column:date;not null;uniqueIndex:idx_spend_daily_project_channel_date,priority:3"`
	// Spend is the amount spent on that day
	Spend float64 `gorm:"column:spend;not null"`
}

// TableName specifies the table name for the ChannelSpendDaily model
func (ChannelSpendDaily) TableName() string {
	return "channel_spend_daily"
}
