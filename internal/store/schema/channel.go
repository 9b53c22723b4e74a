package schema

// Channel represents the channels table - acquisition channels known to a project
type Channel struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions channels per project
	ProjectID string `gorm:"column:project_id;not null;type:text;uniqueIndex:idx_channels_project_channel,priority:1"`
	// ChannelID is the external channel identifier, unique within a project
	ChannelID string `gorm:"column:channel_id;not null;type:text;uniqueIndex:idx_channels_project_channel,priority:2"`
	// Name is the display name (nil when unset)
	Name *string `gorm:"column:name;type:text"`
	// BudgetSpend is the fallback total-spend figure used in channel_total mode
	BudgetSpend *float64 `gorm:"column:budget_spend"`
}

// TableName specifies the table name for the Channel model
func (Channel) TableName() string {
	return "channels"
}
