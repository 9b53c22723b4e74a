package schema

import "time"

// Transaction represents the transactions table - raw revenue rows written by
// the dataset ingestor
type Transaction struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions transactions per project
	ProjectID string `gorm:"column:project_id;not null;type:text;uniqueIndex:idx_transactions_project_txn,priority:1;index:idx_transactions_project_customer,priority:1"`
	// TransactionID is the external transaction identifier, unique within a project
	TransactionID string `gorm:"column:transaction_id;not null;type:text;uniqueIndex:idx_transactions_project_txn,priority:2"`
	// CustomerID references the owning customer's external identifier
	CustomerID string `gorm:"column:customer_id;not null;type:text;index:idx_transactions_project_customer,priority:2"`
	// RevenueAmount is the signed revenue of this transaction
	RevenueAmount float64 `gorm:"column:revenue_amount;not null"`
	// Date is when the transaction occurred
	Date time.Time `gorm:"column:date;not null"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
