package model

type SourcingRequest struct {
	RequestID     string  `gorm:"column:request_id;type:text;primaryKey"`
	RepairOrderID string  `gorm:"column:repair_order_id;type:text;not null;index"`
	State         string  `gorm:"column:state;type:text;not null"`
	Deadline      string  `gorm:"column:deadline;type:text;not null"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
	ClosedAt      *string `gorm:"column:closed_at;type:text"`
}

func (SourcingRequest) TableName() string {
	return "sourcing_requests"
}

// RequestRequirement links a sourcing request to the requirements it owns.
type RequestRequirement struct {
	RequestID     string `gorm:"column:request_id;type:text;primaryKey"`
	RequirementID string `gorm:"column:requirement_id;type:text;primaryKey"`
}

func (RequestRequirement) TableName() string {
	return "request_requirements"
}
