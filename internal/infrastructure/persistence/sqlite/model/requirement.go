package model

type Requirement struct {
	RequirementID   string  `gorm:"column:requirement_id;type:text;primaryKey"`
	RepairOrderID   string  `gorm:"column:repair_order_id;type:text;not null;index"`
	PartDescription string  `gorm:"column:part_description;type:text;not null"`
	OEMPartNumber   string  `gorm:"column:oem_part_number;type:text"`
	Quantity        int     `gorm:"column:quantity;not null"`
	TargetPrice     *string `gorm:"column:target_price;type:text"`
	Category        string  `gorm:"column:category;type:text;not null"`
	BrandPreference string  `gorm:"column:brand_preference;type:text"`
	Status          string  `gorm:"column:status;type:text;not null"`
	SelectedQuoteID *string `gorm:"column:selected_quote_id;type:text"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string  `gorm:"column:updated_at;type:text;not null"`
}

func (Requirement) TableName() string {
	return "requirements"
}
